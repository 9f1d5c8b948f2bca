// Package captions builds SRT subtitle cues for a clip from the episode's
// word timeline.
package captions

import (
	"fmt"
	"os"
	"strings"

	"podsculpt/internal/services/assemblyai"
	"podsculpt/internal/timecode"
)

// Cue is one subtitle block. Offsets are relative to the clip start, not the
// episode.
type Cue struct {
	Text    string
	StartMS int64
	EndMS   int64
}

// BuildCues selects the words that fall entirely inside the clip window and
// groups them into fixed-size cues. A word belongs to the clip when it starts
// at or after the clip start and ends at or before the clip end. Returns an
// empty list when no words qualify.
func BuildCues(words []assemblyai.Word, clipStartS, clipEndS float64, wordsPerCue int) []Cue {
	if wordsPerCue <= 0 {
		wordsPerCue = 4
	}
	clipStartMS := int64(clipStartS * 1000)
	clipEndMS := int64(clipEndS * 1000)

	var included []assemblyai.Word
	for _, word := range words {
		if word.StartMS >= clipStartMS && word.EndMS <= clipEndMS {
			included = append(included, word)
		}
	}

	cues := make([]Cue, 0, (len(included)+wordsPerCue-1)/wordsPerCue)
	for i := 0; i < len(included); i += wordsPerCue {
		end := i + wordsPerCue
		if end > len(included) {
			end = len(included)
		}
		group := included[i:end]

		texts := make([]string, len(group))
		for j, word := range group {
			texts[j] = word.Text
		}
		cues = append(cues, Cue{
			Text:    strings.Join(texts, " "),
			StartMS: group[0].StartMS - clipStartMS,
			EndMS:   group[len(group)-1].EndMS - clipStartMS,
		})
	}
	return cues
}

// SerializeSRT renders cues as an SRT document with 1-based block numbers.
func SerializeSRT(cues []Cue) (string, error) {
	var b strings.Builder
	for i, cue := range cues {
		start, err := timecode.ToTimecode(cue.StartMS)
		if err != nil {
			return "", fmt.Errorf("cue %d start: %w", i+1, err)
		}
		end, err := timecode.ToTimecode(cue.EndMS)
		if err != nil {
			return "", fmt.Errorf("cue %d end: %w", i+1, err)
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, start, end, cue.Text)
	}
	return b.String(), nil
}

// WriteSRT serializes cues and writes them to path.
func WriteSRT(path string, cues []Cue) error {
	content, err := SerializeSRT(cues)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write srt %s: %w", path, err)
	}
	return nil
}

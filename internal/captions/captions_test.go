package captions

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"podsculpt/internal/services/assemblyai"
)

func word(text string, start, end int64) assemblyai.Word {
	return assemblyai.Word{Text: text, StartMS: start, EndMS: end}
}

func TestBuildCuesFiltersToClipWindow(t *testing.T) {
	words := []assemblyai.Word{
		word("before", 9000, 9900),
		word("straddles", 9500, 10500),
		word("first", 10000, 10400),
		word("second", 10500, 10900),
		word("tail", 19500, 20500),
	}

	cues := BuildCues(words, 10, 20, 4)
	if len(cues) != 1 {
		t.Fatalf("expected 1 cue, got %d", len(cues))
	}
	if cues[0].Text != "first second" {
		t.Fatalf("unexpected cue text: %q", cues[0].Text)
	}
	if cues[0].StartMS != 0 || cues[0].EndMS != 900 {
		t.Fatalf("expected relative offsets 0..900, got %d..%d", cues[0].StartMS, cues[0].EndMS)
	}
}

func TestBuildCuesGroupsByWordsPerCue(t *testing.T) {
	words := make([]assemblyai.Word, 0, 10)
	for i := int64(0); i < 10; i++ {
		start := 5000 + i*500
		words = append(words, word("w", start, start+400))
	}

	cues := BuildCues(words, 5, 60, 4)
	if len(cues) != 3 {
		t.Fatalf("expected 3 cues for 10 words, got %d", len(cues))
	}
	if got := strings.Count(cues[0].Text, "w"); got != 4 {
		t.Fatalf("expected 4 words in first cue, got %d", got)
	}
	if got := strings.Count(cues[2].Text, "w"); got != 2 {
		t.Fatalf("expected 2 words in last cue, got %d", got)
	}
	if cues[1].StartMS != 2000 {
		t.Fatalf("expected second cue to start at 2000, got %d", cues[1].StartMS)
	}
}

func TestBuildCuesEmptyWindow(t *testing.T) {
	words := []assemblyai.Word{word("early", 0, 400)}
	if cues := BuildCues(words, 100, 110, 4); len(cues) != 0 {
		t.Fatalf("expected no cues, got %d", len(cues))
	}
}

func TestSerializeSRT(t *testing.T) {
	cues := []Cue{
		{Text: "hello there", StartMS: 0, EndMS: 1200},
		{Text: "general kenobi", StartMS: 1500, EndMS: 3000},
	}
	content, err := SerializeSRT(cues)
	if err != nil {
		t.Fatalf("SerializeSRT: %v", err)
	}

	want := "1\n00:00:00,000 --> 00:00:01,200\nhello there\n\n" +
		"2\n00:00:01,500 --> 00:00:03,000\ngeneral kenobi\n\n"
	if content != want {
		t.Fatalf("unexpected srt:\n%q\nwant:\n%q", content, want)
	}
}

func TestSerializeSRTRejectsNegativeOffsets(t *testing.T) {
	if _, err := SerializeSRT([]Cue{{Text: "bad", StartMS: -5, EndMS: 100}}); err == nil {
		t.Fatal("expected error for negative offset")
	}
}

func TestWriteSRT(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.srt")
	cues := []Cue{{Text: "only cue", StartMS: 100, EndMS: 900}}
	if err := WriteSRT(path, cues); err != nil {
		t.Fatalf("WriteSRT: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read srt: %v", err)
	}
	if !strings.Contains(string(data), "only cue") {
		t.Fatalf("unexpected file contents: %q", string(data))
	}
}

package assemblyai

import (
	"encoding/json"
	"strings"
)

// Word is a single transcribed word with millisecond offsets into the
// episode audio.
type Word struct {
	Text    string `json:"text"`
	StartMS int64  `json:"start"`
	EndMS   int64  `json:"end"`
}

// Transcript is the completed transcription result for an episode.
type Transcript struct {
	ID    string
	Text  string
	Words []Word
}

// EncodeWords serializes a word timeline for persistence.
func EncodeWords(words []Word) (string, error) {
	data, err := json.Marshal(words)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeWords deserializes a persisted word timeline. Empty input yields an
// empty timeline.
func DecodeWords(raw string) ([]Word, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var words []Word
	if err := json.Unmarshal([]byte(raw), &words); err != nil {
		return nil, err
	}
	return words, nil
}

package stage

import (
	"errors"
	"testing"

	"podsculpt/internal/services"
)

func TestParseWords_Valid(t *testing.T) {
	raw := `[{"text":"hello","start":100,"end":400},{"text":"world","start":450,"end":900}]`
	words, err := ParseWords(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(words))
	}
	if words[0].Text != "hello" || words[0].StartMS != 100 {
		t.Fatalf("unexpected first word: %#v", words[0])
	}
}

func TestParseWords_Empty(t *testing.T) {
	words, err := ParseWords("")
	if err != nil {
		t.Fatalf("unexpected error for empty input: %v", err)
	}
	if len(words) != 0 {
		t.Fatalf("expected no words for empty input, got %d", len(words))
	}
}

func TestParseWords_Invalid(t *testing.T) {
	_, err := ParseWords("{not json")
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation classification, got %v", err)
	}
}

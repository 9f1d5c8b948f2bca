package insights

import (
	"context"
	"errors"
	"strings"

	"podsculpt/internal/services"
	"podsculpt/internal/services/groq"
)

// Completer is the slice of the Groq client the generator needs.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Generator produces show notes and clip selections from a transcript.
type Generator struct {
	llm Completer
}

// NewGenerator constructs a Generator over the supplied chat client.
func NewGenerator(llm Completer) *Generator {
	return &Generator{llm: llm}
}

// GenerateShowNotes asks the model for formatted show notes.
func (g *Generator) GenerateShowNotes(ctx context.Context, transcript, episodeTitle string) (string, error) {
	if g.llm == nil {
		return "", services.Wrap(services.ErrConfiguration, "notes", "generate",
			"Chat client not configured", nil)
	}
	if strings.TrimSpace(transcript) == "" {
		return "", services.Wrap(services.ErrValidation, "notes", "generate",
			"Transcript is empty", nil)
	}
	notes, err := g.llm.Complete(ctx, showNotesSystemPrompt, showNotesUserPrompt(transcript, episodeTitle))
	if err != nil {
		return "", services.Wrap(services.ErrProvider, "notes", "generate",
			"Show notes request failed", err)
	}
	return strings.TrimSpace(notes), nil
}

type clipSelectionPayload struct {
	Clips []ClipDescriptor `json:"clips"`
}

// SelectClips asks the model for the most engaging clip windows. A malformed
// or empty model response is an error; callers decide whether that fails the
// run.
func (g *Generator) SelectClips(ctx context.Context, transcript, episodeTitle string) ([]ClipDescriptor, error) {
	if g.llm == nil {
		return nil, services.Wrap(services.ErrConfiguration, "clips", "select",
			"Chat client not configured", nil)
	}
	if strings.TrimSpace(transcript) == "" {
		return nil, services.Wrap(services.ErrValidation, "clips", "select",
			"Transcript is empty", nil)
	}
	content, err := g.llm.CompleteJSON(ctx, clipSelectionSystemPrompt, clipSelectionUserPrompt(transcript, episodeTitle))
	if err != nil {
		return nil, services.Wrap(services.ErrProvider, "clips", "select",
			"Clip selection request failed", err)
	}

	var payload clipSelectionPayload
	if err := groq.DecodeModelJSON(content, &payload); err != nil {
		return nil, services.Wrap(services.ErrProvider, "clips", "select",
			"Clip selection response is not valid JSON", err)
	}
	if len(payload.Clips) == 0 {
		return nil, services.Wrap(services.ErrProvider, "clips", "select",
			"Clip selection response contained no clips", errors.New("empty clips array"))
	}
	return payload.Clips, nil
}

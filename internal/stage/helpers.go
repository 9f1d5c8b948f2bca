package stage

import (
	"podsculpt/internal/services"
	"podsculpt/internal/services/assemblyai"
)

// ParseWords decodes the persisted word timeline for a submission. On failure
// it returns a services.ErrValidation suitable for stage Execute methods.
func ParseWords(raw string) ([]assemblyai.Word, error) {
	words, err := assemblyai.DecodeWords(raw)
	if err != nil {
		return nil, services.Wrap(
			services.ErrValidation, "stage", "parse words",
			"Word timeline missing or invalid; rerun transcription", err)
	}
	return words, nil
}

package insights

import (
	"encoding/json"
	"strings"
)

// ClipDescriptor identifies a moment in the episode worth publishing as a
// standalone clip. Offsets are seconds from the start of the episode.
type ClipDescriptor struct {
	StartS float64 `json:"start_time"`
	EndS   float64 `json:"end_time"`
	Title  string  `json:"title"`
	Hook   string  `json:"hook"`
}

// DurationS returns the clip length in seconds.
func (c ClipDescriptor) DurationS() float64 {
	return c.EndS - c.StartS
}

// EncodeClips serializes descriptors for persistence.
func EncodeClips(clips []ClipDescriptor) (string, error) {
	data, err := json.Marshal(clips)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeClips deserializes persisted descriptors. Empty input yields an
// empty list.
func DecodeClips(raw string) ([]ClipDescriptor, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var clips []ClipDescriptor
	if err := json.Unmarshal([]byte(raw), &clips); err != nil {
		return nil, err
	}
	return clips, nil
}

// ValidateClips drops descriptors with impossible or oversized windows.
// Survivors keep their relative order.
func ValidateClips(clips []ClipDescriptor, maxClipSeconds int) []ClipDescriptor {
	if maxClipSeconds <= 0 {
		maxClipSeconds = 90
	}
	valid := make([]ClipDescriptor, 0, len(clips))
	for _, clip := range clips {
		if clip.StartS < 0 {
			continue
		}
		if clip.EndS <= clip.StartS {
			continue
		}
		if clip.DurationS() > float64(maxClipSeconds) {
			continue
		}
		valid = append(valid, clip)
	}
	return valid
}

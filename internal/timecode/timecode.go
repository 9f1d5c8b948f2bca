// Package timecode converts between millisecond offsets and the
// HH:MM:SS,mmm timestamps used by SRT subtitle files.
package timecode

import (
	"fmt"
	"strings"
)

// ToTimecode renders a millisecond offset as an SRT timestamp. Hours are not
// capped at two digits for very long recordings. Negative offsets are
// rejected.
func ToTimecode(ms int64) (string, error) {
	if ms < 0 {
		return "", fmt.Errorf("negative offset %d ms", ms)
	}
	millis := ms % 1000
	totalSeconds := ms / 1000
	seconds := totalSeconds % 60
	minutes := (totalSeconds / 60) % 60
	hours := totalSeconds / 3600
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis), nil
}

// ParseTimecode parses an SRT timestamp back into a millisecond offset.
func ParseTimecode(value string) (int64, error) {
	value = strings.TrimSpace(value)
	var hours, minutes, seconds, millis int64
	if _, err := fmt.Sscanf(value, "%d:%d:%d,%d", &hours, &minutes, &seconds, &millis); err != nil {
		return 0, fmt.Errorf("parse timecode %q: %w", value, err)
	}
	if hours < 0 || minutes < 0 || minutes > 59 || seconds < 0 || seconds > 59 || millis < 0 || millis > 999 {
		return 0, fmt.Errorf("timecode %q out of range", value)
	}
	return ((hours*60+minutes)*60+seconds)*1000 + millis, nil
}

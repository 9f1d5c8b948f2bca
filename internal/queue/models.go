package queue

import (
	"encoding/json"
	"strings"
	"time"
)

// Status represents the lifecycle of a submission.
type Status string

const (
	StatusPending         Status = "pending"
	StatusProcessing      Status = "processing"
	StatusDownloading     Status = "downloading"
	StatusDownloaded      Status = "downloaded"
	StatusTranscribing    Status = "transcribing"
	StatusTranscribed     Status = "transcribed"
	StatusGeneratingNotes Status = "generating_notes"
	StatusNotesComplete   Status = "notes_complete"
	StatusSelectingClips  Status = "selecting_clips"
	StatusClipsSelected   Status = "clips_selected"
	StatusCreatingVideos  Status = "creating_videos"
	StatusComplete        Status = "complete"
	StatusFailed          Status = "failed"
)

// DaemonStopReason is the error message set when in-flight submissions are
// failed because the daemon shut down mid-run.
const DaemonStopReason = "Run interrupted by daemon shutdown"

var allStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusDownloading,
	StatusDownloaded,
	StatusTranscribing,
	StatusTranscribed,
	StatusGeneratingNotes,
	StatusNotesComplete,
	StatusSelectingClips,
	StatusClipsSelected,
	StatusCreatingVideos,
	StatusComplete,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// processingStatuses are the in-flight statuses a stage holds while working.
var processingStatuses = map[Status]struct{}{
	StatusProcessing:      {},
	StatusDownloading:     {},
	StatusTranscribing:    {},
	StatusGeneratingNotes: {},
	StatusSelectingClips:  {},
	StatusCreatingVideos:  {},
}

// Submission represents one request to process a podcast feed's latest
// episode, persisted in SQLite.
type Submission struct {
	ID              int64
	RSSURL          string
	Status          Status
	EpisodeTitle    string
	AudioURL        string
	AudioFile       string
	Transcript      string
	WordsJSON       string
	ShowNotes       string
	ClipsJSON       string
	ClipURLsJSON    string
	ErrorMessage    string
	WorkDir         string
	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	LastHeartbeat   *time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status admits no further stage runs.
func (s Status) IsTerminal() bool {
	return s == StatusComplete || s == StatusFailed
}

// IsProcessing returns true when the status reflects an in-flight operation.
func (s Submission) IsProcessing() bool {
	_, ok := processingStatuses[s.Status]
	return ok
}

// IsProcessingStatus reports whether a status reflects an in-flight operation.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// SetProgress updates the progress fields together.
func (s *Submission) SetProgress(stage, message string, percent float64) {
	s.ProgressStage = stage
	s.ProgressMessage = message
	s.ProgressPercent = percent
}

// SetFailed marks the submission failed with the given error message and
// clears the heartbeat.
func (s *Submission) SetFailed(message string) {
	s.Status = StatusFailed
	s.ErrorMessage = message
	s.ProgressStage = "Failed"
	s.ProgressMessage = message
	s.ProgressPercent = 0
	s.LastHeartbeat = nil
}

// ClipURLs decodes the index-aligned rendered clip locations. A nil entry
// marks a clip whose render or upload failed; alignment with the descriptor
// list is preserved.
func (s Submission) ClipURLs() ([]*string, error) {
	if strings.TrimSpace(s.ClipURLsJSON) == "" {
		return nil, nil
	}
	var urls []*string
	if err := json.Unmarshal([]byte(s.ClipURLsJSON), &urls); err != nil {
		return nil, err
	}
	return urls, nil
}

// SetClipURLs encodes the index-aligned rendered clip locations.
func (s *Submission) SetClipURLs(urls []*string) error {
	data, err := json.Marshal(urls)
	if err != nil {
		return err
	}
	s.ClipURLsJSON = string(data)
	return nil
}

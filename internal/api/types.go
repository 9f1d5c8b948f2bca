package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Submission describes a queued pipeline run in a transport-friendly format.
type Submission struct {
	ID            int64              `json:"id"`
	RSSURL        string             `json:"rssUrl"`
	Status        string             `json:"status"`
	EpisodeTitle  string             `json:"episodeTitle,omitempty"`
	AudioURL      string             `json:"audioUrl,omitempty"`
	Transcript    string             `json:"transcript,omitempty"`
	ShowNotes     string             `json:"showNotes,omitempty"`
	Clips         []ClipSummary      `json:"clips,omitempty"`
	ClipKeys      []*string          `json:"clipKeys,omitempty"`
	Progress      SubmissionProgress `json:"progress"`
	ErrorMessage  string             `json:"errorMessage,omitempty"`
	CreatedAt     string             `json:"createdAt,omitempty"`
	UpdatedAt     string             `json:"updatedAt,omitempty"`
	LastHeartbeat string             `json:"lastHeartbeat,omitempty"`
}

// ClipSummary carries the selected clip window and framing copy.
type ClipSummary struct {
	StartSeconds float64 `json:"startSeconds"`
	EndSeconds   float64 `json:"endSeconds"`
	Title        string  `json:"title"`
	Hook         string  `json:"hook,omitempty"`
}

// SubmissionProgress captures stage progress information for a submission.
type SubmissionProgress struct {
	Stage   string  `json:"stage"`
	Percent float64 `json:"percent"`
	Message string  `json:"message"`
}

// StageHealth mirrors readiness reporting for workflow stages.
type StageHealth struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// WorkflowStatus summarizes workflow execution state.
type WorkflowStatus struct {
	Running     bool           `json:"running"`
	QueueStats  map[string]int `json:"queueStats"`
	LastError   string         `json:"lastError,omitempty"`
	StageHealth []StageHealth  `json:"stageHealth"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	QueueDBPath  string         `json:"queueDbPath"`
	LockFilePath string         `json:"lockFilePath"`
	Workflow     WorkflowStatus `json:"workflow"`
}

// SubmitRequest is the payload for enqueueing a new podcast feed.
type SubmitRequest struct {
	RSSURL string `json:"rss_url" validate:"required,url"`
}

// SubmitResponse wraps the freshly created submission.
type SubmitResponse struct {
	Submission Submission `json:"submission"`
}

// QueueListResponse wraps a collection of submissions for API responses.
type QueueListResponse struct {
	Items []Submission `json:"items"`
}

// QueueItemResponse wraps a single submission.
type QueueItemResponse struct {
	Item Submission `json:"item"`
}

// QueueStatsResponse provides a normalized queue stats payload.
type QueueStatsResponse struct {
	Counts map[string]int `json:"counts"`
}

// ClipLinkResponse carries a short-lived signed URL for a rendered clip.
type ClipLinkResponse struct {
	ClipNumber int    `json:"clipNumber"`
	URL        string `json:"url"`
	ExpiresIn  int    `json:"expiresIn"`
}

// RetryRequest names the failed submissions to requeue. An empty list
// requeues every failed submission.
type RetryRequest struct {
	IDs []int64 `json:"ids"`
}

// RetryResponse reports how many submissions moved back to pending.
type RetryResponse struct {
	Retried int64 `json:"retried"`
}

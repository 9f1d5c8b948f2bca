package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldSubmissionID is the standardized structured logging key for submission identifiers.
	FieldSubmissionID = "submission_id"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
	// FieldClipIndex is the standardized structured logging key for 1-based clip indexes.
	FieldClipIndex = "clip_index"
	// FieldEventType tags log records for machine filtering (stage_start, stage_failure, ...).
	FieldEventType = "event_type"
	// FieldCorrelationID is the standardized structured logging key for per-run correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldErrorHint carries a suggested next step for a logged failure.
	FieldErrorHint = "error_hint"
)

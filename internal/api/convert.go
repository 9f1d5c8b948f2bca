package api

import (
	"podsculpt/internal/insights"
	"podsculpt/internal/queue"
	"podsculpt/internal/stage"
)

// FromSubmission converts a queue record into its API representation.
// Malformed embedded JSON is surfaced as empty collections rather than an
// error so status queries keep working for failed submissions.
func FromSubmission(sub *queue.Submission) Submission {
	if sub == nil {
		return Submission{}
	}
	out := Submission{
		ID:           sub.ID,
		RSSURL:       sub.RSSURL,
		Status:       string(sub.Status),
		EpisodeTitle: sub.EpisodeTitle,
		AudioURL:     sub.AudioURL,
		Transcript:   sub.Transcript,
		ShowNotes:    sub.ShowNotes,
		ErrorMessage: sub.ErrorMessage,
		Progress: SubmissionProgress{
			Stage:   sub.ProgressStage,
			Percent: sub.ProgressPercent,
			Message: sub.ProgressMessage,
		},
	}
	if !sub.CreatedAt.IsZero() {
		out.CreatedAt = sub.CreatedAt.Format(dateTimeFormat)
	}
	if !sub.UpdatedAt.IsZero() {
		out.UpdatedAt = sub.UpdatedAt.Format(dateTimeFormat)
	}
	if sub.LastHeartbeat != nil {
		out.LastHeartbeat = sub.LastHeartbeat.Format(dateTimeFormat)
	}
	if clips, err := insights.DecodeClips(sub.ClipsJSON); err == nil {
		for _, clip := range clips {
			out.Clips = append(out.Clips, ClipSummary{
				StartSeconds: clip.StartS,
				EndSeconds:   clip.EndS,
				Title:        clip.Title,
				Hook:         clip.Hook,
			})
		}
	}
	if keys, err := sub.ClipURLs(); err == nil {
		out.ClipKeys = keys
	}
	return out
}

// FromSubmissions converts a list of queue records.
func FromSubmissions(subs []*queue.Submission) []Submission {
	if len(subs) == 0 {
		return nil
	}
	out := make([]Submission, 0, len(subs))
	for _, sub := range subs {
		out = append(out, FromSubmission(sub))
	}
	return out
}

// FromStageHealth converts workflow readiness entries.
func FromStageHealth(entries []stage.Health) []StageHealth {
	out := make([]StageHealth, 0, len(entries))
	for _, entry := range entries {
		out = append(out, StageHealth{Name: entry.Name, Ready: entry.Ready, Detail: entry.Detail})
	}
	return out
}

// MergeQueueStats flattens status-keyed counts into string keys.
func MergeQueueStats(stats map[queue.Status]int) map[string]int {
	out := make(map[string]int, len(stats))
	for status, count := range stats {
		out[string(status)] = count
	}
	return out
}

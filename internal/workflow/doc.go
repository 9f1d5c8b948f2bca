// Package workflow drives queued submissions through the processing
// pipeline. A manager polls the queue for pending work, claims one
// submission at a time, and walks it through the download, transcription,
// show notes, clip selection, and render stages until it reaches a
// terminal status. Statuses only move forward; interrupted runs are
// failed by the heartbeat monitor rather than resumed.
package workflow

// Package insights derives show notes and viral clip selections from an
// episode transcript via the Groq chat API. Both operations are best-effort:
// a failed model call degrades the output rather than failing the run.
package insights

// Package groq provides a client for the Groq OpenAI-compatible chat
// completion API used for show notes and clip selection.
package groq

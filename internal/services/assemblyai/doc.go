// Package assemblyai provides a client for the AssemblyAI transcription API
// and owns the word timeline types shared across the pipeline.
package assemblyai

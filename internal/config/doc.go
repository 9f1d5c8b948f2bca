// Package config loads, normalizes, and validates podsculpt configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks for
// secrets such as ASSEMBLYAI_API_KEY and GROQ_API_KEY. The Config type
// centralizes every knob the daemon and CLI need.
package config

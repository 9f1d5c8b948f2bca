// Package render turns selected clips into captioned videos with ffmpeg and
// uploads them to clip storage.
package render

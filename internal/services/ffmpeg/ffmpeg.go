// Package ffmpeg shells out to the ffmpeg binary to compose clip videos.
package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"podsculpt/internal/services"
)

// Input describes one -i entry of an ffmpeg invocation.
type Input struct {
	Path        string
	SeekSeconds float64
	Loop        bool
}

// Output describes the encoding settings and destination of an invocation.
type Output struct {
	Path            string
	VideoCodec      string
	AudioCodec      string
	PixelFormat     string
	DurationSeconds float64
	VideoFilter     string
	Maps            []string
	Shortest        bool
}

// Runner executes a prepared command line. Tests substitute their own.
type Runner func(ctx context.Context, binary string, args []string) ([]byte, error)

func defaultRunner(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	return cmd.CombinedOutput()
}

// Service builds and runs ffmpeg command lines.
type Service struct {
	binary string
	run    Runner
}

// Option customizes the service.
type Option func(*Service)

// WithRunner overrides command execution (useful for tests).
func WithRunner(run Runner) Option {
	return func(s *Service) {
		if run != nil {
			s.run = run
		}
	}
}

// New constructs a Service for the given ffmpeg binary.
func New(binary string, opts ...Option) *Service {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	s := &Service{binary: binary, run: defaultRunner}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BuildArgs assembles the full argument list for the inputs and output.
func BuildArgs(inputs []Input, output Output) []string {
	args := []string{"-y"}
	for _, input := range inputs {
		if input.Loop {
			args = append(args, "-loop", "1")
		}
		if input.SeekSeconds > 0 {
			args = append(args, "-ss", FormatSeconds(input.SeekSeconds))
		}
		args = append(args, "-i", input.Path)
	}
	for _, m := range output.Maps {
		args = append(args, "-map", m)
	}
	if output.VideoFilter != "" {
		args = append(args, "-vf", output.VideoFilter)
	}
	if output.VideoCodec != "" {
		args = append(args, "-c:v", output.VideoCodec)
	}
	if output.PixelFormat != "" {
		args = append(args, "-pix_fmt", output.PixelFormat)
	}
	if output.AudioCodec != "" {
		args = append(args, "-c:a", output.AudioCodec)
	}
	if output.DurationSeconds > 0 {
		args = append(args, "-t", FormatSeconds(output.DurationSeconds))
	}
	if output.Shortest {
		args = append(args, "-shortest")
	}
	return append(args, output.Path)
}

// Run executes ffmpeg with the assembled arguments, surfacing the combined
// output on failure.
func (s *Service) Run(ctx context.Context, inputs []Input, output Output) error {
	args := BuildArgs(inputs, output)
	out, err := s.run(ctx, s.binary, args)
	if err != nil {
		detail := strings.TrimSpace(string(out))
		if detail == "" {
			detail = err.Error()
		}
		return services.Wrap(services.ErrRendering, "render", "run ffmpeg",
			fmt.Sprintf("ffmpeg failed: %s", tail(detail, 800)), err)
	}
	return nil
}

// HealthCheck verifies the ffmpeg binary is resolvable.
func (s *Service) HealthCheck(_ context.Context) error {
	if _, err := exec.LookPath(s.binary); err != nil {
		return fmt.Errorf("ffmpeg binary %q not found: %w", s.binary, err)
	}
	return nil
}

// FormatSeconds renders a seconds value with millisecond precision.
func FormatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}

// EscapeFilterPath escapes a path for use inside an ffmpeg filter argument.
func EscapeFilterPath(path string) string {
	path = strings.ReplaceAll(path, "\\", "\\\\")
	path = strings.ReplaceAll(path, ":", "\\:")
	return path
}

// EscapeDrawtext escapes text for use in a drawtext filter.
func EscapeDrawtext(text string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		":", "\\:",
		"'", "\\'",
		"%", "\\%",
	)
	return replacer.Replace(text)
}

func tail(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return "..." + s[len(s)-limit:]
}

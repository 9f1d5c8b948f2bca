package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"podsculpt/internal/captions"
	"podsculpt/internal/config"
	"podsculpt/internal/insights"
	"podsculpt/internal/logging"
	"podsculpt/internal/services"
	"podsculpt/internal/services/assemblyai"
	"podsculpt/internal/services/ffmpeg"
)

// Composer runs an assembled ffmpeg invocation.
type Composer interface {
	Run(ctx context.Context, inputs []ffmpeg.Input, output ffmpeg.Output) error
}

// Renderer composes a single clip video: looping background image, seeked
// audio excerpt, title card, attribution line, and optional burned captions.
type Renderer struct {
	cfg    *config.Config
	logger *slog.Logger
	ffmpeg Composer
}

// NewRenderer constructs a clip renderer.
func NewRenderer(cfg *config.Config, logger *slog.Logger, composer Composer) *Renderer {
	return &Renderer{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "render"),
		ffmpeg: composer,
	}
}

const subtitleStyle = "FontSize=30,Outline=2,Alignment=2,MarginV=60"

// RenderClip renders one clip into workDir and returns the video path. The
// subtitle file, when one is needed, lives only for the duration of the call.
func (r *Renderer) RenderClip(ctx context.Context, workDir, audioPath string, clipIndex int, clip insights.ClipDescriptor, words []assemblyai.Word) (string, error) {
	logger := logging.WithContext(ctx, r.logger).With(logging.Int(logging.FieldClipIndex, clipIndex+1))

	background := strings.TrimSpace(r.cfg.Render.BackgroundImage)
	if background == "" {
		return "", services.Wrap(services.ErrConfiguration, "render", "check background",
			"Background image not configured", nil)
	}
	if _, err := os.Stat(background); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "render", "check background",
			fmt.Sprintf("Background image %s missing", background), err)
	}

	duration := clip.DurationS()
	if duration <= 0 {
		return "", services.Wrap(services.ErrValidation, "render", "compute window",
			fmt.Sprintf("Clip %d has non-positive duration", clipIndex+1), nil)
	}

	filter := fmt.Sprintf("scale=%d:%d", r.cfg.Render.Width, r.cfg.Render.Height)
	filter += "," + drawtextFilter(clip.Title, 48, 80)
	if attribution := strings.TrimSpace(r.cfg.Render.Attribution); attribution != "" {
		filter += "," + drawtextFilter(attribution, 28, r.cfg.Render.Height-120)
	}

	srtPath := ""
	if len(words) > 0 {
		cues := captions.BuildCues(words, clip.StartS, clip.EndS, r.cfg.Render.WordsPerCue)
		if len(cues) > 0 {
			srtPath = filepath.Join(workDir, fmt.Sprintf("clip_%d.srt", clipIndex+1))
			if err := captions.WriteSRT(srtPath, cues); err != nil {
				return "", services.Wrap(services.ErrRendering, "render", "write captions",
					"Cannot write subtitle file", err)
			}
			defer os.Remove(srtPath)
			filter += fmt.Sprintf(",subtitles=%s:force_style='%s'", ffmpeg.EscapeFilterPath(srtPath), subtitleStyle)
		} else {
			logger.Debug("no words inside clip window, skipping captions")
		}
	}

	videoPath := filepath.Join(workDir, fmt.Sprintf("clip_%d.mp4", clipIndex+1))
	inputs := []ffmpeg.Input{
		{Path: background, Loop: true},
		{Path: audioPath, SeekSeconds: clip.StartS},
	}
	output := ffmpeg.Output{
		Path:            videoPath,
		VideoCodec:      "libx264",
		AudioCodec:      "aac",
		PixelFormat:     "yuv420p",
		DurationSeconds: duration,
		VideoFilter:     filter,
		Maps:            []string{"0:v", "1:a"},
		Shortest:        true,
	}

	logger.Info("rendering clip",
		logging.String("title", clip.Title),
		logging.Float64("start_s", clip.StartS),
		logging.Float64("duration_s", duration),
		logging.Bool("captions", srtPath != ""))
	if err := r.ffmpeg.Run(ctx, inputs, output); err != nil {
		os.Remove(videoPath)
		return "", err
	}
	return videoPath, nil
}

// drawtextFilter builds a boxed, centered drawtext overlay at the given
// vertical offset.
func drawtextFilter(text string, fontSize, y int) string {
	return fmt.Sprintf(
		"drawtext=text='%s':fontcolor=white:fontsize=%d:x=(w-text_w)/2:y=%d:box=1:boxcolor=black@0.5:boxborderw=16",
		ffmpeg.EscapeDrawtext(text), fontSize, y)
}

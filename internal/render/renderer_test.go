package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"podsculpt/internal/config"
	"podsculpt/internal/insights"
	"podsculpt/internal/services/assemblyai"
	"podsculpt/internal/services/ffmpeg"
	"podsculpt/internal/testsupport"
)

type recordingComposer struct {
	inputs  []ffmpeg.Input
	output  ffmpeg.Output
	srtSeen string
	err     error
}

func (r *recordingComposer) Run(ctx context.Context, inputs []ffmpeg.Input, output ffmpeg.Output) error {
	r.inputs = inputs
	r.output = output
	// Capture subtitle file contents while the file still exists.
	if idx := strings.Index(output.VideoFilter, "subtitles="); idx >= 0 {
		rest := output.VideoFilter[idx+len("subtitles="):]
		if end := strings.Index(rest, ":force_style"); end >= 0 {
			path := strings.ReplaceAll(rest[:end], "\\:", ":")
			path = strings.ReplaceAll(path, "\\\\", "\\")
			if data, err := os.ReadFile(path); err == nil {
				r.srtSeen = string(data)
			}
		}
	}
	if r.err != nil {
		return r.err
	}
	return os.WriteFile(output.Path, []byte("rendered"), 0o644)
}

func renderConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	bg := filepath.Join(t.TempDir(), "background.png")
	if err := os.WriteFile(bg, []byte("png"), 0o644); err != nil {
		t.Fatalf("write background: %v", err)
	}
	cfg.Render.BackgroundImage = bg
	return cfg
}

func sampleWords() []assemblyai.Word {
	return []assemblyai.Word{
		{Text: "welcome", StartMS: 10_000, EndMS: 10_400},
		{Text: "back", StartMS: 10_450, EndMS: 10_900},
	}
}

func TestRenderClipComposesInvocation(t *testing.T) {
	cfg := renderConfig(t)
	composer := &recordingComposer{}
	renderer := NewRenderer(cfg, nil, composer)

	workDir := t.TempDir()
	clip := insights.ClipDescriptor{StartS: 10, EndS: 55, Title: "Big Moment", Hook: "wow"}
	videoPath, err := renderer.RenderClip(context.Background(), workDir, "/audio/ep.mp3", 0, clip, sampleWords())
	if err != nil {
		t.Fatalf("RenderClip: %v", err)
	}
	if !strings.HasSuffix(videoPath, "clip_1.mp4") {
		t.Fatalf("unexpected video path: %q", videoPath)
	}

	if len(composer.inputs) != 2 {
		t.Fatalf("expected 2 inputs, got %d", len(composer.inputs))
	}
	if !composer.inputs[0].Loop || composer.inputs[0].Path != cfg.Render.BackgroundImage {
		t.Fatalf("unexpected background input: %#v", composer.inputs[0])
	}
	if composer.inputs[1].SeekSeconds != 10 {
		t.Fatalf("expected audio seek 10s, got %f", composer.inputs[1].SeekSeconds)
	}

	out := composer.output
	if out.VideoCodec != "libx264" || out.AudioCodec != "aac" || out.PixelFormat != "yuv420p" {
		t.Fatalf("unexpected codecs: %#v", out)
	}
	if out.DurationSeconds != 45 {
		t.Fatalf("expected 45s duration, got %f", out.DurationSeconds)
	}
	if !out.Shortest {
		t.Fatal("expected -shortest")
	}
	if !strings.Contains(out.VideoFilter, "scale=1280:720") {
		t.Fatalf("expected scale filter: %q", out.VideoFilter)
	}
	if !strings.Contains(out.VideoFilter, "drawtext=text='Big Moment'") {
		t.Fatalf("expected title drawtext: %q", out.VideoFilter)
	}
	if !strings.Contains(out.VideoFilter, "subtitles=") || !strings.Contains(out.VideoFilter, "force_style") {
		t.Fatalf("expected subtitle burn: %q", out.VideoFilter)
	}
	if !strings.Contains(composer.srtSeen, "welcome back") {
		t.Fatalf("expected captions in srt, got %q", composer.srtSeen)
	}
}

func TestRenderClipEscapesTitle(t *testing.T) {
	cfg := renderConfig(t)
	composer := &recordingComposer{}
	renderer := NewRenderer(cfg, nil, composer)

	clip := insights.ClipDescriptor{StartS: 0, EndS: 30, Title: "It's 100% real: honest"}
	if _, err := renderer.RenderClip(context.Background(), t.TempDir(), "/audio/ep.mp3", 1, clip, nil); err != nil {
		t.Fatalf("RenderClip: %v", err)
	}
	if !strings.Contains(composer.output.VideoFilter, `It\'s 100\% real\: honest`) {
		t.Fatalf("title not escaped: %q", composer.output.VideoFilter)
	}
}

func TestRenderClipRemovesSubtitleFileOnBothPaths(t *testing.T) {
	cfg := renderConfig(t)
	clip := insights.ClipDescriptor{StartS: 10, EndS: 40, Title: "T"}

	for name, composer := range map[string]*recordingComposer{
		"success": {},
		"failure": {err: errors.New("encode failed")},
	} {
		workDir := t.TempDir()
		renderer := NewRenderer(cfg, nil, composer)
		_, err := renderer.RenderClip(context.Background(), workDir, "/audio/ep.mp3", 0, clip, sampleWords())
		if name == "failure" && err == nil {
			t.Fatal("expected render failure")
		}
		if name == "success" && err != nil {
			t.Fatalf("RenderClip: %v", err)
		}
		if _, statErr := os.Stat(filepath.Join(workDir, "clip_1.srt")); !errors.Is(statErr, os.ErrNotExist) {
			t.Fatalf("%s: subtitle file survived the render call", name)
		}
	}
}

func TestRenderClipSkipsCaptionsOutsideWindow(t *testing.T) {
	cfg := renderConfig(t)
	composer := &recordingComposer{}
	renderer := NewRenderer(cfg, nil, composer)

	clip := insights.ClipDescriptor{StartS: 500, EndS: 530, Title: "T"}
	if _, err := renderer.RenderClip(context.Background(), t.TempDir(), "/audio/ep.mp3", 0, clip, sampleWords()); err != nil {
		t.Fatalf("RenderClip: %v", err)
	}
	if strings.Contains(composer.output.VideoFilter, "subtitles=") {
		t.Fatalf("expected no subtitle burn: %q", composer.output.VideoFilter)
	}
}

func TestRenderClipRequiresBackgroundImage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Render.BackgroundImage = ""
	renderer := NewRenderer(cfg, nil, &recordingComposer{})

	clip := insights.ClipDescriptor{StartS: 0, EndS: 30, Title: "T"}
	if _, err := renderer.RenderClip(context.Background(), t.TempDir(), "/audio/ep.mp3", 0, clip, nil); err == nil {
		t.Fatal("expected error without background image")
	}
}

package render

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"podsculpt/internal/insights"
	"podsculpt/internal/queue"
	"podsculpt/internal/services/assemblyai"
	"podsculpt/internal/storage"
	"podsculpt/internal/testsupport"
)

type fakeClipRenderer struct {
	mu       sync.Mutex
	failIdx  map[int]bool
	rendered []int
}

func (f *fakeClipRenderer) RenderClip(ctx context.Context, workDir, audioPath string, clipIndex int, clip insights.ClipDescriptor, words []assemblyai.Word) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIdx[clipIndex] {
		return "", errors.New("render exploded")
	}
	f.rendered = append(f.rendered, clipIndex)
	return fmt.Sprintf("%s/clip_%d.mp4", workDir, clipIndex+1), nil
}

type fakeUploader struct {
	mu      sync.Mutex
	failIdx map[int]bool
	uploads []string
}

func (f *fakeUploader) UploadClip(submissionID int64, clipIndex int, videoPath string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIdx[clipIndex] {
		return "", errors.New("upload exploded")
	}
	key := storage.ClipKey(submissionID, clipIndex)
	f.uploads = append(f.uploads, key)
	return key, nil
}

func stageSubmission(t *testing.T, clips []insights.ClipDescriptor) *queue.Submission {
	t.Helper()
	encoded, err := insights.EncodeClips(clips)
	if err != nil {
		t.Fatalf("EncodeClips: %v", err)
	}
	words, err := assemblyai.EncodeWords([]assemblyai.Word{{Text: "hi", StartMS: 11_000, EndMS: 11_300}})
	if err != nil {
		t.Fatalf("EncodeWords: %v", err)
	}
	return &queue.Submission{
		ID:        9,
		AudioFile: "/audio/ep.mp3",
		WorkDir:   t.TempDir(),
		ClipsJSON: encoded,
		WordsJSON: words,
	}
}

func threeClips() []insights.ClipDescriptor {
	return []insights.ClipDescriptor{
		{StartS: 10, EndS: 50, Title: "one"},
		{StartS: 100, EndS: 150, Title: "two"},
		{StartS: 200, EndS: 240, Title: "three"},
	}
}

func TestExecuteRendersAllClips(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	renderer := &fakeClipRenderer{}
	uploader := &fakeUploader{}
	handler := NewStage(cfg, nil, renderer, uploader)

	sub := stageSubmission(t, threeClips())
	if err := handler.Execute(context.Background(), sub); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	urls, err := sub.ClipURLs()
	if err != nil {
		t.Fatalf("ClipURLs: %v", err)
	}
	if len(urls) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(urls))
	}
	for i, url := range urls {
		if url == nil {
			t.Fatalf("slot %d unexpectedly nil", i)
		}
		if *url != storage.ClipKey(9, i) {
			t.Fatalf("slot %d = %q", i, *url)
		}
	}
}

func TestExecuteKeepsNilSlotForFailedClip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	renderer := &fakeClipRenderer{failIdx: map[int]bool{1: true}}
	uploader := &fakeUploader{}
	handler := NewStage(cfg, nil, renderer, uploader)

	sub := stageSubmission(t, threeClips())
	if err := handler.Execute(context.Background(), sub); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	urls, err := sub.ClipURLs()
	if err != nil {
		t.Fatalf("ClipURLs: %v", err)
	}
	if len(urls) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(urls))
	}
	if urls[0] == nil || urls[2] == nil {
		t.Fatalf("expected surviving slots 0 and 2: %#v", urls)
	}
	if urls[1] != nil {
		t.Fatalf("expected nil slot 1, got %q", *urls[1])
	}
}

func TestExecuteKeepsNilSlotForFailedUpload(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	renderer := &fakeClipRenderer{}
	uploader := &fakeUploader{failIdx: map[int]bool{0: true}}
	handler := NewStage(cfg, nil, renderer, uploader)

	sub := stageSubmission(t, threeClips())
	if err := handler.Execute(context.Background(), sub); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	urls, _ := sub.ClipURLs()
	if urls[0] != nil {
		t.Fatalf("expected nil slot 0, got %q", *urls[0])
	}
	if urls[1] == nil || urls[2] == nil {
		t.Fatalf("expected surviving slots 1 and 2: %#v", urls)
	}
}

func TestExecuteAllClipsFailedStillSucceeds(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	renderer := &fakeClipRenderer{failIdx: map[int]bool{0: true, 1: true, 2: true}}
	handler := NewStage(cfg, nil, renderer, &fakeUploader{})

	sub := stageSubmission(t, threeClips())
	if err := handler.Execute(context.Background(), sub); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	urls, _ := sub.ClipURLs()
	for i, url := range urls {
		if url != nil {
			t.Fatalf("slot %d should be nil", i)
		}
	}
}

func TestExecuteNoClipsIsNoOp(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	renderer := &fakeClipRenderer{}
	handler := NewStage(cfg, nil, renderer, &fakeUploader{})

	sub := stageSubmission(t, nil)
	if err := handler.Execute(context.Background(), sub); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	urls, err := sub.ClipURLs()
	if err != nil {
		t.Fatalf("ClipURLs: %v", err)
	}
	if len(urls) != 0 {
		t.Fatalf("expected empty results, got %#v", urls)
	}
	if len(renderer.rendered) != 0 {
		t.Fatalf("expected no renders, got %v", renderer.rendered)
	}
}

func TestExecuteRejectsMalformedClips(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	handler := NewStage(cfg, nil, &fakeClipRenderer{}, &fakeUploader{})

	sub := &queue.Submission{ID: 1, AudioFile: "/a.mp3", WorkDir: t.TempDir(), ClipsJSON: "{broken"}
	if err := handler.Execute(context.Background(), sub); err == nil {
		t.Fatal("expected error for malformed clip descriptors")
	}
}

func TestExecuteRespectsWorkerLimit(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithRenderWorkers(1))
	renderer := &fakeClipRenderer{}
	handler := NewStage(cfg, nil, renderer, &fakeUploader{})

	sub := stageSubmission(t, threeClips())
	if err := handler.Execute(context.Background(), sub); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(renderer.rendered) != 3 {
		t.Fatalf("expected 3 renders, got %d", len(renderer.rendered))
	}
}

package transcribe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"podsculpt/internal/queue"
	"podsculpt/internal/services"
	"podsculpt/internal/services/assemblyai"
	"podsculpt/internal/testsupport"
)

type fakeTranscriber struct {
	result *assemblyai.Transcript
	err    error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string) (*assemblyai.Transcript, error) {
	return f.result, f.err
}

func (f *fakeTranscriber) HealthCheck(ctx context.Context) error { return nil }

func audioFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "episode.mp3")
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestExecuteStoresTranscriptAndWords(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	client := &fakeTranscriber{result: &assemblyai.Transcript{
		Text: "hello world",
		Words: []assemblyai.Word{
			{Text: "hello", StartMS: 0, EndMS: 400},
			{Text: "world", StartMS: 450, EndMS: 900},
		},
	}}
	handler := NewStage(cfg, nil, client)

	sub := &queue.Submission{AudioFile: audioFixture(t)}
	if err := handler.Execute(context.Background(), sub); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if sub.Transcript != "hello world" {
		t.Fatalf("unexpected transcript: %q", sub.Transcript)
	}
	words, err := assemblyai.DecodeWords(sub.WordsJSON)
	if err != nil {
		t.Fatalf("DecodeWords: %v", err)
	}
	if len(words) != 2 || words[1].Text != "world" {
		t.Fatalf("unexpected words: %#v", words)
	}
}

func TestExecuteFailsOnProviderError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	client := &fakeTranscriber{err: errors.New("audio rejected")}
	handler := NewStage(cfg, nil, client)

	err := handler.Execute(context.Background(), &queue.Submission{AudioFile: audioFixture(t)})
	if err == nil {
		t.Fatal("expected provider error to be fatal")
	}
	if !errors.Is(err, services.ErrProvider) {
		t.Fatalf("expected provider classification, got %v", err)
	}
}

func TestExecuteFailsOnEmptyTranscript(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	client := &fakeTranscriber{result: &assemblyai.Transcript{Text: "   "}}
	handler := NewStage(cfg, nil, client)

	if err := handler.Execute(context.Background(), &queue.Submission{AudioFile: audioFixture(t)}); err == nil {
		t.Fatal("expected error for empty transcript")
	}
}

func TestPrepareRequiresAudioOnDisk(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	handler := NewStage(cfg, nil, &fakeTranscriber{})

	if err := handler.Prepare(context.Background(), &queue.Submission{}); err == nil {
		t.Fatal("expected error without audio file")
	}
	if err := handler.Prepare(context.Background(), &queue.Submission{AudioFile: "/nonexistent/a.mp3"}); err == nil {
		t.Fatal("expected error for missing file")
	}
}

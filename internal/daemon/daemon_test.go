package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"podsculpt/internal/api"
	"podsculpt/internal/config"
	"podsculpt/internal/logging"
	"podsculpt/internal/queue"
	"podsculpt/internal/stage"
	"podsculpt/internal/testsupport"
	"podsculpt/internal/workflow"
)

type noopHandler struct{ name string }

func (h noopHandler) Prepare(context.Context, *queue.Submission) error { return nil }
func (h noopHandler) Execute(context.Context, *queue.Submission) error { return nil }
func (h noopHandler) HealthCheck(context.Context) stage.Health         { return stage.Healthy(h.name) }

type fakeSigner struct {
	signed []string
}

func (f *fakeSigner) SignedURL(key string) (string, error) {
	f.signed = append(f.signed, key)
	return "https://signed.example.com/" + key, nil
}

func (f *fakeSigner) TTL() int { return 3600 }

func newTestDaemon(t *testing.T, cfg *config.Config, signer ClipSigner) (*Daemon, *queue.Store) {
	t.Helper()
	store := testsupport.MustOpenStore(t, cfg)
	handlers := workflow.Handlers{
		Episode:    noopHandler{"episode"},
		Transcribe: noopHandler{"transcribe"},
		Notes:      noopHandler{"notes"},
		ClipSelect: noopHandler{"clipselect"},
		Render:     noopHandler{"render"},
	}
	manager := workflow.NewManager(cfg, store, logging.NewNop(), handlers)
	d, err := New(cfg, store, logging.NewNop(), manager, signer)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d, store
}

func startDaemon(t *testing.T, d *Daemon) {
	t.Helper()
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(d.Stop)
}

func TestDaemonEnforcesSingleInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first, _ := newTestDaemon(t, cfg, nil)
	startDaemon(t, first)

	second, _ := newTestDaemon(t, cfg, nil)
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("expected second daemon start to fail on lock")
	}

	first.Stop()
	first.Stop()
}

func TestAPISubmitCreatesSubmission(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, _ := newTestDaemon(t, cfg, nil)
	startDaemon(t, d)
	base := "http://" + d.APIAddr()

	body := bytes.NewBufferString(`{"rss_url":"https://feeds.example.com/show.xml"}`)
	resp, err := http.Post(base+"/api/submit", "application/json", body)
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var submitResp api.SubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&submitResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if submitResp.Submission.RSSURL != "https://feeds.example.com/show.xml" {
		t.Fatalf("unexpected submission: %#v", submitResp.Submission)
	}
	if submitResp.Submission.ID == 0 {
		t.Fatal("expected assigned id")
	}
}

func TestAPISubmitRejectsInvalidPayload(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, _ := newTestDaemon(t, cfg, nil)
	startDaemon(t, d)
	base := "http://" + d.APIAddr()

	for name, payload := range map[string]string{
		"missing url": `{}`,
		"bad url":     `{"rss_url":"not a url"}`,
		"bad json":    `{broken`,
	} {
		resp, err := http.Post(base+"/api/submit", "application/json", strings.NewReader(payload))
		if err != nil {
			t.Fatalf("%s: Post: %v", name, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: status = %d", name, resp.StatusCode)
		}
	}
}

func TestAPIStatusReportsStageHealth(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, _ := newTestDaemon(t, cfg, nil)
	startDaemon(t, d)

	resp, err := http.Get("http://" + d.APIAddr() + "/api/status")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()
	var status api.DaemonStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !status.Running {
		t.Fatal("expected running daemon")
	}
	if len(status.Workflow.StageHealth) != 5 {
		t.Fatalf("expected 5 stage health entries, got %d", len(status.Workflow.StageHealth))
	}
	if status.QueueDBPath == "" || status.LockFilePath == "" {
		t.Fatalf("expected paths in status: %#v", status)
	}
}

func TestAPISubmissionStatusAlias(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, store := newTestDaemon(t, cfg, nil)

	sub := testsupport.NewSubmission(t, store, "https://feeds.example.com/show.xml")
	sub.Status = queue.StatusComplete
	sub.EpisodeTitle = "Episode One"
	if err := store.Update(context.Background(), sub); err != nil {
		t.Fatalf("Update: %v", err)
	}

	startDaemon(t, d)
	resp, err := http.Get(fmt.Sprintf("http://%s/api/status/%d", d.APIAddr(), sub.ID))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var item api.QueueItemResponse
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if item.Item.EpisodeTitle != "Episode One" || item.Item.Status != "complete" {
		t.Fatalf("unexpected item: %#v", item.Item)
	}
}

func TestAPIQueueItemNotFound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, _ := newTestDaemon(t, cfg, nil)
	startDaemon(t, d)

	resp, err := http.Get("http://" + d.APIAddr() + "/api/queue/4242")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestAPIClipLinkSignsStoredKey(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	signer := &fakeSigner{}
	d, store := newTestDaemon(t, cfg, signer)

	sub := testsupport.NewSubmission(t, store, "https://feeds.example.com/show.xml")
	sub.Status = queue.StatusComplete
	key := fmt.Sprintf("%d/clip_1.mp4", sub.ID)
	sub.ClipURLsJSON = fmt.Sprintf(`["%s",null]`, key)
	if err := store.Update(context.Background(), sub); err != nil {
		t.Fatalf("Update: %v", err)
	}

	startDaemon(t, d)
	base := "http://" + d.APIAddr()

	resp, err := http.Get(fmt.Sprintf("%s/api/clips/%d/1", base, sub.ID))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var link api.ClipLinkResponse
	if err := json.NewDecoder(resp.Body).Decode(&link); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if link.URL != "https://signed.example.com/"+key {
		t.Fatalf("unexpected url: %q", link.URL)
	}
	if link.ExpiresIn != 3600 || link.ClipNumber != 1 {
		t.Fatalf("unexpected link: %#v", link)
	}

	// Clip 2 failed to render and has a null slot.
	resp, err = http.Get(fmt.Sprintf("%s/api/clips/%d/2", base, sub.ID))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status for null slot = %d", resp.StatusCode)
	}
}

func TestAPIRetryRequeuesFailed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, store := newTestDaemon(t, cfg, nil)

	sub := testsupport.NewSubmission(t, store, "https://feeds.example.com/show.xml")
	sub.SetFailed("Transcription provider rejected the audio")
	if err := store.Update(context.Background(), sub); err != nil {
		t.Fatalf("Update: %v", err)
	}

	startDaemon(t, d)
	resp, err := http.Post("http://"+d.APIAddr()+"/api/retry", "application/json",
		strings.NewReader(fmt.Sprintf(`{"ids":[%d]}`, sub.ID)))
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	defer resp.Body.Close()
	var retry api.RetryResponse
	if err := json.NewDecoder(resp.Body).Decode(&retry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if retry.Retried != 1 {
		t.Fatalf("retried = %d", retry.Retried)
	}
}

package testsupport

import (
	"context"
	"testing"

	"podsculpt/internal/config"
	"podsculpt/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewSubmission creates a pending submission for tests using the provided store.
func NewSubmission(t testing.TB, store *queue.Store, rssURL string) *queue.Submission {
	t.Helper()

	sub, err := store.NewSubmission(context.Background(), rssURL)
	if err != nil {
		t.Fatalf("store.NewSubmission: %v", err)
	}
	return sub
}

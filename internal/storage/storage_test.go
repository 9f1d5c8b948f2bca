package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	storagego "github.com/supabase-community/storage-go"

	"podsculpt/internal/config"
)

type fakeObjects struct {
	uploads   map[string][]byte
	uploadErr error
	signErr   error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{uploads: make(map[string][]byte)}
}

func (f *fakeObjects) UploadFile(bucketID, relativePath string, data io.Reader, fileOptions ...storagego.FileOptions) (storagego.FileUploadResponse, error) {
	if f.uploadErr != nil {
		return storagego.FileUploadResponse{}, f.uploadErr
	}
	body, err := io.ReadAll(data)
	if err != nil {
		return storagego.FileUploadResponse{}, err
	}
	f.uploads[bucketID+"/"+relativePath] = body
	return storagego.FileUploadResponse{}, nil
}

func (f *fakeObjects) CreateSignedUrl(bucketID, filePath string, expiresIn int) (storagego.SignedUrlResponse, error) {
	if f.signErr != nil {
		return storagego.SignedUrlResponse{}, f.signErr
	}
	return storagego.SignedUrlResponse{SignedURL: "https://signed.test/" + bucketID + "/" + filePath}, nil
}

func writeClipFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("video bytes"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestUploadClipStoresUnderSubmissionKey(t *testing.T) {
	objects := newFakeObjects()
	client := NewWithObjects(objects, config.Storage{Bucket: "clips", SignedURLTTLSeconds: 3600})

	key, err := client.UploadClip(7, 0, writeClipFixture(t))
	if err != nil {
		t.Fatalf("UploadClip: %v", err)
	}
	if key != "7/clip_1.mp4" {
		t.Fatalf("unexpected key: %q", key)
	}
	if string(objects.uploads["clips/7/clip_1.mp4"]) != "video bytes" {
		t.Fatalf("upload not recorded: %#v", objects.uploads)
	}
}

func TestUploadClipSurfacesFailure(t *testing.T) {
	objects := newFakeObjects()
	objects.uploadErr = errors.New("bucket unavailable")
	client := NewWithObjects(objects, config.Storage{})

	if _, err := client.UploadClip(1, 2, writeClipFixture(t)); err == nil {
		t.Fatal("expected upload error")
	}
}

func TestSignedURL(t *testing.T) {
	client := NewWithObjects(newFakeObjects(), config.Storage{Bucket: "clips"})

	url, err := client.SignedURL("7/clip_1.mp4")
	if err != nil {
		t.Fatalf("SignedURL: %v", err)
	}
	if url != "https://signed.test/clips/7/clip_1.mp4" {
		t.Fatalf("unexpected url: %q", url)
	}
}

func TestSignedURLFailure(t *testing.T) {
	objects := newFakeObjects()
	objects.signErr = errors.New("expired key")
	client := NewWithObjects(objects, config.Storage{})

	if _, err := client.SignedURL("1/clip_1.mp4"); err == nil {
		t.Fatal("expected sign error")
	}
}

func TestClipKeyIsOneBased(t *testing.T) {
	if got := ClipKey(42, 2); got != "42/clip_3.mp4" {
		t.Fatalf("unexpected key: %q", got)
	}
}

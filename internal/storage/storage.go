// Package storage uploads rendered clips to a Supabase bucket and issues
// signed URLs for them.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	storagego "github.com/supabase-community/storage-go"
	supabase "github.com/supabase-community/supabase-go"

	"podsculpt/internal/config"
	"podsculpt/internal/services"
)

type objectStore interface {
	UploadFile(bucketID, relativePath string, data io.Reader, fileOptions ...storagego.FileOptions) (storagego.FileUploadResponse, error)
	CreateSignedUrl(bucketID, filePath string, expiresIn int) (storagego.SignedUrlResponse, error)
}

// Client stores clip videos in a single bucket.
type Client struct {
	objects objectStore
	bucket  string
	ttl     int
}

// New connects to Supabase using the supplied configuration.
func New(cfg config.Storage) (*Client, error) {
	if strings.TrimSpace(cfg.SupabaseURL) == "" || strings.TrimSpace(cfg.SupabaseKey) == "" {
		return nil, errors.New("storage: supabase url and key required")
	}
	sdk, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: initialize supabase client: %w", err)
	}
	return newClient(sdk.Storage, cfg), nil
}

// NewWithObjects constructs a client over a custom object store (used in tests).
func NewWithObjects(objects objectStore, cfg config.Storage) *Client {
	return newClient(objects, cfg)
}

func newClient(objects objectStore, cfg config.Storage) *Client {
	bucket := cfg.Bucket
	if strings.TrimSpace(bucket) == "" {
		bucket = "clips"
	}
	ttl := cfg.SignedURLTTLSeconds
	if ttl <= 0 {
		ttl = 3600
	}
	return &Client{objects: objects, bucket: bucket, ttl: ttl}
}

// ClipKey returns the bucket key for a rendered clip. Clip numbers are
// 1-based in object names.
func ClipKey(submissionID int64, clipIndex int) string {
	return fmt.Sprintf("%d/clip_%d.mp4", submissionID, clipIndex+1)
}

// UploadClip stores the rendered video for one clip and returns its bucket key.
func (c *Client) UploadClip(submissionID int64, clipIndex int, videoPath string) (string, error) {
	file, err := os.Open(videoPath)
	if err != nil {
		return "", services.Wrap(services.ErrRendering, "render", "open clip",
			fmt.Sprintf("Cannot open rendered clip %s", videoPath), err)
	}
	defer file.Close()

	key := ClipKey(submissionID, clipIndex)
	contentType := "video/mp4"
	_, err = c.objects.UploadFile(c.bucket, key, file, storagego.FileOptions{ContentType: &contentType})
	if err != nil {
		return "", services.Wrap(services.ErrTransport, "render", "upload clip",
			fmt.Sprintf("Upload of %s failed", key), err)
	}
	return key, nil
}

// SignedURL issues a time-limited URL for a stored clip.
func (c *Client) SignedURL(key string) (string, error) {
	resp, err := c.objects.CreateSignedUrl(c.bucket, key, c.ttl)
	if err != nil {
		return "", services.Wrap(services.ErrTransport, "storage", "sign url",
			fmt.Sprintf("Cannot sign URL for %s", key), err)
	}
	if strings.TrimSpace(resp.SignedURL) == "" {
		return "", services.Wrap(services.ErrProvider, "storage", "sign url",
			fmt.Sprintf("Empty signed URL for %s", key), nil)
	}
	return resp.SignedURL, nil
}

// Bucket returns the configured bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}

// TTL returns the signed URL lifetime in seconds.
func (c *Client) TTL() int {
	return c.ttl
}

// Package fetch downloads episode audio over HTTP. Redirects are followed
// manually so the hop budget is enforced and partial files never survive a
// failed download.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"podsculpt/internal/config"
	"podsculpt/internal/services"
)

// Downloader retrieves remote audio files to local paths.
type Downloader struct {
	httpClient   *http.Client
	maxRedirects int
}

// Option customizes the downloader.
type Option func(*Downloader)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Downloader) {
		if client != nil {
			d.httpClient = client
		}
	}
}

// NewDownloader constructs a Downloader from configuration.
func NewDownloader(cfg config.Download, opts ...Option) *Downloader {
	timeout := 120 * time.Second
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	maxRedirects := cfg.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = 5
	}
	d := &Downloader{
		httpClient: &http.Client{
			Timeout: timeout,
			// Redirects are handled by the download loop.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		maxRedirects: maxRedirects,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Download fetches rawURL into destPath, following up to the configured
// number of redirect hops. On any failure the partial file is removed.
func (d *Downloader) Download(ctx context.Context, rawURL, destPath string) (err error) {
	resp, err := d.get(ctx, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return services.Wrap(services.ErrTransport, "download", "create file",
			fmt.Sprintf("Cannot create %s", destPath), err)
	}
	defer func() {
		closeErr := out.Close()
		if err == nil && closeErr != nil {
			err = services.Wrap(services.ErrTransport, "download", "close file",
				fmt.Sprintf("Cannot finalize %s", destPath), closeErr)
		}
		if err != nil {
			os.Remove(destPath)
		}
	}()

	if _, err = io.Copy(out, resp.Body); err != nil {
		err = services.Wrap(services.ErrTransport, "download", "copy body",
			"Audio transfer interrupted", err)
		return err
	}
	return nil
}

func (d *Downloader) get(ctx context.Context, rawURL string) (*http.Response, error) {
	current := rawURL
	for hop := 0; ; hop++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, current, nil)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "download", "build request",
				fmt.Sprintf("Invalid audio URL %q", current), err)
		}
		resp, err := d.httpClient.Do(req)
		if err != nil {
			return nil, services.Wrap(services.ErrTransport, "download", "http get",
				"Request failed", err)
		}

		if isRedirect(resp.StatusCode) {
			location := strings.TrimSpace(resp.Header.Get("Location"))
			resp.Body.Close()
			if location == "" {
				return nil, services.Wrap(services.ErrTransport, "download", "follow redirect",
					fmt.Sprintf("Redirect from %s missing Location header", current), nil)
			}
			if hop >= d.maxRedirects {
				return nil, services.Wrap(services.ErrTransport, "download", "follow redirect",
					fmt.Sprintf("Exceeded %d redirects", d.maxRedirects), nil)
			}
			next, err := resolveLocation(current, location)
			if err != nil {
				return nil, err
			}
			current = next
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			resp.Body.Close()
			return nil, services.Wrap(services.ErrTransport, "download", "http get",
				fmt.Sprintf("Unexpected status %d from %s", resp.StatusCode, current), nil)
		}
		return resp, nil
	}
}

func resolveLocation(base, location string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "download", "resolve redirect",
			fmt.Sprintf("Invalid base URL %q", base), err)
	}
	ref, err := url.Parse(location)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "download", "resolve redirect",
			fmt.Sprintf("Invalid redirect target %q", location), err)
	}
	return baseURL.ResolveReference(ref).String(), nil
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently,
		http.StatusFound,
		http.StatusSeeOther,
		http.StatusTemporaryRedirect,
		http.StatusPermanentRedirect:
		return true
	}
	return false
}

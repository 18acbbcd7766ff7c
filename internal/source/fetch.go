// Package source retrieves raw book text and fallback passages.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/typelit/typelit/internal/model"
)

// Fetcher loads raw book text from local files or over HTTP, keeping a
// cached copy of every successful download.
type Fetcher struct {
	client   *http.Client
	cacheDir string
}

// NewFetcher returns a Fetcher caching downloads under cacheDir.
func NewFetcher(cacheDir string) *Fetcher {
	return &Fetcher{
		client:   &http.Client{Timeout: 60 * time.Second},
		cacheDir: cacheDir,
	}
}

// Fetch returns the raw text for a book. Local paths are read
// directly. Remote sources are downloaded into the cache; when the
// download fails and a cached copy exists, the cached copy is used so
// an unavailable source never becomes fatal for reprocessing.
func (f *Fetcher) Fetch(ctx context.Context, cfg model.BookConfig) (string, error) {
	if cfg.Source == "" {
		return "", fmt.Errorf("book %s has no source", cfg.ID)
	}
	if !isRemote(cfg.Source) {
		data, err := os.ReadFile(cfg.Source)
		if err != nil {
			return "", fmt.Errorf("failed to read book %s: %w", cfg.ID, err)
		}
		return string(data), nil
	}

	cachePath := filepath.Join(f.cacheDir, cfg.ID+".txt")
	text, err := f.download(ctx, cfg.Source, cachePath)
	if err == nil {
		return text, nil
	}

	cached, cerr := os.ReadFile(cachePath)
	if cerr != nil {
		return "", fmt.Errorf("failed to fetch book %s: %w", cfg.ID, err)
	}
	return string(cached), nil
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// download writes the body to cachePath via a temp file and rename so
// a partial download never replaces a good cached copy.
func (f *Fetcher) download(ctx context.Context, url, cachePath string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(cachePath), "book-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(body); err != nil {
		return "", fmt.Errorf("failed to write cache: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close cache: %w", err)
	}
	if err := os.Rename(tmpPath, cachePath); err != nil {
		return "", fmt.Errorf("failed to move into cache: %w", err)
	}
	return string(body), nil
}

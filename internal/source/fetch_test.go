package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/typelit/typelit/internal/model"
)

func TestFetchLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "book.txt")
	if err := os.WriteFile(path, []byte("raw book text"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	f := NewFetcher(filepath.Join(dir, "cache"))
	got, err := f.Fetch(context.Background(), model.BookConfig{ID: "b1", Source: path})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got != "raw book text" {
		t.Fatalf("Fetch = %q", got)
	}
}

func TestFetchMissingSource(t *testing.T) {
	f := NewFetcher(t.TempDir())
	if _, err := f.Fetch(context.Background(), model.BookConfig{ID: "b1"}); err == nil {
		t.Fatal("expected error for empty source")
	}
	if _, err := f.Fetch(context.Background(), model.BookConfig{ID: "b1", Source: "/no/such/file"}); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFetchRemoteCaches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte("downloaded text")); err != nil {
			// Best-effort test response write.
			_ = err
		}
	}))
	defer server.Close()

	cacheDir := t.TempDir()
	f := NewFetcher(cacheDir)
	cfg := model.BookConfig{ID: "crusoe", Source: server.URL}

	got, err := f.Fetch(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got != "downloaded text" {
		t.Fatalf("Fetch = %q", got)
	}

	cached, err := os.ReadFile(filepath.Join(cacheDir, "crusoe.txt"))
	if err != nil {
		t.Fatalf("cache file missing: %v", err)
	}
	if string(cached) != "downloaded text" {
		t.Fatalf("cache = %q", cached)
	}
}

func TestFetchFallsBackToCache(t *testing.T) {
	cacheDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(cacheDir, "crusoe.txt"), []byte("cached copy"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f := NewFetcher(cacheDir)
	got, err := f.Fetch(context.Background(), model.BookConfig{ID: "crusoe", Source: server.URL})
	if err != nil {
		t.Fatalf("Fetch should recover from cache: %v", err)
	}
	if got != "cached copy" {
		t.Fatalf("Fetch = %q, want cached copy", got)
	}
}

func TestFetchRemoteFailureWithoutCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := NewFetcher(t.TempDir())
	if _, err := f.Fetch(context.Background(), model.BookConfig{ID: "gone", Source: server.URL}); err == nil {
		t.Fatal("expected error when download fails with no cache")
	}
}

// Package listing supplies the raw image listing as newline-delimited
// text, either from a remote flat file or a local depot directory.
package listing

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"sicat/internal/domain"
)

// Source yields one listing line per image file:
// "<filename> <bytes> <date> <time>".
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	Describe() string
}

// HTTPSource downloads the listing from a flat file URL.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build listing request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("fetch listing: unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}

func (s *HTTPSource) Describe() string {
	return s.URL
}

// DirSource scans a local image directory and synthesizes listing lines
// from each file's name, size and modification time.
type DirSource struct {
	Dir string
}

func (s *DirSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("scan image dir: %w", err)
	}
	var buf bytes.Buffer
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// File disappeared between listing and stat.
			continue
		}
		fmt.Fprintf(&buf, "%s %d %s\n", entry.Name(), info.Size(), info.ModTime().Format(domain.ListingTimeLayout))
	}
	return io.NopCloser(&buf), nil
}

func (s *DirSource) Describe() string {
	return s.Dir
}

// Resolve prefers the local depot directory when it is mounted, falling
// back to the remote listing URL.
func Resolve(imageDir, listURL string) Source {
	if info, err := os.Stat(imageDir); err == nil && info.IsDir() {
		return &DirSource{Dir: imageDir}
	}
	return &HTTPSource{URL: listURL}
}

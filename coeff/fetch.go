package coeff

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// DefaultIGRFURL is the published location of the current IGRF table.
const DefaultIGRFURL = "https://www.ngdc.noaa.gov/IAGA/vmod/coeffs/igrf13coeffs.txt"

// MetadataSuffix is appended to a destination path to form its sidecar.
const MetadataSuffix = ".status.json"

const defaultFetchTimeout = 30 * time.Second

// FetchStatus indicates whether the remote table changed.
type FetchStatus string

const (
	StatusUpdated     FetchStatus = "updated"
	StatusNotModified FetchStatus = "not_modified"
)

// FetchMetadata is the sidecar written next to a downloaded table so later
// runs can issue conditional requests.
type FetchMetadata struct {
	URL          string    `json:"url,omitempty"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	DownloadedAt time.Time `json:"downloaded_at,omitempty"`
	CheckedAt    time.Time `json:"checked_at,omitempty"`
	SizeBytes    int64     `json:"size_bytes,omitempty"`
	SHA256       string    `json:"sha256,omitempty"`
}

// FetchResult summarizes one Fetch call.
type FetchResult struct {
	Status FetchStatus
	Meta   FetchMetadata
	Bytes  int64
}

// Fetch downloads a coefficient table to dest, skipping the transfer when
// the server reports the content unchanged since the sidecar metadata was
// written. The file is replaced atomically.
func Fetch(ctx context.Context, url, dest string) (FetchResult, error) {
	var result FetchResult
	if url == "" {
		return result, errors.New("coeff: fetch URL is empty")
	}
	if dest == "" {
		return result, errors.New("coeff: fetch destination is empty")
	}
	metaPath := dest + MetadataSuffix
	prev := readMetadata(metaPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return result, fmt.Errorf("coeff: build request: %w", err)
	}
	if _, statErr := os.Stat(dest); statErr == nil && prev != nil {
		if prev.ETag != "" {
			req.Header.Set("If-None-Match", prev.ETag)
		}
		if prev.LastModified != "" {
			req.Header.Set("If-Modified-Since", prev.LastModified)
		}
	}

	client := &http.Client{Timeout: defaultFetchTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return result, fmt.Errorf("coeff: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	now := time.Now().UTC()
	switch {
	case resp.StatusCode == http.StatusNotModified:
		result.Status = StatusNotModified
		if prev != nil {
			prev.CheckedAt = now
			result.Meta = *prev
			_ = writeMetadata(metaPath, *prev)
		}
		return result, nil
	case resp.StatusCode != http.StatusOK:
		return result, fmt.Errorf("coeff: fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result, fmt.Errorf("coeff: read body: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return result, fmt.Errorf("coeff: ensure directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".coeff-*")
	if err != nil {
		return result, fmt.Errorf("coeff: temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return result, fmt.Errorf("coeff: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return result, fmt.Errorf("coeff: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return result, fmt.Errorf("coeff: replace %s: %w", dest, err)
	}

	sum := sha256.Sum256(body)
	meta := FetchMetadata{
		URL:          url,
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
		DownloadedAt: now,
		CheckedAt:    now,
		SizeBytes:    int64(len(body)),
		SHA256:       hex.EncodeToString(sum[:]),
	}
	if err := writeMetadata(metaPath, meta); err != nil {
		return result, err
	}
	result.Status = StatusUpdated
	result.Meta = meta
	result.Bytes = int64(len(body))
	return result, nil
}

func readMetadata(path string) *FetchMetadata {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var meta FetchMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil
	}
	return &meta
}

func writeMetadata(path string, meta FetchMetadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("coeff: encode metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("coeff: write metadata: %w", err)
	}
	return nil
}

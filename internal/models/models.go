// Package models downloads STT/speaker model artifacts to a local cache
// path on first use.
package models

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
)

// EnsureModel downloads url to path if path does not already exist,
// logging desc as a human-readable label for progress output.
func EnsureModel(path, url, desc string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	slog.Info("downloading model", "description", desc, "url", url, "dest", path)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", desc, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download %s: server returned %s", desc, resp.Status)
	}

	tmp := path + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", desc, err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", desc, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to finalize %s: %w", desc, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to install %s: %w", desc, err)
	}

	slog.Info("model download complete", "description", desc, "dest", path)
	return nil
}

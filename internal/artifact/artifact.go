// Package artifact persists the run record. The local JSON file is the
// authoritative copy; the GCS archive is an optional mirror for runs on
// machines that get reimaged.
package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"

	"github.com/santif/monthly-close/internal/domain"
)

// Filename returns the artifact file name for a period.
func Filename(period domain.Period) string {
	return fmt.Sprintf("monthly-close-%s.json", period)
}

// Store writes run artifacts to a local directory and, when Bucket is
// set, mirrors them to GCS.
type Store struct {
	Dir    string
	Bucket string
}

// Write serializes the artifact and returns the local path. A re-run for
// the same period overwrites the previous file. The GCS mirror shares the
// object name with the local file.
func (s *Store) Write(ctx context.Context, run *domain.RunArtifact) (string, error) {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode run artifact: %w", err)
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir %q: %w", s.Dir, err)
	}
	path := filepath.Join(s.Dir, Filename(run.Period))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write run artifact: %w", err)
	}

	if s.Bucket != "" {
		if err := s.archive(ctx, path); err != nil {
			return path, fmt.Errorf("archive run artifact: %w", err)
		}
	}
	return path, nil
}

// archive mirrors the local artifact file into the configured bucket.
// Assumes Application Default Credentials are configured.
func (s *Store) archive(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	client, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := client.Bucket(s.Bucket).Object(filepath.Base(path)).NewWriter(ctx)
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return fmt.Errorf("copy artifact to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize upload: %w", err)
	}
	return nil
}

// Load reads a previously written artifact back, mainly for inspection
// in tests and the rate subcommand's cache lookup.
func Load(path string) (*domain.RunArtifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var run domain.RunArtifact
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("decode run artifact %q: %w", path, err)
	}
	return &run, nil
}

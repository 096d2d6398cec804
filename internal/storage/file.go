package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"catanrig/internal/game"
)

// FileStore keeps the state document on disk. Each write replaces the whole
// file through a temporary file and a rename.
type FileStore struct {
	Path string
}

// Load reads and validates the state document.
func (f FileStore) Load() (*game.State, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open state: %w", err)
	}
	defer fh.Close()
	s, err := game.Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return s, nil
}

// Record writes s to the file.
func (f FileStore) Record(_ context.Context, s *game.State) error {
	var buf bytes.Buffer
	if err := game.Encode(&buf, s); err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	dir := filepath.Dir(f.Path)
	tmp, err := os.CreateTemp(dir, filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close state: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}

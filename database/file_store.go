package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// FileStore keeps each document as <dir>/<name>.json.
type FileStore struct {
	dir    string
	logger *zap.Logger
	// mu serializes writes, including the first-read default, so a default
	// never lands on top of a document another caller just saved.
	mu sync.Mutex
}

func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

func (s *FileStore) Load(ctx context.Context, name string, out any, def any) error {
	if err := validateName(name); err != nil {
		return err
	}
	raw, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return s.loadOrCreate(name, out, def)
	}
	if err != nil {
		return fmt.Errorf("read document %s: %w", name, err)
	}

	fellBack, err := decodeOrDefault(raw, out, def)
	if fellBack {
		s.logger.Warn("document is not valid JSON, using default", zap.String("document", name))
	}
	return err
}

func (s *FileStore) loadOrCreate(name string, out, def any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path(name))
	if err == nil {
		_, err = decodeOrDefault(raw, out, def)
		return err
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read document %s: %w", name, err)
	}
	if err := s.write(name, def); err != nil {
		return err
	}
	return assign(out, def)
}

// Save writes to a temp file in the same directory and renames it over the
// target, so readers never observe a half-written document.
func (s *FileStore) Save(_ context.Context, name string, v any) error {
	if err := validateName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(name, v)
}

func (s *FileStore) write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("write document %s: %w", name, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write document %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write document %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return fmt.Errorf("write document %s: %w", name, err)
	}
	return nil
}

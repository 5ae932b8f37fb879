package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ankittk/agentsquad/internal/config"
)

// RecordSuffix is the filename suffix of session record files.
const RecordSuffix = ".session"

// FileStore keeps one flat file per session name under Dir. File content is the raw token.
// Dir is created on the first Put.
type FileStore struct {
	Dir string
}

// NewFileStore returns a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

// ErrInvalidName is returned for session names that cannot be used as a file name unchanged.
var ErrInvalidName = errors.New("invalid session name")

// path maps name to its record file. Names SafeName would rewrite are rejected so that distinct
// names never share a file and List returns names exactly as stored.
func (s *FileStore) path(name string) (string, error) {
	if name == "" || config.SafeName(name) != name {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.Dir, name+RecordSuffix), nil
}

func (s *FileStore) Get(_ context.Context, name string) (string, error) {
	path, err := s.path(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return "", err
	}
	return string(data), nil
}

func (s *FileStore) Put(_ context.Context, name, token string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token), 0o600)
}

func (s *FileStore) Delete(_ context.Context, name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *FileStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}
	names := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), RecordSuffix) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), RecordSuffix))
	}
	return names, nil
}

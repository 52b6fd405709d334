package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/couchcryptid/soacha-risk-dashboard/internal/domain"
)

// FileStore keeps the document in a JSON file on local disk.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the file at path. The file is
// created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the document. A missing file yields an empty document.
func (s *FileStore) Load(_ context.Context) (domain.Document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.NewDocument(), nil
	}
	if err != nil {
		return domain.Document{}, fmt.Errorf("read %s: %w", s.path, err)
	}
	return decodeDocument(data)
}

// Save replaces the document. The new contents are written to a temporary
// file and renamed over the old one, so a failed save leaves it intact.
func (s *FileStore) Save(_ context.Context, doc domain.Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	return WriteFileAtomic(s.path, data)
}

// WriteFileAtomic writes data to path through a temporary file in the same
// directory.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // already renamed on success

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

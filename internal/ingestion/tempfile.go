package ingestion

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// TempStore writes uploads to uniquely named files under a single directory.
type TempStore struct {
	dir string
}

// NewTempStore creates the upload directory if needed.
func NewTempStore(dir string) (*TempStore, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "resume-parser-uploads")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &StorageError{Op: "mkdir", Path: dir, Cause: err}
	}
	return &TempStore{dir: dir}, nil
}

// Dir returns the directory uploads are written to.
func (s *TempStore) Dir() string {
	return s.dir
}

// TempFile is a stored upload. Callers must Remove it when done.
type TempFile struct {
	Path string
	Size int64

	once      sync.Once
	removeErr error
}

// Save copies r into a new file named <uuid><ext>. On failure nothing is left on disk.
func (s *TempStore) Save(r io.Reader, ext string) (*TempFile, error) {
	path := filepath.Join(s.dir, uuid.New().String()+ext)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, &StorageError{Op: "create", Path: path, Cause: err}
	}

	n, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(path)
		return nil, &StorageError{Op: "write", Path: path, Cause: err}
	}

	return &TempFile{Path: path, Size: n}, nil
}

// Remove deletes the file. It is safe to call more than once and a file that
// is already gone is not an error.
func (t *TempFile) Remove() error {
	t.once.Do(func() {
		if err := os.Remove(t.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			t.removeErr = &StorageError{Op: "remove", Path: t.Path, Cause: err}
		}
	})
	return t.removeErr
}

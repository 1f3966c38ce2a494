package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	domain "github.com/donaldgifford/deal-notifier/pkg/types"
)

const stateFileMode = 0o644

// FileStore keeps the state in a JSON document on local disk.
type FileStore struct {
	path string
}

// NewFileStore creates a store for the document at path. The file is not
// touched until the first Load or Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the document location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the document. A missing file is a first run. A file that does
// not parse is an error, since treating it as empty would report every
// deal again.
func (s *FileStore) Load(_ context.Context) (*domain.NotificationState, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.NewNotificationState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading state file %s: %w", s.path, err)
	}

	st := domain.NewNotificationState()
	if err := json.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("parsing state file %s: %w", s.path, err)
	}
	return st, nil
}

// Save writes the document to a temporary file in the same directory,
// syncs it, and renames it over the previous one.
func (s *FileStore) Save(_ context.Context, st *domain.NotificationState) error {
	if st == nil {
		return errors.New("saving nil state")
	}

	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating state directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if err := writeAndSync(tmp, data); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	if err := os.Chmod(tmpName, stateFileMode); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("setting state file mode: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing state file %s: %w", s.path, err)
	}

	// Without this a power loss can undo the rename and bring back the old
	// sent set. Some filesystems reject directory fsync; the file itself is
	// already in place then, so the error is not reported.
	_ = syncDir(dir)
	return nil
}

// syncDir flushes dir's entries to disk.
func syncDir(dir string) error {
	d, err := os.Open(dir) //nolint:gosec // directory of the configured state path
	if err != nil {
		return fmt.Errorf("opening state directory: %w", err)
	}
	if err := d.Sync(); err != nil {
		_ = d.Close()
		return fmt.Errorf("syncing state directory: %w", err)
	}
	return d.Close()
}

func writeAndSync(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing temp state file: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("syncing temp state file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing temp state file: %w", err)
	}
	return nil
}

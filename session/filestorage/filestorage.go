// Package filestorage persists the session snapshot to a JSON file, the
// desktop/CLI equivalent of the browser client's local storage. The snapshot
// lives under a fixed root key so the file format can grow other persisted
// slices without breaking old files.
package filestorage

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/vraj-wappnet/go-hms-client/session"
)

// rootKey is the fixed top-level key the session snapshot is stored under.
const rootKey = "auth"

// tokenFileMode keeps the persisted tokens readable by the owner only.
const tokenFileMode = 0o600

var _ session.Storage = (*FileStorage)(nil)

type FileStorage struct {
	path string
}

// New creates file-backed storage at the given path. The file is created on
// the first Save; a missing file loads as an empty session.
func New(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Load reads the persisted snapshot. Missing or corrupt data is equivalent
// to an empty session - never an error the caller has to handle.
func (fs *FileStorage) Load() (session.Session, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return session.Session{}, nil
		}
		return session.Session{}, errors.Wrap(err, "[FileStorage.Load] read file")
	}

	var doc map[string]session.Session
	if err := json.Unmarshal(data, &doc); err != nil {
		// Corrupt snapshot: start logged out rather than failing startup.
		return session.Session{}, nil
	}
	return doc[rootKey], nil
}

// Save writes the snapshot atomically (write to temp file, then rename) so a
// crash mid-write never leaves a corrupt file behind.
func (fs *FileStorage) Save(snap session.Session) error {
	doc := map[string]session.Session{rootKey: snap}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[FileStorage.Save] marshal snapshot")
	}

	dir := filepath.Dir(fs.path)
	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return errors.Wrap(err, "[FileStorage.Save] create temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "[FileStorage.Save] write temp file")
	}
	if err := tmp.Chmod(tokenFileMode); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "[FileStorage.Save] chmod temp file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "[FileStorage.Save] close temp file")
	}

	if err := os.Rename(tmpName, fs.path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "[FileStorage.Save] rename into place")
	}
	return nil
}

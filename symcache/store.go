package symcache

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/wippyai/stabletrace/errors"
)

// Ext is the file extension of stored symcaches.
const Ext = ".symcache"

// Store keeps serialized symcaches in a directory, one file per key.
type Store struct {
	dir string
}

// NewStore opens a store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.PhaseStore, errors.KindIO, err, "create "+dir)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file a key is stored in.
func (s *Store) Path(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", errors.InvalidInput(errors.PhaseStore, "invalid symcache key "+key)
	}
	return filepath.Join(s.dir, key+Ext), nil
}

// Load returns the serialized symcache stored under key. A missing entry
// is a not_found error.
func (s *Store) Load(key string) ([]byte, error) {
	p, err := s.Path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, errors.NotFound(errors.PhaseStore, "symcache", key)
	}
	if err != nil {
		return nil, errors.Wrap(errors.PhaseStore, errors.KindIO, err, "read "+p)
	}
	return data, nil
}

// Save stores a serialized symcache under key. The file is replaced
// atomically so concurrent readers never see a partial write.
func (s *Store) Save(key string, data []byte) error {
	p, err := s.Path(key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return errors.Wrap(errors.PhaseStore, errors.KindIO, err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(errors.PhaseStore, errors.KindIO, err, "write "+tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.PhaseStore, errors.KindIO, err, "close "+tmp.Name())
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return errors.Wrap(errors.PhaseStore, errors.KindIO, err, "rename to "+p)
	}
	return nil
}

// Keys lists the stored keys.
func (s *Store) Keys() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseStore, errors.KindIO, err, "list "+s.dir)
	}
	var keys []string
	for _, e := range entries {
		if e.Type()&fs.ModeType != 0 {
			continue
		}
		if name, ok := strings.CutSuffix(e.Name(), Ext); ok {
			keys = append(keys, name)
		}
	}
	return keys, nil
}

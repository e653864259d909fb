package symbolicate

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/stabletrace/errors"
	"github.com/wippyai/stabletrace/stacktrace"
	"github.com/wippyai/stabletrace/symcache"
)

// DebugInfoExt is the extension of debug information files in a registry's
// debug directory.
const DebugInfoExt = ".debuginfo"

// ErrUnknownBuild matches Registry errors for builds with neither a stored
// symcache nor a debug information file.
var ErrUnknownBuild = &errors.Error{Phase: errors.PhaseLookup, Kind: errors.KindNotFound, Offset: -1}

// Registry caches one Symbolicator per build key.
//
// On a miss it loads the symcache stored under the header's file key, or
// builds one from <debugDir>/<file key>.debuginfo and stores it. Failed
// loads are not cached, so a debug file added later is picked up.
type Registry struct {
	store    *symcache.Store
	debugDir string

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	once sync.Once
	s    *Symbolicator
	err  error
}

// NewRegistry creates a registry. store may be nil, in which case built
// symcaches are only kept in memory. debugDir may be empty, in which case
// only stored symcaches are used.
func NewRegistry(store *symcache.Store, debugDir string) *Registry {
	return &Registry{
		store:    store,
		debugDir: debugDir,
		entries:  make(map[string]*entry),
	}
}

// Add registers a symbolicator for a build, replacing any cached one.
func (r *Registry) Add(h stacktrace.Header, s *Symbolicator) {
	e := &entry{s: s}
	e.once.Do(func() {})
	r.mu.Lock()
	r.entries[h.BuildKey()] = e
	r.mu.Unlock()
}

// Len returns the number of cached builds.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Get returns the symbolicator for the build that produced h. Concurrent
// calls for the same build share one load.
func (r *Registry) Get(h stacktrace.Header) (*Symbolicator, error) {
	key := h.BuildKey()

	r.mu.Lock()
	e, ok := r.entries[key]
	if !ok {
		e = &entry{}
		r.entries[key] = e
	}
	r.mu.Unlock()

	e.once.Do(func() {
		e.s, e.err = r.load(h)
	})
	if e.err != nil {
		r.mu.Lock()
		if r.entries[key] == e {
			delete(r.entries, key)
		}
		r.mu.Unlock()
		return nil, e.err
	}
	return e.s, nil
}

func (r *Registry) load(h stacktrace.Header) (*Symbolicator, error) {
	key := h.BuildKey()
	fileKey := h.FileKey()

	if r.store != nil {
		data, err := r.store.Load(fileKey)
		switch {
		case err == nil:
			Logger().Debug("loaded symcache", zap.String("build", key), zap.Int("bytes", len(data)))
			return Open(data)
		case !errors.IsKind(err, errors.KindNotFound):
			return nil, err
		}
	}

	if r.debugDir == "" {
		return nil, errors.NotFound(errors.PhaseLookup, "symcache", key)
	}
	debugFile := filepath.Join(r.debugDir, fileKey+DebugInfoExt)
	if _, err := os.Stat(debugFile); err != nil {
		return nil, errors.NotFound(errors.PhaseLookup, "debug info", key)
	}

	Logger().Info("building symcache", zap.String("build", key), zap.String("debug_file", debugFile))
	data, err := symcache.BuildFile(debugFile)
	if err != nil {
		return nil, err
	}
	if r.store != nil {
		if err := r.store.Save(fileKey, data); err != nil {
			Logger().Warn("store symcache", zap.String("build", key), zap.Error(err))
		}
	}
	return Open(data)
}

package cards

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Snapshot is one complete, immutable catalog load.
type Snapshot struct {
	Index    *Index
	Version  time.Time // Modification time of the source file
	LoadedAt time.Time

	// Err is the last load failure. When set alongside an available Index,
	// the snapshot is the previous good catalog served stale.
	Err error

	size int64
}

// Stale reports whether the snapshot is an older catalog kept after a failed reload.
func (s *Snapshot) Stale() bool {
	return s != nil && s.Err != nil && s.Index.Available()
}

func (s *Snapshot) matches(info os.FileInfo) bool {
	return s.Version.Equal(info.ModTime()) && s.size == info.Size()
}

// Provider hands out the current catalog snapshot.
type Provider interface {
	Current() *Snapshot
}

// Static is a Provider over a fixed catalog.
type Static struct {
	snap *Snapshot
}

// NewStatic builds an index over catalog and serves it forever.
func NewStatic(catalog []*Card, opts ...IndexOption) *Static {
	now := time.Now()
	return &Static{snap: &Snapshot{
		Index:    BuildIndex(catalog, opts...),
		Version:  now,
		LoadedAt: now,
	}}
}

// NewUnavailableStatic serves an unavailable catalog, for running without a catalog file.
func NewUnavailableStatic(err error) *Static {
	idx := UnavailableIndex(err)
	return &Static{snap: &Snapshot{Index: idx, LoadedAt: time.Now(), Err: idx.Err()}}
}

// Current returns the fixed snapshot.
func (s *Static) Current() *Snapshot {
	return s.snap
}

// Loader serves the catalog stored in a JSON file and rebuilds it wholesale when the file's
// modification time or size changes. Readers always get a complete snapshot.
type Loader struct {
	path   string
	opts   []IndexOption
	logger *slog.Logger

	current atomic.Pointer[Snapshot]
	mu      sync.Mutex // serializes reloads
}

// NewLoader creates a loader for the catalog file at path. Nothing is read until Current.
func NewLoader(path string, logger *slog.Logger, opts ...IndexOption) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		path:   filepath.Clean(path),
		opts:   opts,
		logger: logger.With("component", "catalog"),
	}
}

// Path returns the catalog file path.
func (l *Loader) Path() string {
	return l.path
}

// Current returns the catalog snapshot, reloading first if the file changed.
// It never returns nil: without any loadable catalog the snapshot holds an unavailable index.
func (l *Loader) Current() *Snapshot {
	info, err := os.Stat(l.path)
	if err != nil {
		return l.keepOrFail(fmt.Errorf("stat catalog: %w", err))
	}

	if snap := l.current.Load(); snap != nil && snap.matches(info) {
		return snap
	}

	return l.Reload()
}

// Reload reads the catalog file and swaps in a new snapshot if it changed since the last load.
func (l *Loader) Reload() *Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	info, err := os.Stat(l.path)
	if err != nil {
		return l.keepOrFailLocked(fmt.Errorf("stat catalog: %w", err), time.Time{}, 0)
	}

	// Another caller may have reloaded while we waited for the lock.
	if snap := l.current.Load(); snap != nil && snap.matches(info) {
		return snap
	}

	start := time.Now()
	catalog, err := l.read()
	if err != nil {
		return l.keepOrFailLocked(err, info.ModTime(), info.Size())
	}

	snap := &Snapshot{
		Index:    BuildIndex(catalog, l.opts...),
		Version:  info.ModTime(),
		LoadedAt: time.Now(),
		size:     info.Size(),
	}
	l.current.Store(snap)

	l.logger.Info("catalog loaded",
		"path", l.path,
		"cards", snap.Index.Len(),
		"aliases", snap.Index.Keys(),
		"duration", time.Since(start))

	return snap
}

func (l *Loader) read() ([]*Card, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = f.Close() }()

	return DecodeCatalog(f)
}

func (l *Loader) keepOrFail(err error) *Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.keepOrFailLocked(err, time.Time{}, 0)
}

// keepOrFailLocked keeps serving the last good catalog when there is one, marking it stale.
// The failed version is recorded so an unchanged broken file is not parsed again.
func (l *Loader) keepOrFailLocked(err error, version time.Time, size int64) *Snapshot {
	prev := l.current.Load()
	if prev != nil && prev.Err != nil && prev.Version.Equal(version) && prev.size == size {
		return prev
	}

	l.logger.Warn("catalog load failed", "path", l.path, "error", err)

	snap := &Snapshot{
		Index:    UnavailableIndex(fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)),
		Version:  version,
		LoadedAt: time.Now(),
		Err:      err,
		size:     size,
	}
	if prev != nil && prev.Index.Available() {
		snap.Index = prev.Index
	}
	l.current.Store(snap)

	return snap
}

// Watch reloads the catalog as soon as its file is written or replaced.
// It blocks until ctx is cancelled. Current keeps working without Watch; watching only
// moves the reload off the request path.
func (l *Loader) Watch(ctx context.Context) (err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	// Watch the directory: editors and sync tools replace files rather than write in place.
	if err := watcher.Add(filepath.Dir(l.path)); err != nil {
		return fmt.Errorf("failed to watch catalog directory: %w", err)
	}

	l.Reload()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != l.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				l.Reload()
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.logger.Warn("catalog watcher error", "error", werr)
		}
	}
}

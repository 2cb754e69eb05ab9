package meta

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// CorpusSnapshot is one complete load of the meta corpus.
type CorpusSnapshot struct {
	Decks    []*HistoricalDeck
	Version  time.Time
	LoadedAt time.Time
	Source   string
}

// Len returns the number of decks.
func (s *CorpusSnapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Decks)
}

// EmptyCorpus returns a snapshot without decks.
func EmptyCorpus(source string) *CorpusSnapshot {
	now := time.Now()
	return &CorpusSnapshot{Decks: []*HistoricalDeck{}, LoadedAt: now, Source: source}
}

// CorpusSource provides the historical decks compared against.
type CorpusSource interface {
	Corpus(ctx context.Context) (*CorpusSnapshot, error)
}

// StaticCorpus serves a fixed list of decks.
type StaticCorpus struct {
	snap *CorpusSnapshot
}

// NewStaticCorpus wraps decks as a CorpusSource.
func NewStaticCorpus(decks []*HistoricalDeck) *StaticCorpus {
	snap := EmptyCorpus("static")
	snap.Version = snap.LoadedAt
	if decks != nil {
		snap.Decks = decks
	}
	return &StaticCorpus{snap: snap}
}

// Corpus returns the fixed snapshot.
func (s *StaticCorpus) Corpus(ctx context.Context) (*CorpusSnapshot, error) {
	return s.snap, nil
}

// FileCorpus reads a JSON or YAML corpus file and reloads it wholesale when its
// modification time or size changes.
type FileCorpus struct {
	path   string
	format CorpusFormat
	logger *slog.Logger

	mu   sync.Mutex
	snap *CorpusSnapshot
	size int64
}

// NewFileCorpus creates a file-backed corpus. The encoding follows the file extension.
func NewFileCorpus(path string, logger *slog.Logger) *FileCorpus {
	if logger == nil {
		logger = slog.Default()
	}
	path = filepath.Clean(path)
	return &FileCorpus{
		path:   path,
		format: FormatFromPath(path),
		logger: logger.With("component", "corpus"),
	}
}

// Path returns the corpus file path.
func (c *FileCorpus) Path() string {
	return c.path
}

// Corpus returns the current snapshot, reloading it if the file changed. When a reload
// fails after a successful one, the previous snapshot keeps being served.
func (c *FileCorpus) Corpus(ctx context.Context) (*CorpusSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	info, err := os.Stat(c.path)
	if err != nil {
		return c.keepOrFail(fmt.Errorf("failed to stat corpus: %w", err))
	}

	if c.snap != nil && c.snap.Version.Equal(info.ModTime()) && c.size == info.Size() {
		return c.snap, nil
	}

	start := time.Now()
	decks, err := c.read()
	if err != nil {
		return c.keepOrFail(err)
	}

	c.snap = &CorpusSnapshot{
		Decks:    decks,
		Version:  info.ModTime(),
		LoadedAt: time.Now(),
		Source:   c.path,
	}
	c.size = info.Size()

	c.logger.Info("corpus loaded",
		"path", c.path,
		"decks", len(decks),
		"duration", time.Since(start))

	return c.snap, nil
}

func (c *FileCorpus) read() ([]*HistoricalDeck, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus: %w", err)
	}
	defer func() { _ = f.Close() }()

	return DecodeCorpus(f, c.format)
}

func (c *FileCorpus) keepOrFail(err error) (*CorpusSnapshot, error) {
	if c.snap != nil {
		c.logger.Warn("corpus reload failed, serving previous snapshot", "path", c.path, "error", err)
		return c.snap, nil
	}
	return nil, err
}

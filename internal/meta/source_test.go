package meta

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCorpus(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestFileCorpus_LoadsAndCaches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.json")
	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	writeCorpus(t, path, `[{"id": "a", "cards": ["4 Tipo"]}]`, base)

	src := NewFileCorpus(path, nil)
	ctx := context.Background()

	first, err := src.Corpus(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, first.Len())
	assert.Equal(t, path, first.Source)

	again, err := src.Corpus(ctx)
	require.NoError(t, err)
	assert.Same(t, first, again)

	writeCorpus(t, path, `[{"id": "a"}, {"id": "b"}]`, base.Add(time.Minute))
	reloaded, err := src.Corpus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Len())
}

func TestFileCorpus_KeepsLastGoodOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.yaml")
	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	writeCorpus(t, path, "- id: a\n", base)

	src := NewFileCorpus(path, nil)
	good, err := src.Corpus(context.Background())
	require.NoError(t, err)

	writeCorpus(t, path, "- id: [unterminated\n", base.Add(time.Minute))
	snap, err := src.Corpus(context.Background())
	require.NoError(t, err)
	assert.Same(t, good, snap)
}

func TestFileCorpus_MissingFile(t *testing.T) {
	src := NewFileCorpus(filepath.Join(t.TempDir(), "missing.json"), nil)

	snap, err := src.Corpus(context.Background())
	assert.Error(t, err)
	assert.Nil(t, snap)
}

func TestFileCorpus_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFileCorpus("whatever.json", nil).Corpus(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStaticCorpus(t *testing.T) {
	snap, err := NewStaticCorpus(nil).Corpus(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, snap.Decks)
	assert.Zero(t, snap.Len())

	var nilSnap *CorpusSnapshot
	assert.Zero(t, nilSnap.Len())
}

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guibruno93/lorcana-companion/internal/lorcana/deckimport"
	"github.com/guibruno93/lorcana-companion/internal/meta"
)

const testCatalog = `[
  {"id": "2-7", "name": "Tipo", "version": "Growing Son", "cost": 2, "inkable": true, "set": "2"},
  {"id": "1-3", "name": "Hades", "version": "Infernal Schemer", "cost": 7, "set": "1"},
  {"id": "1-1", "name": "Tinker Bell", "version": "Giant Fairy", "cost": 6, "set": "1"}
]`

const testCorpus = `[
  {"id": "d1", "format": "core", "archetype": "Amber Steel", "placement": "1st",
   "cards": [{"name": "Tipo - Growing Son", "quantity": 4}, {"name": "Hades - Infernal Schemer", "quantity": 4}]},
  {"id": "d2", "format": "core", "archetype": "Ruby Sapphire", "placement": "Top 16",
   "cards": [{"name": "Tinker Bell - Giant Fairy", "quantity": 4}]}
]`

const testDeck = "4 Tipo - Growing Son\n4 Hades - Infernal Schemer\n"

type fixture struct {
	dir        string
	configPath string
	corpusPath string
	deckPath   string
}

func newFixture(t *testing.T, source string) fixture {
	t.Helper()
	dir := t.TempDir()

	f := fixture{
		dir:        dir,
		configPath: filepath.Join(dir, "config.toml"),
		corpusPath: filepath.Join(dir, "corpus.json"),
		deckPath:   filepath.Join(dir, "deck.txt"),
	}
	catalogPath := filepath.Join(dir, "cards.json")

	require.NoError(t, os.WriteFile(catalogPath, []byte(testCatalog), 0o644))
	require.NoError(t, os.WriteFile(f.corpusPath, []byte(testCorpus), 0o644))
	require.NoError(t, os.WriteFile(f.deckPath, []byte(testDeck), 0o644))

	cfg := fmt.Sprintf(`
[catalog]
path = %q
watch = false

[corpus]
source = %q
path = %q

[database]
path = %q

[log]
level = "error"
`, catalogPath, source, f.corpusPath, filepath.Join(dir, "corpus.db"))
	require.NoError(t, os.WriteFile(f.configPath, []byte(cfg), 0o644))

	return f
}

func run(t *testing.T, f fixture, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := Run(context.Background(), append([]string{"--config", f.configPath}, args...), strings.NewReader(stdin), &out)
	return out.String(), err
}

func TestResolveCommand(t *testing.T) {
	f := newFixture(t, "file")

	out, err := run(t, f, "", "resolve", f.deckPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Recognized (2 lines)")
	assert.Contains(t, out, "Ink curve:")
}

func TestResolveCommandJSONFromStdin(t *testing.T) {
	f := newFixture(t, "file")

	out, err := run(t, f, "4 Tipo - Growing Son\n2 tinkerbell giant fary\n", "resolve", "-", "--json")
	require.NoError(t, err)

	var deck deckimport.ResolvedDeck
	require.NoError(t, json.Unmarshal([]byte(out), &deck))
	assert.Equal(t, 1, deck.RecognizedLines)
	assert.Equal(t, 1, deck.UnrecognizedLines)
	assert.Equal(t, 4, deck.RecognizedQuantity)
}

func TestResolveCommandEmptyInput(t *testing.T) {
	f := newFixture(t, "file")

	_, err := run(t, f, "   \n", "resolve", "-")
	assert.ErrorContains(t, err, "decklist is empty")
}

func TestSuggestCommand(t *testing.T) {
	f := newFixture(t, "file")

	out, err := run(t, f, "", "suggest", "tinker", "bell", "giant", "fairy")
	require.NoError(t, err)
	assert.Contains(t, out, "Tinker Bell - Giant Fairy")
}

func TestCompareCommand(t *testing.T) {
	f := newFixture(t, "file")
	chartPath := filepath.Join(f.dir, "report.html")
	csvPath := filepath.Join(f.dir, "matches.csv")

	out, err := run(t, f, "", "compare", f.deckPath, "--format", "core", "--json",
		"--chart", chartPath, "--export", csvPath)
	require.NoError(t, err)

	var report meta.CompareReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Matches, 2)
	assert.Equal(t, "d1", report.Matches[0].DeckID)
	assert.Equal(t, 100.0, report.Matches[0].Score)
	assert.Equal(t, 0.0, report.Matches[1].Score)
	assert.True(t, report.CorpusAvailable)

	assert.FileExists(t, chartPath)
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "d1,100.0")
}

func TestCompareCommandFlags(t *testing.T) {
	f := newFixture(t, "file")

	out, err := run(t, f, "", "compare", f.deckPath, "--format", "core", "--top", "1", "--max-finish", "8")
	require.NoError(t, err)
	assert.Contains(t, out, "Corpus: 2 decks, 1 after filters")
	assert.Contains(t, out, "Amber Steel")
	assert.NotContains(t, out, "Ruby Sapphire")
}

func TestCompareCommandMissingCorpus(t *testing.T) {
	f := newFixture(t, "file")
	require.NoError(t, os.Remove(f.corpusPath))

	out, err := run(t, f, "", "compare", f.deckPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Meta corpus unavailable")
}

func TestCorpusImportAndStats(t *testing.T) {
	f := newFixture(t, "sqlite")

	out, err := run(t, f, "", "corpus", "import", f.corpusPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 decks")

	out, err = run(t, f, "", "corpus", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Decks: 2")
	assert.Contains(t, out, "Cards: 12")
	assert.Contains(t, out, "Amber Steel")

	out, err = run(t, f, "", "compare", f.deckPath, "--format", "core", "--json")
	require.NoError(t, err)

	var report meta.CompareReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.NotEmpty(t, report.Matches)
	assert.Equal(t, "d1", report.Matches[0].DeckID)

	_, err = run(t, f, "", "corpus", "import", f.corpusPath, "--replace")
	require.NoError(t, err)
	out, err = run(t, f, "", "corpus", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Decks: 2")
}

func TestConfigCommands(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	f := fixture{configPath: path}

	out, err := run(t, f, "", "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)
	assert.FileExists(t, path)

	_, err = run(t, f, "", "config", "init")
	assert.ErrorContains(t, err, "already exists")

	_, err = run(t, f, "", "config", "init", "--force")
	require.NoError(t, err)

	out, err = run(t, f, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "[similarity]")
	assert.Contains(t, out, "top_k = 10")
}

func TestInvalidConfig(t *testing.T) {
	f := newFixture(t, "carrier-pigeon")

	_, err := run(t, f, "", "resolve", f.deckPath)
	assert.ErrorContains(t, err, "unknown corpus source")
}

package charts

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guibruno93/lorcana-companion/internal/lorcana/deckimport"
	"github.com/guibruno93/lorcana-companion/internal/meta"
)

func sampleReport() *meta.CompareReport {
	return &meta.CompareReport{
		Deck: &deckimport.ResolvedDeck{InkCurve: map[int]int{7: 4, 2: 8, 4: 6}},
		Matches: []meta.ReportMatch{
			{DeckID: "a", Score: 91.5, Archetype: "Amber Steel", Placement: "1st"},
			{DeckID: "b", Score: 70, Archetype: ""},
			{DeckID: "c", Score: 40.2, Archetype: "Ruby Sapphire", Placement: "Top 8"},
		},
		Aggregate: meta.Aggregate{
			Count:       5,
			ByArchetype: map[string]int{"Amber Steel": 2, "Ruby Sapphire": 2, "Unknown": 1},
		},
	}
}

func TestMatchScores(t *testing.T) {
	points := MatchScores(sampleReport(), 2)
	require.Len(t, points, 2)
	assert.Equal(t, "1. Amber Steel (1st)", points[0].Label)
	assert.Equal(t, 91.5, points[0].Value)
	assert.Equal(t, "2. Unknown", points[1].Label)

	assert.Len(t, MatchScores(sampleReport(), 0), 3)
}

func TestArchetypeShare(t *testing.T) {
	points := ArchetypeShare(sampleReport())
	require.Len(t, points, 3)
	assert.Equal(t, "Amber Steel", points[0].Label)
	assert.Equal(t, "Ruby Sapphire", points[1].Label)
	assert.Equal(t, "Unknown", points[2].Label)
	assert.Equal(t, 1.0, points[2].Value)
}

func TestInkCurve(t *testing.T) {
	points := InkCurve(sampleReport())
	require.Len(t, points, 3)
	assert.Equal(t, []string{"2", "4", "7"}, []string{points[0].Label, points[1].Label, points[2].Label})
	assert.Equal(t, 8.0, points[0].Value)

	assert.Empty(t, InkCurve(&meta.CompareReport{}))
}

func TestRenderReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderReport(sampleReport(), DefaultChartConfig(), &buf))

	html := buf.String()
	assert.Contains(t, html, "Closest decks")
	assert.Contains(t, html, "Archetypes in the filtered corpus")
	assert.Contains(t, html, "Ink curve")
	assert.Contains(t, html, "Amber Steel")
}

func TestRenderReportWithoutInks(t *testing.T) {
	config := DefaultChartConfig()
	config.ShowInks = false
	config.Colors = nil

	var buf bytes.Buffer
	require.NoError(t, RenderReport(sampleReport(), config, &buf))
	assert.NotContains(t, buf.String(), "Ink curve")
}

func TestRenderReportNil(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, RenderReport(nil, DefaultChartConfig(), &buf))
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.html")
	require.NoError(t, WriteReport(sampleReport(), DefaultChartConfig(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Closest decks")
}

package archetype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guibruno93/lorcana-companion/internal/lorcana/cards"
	"github.com/guibruno93/lorcana-companion/internal/lorcana/cards/fuzzy"
	"github.com/guibruno93/lorcana-companion/internal/lorcana/deckimport"
)

func intPtr(n int) *int { return &n }

func testIndex() *cards.Index {
	return cards.BuildIndex([]*cards.Card{
		{ID: "a1", Name: "Cheap Amber", Cost: intPtr(1), Color: "Amber", Type: "Character", Inkable: true},
		{ID: "a2", Name: "Mid Amber", Cost: intPtr(2), Color: "Amber", Type: "Character"},
		{ID: "s1", Name: "Cheap Steel", Cost: intPtr(2), Color: "Steel", Type: "Character", Inkable: true},
		{ID: "s2", Name: "Steel Song", Cost: intPtr(3), Color: "Steel", Type: "Action Song"},
		{ID: "r1", Name: "Big Ruby", Cost: intPtr(7), Color: "Ruby", Type: "Action"},
		{ID: "r2", Name: "Ruby Bomb", Cost: intPtr(6), Color: "Ruby", Type: "Character"},
		{ID: "x1", Name: "Dual Card", Cost: intPtr(3), Color: "Amber/Steel", Type: "Item"},
	})
}

func resolve(t *testing.T, text string) *deckimport.ResolvedDeck {
	t.Helper()
	return deckimport.NewResolver(testIndex(), fuzzy.DefaultOptions(), nil).Resolve(text)
}

func TestClassifyTwoInkAggro(t *testing.T) {
	deck := resolve(t, "12 Cheap Amber\n12 Mid Amber\n12 Cheap Steel\n4 Steel Song")

	profile := Classify(deck)
	assert.Equal(t, "Amber Steel", profile.Label)
	assert.Equal(t, []string{"Amber", "Steel"}, profile.Inks)
	assert.Equal(t, "Aggro", profile.Style)
	assert.InDelta(t, 0.8, profile.Confidence, 1e-9)

	a := profile.Analysis
	assert.Equal(t, 40, a.TotalCards)
	assert.Equal(t, 36, a.CharacterCount)
	assert.Equal(t, 4, a.ActionCount)
	assert.Equal(t, 24, a.InkableCount)
	assert.InDelta(t, 1.8, a.AverageCost, 1e-9)
}

func TestClassifyMonoControl(t *testing.T) {
	profile := Classify(resolve(t, "20 Big Ruby\n20 Ruby Bomb"))
	assert.Equal(t, "Mono Ruby", profile.Label)
	assert.Equal(t, "Control", profile.Style)
}

func TestClassifyDualInkCard(t *testing.T) {
	profile := Classify(resolve(t, "4 Dual Card"))
	assert.Equal(t, []string{"Amber", "Steel"}, profile.Inks)
	assert.Equal(t, 4, profile.Analysis.InkCounts["Amber"])
	assert.Equal(t, 4, profile.Analysis.InkCounts["Steel"])
}

func TestClassifyMinorInkIgnored(t *testing.T) {
	profile := Classify(resolve(t, "20 Cheap Amber\n18 Cheap Steel\n2 Big Ruby"))
	assert.Equal(t, "Amber Steel", profile.Label)
	assert.NotContains(t, profile.Inks, "Ruby")
}

func TestClassifyMultiInk(t *testing.T) {
	profile := Classify(resolve(t, "10 Cheap Amber\n10 Cheap Steel\n10 Ruby Bomb"))
	assert.Equal(t, "Multi-ink", profile.Label)
}

func TestClassifyPartialDeckLowersConfidence(t *testing.T) {
	full := Classify(resolve(t, "20 Cheap Amber\n20 Cheap Steel"))
	partial := Classify(resolve(t, "20 Cheap Amber\n20 Cheap Steel\n40 Nothing Known"))

	require.Equal(t, full.Label, partial.Label)
	assert.InDelta(t, full.Confidence/2, partial.Confidence, 1e-9)
}

func TestClassifyUnknown(t *testing.T) {
	profile := Classify(resolve(t, "4 Nothing Known"))
	assert.Equal(t, Unknown, profile.Label)
	assert.Zero(t, profile.Confidence)
	assert.Empty(t, profile.Inks)

	assert.Equal(t, Unknown, Classify(nil).Label)
}

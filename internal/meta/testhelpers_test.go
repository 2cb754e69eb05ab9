package meta

import (
	"fmt"

	"github.com/guibruno93/lorcana-companion/internal/lorcana/cards"
)

func intPtr(n int) *int { return &n }

func testIndex() *cards.Index {
	return cards.BuildIndex([]*cards.Card{
		{ID: "2-7", Name: "Tipo", Version: "Growing Son", Cost: intPtr(2), SetID: "2"},
		{ID: "1-3", Name: "Hades", Version: "Infernal Schemer", Cost: intPtr(7), SetID: "1"},
		{ID: "1-1", Name: "Tinker Bell", Version: "Giant Fairy", Cost: intPtr(6), SetID: "1"},
	})
}

// fillerDeck returns n distinct four-ofs named "<prefix> N".
func fillerDeck(prefix string, n int) []DeckCard {
	out := make([]DeckCard, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, DeckCard{Name: fmt.Sprintf("%s %d", prefix, i), Quantity: 4})
	}
	return out
}

func withCards(base []DeckCard, extra ...DeckCard) []DeckCard {
	out := make([]DeckCard, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}

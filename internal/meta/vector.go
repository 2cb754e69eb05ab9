package meta

import (
	"github.com/guibruno93/lorcana-companion/internal/lorcana/cards"
	"github.com/guibruno93/lorcana-companion/internal/lorcana/deckimport"
	"github.com/guibruno93/lorcana-companion/internal/lorcana/normalize"
)

// CardEntry is one (card, quantity) pair fed to the vectorizer.
// CardID wins over Name when set.
type CardEntry struct {
	CardID   string
	Name     string
	Quantity int
}

// DeckVector maps a card key to its total quantity. Total always equals the sum of Counts.
type DeckVector struct {
	Counts map[string]int `json:"counts"`
	Total  int            `json:"total"`
}

// Len returns the number of distinct cards.
func (v DeckVector) Len() int {
	return len(v.Counts)
}

// Vectorize sums entries per card key. The key is the catalog ID when the entry carries one
// or its name is an exact catalog hit, else the normalized name. Entries with a
// non-positive quantity or no usable key are dropped. index may be nil.
func Vectorize(entries []CardEntry, index *cards.Index) DeckVector {
	v := DeckVector{Counts: make(map[string]int, len(entries))}

	for _, e := range entries {
		if e.Quantity <= 0 {
			continue
		}
		key := vectorKey(e, index)
		if key == "" {
			continue
		}
		v.Counts[key] += e.Quantity
		v.Total += e.Quantity
	}

	return v
}

func vectorKey(e CardEntry, index *cards.Index) string {
	if e.CardID != "" {
		return e.CardID
	}
	key := normalize.Key(e.Name)
	if key == "" {
		return ""
	}
	if card, ok := index.Lookup(key); ok && card.ID != "" {
		return card.ID
	}
	return key
}

// EntriesFromResolved converts a resolved user deck. Recognized lines carry their catalog
// ID; unrecognized ones fall back to their raw name.
func EntriesFromResolved(deck *deckimport.ResolvedDeck) []CardEntry {
	if deck == nil {
		return nil
	}
	entries := make([]CardEntry, 0, len(deck.Cards))
	for _, c := range deck.Cards {
		e := CardEntry{Name: c.RawName, Quantity: c.Quantity}
		if c.Card != nil {
			e.CardID = c.Card.ID
		}
		entries = append(entries, e)
	}
	return entries
}

// EntriesFromHistorical converts a corpus deck.
func EntriesFromHistorical(deck *HistoricalDeck) []CardEntry {
	if deck == nil {
		return nil
	}
	entries := make([]CardEntry, 0, len(deck.Cards))
	for _, c := range deck.Cards {
		entries = append(entries, CardEntry{CardID: c.CardID, Name: c.Name, Quantity: c.Quantity})
	}
	return entries
}

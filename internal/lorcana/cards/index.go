package cards

import (
	"strconv"

	"github.com/guibruno93/lorcana-companion/internal/lorcana/normalize"
)

// Entry is a catalog card prepared for fuzzy scanning.
type Entry struct {
	Card   *Card
	Key    string   // Normalized full display name
	Tokens []string // Key split on spaces
}

// Index is a read-only lookup view over one catalog load.
// It is never mutated after BuildIndex returns, so any number of goroutines may read it.
type Index struct {
	byKey   map[string]*Card
	byID    map[string]*Card
	entries []Entry
	err     error
}

// IndexOption configures BuildIndex.
type IndexOption func(*indexOptions)

type indexOptions struct {
	preferNewerSet bool
}

// WithPreferNewerSet resolves alias collisions in favour of the card from the later set
// instead of the first one registered. Set ids must be numeric for the rule to apply.
func WithPreferNewerSet() IndexOption {
	return func(o *indexOptions) {
		o.preferNewerSet = true
	}
}

// BuildIndex registers every alias a decklist may use for each card: the canonical name,
// the full "Name - Version" display name and the stored simplified name.
// On a key collision the first registered card wins.
func BuildIndex(catalog []*Card, opts ...IndexOption) *Index {
	var o indexOptions
	for _, opt := range opts {
		opt(&o)
	}

	idx := &Index{
		byKey:   make(map[string]*Card, len(catalog)*2),
		byID:    make(map[string]*Card, len(catalog)),
		entries: make([]Entry, 0, len(catalog)),
	}

	for _, card := range catalog {
		if card == nil || card.Name == "" {
			continue
		}

		full := card.FullName()
		for _, alias := range []string{card.Name, full, card.SimpleName} {
			idx.register(normalize.Key(alias), card, o)
		}

		if card.ID != "" {
			if _, exists := idx.byID[card.ID]; !exists {
				idx.byID[card.ID] = card
			}
		}

		key := normalize.Key(full)
		idx.entries = append(idx.entries, Entry{
			Card:   card,
			Key:    key,
			Tokens: normalize.Tokens(key),
		})
	}

	return idx
}

// UnavailableIndex returns the empty index used when no catalog could be loaded.
// Lookups on it miss, and Err reports why.
func UnavailableIndex(err error) *Index {
	if err == nil {
		err = ErrCatalogUnavailable
	}
	return &Index{
		byKey: map[string]*Card{},
		byID:  map[string]*Card{},
		err:   err,
	}
}

func (idx *Index) register(key string, card *Card, o indexOptions) {
	if key == "" {
		return
	}
	existing, exists := idx.byKey[key]
	if !exists {
		idx.byKey[key] = card
		return
	}
	if o.preferNewerSet && existing != card && newerSet(card.SetID, existing.SetID) {
		idx.byKey[key] = card
	}
}

// newerSet reports whether set a was released after set b.
func newerSet(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA != nil || errB != nil {
		return false
	}
	return na > nb
}

// Available reports whether the index was built from a catalog.
func (idx *Index) Available() bool {
	return idx != nil && idx.err == nil
}

// Err returns the load error of an unavailable index.
func (idx *Index) Err() error {
	if idx == nil {
		return ErrCatalogUnavailable
	}
	return idx.err
}

// Lookup returns the card registered under a normalized key.
func (idx *Index) Lookup(key string) (*Card, bool) {
	if idx == nil || key == "" {
		return nil, false
	}
	card, ok := idx.byKey[key]
	return card, ok
}

// LookupName normalizes a raw name and looks it up.
func (idx *Index) LookupName(name string) (*Card, bool) {
	return idx.Lookup(normalize.Key(name))
}

// ByID returns the card with the given catalog identifier.
func (idx *Index) ByID(id string) (*Card, bool) {
	if idx == nil || id == "" {
		return nil, false
	}
	card, ok := idx.byID[id]
	return card, ok
}

// Entries returns the catalog in load order, prepared for fuzzy scanning.
// Callers must not modify the returned slice.
func (idx *Index) Entries() []Entry {
	if idx == nil {
		return nil
	}
	return idx.entries
}

// Cards returns the catalog in load order.
func (idx *Index) Cards() []*Card {
	if idx == nil {
		return nil
	}
	out := make([]*Card, len(idx.entries))
	for i, e := range idx.entries {
		out[i] = e.Card
	}
	return out
}

// Len returns the number of cards in the index.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// Keys returns the number of registered aliases.
func (idx *Index) Keys() int {
	if idx == nil {
		return 0
	}
	return len(idx.byKey)
}

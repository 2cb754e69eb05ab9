package deckimport

import (
	"github.com/guibruno93/lorcana-companion/internal/lorcana/cards"
	"github.com/guibruno93/lorcana-companion/internal/lorcana/cards/fuzzy"
)

// Status is the recognition outcome of one decklist line.
type Status string

const (
	StatusRecognized   Status = "recognized"
	StatusUnrecognized Status = "unrecognized"
)

// ResolvedCard is a decklist line joined with its catalog card, if any.
type ResolvedCard struct {
	Entry
	Status Status      `json:"status"`
	Card   *cards.Card `json:"card,omitempty"`

	// Fuzzy report for unrecognized lines. Suggestion is a high-confidence guess for a human
	// to confirm; it is never applied to the deck.
	Candidates []fuzzy.Candidate `json:"candidates,omitempty"`
	Suggestion *fuzzy.Candidate  `json:"suggestion,omitempty"`
}

// ResolvedDeck is a decklist resolved against one catalog snapshot.
type ResolvedDeck struct {
	Cards   []ResolvedCard `json:"cards"`
	Skipped []SkippedLine  `json:"skipped"`

	RecognizedQuantity   int `json:"recognized_quantity"`
	UnrecognizedQuantity int `json:"unrecognized_quantity"`
	RecognizedLines      int `json:"recognized_lines"`
	UnrecognizedLines    int `json:"unrecognized_lines"`
	SkippedLines         int `json:"skipped_lines"`
	TotalQuantity        int `json:"total_quantity"`

	// Ink curve (cost -> quantity). Costs of cards missing from the catalog, or without a
	// cost, come from the estimator and are counted in EstimatedCards.
	InkCurve       map[int]int `json:"ink_curve"`
	EstimatedCards int         `json:"estimated_cards"`
	InkableCards   int         `json:"inkable_cards"`

	CatalogAvailable bool `json:"catalog_available"`
}

// Recognized returns the recognized lines.
func (d *ResolvedDeck) Recognized() []ResolvedCard {
	out := make([]ResolvedCard, 0, d.RecognizedLines)
	for _, c := range d.Cards {
		if c.Status == StatusRecognized {
			out = append(out, c)
		}
	}
	return out
}

// Unrecognized returns the unrecognized lines with their fuzzy reports.
func (d *ResolvedDeck) Unrecognized() []ResolvedCard {
	out := make([]ResolvedCard, 0, d.UnrecognizedLines)
	for _, c := range d.Cards {
		if c.Status == StatusUnrecognized {
			out = append(out, c)
		}
	}
	return out
}

// Resolver resolves decklists against a catalog index.
type Resolver struct {
	index     *cards.Index
	opts      fuzzy.Options
	estimator cards.CostEstimator
}

// NewResolver creates a resolver. A nil estimator leaves cards without a catalog cost out
// of the ink curve.
func NewResolver(index *cards.Index, opts fuzzy.Options, estimator cards.CostEstimator) *Resolver {
	if index == nil {
		index = cards.UnavailableIndex(nil)
	}
	return &Resolver{
		index:     index,
		opts:      opts,
		estimator: estimator,
	}
}

// Resolve parses text and resolves every line.
func (r *Resolver) Resolve(text string) *ResolvedDeck {
	parsed := ParseWithReport(text)
	return r.ResolveEntries(parsed.Entries, parsed.Skipped)
}

// ResolveEntries resolves already-parsed entries. Only exact catalog hits are recognized;
// everything else is reported with its fuzzy candidates.
func (r *Resolver) ResolveEntries(entries []Entry, skipped []SkippedLine) *ResolvedDeck {
	deck := &ResolvedDeck{
		Cards:            make([]ResolvedCard, 0, len(entries)),
		Skipped:          skipped,
		SkippedLines:     len(skipped),
		InkCurve:         make(map[int]int),
		CatalogAvailable: r.index.Available(),
	}
	if deck.Skipped == nil {
		deck.Skipped = make([]SkippedLine, 0)
	}

	// Repeated lines for the same name share one fuzzy scan.
	seen := make(map[string]fuzzy.Result)

	for _, entry := range entries {
		res, ok := seen[entry.NormalizedName]
		if !ok {
			res = fuzzy.Resolve(entry.RawName, r.index, r.opts)
			seen[entry.NormalizedName] = res
		}

		rc := ResolvedCard{Entry: entry}
		if res.Best != nil && res.Best.Exact {
			rc.Status = StatusRecognized
			rc.Card = res.Best.Card
			deck.RecognizedQuantity += entry.Quantity
			deck.RecognizedLines++
			if rc.Card.Inkable {
				deck.InkableCards += entry.Quantity
			}
		} else {
			rc.Status = StatusUnrecognized
			rc.Candidates = res.Candidates
			rc.Suggestion = res.Best
			deck.UnrecognizedQuantity += entry.Quantity
			deck.UnrecognizedLines++
		}
		deck.TotalQuantity += entry.Quantity

		r.addToCurve(deck, rc)
		deck.Cards = append(deck.Cards, rc)
	}

	return deck
}

func (r *Resolver) addToCurve(deck *ResolvedDeck, rc ResolvedCard) {
	if rc.Card != nil {
		if cost, known := rc.Card.CostValue(); known {
			deck.InkCurve[cost] += rc.Quantity
			return
		}
	}
	if r.estimator == nil {
		return
	}
	deck.InkCurve[r.estimator.EstimateCost(rc.RawName)] += rc.Quantity
	deck.EstimatedCards += rc.Quantity
}

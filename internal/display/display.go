// Package display prints resolved decks, card suggestions and comparison reports as text.
package display

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/guibruno93/lorcana-companion/internal/archetype"
	"github.com/guibruno93/lorcana-companion/internal/lorcana/cards/fuzzy"
	"github.com/guibruno93/lorcana-companion/internal/lorcana/deckimport"
	"github.com/guibruno93/lorcana-companion/internal/meta"
)

const rule = "═══════════════════════════════════════════════════════════════"

func header(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n%s\n", title, strings.Repeat("=", len(title)))
}

// Deck prints a resolved decklist: recognized lines, unrecognized lines with their best
// guesses, skipped lines and the ink curve.
func Deck(w io.Writer, deck *deckimport.ResolvedDeck) {
	header(w, "Decklist")
	fmt.Fprintf(w, "Cards: %d (%d recognized, %d unrecognized)\n",
		deck.TotalQuantity, deck.RecognizedQuantity, deck.UnrecognizedQuantity)
	if !deck.CatalogAvailable {
		fmt.Fprintln(w, "Card catalog unavailable: no line could be recognized.")
	}

	if recognized := deck.Recognized(); len(recognized) > 0 {
		fmt.Fprintf(w, "\n%s\nRecognized (%d lines)\n%s\n", rule, len(recognized), rule)
		for _, c := range recognized {
			fmt.Fprintf(w, "  %2d  %s  [%s]\n", c.Quantity, c.Card.FullName(), c.Card.ID)
		}
	}

	if unrecognized := deck.Unrecognized(); len(unrecognized) > 0 {
		fmt.Fprintf(w, "\n%s\nUnrecognized (%d lines)\n%s\n", rule, len(unrecognized), rule)
		for _, c := range unrecognized {
			fmt.Fprintf(w, "  %2d  %s  (line %d)\n", c.Quantity, c.RawName, c.Line)
			if c.Suggestion != nil {
				fmt.Fprintf(w, "        did you mean %s? (%.0f%%)\n", c.Suggestion.Card.FullName(), c.Suggestion.Score*100)
			} else if len(c.Candidates) > 0 {
				fmt.Fprintf(w, "        closest: %s (%.0f%%)\n", c.Candidates[0].Card.FullName(), c.Candidates[0].Score*100)
			}
		}
	}

	if len(deck.Skipped) > 0 {
		fmt.Fprintf(w, "\nSkipped %d lines:\n", len(deck.Skipped))
		for _, s := range deck.Skipped {
			fmt.Fprintf(w, "  line %d: %q\n", s.Line, s.Text)
		}
	}

	InkCurve(w, deck)
}

// InkCurve prints one bar per cost.
func InkCurve(w io.Writer, deck *deckimport.ResolvedDeck) {
	if len(deck.InkCurve) == 0 {
		return
	}

	costs := make([]int, 0, len(deck.InkCurve))
	for cost := range deck.InkCurve {
		costs = append(costs, cost)
	}
	sort.Ints(costs)

	fmt.Fprintln(w, "\nInk curve:")
	for _, cost := range costs {
		n := deck.InkCurve[cost]
		fmt.Fprintf(w, "  %2d | %-20s %d\n", cost, strings.Repeat("█", min(n, 20)), n)
	}
	if deck.EstimatedCards > 0 {
		fmt.Fprintf(w, "  (%d cards with estimated cost)\n", deck.EstimatedCards)
	}
}

// Suggestions prints the fuzzy candidates for one name.
func Suggestions(w io.Writer, name string, result fuzzy.Result) {
	if !result.CatalogAvailable {
		fmt.Fprintln(w, "Card catalog unavailable.")
	}
	if len(result.Candidates) == 0 {
		fmt.Fprintf(w, "No cards look like %q.\n", name)
		return
	}

	fmt.Fprintf(w, "Candidates for %q:\n", name)
	for i, c := range result.Candidates {
		marker := " "
		if result.Best != nil && result.Best.Card.ID == c.Card.ID {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %d. %-40s %5.1f%%  [%s]\n", marker, i+1, c.Card.FullName(), c.Score*100, c.Card.ID)
	}
	if result.Best == nil {
		fmt.Fprintln(w, "No candidate is confident enough to apply.")
	}
}

// Report prints the ranked matches and the aggregate of a comparison.
func Report(w io.Writer, report *meta.CompareReport) {
	if p := report.Profile; p != nil && p.Label != archetype.Unknown {
		label := p.Label
		if p.Style != "" {
			label += " " + p.Style
		}
		fmt.Fprintf(w, "\nYour deck: %s (%.0f%% confidence)\n", label, p.Confidence*100)
	}

	header(w, "Closest tournament decks")
	fmt.Fprintf(w, "Corpus: %d decks, %d after filters\n", report.CorpusSize, report.CorpusSize-report.Filtered)
	if !report.CorpusAvailable {
		fmt.Fprintln(w, "Meta corpus unavailable: compared against an empty corpus.")
	}
	if report.FellBack {
		fmt.Fprintln(w, "Too few decks cleared the similarity floor; showing the closest ones instead.")
	}

	if len(report.Matches) == 0 {
		fmt.Fprintln(w, "No matching decks found.")
	}
	for i, m := range report.Matches {
		name := m.Archetype
		if name == "" {
			name = meta.UnknownArchetype
		}
		fmt.Fprintf(w, "%2d. %5.1f  %-28s %-10s %s\n", i+1, m.Score, name, m.Placement, m.Event)
	}

	agg := report.Aggregate
	if agg.Count == 0 {
		return
	}

	fmt.Fprintf(w, "\n%s\n", rule)
	fmt.Fprintf(w, "Decks compared: %d\n", agg.Count)
	if agg.BestFinish != nil {
		fmt.Fprintf(w, "Best finish:    %d\n", *agg.BestFinish)
	}
	if agg.AverageFinish != nil {
		fmt.Fprintf(w, "Average finish: %.1f\n", *agg.AverageFinish)
	}
	if agg.TopCutRate != nil {
		fmt.Fprintf(w, "Top-cut rate:   %.0f%%\n", *agg.TopCutRate*100)
	}

	names := make([]string, 0, len(agg.ByArchetype))
	for name := range agg.ByArchetype {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if agg.ByArchetype[names[i]] != agg.ByArchetype[names[j]] {
			return agg.ByArchetype[names[i]] > agg.ByArchetype[names[j]]
		}
		return names[i] < names[j]
	})
	fmt.Fprintln(w, "Archetypes:")
	for _, name := range names {
		fmt.Fprintf(w, "  %-28s %d\n", name, agg.ByArchetype[name])
	}
}

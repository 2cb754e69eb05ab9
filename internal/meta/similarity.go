package meta

import (
	"sort"

	"github.com/guibruno93/lorcana-companion/internal/lorcana/cards"
	"github.com/guibruno93/lorcana-companion/internal/lorcana/normalize"
)

// UnknownArchetype buckets corpus decks without an archetype label.
const UnknownArchetype = "Unknown"

// CompareOptions controls corpus filtering, ranking and aggregation.
type CompareOptions struct {
	TopK           int     // Matches returned; <= 0 returns all
	SameFormatOnly bool    // Drop corpus decks whose format differs from Format
	Format         string  // Format of the query deck; empty disables the format filter
	MinSimilarity  float64 // Floor for matches, see MinMatches
	MaxFinish      *int    // Drop decks with a known finish worse than this
	MaxCorpus      int     // Decks examined from the head of the corpus; <= 0 is unlimited
	TopCut         int     // Finish counted as a top cut (inclusive)
	MinMatches     int     // Below this many matches over the floor, fall back to the plain top-K
}

// DefaultCompareOptions returns the default comparison settings.
func DefaultCompareOptions() CompareOptions {
	return CompareOptions{
		TopK:           10,
		SameFormatOnly: true,
		TopCut:         8,
		MinMatches:     1,
	}
}

// Match is one ranked corpus deck.
type Match struct {
	Deck       *HistoricalDeck `json:"deck"`
	Similarity float64         `json:"similarity"`
	Finish     *int            `json:"finish,omitempty"`
}

// Aggregate summarizes the filtered corpus. Finish fields are nil when no deck has a
// known finish.
type Aggregate struct {
	Count         int            `json:"count"`
	BestFinish    *int           `json:"best_finish"`
	AverageFinish *float64       `json:"average_finish"`
	TopCutRate    *float64       `json:"top_cut_rate"`
	ByArchetype   map[string]int `json:"by_archetype"`
}

// Comparison is the result of ranking a corpus against a query deck.
type Comparison struct {
	Matches    []Match   `json:"matches"`
	Aggregate  Aggregate `json:"aggregate"`
	CorpusSize int       `json:"corpus_size"` // Decks examined after MaxCorpus
	Filtered   int       `json:"filtered"`    // Decks dropped by the format and finish filters
	FellBack   bool      `json:"fell_back"`   // Matches ignore MinSimilarity
}

// Similarity returns the weighted multiset Jaccard of two vectors: the sum of per-card
// minimum counts over the sum of per-card maximum counts. It is 0 when both are empty.
func Similarity(a, b DeckVector) float64 {
	var inter, union int
	for key, ca := range a.Counts {
		cb := b.Counts[key]
		inter += min(ca, cb)
		union += max(ca, cb)
	}
	for key, cb := range b.Counts {
		if _, seen := a.Counts[key]; !seen {
			union += cb
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Compare filters the corpus, scores every remaining deck against query and returns the
// ranked matches plus aggregate statistics over the whole filtered set. index is used to
// key corpus decks by catalog ID and may be nil.
func Compare(query DeckVector, corpus []*HistoricalDeck, opts CompareOptions, index *cards.Index) *Comparison {
	if opts.MaxCorpus > 0 && len(corpus) > opts.MaxCorpus {
		corpus = corpus[:opts.MaxCorpus]
	}

	cmp := &Comparison{
		Matches:    []Match{},
		CorpusSize: len(corpus),
	}

	format := normalize.Key(opts.Format)
	filterFormat := opts.SameFormatOnly && format != ""

	ranked := make([]Match, 0, len(corpus))
	for _, deck := range corpus {
		if deck == nil {
			continue
		}
		// Decks of unknown format stay, like decks of unknown finish.
		if filterFormat && deck.Format != "" && normalize.Key(deck.Format) != format {
			cmp.Filtered++
			continue
		}
		finish := deck.Finish()
		if opts.MaxFinish != nil && finish != nil && *finish > *opts.MaxFinish {
			cmp.Filtered++
			continue
		}

		score := 0.0
		if query.Total > 0 {
			score = Similarity(query, Vectorize(EntriesFromHistorical(deck), index))
		}
		ranked = append(ranked, Match{Deck: deck, Similarity: score, Finish: finish})
	}

	cmp.Aggregate = aggregate(ranked, opts.TopCut)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Similarity > ranked[j].Similarity
	})

	kept := make([]Match, 0, len(ranked))
	for _, m := range ranked {
		if m.Similarity >= opts.MinSimilarity {
			kept = append(kept, m)
		}
	}
	if len(kept) < opts.MinMatches {
		kept = ranked
		cmp.FellBack = len(ranked) > 0 && opts.MinSimilarity > 0
	}
	if opts.TopK > 0 && len(kept) > opts.TopK {
		kept = kept[:opts.TopK]
	}
	cmp.Matches = append(cmp.Matches, kept...)

	return cmp
}

func aggregate(matches []Match, topCut int) Aggregate {
	agg := Aggregate{
		Count:       len(matches),
		ByArchetype: make(map[string]int),
	}

	var finishes, sum, inTopCut int
	for _, m := range matches {
		archetype := m.Deck.Archetype
		if archetype == "" {
			archetype = UnknownArchetype
		}
		agg.ByArchetype[archetype]++

		if m.Finish == nil {
			continue
		}
		f := *m.Finish
		finishes++
		sum += f
		if topCut > 0 && f <= topCut {
			inTopCut++
		}
		if agg.BestFinish == nil || f < *agg.BestFinish {
			best := f
			agg.BestFinish = &best
		}
	}

	if finishes > 0 {
		avg := float64(sum) / float64(finishes)
		rate := float64(inTopCut) / float64(finishes)
		agg.AverageFinish = &avg
		agg.TopCutRate = &rate
	}
	return agg
}

// Package fuzzy resolves misspelled card names against the catalog and reports ranked
// candidates. It only commits to a best guess when the match is unambiguous.
package fuzzy

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/guibruno93/lorcana-companion/internal/lorcana/cards"
	"github.com/guibruno93/lorcana-companion/internal/lorcana/normalize"
)

// Candidate is a catalog card scored against a raw name.
type Candidate struct {
	Card  *cards.Card `json:"card"`
	Score float64     `json:"score"` // 0.0-1.0
	Exact bool        `json:"exact"`

	order int // catalog position, final tie-break
}

// Result is the outcome of resolving one raw name.
type Result struct {
	Candidates []Candidate `json:"candidates"`
	// Best is set only when the top candidate clears the commit policy.
	Best *Candidate `json:"best,omitempty"`

	CatalogAvailable bool `json:"catalog_available"`
}

// Options configures scoring, filtering and the commit policy.
type Options struct {
	// Limit caps the number of candidates returned (0 = unlimited)
	Limit int
	// MinScore drops candidates scoring below it
	MinScore float64

	// Blend weights for the fuzzy score
	LevenshteinWeight float64
	JaccardWeight     float64

	// Additive bonuses
	PrefixBonus    float64 // one normalized name is a prefix of the other
	SubstringBonus float64 // one normalized name contains the other
	SubtitleBonus  float64 // raw input has a dash, i.e. names a subtitle

	// TokenSimilarity is the edit ratio at which two tokens of 4+ letters count as equal
	// in the token overlap. 1 disables near-equal tokens.
	TokenSimilarity float64

	// Commit policy for Best
	CommitScore float64 // top score that commits on its own
	CommitFloor float64 // lowest top score that may commit with a clear gap
	CommitGap   float64 // required lead over the second candidate
}

// DefaultOptions returns the tuned defaults.
func DefaultOptions() Options {
	return Options{
		Limit:             8,
		MinScore:          0.45,
		LevenshteinWeight: 0.6,
		JaccardWeight:     0.4,
		PrefixBonus:       0.05,
		SubstringBonus:    0.05,
		SubtitleBonus:     0.05,
		TokenSimilarity:   0.8,
		CommitScore:       0.82,
		CommitFloor:       0.75,
		CommitGap:         0.08,
	}
}

// Resolve looks rawName up in the index. An exact key hit is returned alone with score 1.
// Otherwise every catalog card is scored, and Best is set only under the commit policy.
// An empty name or an empty/unavailable index yields a Result with no candidates;
// CatalogAvailable tells the two apart.
func Resolve(rawName string, index *cards.Index, opts Options) Result {
	result := Result{Candidates: []Candidate{}, CatalogAvailable: index.Available()}

	key := normalize.Key(rawName)
	if key == "" || index.Len() == 0 {
		return result
	}

	if card, ok := index.Lookup(key); ok {
		c := Candidate{Card: card, Score: 1, Exact: true}
		result.Candidates = []Candidate{c}
		result.Best = &c
		return result
	}

	ranked := rank(rawName, index, opts)

	// The commit policy sees the full ranking so that Limit and MinScore cannot hide the
	// runner-up a gap is measured against.
	result.Candidates = trim(ranked, opts)
	if best, ok := commit(ranked, opts); ok && best.Score >= opts.MinScore {
		result.Best = &best
	}
	return result
}

// Search scores every catalog card against rawName and returns those clearing MinScore,
// sorted by score, then case-insensitive display name, then catalog order, truncated to Limit.
// Unlike Resolve it does not short-circuit on an exact key.
func Search(rawName string, index *cards.Index, opts Options) []Candidate {
	return trim(rank(rawName, index, opts), opts)
}

// rank scores every index entry and sorts the lot, with no floor and no limit.
func rank(rawName string, index *cards.Index, opts Options) []Candidate {
	key := normalize.Key(rawName)
	if key == "" {
		return nil
	}
	tokens := normalize.Tokens(key)
	subtitle := hasDash(rawName)

	entries := index.Entries()
	results := make([]Candidate, 0, len(entries))

	for i, entry := range entries {
		results = append(results, Candidate{
			Card:  entry.Card,
			Score: calculateScore(key, tokens, entry.Key, entry.Tokens, subtitle, opts),
			Exact: key == entry.Key,
			order: i,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		ni := strings.ToLower(results[i].Card.FullName())
		nj := strings.ToLower(results[j].Card.FullName())
		if ni != nj {
			return ni < nj
		}
		return results[i].order < results[j].order
	})

	return results
}

// trim drops ranked candidates under MinScore and caps the rest at Limit.
func trim(ranked []Candidate, opts Options) []Candidate {
	n := sort.Search(len(ranked), func(i int) bool { return ranked[i].Score < opts.MinScore })
	if opts.Limit > 0 && n > opts.Limit {
		n = opts.Limit
	}
	out := make([]Candidate, n)
	copy(out, ranked[:n])
	return out
}

// commit applies the confidence policy to a ranked candidate list.
// A lone candidate's lead over the (missing) second is its whole score.
func commit(candidates []Candidate, opts Options) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}

	top := candidates[0]
	if top.Score >= opts.CommitScore {
		return top, true
	}

	gap := top.Score
	if len(candidates) > 1 {
		gap = top.Score - candidates[1].Score
	}
	if top.Score >= opts.CommitFloor && gap >= opts.CommitGap {
		return top, true
	}

	return Candidate{}, false
}

// calculateScore blends edit-distance similarity with token overlap and adds the bonuses.
// The result is clamped to [0, 1].
func calculateScore(query string, queryTokens []string, target string, targetTokens []string, subtitle bool, opts Options) float64 {
	score := opts.LevenshteinWeight*LevenshteinRatio(query, target) +
		opts.JaccardWeight*tokenJaccard(queryTokens, targetTokens, opts.TokenSimilarity)

	if query != "" && target != "" {
		if strings.HasPrefix(target, query) || strings.HasPrefix(query, target) {
			score += opts.PrefixBonus
		}
		if strings.Contains(target, query) || strings.Contains(query, target) {
			score += opts.SubstringBonus
		}
	}
	if subtitle {
		score += opts.SubtitleBonus
	}

	return clamp(score)
}

// LevenshteinRatio returns 1 - editDistance/max(len(a), len(b)) over runes.
// Two empty strings are identical.
func LevenshteinRatio(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	maxLen := max(la, lb)
	if maxLen == 0 {
		return 1
	}
	distance := levenshtein.ComputeDistance(a, b)
	return 1 - float64(distance)/float64(maxLen)
}

// Jaccard returns |A∩B| / |A∪B| over exact token sets.
// Two empty sets score 1; one empty set scores 0.
func Jaccard(a, b []string) float64 {
	return overlap(dedupe(a), dedupe(b), 1, false)
}

func hasDash(s string) bool {
	return strings.ContainsAny(s, "-‐‑‒–—―−")
}

func clamp(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

package cards

import (
	"strings"

	"github.com/guibruno93/lorcana-companion/internal/lorcana/normalize"
)

// CostEstimator guesses the ink cost of a card by name.
// It is a best-effort collaborator for deck summaries only; resolution and similarity never
// consult it.
type CostEstimator interface {
	EstimateCost(name string) int
}

// CostRule maps a name fragment to a cost.
type CostRule struct {
	Contains string // Matched against the normalized name
	Cost     int
}

// HeuristicEstimator guesses costs from name fragments.
type HeuristicEstimator struct {
	Rules   []CostRule
	Default int
}

// DefaultHeuristicEstimator returns an estimator seeded with fragments that reliably indicate
// a cost band in the Lorcana card pool.
func DefaultHeuristicEstimator() *HeuristicEstimator {
	return &HeuristicEstimator{
		Rules: []CostRule{
			{Contains: "be prepared", Cost: 7},
			{Contains: "dragon", Cost: 7},
			{Contains: "titan", Cost: 6},
			{Contains: "sorcerer", Cost: 5},
			{Contains: "king", Cost: 5},
			{Contains: "queen", Cost: 5},
			{Contains: "captain", Cost: 4},
			{Contains: "song", Cost: 3},
			{Contains: "sidekick", Cost: 2},
			{Contains: "cub", Cost: 1},
			{Contains: "pup", Cost: 1},
		},
		Default: 3,
	}
}

// EstimateCost returns the cost of the first matching rule, else Default.
func (e *HeuristicEstimator) EstimateCost(name string) int {
	key := normalize.Key(name)
	for _, rule := range e.Rules {
		if rule.Contains != "" && strings.Contains(key, rule.Contains) {
			return rule.Cost
		}
	}
	return e.Default
}

// CatalogEstimator answers from the catalog when the name is an exact hit with a known cost
// and defers to Fallback otherwise.
type CatalogEstimator struct {
	Index    *Index
	Fallback CostEstimator
}

// EstimateCost implements CostEstimator.
func (e *CatalogEstimator) EstimateCost(name string) int {
	if card, ok := e.Index.LookupName(name); ok {
		if cost, known := card.CostValue(); known {
			return cost
		}
	}
	if e.Fallback == nil {
		return DefaultHeuristicEstimator().EstimateCost(name)
	}
	return e.Fallback.EstimateCost(name)
}

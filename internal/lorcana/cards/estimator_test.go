package cards

import "testing"

func TestHeuristicEstimator(t *testing.T) {
	e := DefaultHeuristicEstimator()

	tests := []struct {
		name string
		want int
	}{
		{"Be Prepared", 7},
		{"Maleficent - Monstrous Dragon", 7},
		{"Simba - Protective Cub", 1},
		{"Some Unknown Card", 3},
		{"", 3},
	}

	for _, tt := range tests {
		if got := e.EstimateCost(tt.name); got != tt.want {
			t.Errorf("EstimateCost(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestCatalogEstimator(t *testing.T) {
	idx := BuildIndex(append(testCatalog(), &Card{ID: "9", Name: "Costless Wonder"}))
	e := &CatalogEstimator{Index: idx, Fallback: &HeuristicEstimator{Default: 9}}

	if got := e.EstimateCost("Tipo - Growing Son"); got != 2 {
		t.Errorf("catalog cost = %d, want 2", got)
	}
	if got := e.EstimateCost("Costless Wonder"); got != 9 {
		t.Errorf("card without cost should use fallback, got %d", got)
	}
	if got := e.EstimateCost("Not A Card"); got != 9 {
		t.Errorf("unknown card should use fallback, got %d", got)
	}

	noFallback := &CatalogEstimator{Index: UnavailableIndex(nil)}
	if got := noFallback.EstimateCost("Be Prepared"); got != 7 {
		t.Errorf("nil fallback should use default heuristics, got %d", got)
	}
}

// Package archetype labels a resolved deck by its ink pair and play style.
package archetype

import (
	"strings"

	"github.com/guibruno93/lorcana-companion/internal/lorcana/cards"
	"github.com/guibruno93/lorcana-companion/internal/lorcana/deckimport"
)

// Inks in canonical order; labels list inks in this order ("Amber Steel", never "Steel Amber").
var Inks = []string{"Amber", "Amethyst", "Emerald", "Ruby", "Sapphire", "Steel"}

// Unknown labels a deck with no recognized inked card.
const Unknown = "Unknown"

// dominantShare is the fraction of inked cards an ink needs to count toward the label.
const dominantShare = 0.15

// Profile describes the composition of a resolved deck.
type Profile struct {
	Label      string   `json:"label"`           // e.g. "Amber Steel", "Mono Ruby"
	Style      string   `json:"style,omitempty"` // Aggro, Midrange, Control, Tempo
	Inks       []string `json:"inks"`            // Dominant inks, canonical order
	Confidence float64  `json:"confidence"`      // 0.0-1.0

	Analysis *Analysis `json:"analysis"`
}

// Analysis is the breakdown a Profile is derived from. Counts are card quantities over
// recognized lines only.
type Analysis struct {
	InkCounts      map[string]int `json:"ink_counts"`
	CharacterCount int            `json:"character_count"`
	ActionCount    int            `json:"action_count"` // Songs included
	ItemCount      int            `json:"item_count"`
	LocationCount  int            `json:"location_count"`
	InkableCount   int            `json:"inkable_count"`
	TotalCards     int            `json:"total_cards"`
	AverageCost    float64        `json:"average_cost"`
}

// Classify profiles the recognized part of deck. It never fails: a deck without
// recognized cards is labelled Unknown with zero confidence.
func Classify(deck *deckimport.ResolvedDeck) *Profile {
	analysis := analyze(deck)
	profile := &Profile{
		Inks:     dominantInks(analysis.InkCounts),
		Analysis: analysis,
	}

	switch n := len(profile.Inks); {
	case n == 2:
		profile.Label = strings.Join(profile.Inks, " ")
		profile.Confidence = 0.6
	case n == 1:
		profile.Label = "Mono " + profile.Inks[0]
		profile.Confidence = 0.5
	case n > 2:
		profile.Label = "Multi-ink"
		profile.Confidence = 0.3
	default:
		profile.Label = Unknown
		return profile
	}

	if style := detectStyle(analysis); style != "" {
		profile.Style = style
		profile.Confidence += 0.2
	}

	// Partially recognized decks are labelled with less certainty.
	if deck != nil && deck.TotalQuantity > 0 {
		profile.Confidence *= float64(analysis.TotalCards) / float64(deck.TotalQuantity)
	}
	if profile.Confidence > 1 {
		profile.Confidence = 1
	}

	return profile
}

func analyze(deck *deckimport.ResolvedDeck) *Analysis {
	a := &Analysis{InkCounts: make(map[string]int)}
	if deck == nil {
		return a
	}

	costTotal, costCards := 0, 0
	for _, line := range deck.Recognized() {
		card, qty := line.Card, line.Quantity
		a.TotalCards += qty

		for _, ink := range cardInks(card) {
			a.InkCounts[ink] += qty
		}

		typ := strings.ToLower(card.Type)
		switch {
		case strings.Contains(typ, "character"):
			a.CharacterCount += qty
		case strings.Contains(typ, "action"), strings.Contains(typ, "song"):
			a.ActionCount += qty
		case strings.Contains(typ, "item"):
			a.ItemCount += qty
		case strings.Contains(typ, "location"):
			a.LocationCount += qty
		}

		if card.Inkable {
			a.InkableCount += qty
		}
		if cost, ok := card.CostValue(); ok {
			costTotal += cost * qty
			costCards += qty
		}
	}

	if costCards > 0 {
		a.AverageCost = float64(costTotal) / float64(costCards)
	}
	return a
}

// cardInks splits a card's color field ("Amber/Steel", "amber") into canonical ink names.
func cardInks(card *cards.Card) []string {
	var out []string
	for _, part := range strings.FieldsFunc(card.Color, func(r rune) bool { return r == '/' || r == ',' || r == ' ' }) {
		for _, ink := range Inks {
			if strings.EqualFold(part, ink) {
				out = append(out, ink)
				break
			}
		}
	}
	return out
}

// dominantInks returns the inks holding at least dominantShare of the inked cards.
func dominantInks(counts map[string]int) []string {
	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return nil
	}

	var dominant []string
	for _, ink := range Inks {
		if counts[ink] > 0 && float64(counts[ink]) >= float64(total)*dominantShare {
			dominant = append(dominant, ink)
		}
	}
	return dominant
}

// detectStyle reads the play style off the cost curve and the character/action split.
func detectStyle(a *Analysis) string {
	nonLocation := a.CharacterCount + a.ActionCount + a.ItemCount
	if nonLocation == 0 || a.AverageCost == 0 {
		return ""
	}

	characterRatio := float64(a.CharacterCount) / float64(nonLocation)
	actionRatio := float64(a.ActionCount) / float64(nonLocation)

	switch {
	case a.AverageCost < 3.0 && characterRatio > 0.6:
		return "Aggro"
	case a.AverageCost > 4.0 && actionRatio > 0.3:
		return "Control"
	case characterRatio > 0.4 && a.AverageCost >= 3.0 && a.AverageCost <= 4.0:
		return "Midrange"
	case characterRatio > 0.3 && actionRatio > 0.3 && a.AverageCost < 3.5:
		return "Tempo"
	}
	return ""
}

// Package cards holds the canonical Lorcana card catalog and the lookup index built over it.
package cards

import "strings"

// Card represents a canonical card record from the catalog.
// Cards are immutable once loaded; a catalog change replaces the whole set.
type Card struct {
	// Stable identifier (e.g. "TFC-12" or a numeric code)
	ID string `json:"id"`

	// Basic card information
	Name       string `json:"name"`
	Version    string `json:"version,omitempty"`     // Subtitle, e.g. "Giant Fairy"
	SimpleName string `json:"simple_name,omitempty"` // Stored simplified name, if the source has one

	// Numeric attributes (nil when the card has none)
	Cost      *int `json:"cost,omitempty"`
	Lore      *int `json:"lore,omitempty"`
	Strength  *int `json:"strength,omitempty"`
	Willpower *int `json:"willpower,omitempty"`

	// Categorical attributes
	Type   string `json:"type,omitempty"`  // "Character", "Action", "Item", "Location"
	Color  string `json:"color,omitempty"` // Ink color: "Amber", "Amethyst", ...
	Rarity string `json:"rarity,omitempty"`

	Inkable bool   `json:"inkable"`
	SetID   string `json:"set_id,omitempty"`
}

// FullName returns the display name including the version subtitle when present.
func (c *Card) FullName() string {
	name := strings.TrimSpace(c.Name)
	version := strings.TrimSpace(c.Version)
	if name != "" && version != "" {
		return name + " - " + version
	}
	return name
}

// CostValue returns the card's cost and whether it is known.
func (c *Card) CostValue() (int, bool) {
	if c.Cost == nil {
		return 0, false
	}
	return *c.Cost, true
}

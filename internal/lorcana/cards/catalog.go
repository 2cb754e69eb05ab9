package cards

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/guibruno93/lorcana-companion/internal/lorcana/record"
)

// ErrCatalogUnavailable is reported by an index built without a usable catalog.
var ErrCatalogUnavailable = errors.New("card catalog unavailable")

// DecodeCatalog reads a catalog from JSON.
// Accepted shapes are a bare array of cards or an object with a "cards" array.
// Records without a name are skipped.
func DecodeCatalog(r io.Reader) ([]*Card, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case map[string]any:
		list, ok := record.Fields(v).List("cards", "data")
		if !ok {
			return nil, fmt.Errorf("decode catalog: object has no cards array")
		}
		items = list
	default:
		return nil, fmt.Errorf("decode catalog: unexpected top-level %T", raw)
	}

	catalog := make([]*Card, 0, len(items))
	for _, item := range items {
		fields, ok := record.AsFields(item)
		if !ok {
			continue
		}
		if card := cardFromFields(fields); card != nil {
			catalog = append(catalog, card)
		}
	}

	return catalog, nil
}

// cardFromFields maps the field spellings seen across catalog exports onto Card.
func cardFromFields(f record.Fields) *Card {
	name := f.String("name", "base_name", "baseName")
	if name == "" {
		return nil
	}

	card := &Card{
		ID:         f.String("id", "code", "card_id", "cardId", "unique_id"),
		Name:       name,
		Version:    f.String("version", "subtitle", "title"),
		SimpleName: f.String("simple_name", "simpleName", "clean_name"),
		Cost:       f.IntPtr("cost", "ink_cost", "inkCost"),
		Lore:       f.IntPtr("lore"),
		Strength:   f.IntPtr("strength"),
		Willpower:  f.IntPtr("willpower"),
		Type:       strings.Join(f.Strings("type", "types"), " "),
		Color:      strings.Join(f.Strings("color", "colors", "ink"), "/"),
		Rarity:     f.String("rarity"),
		SetID:      f.String("set_id", "setId", "set", "set_code", "setCode"),
	}

	if inkable, ok := f.Bool("inkable", "inkwell"); ok {
		card.Inkable = inkable
	}

	// Some exports only carry the combined display name.
	if card.Version == "" {
		if full := f.String("full_name", "fullName"); full != "" && full != name {
			if _, version, ok := strings.Cut(full, " - "); ok {
				card.Version = strings.TrimSpace(version)
			}
		}
	}

	return card
}

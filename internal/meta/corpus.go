package meta

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/guibruno93/lorcana-companion/internal/lorcana/deckimport"
	"github.com/guibruno93/lorcana-companion/internal/lorcana/record"
)

// HistoricalDeck is a tournament decklist from the meta corpus.
type HistoricalDeck struct {
	ID        string     `json:"id"`
	Cards     []DeckCard `json:"cards"`
	Format    string     `json:"format,omitempty"`
	Archetype string     `json:"archetype,omitempty"`
	Event     string     `json:"event,omitempty"`
	Date      string     `json:"date,omitempty"`
	Placement string     `json:"placement,omitempty"` // Raw label, see ParseFinish
	Source    string     `json:"source,omitempty"`
}

// DeckCard is one card line of a historical deck.
type DeckCard struct {
	CardID   string `json:"card_id,omitempty"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Finish returns the parsed placement, or nil when unknown.
func (d *HistoricalDeck) Finish() *int {
	return ParseFinish(d.Placement)
}

// CardCount returns the total quantity of the deck.
func (d *HistoricalDeck) CardCount() int {
	total := 0
	for _, c := range d.Cards {
		total += c.Quantity
	}
	return total
}

// CorpusFormat is the encoding of a corpus file.
type CorpusFormat string

const (
	CorpusJSON CorpusFormat = "json"
	CorpusYAML CorpusFormat = "yaml"
)

// ErrUnknownCorpusFormat is returned for encodings DecodeCorpus does not understand.
var ErrUnknownCorpusFormat = errors.New("unknown corpus format")

// FormatFromPath guesses the corpus encoding from a file extension. JSON is the default.
func FormatFromPath(path string) CorpusFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return CorpusYAML
	default:
		return CorpusJSON
	}
}

var corpusNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("lorcana-companion/corpus"))

// Field spellings seen across corpus producers.
var (
	deckListKeys  = []string{"decks", "data", "results", "items"}
	cardListKeys  = []string{"cards", "decklist", "deck", "list", "mainboard", "main"}
	cardNameKeys  = []string{"name", "card", "card_name", "cardName", "full_name", "fullName"}
	cardIDKeys    = []string{"card_id", "cardId", "id"}
	quantityKeys  = []string{"quantity", "qty", "count", "amount", "copies"}
	placementKeys = []string{"placement", "finish", "rank", "place", "result", "standing"}
	archetypeKeys = []string{"archetype", "deck_type", "deckType"}
	eventKeys     = []string{"event", "tournament", "event_name", "eventName"}
	dateKeys      = []string{"date", "event_date", "eventDate"}
	idKeys        = []string{"id", "deck_id", "deckId", "uuid"}
)

// DecodeCorpus reads a JSON or YAML corpus: either a list of deck records or an object
// wrapping one under decks/data/results/items. Records that are not objects are skipped,
// and so are card lines without a name or with a non-positive or non-integral quantity.
func DecodeCorpus(r io.Reader, format CorpusFormat) ([]*HistoricalDeck, error) {
	var raw any
	switch format {
	case CorpusJSON, "":
		dec := json.NewDecoder(r)
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode corpus json: %w", err)
		}
	case CorpusYAML:
		if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return []*HistoricalDeck{}, nil
			}
			return nil, fmt.Errorf("failed to decode corpus yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCorpusFormat, format)
	}

	items, ok := raw.([]any)
	if !ok {
		obj, isObj := record.AsFields(raw)
		if !isObj {
			if raw == nil {
				return []*HistoricalDeck{}, nil
			}
			return nil, fmt.Errorf("corpus must be a list or an object, got %T", raw)
		}
		items, _ = obj.List(deckListKeys...)
	}

	decks := make([]*HistoricalDeck, 0, len(items))
	for _, item := range items {
		fields, ok := record.AsFields(item)
		if !ok {
			continue
		}
		decks = append(decks, deckFromFields(fields))
	}
	return decks, nil
}

func deckFromFields(f record.Fields) *HistoricalDeck {
	deck := &HistoricalDeck{
		ID:        f.String(idKeys...),
		Format:    f.String("format"),
		Archetype: f.String(archetypeKeys...),
		Event:     f.String(eventKeys...),
		Date:      f.String(dateKeys...),
		Placement: f.String(placementKeys...),
		Source:    f.String("source", "url"),
	}

	if v, ok := f.Lookup(cardListKeys...); ok {
		deck.Cards = cardsFromValue(v)
	}
	if deck.Cards == nil {
		deck.Cards = []DeckCard{}
	}

	if deck.ID == "" {
		deck.ID = recordID(f)
	}
	return deck
}

// cardsFromValue accepts a decklist string, a list of "4 Name" strings, a list of card
// objects, or a name -> quantity object.
func cardsFromValue(v any) []DeckCard {
	switch list := v.(type) {
	case string:
		return cardsFromText(list)
	case []any:
		out := make([]DeckCard, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, cardsFromText(s)...)
				continue
			}
			fields, ok := record.AsFields(item)
			if !ok {
				continue
			}
			if card, ok := cardFromFields(fields); ok {
				out = append(out, card)
			}
		}
		return out
	}

	obj, ok := record.AsFields(v)
	if !ok {
		return nil
	}
	out := make([]DeckCard, 0, len(obj))
	for name, qty := range obj {
		n, ok := record.ToInt(qty)
		if !ok || n <= 0 || strings.TrimSpace(name) == "" {
			continue
		}
		out = append(out, DeckCard{Name: strings.TrimSpace(name), Quantity: n})
	}
	// Map iteration order is random.
	sortDeckCards(out)
	return out
}

func sortDeckCards(cards []DeckCard) {
	sort.Slice(cards, func(i, j int) bool {
		return cards[i].Name < cards[j].Name
	})
}

func cardsFromText(text string) []DeckCard {
	entries := deckimport.Parse(text)
	out := make([]DeckCard, 0, len(entries))
	for _, e := range entries {
		out = append(out, DeckCard{Name: e.RawName, Quantity: e.Quantity})
	}
	return out
}

func cardFromFields(f record.Fields) (DeckCard, bool) {
	card := DeckCard{
		Name:   f.String(cardNameKeys...),
		CardID: f.String("card_id", "cardId"),
	}
	if card.Name == "" && card.CardID == "" {
		card.CardID = f.String(cardIDKeys...)
	}
	if card.Name == "" && card.CardID == "" {
		return DeckCard{}, false
	}

	card.Quantity = 1
	if v, ok := f.Lookup(quantityKeys...); ok {
		n, ok := record.ToInt(v)
		if !ok || n <= 0 {
			return DeckCard{}, false
		}
		card.Quantity = n
	}
	return card, true
}

// recordID derives a stable identifier from the record content.
func recordID(f record.Fields) string {
	data, err := json.Marshal(map[string]any(f))
	if err != nil {
		data = []byte(fmt.Sprint(map[string]any(f)))
	}
	return uuid.NewSHA1(corpusNamespace, data).String()
}

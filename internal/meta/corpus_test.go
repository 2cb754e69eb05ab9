package meta

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonCorpus = `{
  "decks": [
    {
      "id": "deck-1",
      "format": "Core",
      "archetype": "Amber Steel",
      "tournament": "Store Championship",
      "event_date": "2024-05-04",
      "placement": "Top 8",
      "cards": ["4 Tipo - Growing Son", "2 Hades - Infernal Schemer"]
    },
    {
      "deckType": "Ruby Sapphire",
      "rank": 3,
      "decklist": [
        {"name": "Tinker Bell - Giant Fairy", "qty": 4},
        {"card_name": "Hades", "count": "2"},
        {"cardName": "Broken", "amount": 1.5},
        {"card": "NaN Quantity", "copies": "NaN"},
        {"name": "Negative", "quantity": -1},
        {"card_id": "1-3", "quantity": 1},
        {"quantity": 4},
        {"name": "Default Quantity"}
      ]
    },
    "not a deck",
    {"list": "4 Tipo\n\nsideboard\n2 Hades"}
  ]
}`

func TestDecodeCorpus_JSON(t *testing.T) {
	decks, err := DecodeCorpus(strings.NewReader(jsonCorpus), CorpusJSON)
	require.NoError(t, err)
	require.Len(t, decks, 3)

	first := decks[0]
	assert.Equal(t, "deck-1", first.ID)
	assert.Equal(t, "Core", first.Format)
	assert.Equal(t, "Amber Steel", first.Archetype)
	assert.Equal(t, "Store Championship", first.Event)
	assert.Equal(t, "2024-05-04", first.Date)
	assert.Equal(t, 8, *first.Finish())
	assert.Equal(t, []DeckCard{
		{Name: "Tipo - Growing Son", Quantity: 4},
		{Name: "Hades - Infernal Schemer", Quantity: 2},
	}, first.Cards)

	second := decks[1]
	assert.Equal(t, "Ruby Sapphire", second.Archetype)
	assert.Equal(t, "3", second.Placement)
	assert.Equal(t, []DeckCard{
		{Name: "Tinker Bell - Giant Fairy", Quantity: 4},
		{Name: "Hades", Quantity: 2},
		{CardID: "1-3", Quantity: 1},
		{Name: "Default Quantity", Quantity: 1},
	}, second.Cards)
	assert.NotEmpty(t, second.ID, "records without an id get a derived one")

	third := decks[2]
	assert.Equal(t, []DeckCard{
		{Name: "Tipo", Quantity: 4},
		{Name: "Hades", Quantity: 2},
	}, third.Cards)
}

func TestDecodeCorpus_DerivedIDsAreStable(t *testing.T) {
	input := `[{"archetype": "A", "cards": ["4 Tipo"]}, {"archetype": "B", "cards": ["4 Tipo"]}]`

	first, err := DecodeCorpus(strings.NewReader(input), CorpusJSON)
	require.NoError(t, err)
	second, err := DecodeCorpus(strings.NewReader(input), CorpusJSON)
	require.NoError(t, err)

	require.Len(t, first, 2)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, first[1].ID, second[1].ID)
	assert.NotEqual(t, first[0].ID, first[1].ID)
}

func TestDecodeCorpus_YAML(t *testing.T) {
	input := `
- id: y1
  format: Core
  archetype: Emerald Amethyst
  date: 2024-06-01
  finish: 2nd
  cards:
    - 4 Tipo - Growing Son
    - name: Hades - Infernal Schemer
      quantity: 3
- archetype: Steel
  cards:
    Hades: 2
    Tipo: 4
    Bad: 0
`
	decks, err := DecodeCorpus(strings.NewReader(input), CorpusYAML)
	require.NoError(t, err)
	require.Len(t, decks, 2)

	assert.Equal(t, "y1", decks[0].ID)
	assert.Equal(t, "2024-06-01", decks[0].Date)
	assert.Equal(t, 2, *decks[0].Finish())
	assert.Equal(t, 7, decks[0].CardCount())

	assert.Equal(t, []DeckCard{
		{Name: "Hades", Quantity: 2},
		{Name: "Tipo", Quantity: 4},
	}, decks[1].Cards)
}

func TestDecodeCorpus_EmptyAndInvalid(t *testing.T) {
	decks, err := DecodeCorpus(strings.NewReader(""), CorpusYAML)
	require.NoError(t, err)
	assert.Empty(t, decks)

	decks, err = DecodeCorpus(strings.NewReader(`{"other": 1}`), CorpusJSON)
	require.NoError(t, err)
	assert.Empty(t, decks)

	_, err = DecodeCorpus(strings.NewReader(`[{`), CorpusJSON)
	assert.Error(t, err)

	_, err = DecodeCorpus(strings.NewReader(`42`), CorpusJSON)
	assert.Error(t, err)

	_, err = DecodeCorpus(strings.NewReader(`[]`), CorpusFormat("csv"))
	assert.ErrorIs(t, err, ErrUnknownCorpusFormat)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, CorpusYAML, FormatFromPath("/data/corpus.YML"))
	assert.Equal(t, CorpusYAML, FormatFromPath("corpus.yaml"))
	assert.Equal(t, CorpusJSON, FormatFromPath("corpus.json"))
	assert.Equal(t, CorpusJSON, FormatFromPath("corpus"))
}

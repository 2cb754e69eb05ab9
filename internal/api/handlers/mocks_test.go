package handlers

import (
	"context"

	"github.com/guibruno93/lorcana-companion/internal/lorcana/cards"
	"github.com/guibruno93/lorcana-companion/internal/lorcana/cards/fuzzy"
	"github.com/guibruno93/lorcana-companion/internal/lorcana/deckimport"
	"github.com/guibruno93/lorcana-companion/internal/meta"
)

type mockDeckService struct {
	parsed   *deckimport.ParseResult
	resolved *deckimport.ResolvedDeck
	report   *meta.CompareReport
	err      error

	lastText    string
	lastCompare meta.CompareRequest
}

func (m *mockDeckService) ParseDeck(text string) *deckimport.ParseResult {
	m.lastText = text
	return m.parsed
}

func (m *mockDeckService) ResolveDeck(_ context.Context, text string) (*deckimport.ResolvedDeck, error) {
	m.lastText = text
	return m.resolved, m.err
}

func (m *mockDeckService) CompareDeck(_ context.Context, req meta.CompareRequest) (*meta.CompareReport, error) {
	m.lastCompare = req
	return m.report, m.err
}

type mockCardService struct {
	candidates []fuzzy.Candidate
	result     fuzzy.Result
	card       *cards.Card
	err        error

	lastLimit int
}

func (m *mockCardService) SearchCards(_ context.Context, _ string, limit int) ([]fuzzy.Candidate, error) {
	m.lastLimit = limit
	return m.candidates, m.err
}

func (m *mockCardService) SuggestCard(_ context.Context, _ string) (fuzzy.Result, error) {
	return m.result, m.err
}

func (m *mockCardService) GetCard(_ context.Context, _ string) (*cards.Card, error) {
	return m.card, m.err
}

type mockSystemService struct {
	status *meta.Status
	err    error
}

func (m *mockSystemService) Status(_ context.Context) (*meta.Status, error) {
	return m.status, m.err
}

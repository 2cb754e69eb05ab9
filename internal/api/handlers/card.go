package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/guibruno93/lorcana-companion/internal/api/response"
	"github.com/guibruno93/lorcana-companion/internal/lorcana/cards"
	"github.com/guibruno93/lorcana-companion/internal/lorcana/cards/fuzzy"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 100
)

// CardService is the subset of the meta service used by CardHandler.
type CardService interface {
	SearchCards(ctx context.Context, query string, limit int) ([]fuzzy.Candidate, error)
	SuggestCard(ctx context.Context, name string) (fuzzy.Result, error)
	GetCard(ctx context.Context, id string) (*cards.Card, error)
}

// CardHandler handles card-related API requests.
type CardHandler struct {
	service CardService
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(service CardService) *CardHandler {
	return &CardHandler{service: service}
}

// SearchCards returns scored catalog candidates for a free-text query.
func (h *CardHandler) SearchCards(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		response.BadRequest(w, errors.New("query parameter q is required"))
		return
	}

	limit := defaultSearchLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l <= 0 {
			response.BadRequest(w, errors.New("limit must be a positive integer"))
			return
		}
		limit = min(l, maxSearchLimit)
	}

	candidates, err := h.service.SearchCards(r.Context(), query, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, candidates)
}

// SuggestCard resolves a single, possibly misspelled, card name.
func (h *CardHandler) SuggestCard(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		response.BadRequest(w, errors.New("query parameter name is required"))
		return
	}

	result, err := h.service.SuggestCard(r.Context(), name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, result)
}

// GetCard returns a card by catalog ID.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardID")
	if cardID == "" {
		response.BadRequest(w, errors.New("card ID is required"))
		return
	}

	card, err := h.service.GetCard(r.Context(), cardID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, card)
}

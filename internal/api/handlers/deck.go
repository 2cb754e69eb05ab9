package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/guibruno93/lorcana-companion/internal/api/response"
	"github.com/guibruno93/lorcana-companion/internal/lorcana/deckimport"
	"github.com/guibruno93/lorcana-companion/internal/meta"
)

// DeckService is the subset of the meta service used by DeckHandler.
type DeckService interface {
	ParseDeck(text string) *deckimport.ParseResult
	ResolveDeck(ctx context.Context, text string) (*deckimport.ResolvedDeck, error)
	CompareDeck(ctx context.Context, req meta.CompareRequest) (*meta.CompareReport, error)
}

// DeckHandler handles deck-related API requests.
type DeckHandler struct {
	service DeckService
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(service DeckService) *DeckHandler {
	return &DeckHandler{service: service}
}

// DecklistRequest carries raw decklist text.
type DecklistRequest struct {
	Decklist string `json:"decklist"`
}

// maxDecklistBody caps request bodies; real decklists are a few kilobytes.
const maxDecklistBody = 1 << 20

var errBodyTooLarge = errors.New("request body too large")

func decodeDecklist(w http.ResponseWriter, r *http.Request, req interface{}, text func() string) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxDecklistBody)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errBodyTooLarge
		}
		return errors.New("invalid request body")
	}
	if strings.TrimSpace(text()) == "" {
		return errors.New("decklist is required")
	}
	return nil
}

func writeDecodeError(w http.ResponseWriter, err error) {
	if errors.Is(err, errBodyTooLarge) {
		response.Error(w, http.StatusRequestEntityTooLarge, err)
		return
	}
	response.BadRequest(w, err)
}

// ParseDeckList splits a decklist into entries without resolving it.
func (h *DeckHandler) ParseDeckList(w http.ResponseWriter, r *http.Request) {
	var req DecklistRequest
	if err := decodeDecklist(w, r, &req, func() string { return req.Decklist }); err != nil {
		writeDecodeError(w, err)
		return
	}

	response.Success(w, h.service.ParseDeck(req.Decklist))
}

// ResolveDeck resolves every line of a decklist against the card catalog.
func (h *DeckHandler) ResolveDeck(w http.ResponseWriter, r *http.Request) {
	var req DecklistRequest
	if err := decodeDecklist(w, r, &req, func() string { return req.Decklist }); err != nil {
		writeDecodeError(w, err)
		return
	}

	deck, err := h.service.ResolveDeck(r.Context(), req.Decklist)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, deck)
}

// CompareDeck ranks the historical corpus against a decklist.
func (h *DeckHandler) CompareDeck(w http.ResponseWriter, r *http.Request) {
	var req meta.CompareRequest
	if err := decodeDecklist(w, r, &req, func() string { return req.Decklist }); err != nil {
		writeDecodeError(w, err)
		return
	}
	if req.TopK != nil && *req.TopK < 0 {
		response.BadRequest(w, errors.New("top_k must not be negative"))
		return
	}
	if req.MaxFinish != nil && *req.MaxFinish < 1 {
		response.BadRequest(w, errors.New("max_finish must be at least 1"))
		return
	}
	if req.MinSimilarity != nil && (*req.MinSimilarity < 0 || *req.MinSimilarity > 1) {
		response.BadRequest(w, errors.New("min_similarity must be between 0 and 1"))
		return
	}

	report, err := h.service.CompareDeck(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, report)
}

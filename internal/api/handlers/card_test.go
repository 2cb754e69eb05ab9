package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guibruno93/lorcana-companion/internal/lorcana/cards"
	"github.com/guibruno93/lorcana-companion/internal/lorcana/cards/fuzzy"
	"github.com/guibruno93/lorcana-companion/internal/meta"
)

func TestCardHandler_SearchCards(t *testing.T) {
	card := &cards.Card{ID: "1-1", Name: "Tinker Bell", Version: "Giant Fairy"}

	tests := []struct {
		name           string
		query          string
		err            error
		expectedStatus int
		expectedLimit  int
	}{
		{"default limit", "?q=tinker", nil, http.StatusOK, defaultSearchLimit},
		{"explicit limit", "?q=tinker&limit=3", nil, http.StatusOK, 3},
		{"limit capped", "?q=tinker&limit=5000", nil, http.StatusOK, maxSearchLimit},
		{"missing query", "", nil, http.StatusBadRequest, 0},
		{"bad limit", "?q=tinker&limit=abc", nil, http.StatusBadRequest, 0},
		{"zero limit", "?q=tinker&limit=0", nil, http.StatusBadRequest, 0},
		{"catalog unavailable", "?q=tinker", cards.ErrCatalogUnavailable, http.StatusServiceUnavailable, defaultSearchLimit},
		{"cancelled", "?q=tinker", context.Canceled, http.StatusServiceUnavailable, defaultSearchLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockCardService{
				candidates: []fuzzy.Candidate{{Card: card, Score: 0.9}},
				err:        tt.err,
			}
			handler := NewCardHandler(mock)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/cards/search"+tt.query, nil)
			rec := httptest.NewRecorder()
			handler.SearchCards(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectedLimit, mock.lastLimit)

			if tt.expectedStatus == http.StatusOK {
				var resp struct {
					Data []fuzzy.Candidate `json:"data"`
				}
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				require.Len(t, resp.Data, 1)
				assert.Equal(t, "1-1", resp.Data[0].Card.ID)
			}
		})
	}
}

func TestCardHandler_SuggestCard(t *testing.T) {
	best := fuzzy.Candidate{Card: &cards.Card{ID: "1-1", Name: "Tinker Bell"}, Score: 0.91}
	mock := &mockCardService{result: fuzzy.Result{Candidates: []fuzzy.Candidate{best}, Best: &best}}
	handler := NewCardHandler(mock)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cards/suggest?name=tinkerbell", nil)
	rec := httptest.NewRecorder()
	handler.SuggestCard(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data fuzzy.Result `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Data.Best)
	assert.Equal(t, "1-1", resp.Data.Best.Card.ID)

	rec = httptest.NewRecorder()
	handler.SuggestCard(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cards/suggest", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCardHandler_GetCard(t *testing.T) {
	tests := []struct {
		name           string
		card           *cards.Card
		err            error
		expectedStatus int
	}{
		{"found", &cards.Card{ID: "2-7", Name: "Tipo"}, nil, http.StatusOK},
		{"not found", nil, fmt.Errorf("%w: 9-9", meta.ErrCardNotFound), http.StatusNotFound},
		{"no catalog", nil, cards.ErrCatalogUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewCardHandler(&mockCardService{card: tt.card, err: tt.err})

			r := chi.NewRouter()
			r.Get("/api/v1/cards/{cardID}", handler.GetCard)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/cards/2-7", nil)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

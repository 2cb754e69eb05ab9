package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/guibruno93/lorcana-companion/internal/api/handlers"
	"github.com/guibruno93/lorcana-companion/internal/api/response"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint (no versioning)
	s.router.Get("/health", s.healthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		if s.services == nil {
			return
		}

		if s.services.Deck != nil {
			deckHandler := handlers.NewDeckHandler(s.services.Deck)
			r.Route("/decks", func(r chi.Router) {
				r.Post("/parse", deckHandler.ParseDeckList)
				r.Post("/resolve", deckHandler.ResolveDeck)
				r.Post("/compare", deckHandler.CompareDeck)
			})
		}

		if s.services.Card != nil {
			cardHandler := handlers.NewCardHandler(s.services.Card)
			r.Route("/cards", func(r chi.Router) {
				r.Get("/search", cardHandler.SearchCards)
				r.Get("/suggest", cardHandler.SuggestCard)
				r.Get("/{cardID}", cardHandler.GetCard)
			})
		}

		if s.services.System != nil {
			systemHandler := handlers.NewSystemHandler(s.services.System)
			r.Route("/system", func(r chi.Router) {
				r.Get("/status", systemHandler.GetStatus)
				r.Get("/version", systemHandler.GetVersion)
			})
		}
	})
}

// healthCheck returns the API health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	})
}

// Package handlers implements the REST endpoints over the deck, card and system services.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/guibruno93/lorcana-companion/internal/api/response"
	"github.com/guibruno93/lorcana-companion/internal/lorcana/cards"
	"github.com/guibruno93/lorcana-companion/internal/meta"
)

// writeServiceError maps service errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, meta.ErrCardNotFound):
		response.NotFound(w, err)
	case errors.Is(err, cards.ErrCatalogUnavailable):
		response.ServiceUnavailable(w, err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		response.ServiceUnavailable(w, err)
	default:
		response.InternalError(w, err)
	}
}

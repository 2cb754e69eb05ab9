package handlers

import (
	"context"
	"net/http"

	"github.com/guibruno93/lorcana-companion/internal/api/response"
	"github.com/guibruno93/lorcana-companion/internal/meta"
	"github.com/guibruno93/lorcana-companion/internal/version"
)

// SystemService reports catalog and corpus state.
type SystemService interface {
	Status(ctx context.Context) (*meta.Status, error)
}

// SystemHandler handles system-related API requests.
type SystemHandler struct {
	service SystemService
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(service SystemService) *SystemHandler {
	return &SystemHandler{service: service}
}

// GetStatus returns the catalog, corpus and metrics status.
func (h *SystemHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Status(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, status)
}

// GetVersion returns the application version.
func (h *SystemHandler) GetVersion(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"version": version.String(),
		"service": "lorcana-companion-api",
	})
}

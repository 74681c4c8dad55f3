package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Akanimoh12/iPredict/internal/domain"
)

// PlatformService defines the platform-state read the handler requires.
type PlatformService interface {
	Platform(ctx context.Context) (domain.PlatformState, error)
}

// PlatformHandler serves the global contract state shown on the dashboard.
type PlatformHandler struct {
	platform PlatformService
	logger   *slog.Logger
}

// NewPlatformHandler creates a PlatformHandler.
func NewPlatformHandler(platform PlatformService, logger *slog.Logger) *PlatformHandler {
	return &PlatformHandler{
		platform: platform,
		logger:   logger,
	}
}

// GetPlatform returns the admin address, market count, fee, pause flag, and
// accumulated fees.
// GET /api/platform
func (h *PlatformHandler) GetPlatform(w http.ResponseWriter, r *http.Request) {
	state, err := h.platform.Platform(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to get platform state")
		return
	}

	writeJSON(w, http.StatusOK, state)
}

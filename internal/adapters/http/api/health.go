package api

import (
	"context"
	"net/http"

	"github.com/okian/demo-microservice/internal/domain/payload"
)

// HealthDependencies defines the interface for the health payload.
type HealthDependencies interface {
	Health(ctx context.Context) payload.Health
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	deps HealthDependencies
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(deps HealthDependencies) *HealthHandler {
	return &HealthHandler{deps: deps}
}

// HandleHealth handles GET /health requests. It always reports UP; no
// downstream checks exist.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Health(r.Context()))
}

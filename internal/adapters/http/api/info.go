package api

import (
	"context"
	"net/http"

	"github.com/okian/demo-microservice/internal/domain/payload"
)

// InfoDependencies defines the interface for the info payload.
type InfoDependencies interface {
	Info(ctx context.Context) payload.Info
}

// InfoHandler handles service info requests.
type InfoHandler struct {
	deps InfoDependencies
}

// NewInfoHandler creates a new info handler.
func NewInfoHandler(deps InfoDependencies) *InfoHandler {
	return &InfoHandler{deps: deps}
}

// HandleInfo handles GET /info requests.
func (h *InfoHandler) HandleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Info(r.Context()))
}

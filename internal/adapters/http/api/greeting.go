package api

import (
	"context"
	"net/http"

	"github.com/okian/demo-microservice/internal/domain/payload"
)

// GreetingDependencies defines the interface for greeting operations.
type GreetingDependencies interface {
	Root(ctx context.Context) payload.Root
	Greet(ctx context.Context, name string) payload.Greeting
}

// GreetingHandler handles the root and named greetings.
type GreetingHandler struct {
	deps GreetingDependencies
}

// NewGreetingHandler creates a new greeting handler.
func NewGreetingHandler(deps GreetingDependencies) *GreetingHandler {
	return &GreetingHandler{deps: deps}
}

// HandleRoot handles GET / requests.
func (h *GreetingHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Root(r.Context()))
}

// HandleHelloName handles GET /hello/{name} requests. The name segment is
// passed on as decoded by the mux, without validation.
func (h *GreetingHandler) HandleHelloName(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Greet(r.Context(), r.PathValue("name")))
}

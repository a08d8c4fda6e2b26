// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/demo-microservice/internal/domain/payload"
	"github.com/okian/demo-microservice/pkg/metrics"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Root(ctx context.Context) payload.Root
	Health(ctx context.Context) payload.Health
	Greet(ctx context.Context, name string) payload.Greeting
	Info(ctx context.Context) payload.Info
}

// Route binds a method and ServeMux pattern to a handler. Name labels the
// route in metrics and logs.
type Route struct {
	Method  string
	Pattern string
	Name    string
	Handler http.HandlerFunc
}

// Server wires HTTP routes for the service API.
type Server struct {
	greetingHandler *GreetingHandler
	healthHandler   *HealthHandler
	infoHandler     *InfoHandler
	metrics         *metrics.Manager
}

// NewServer creates a new API server with all handlers. Route metrics are
// recorded on m, or on metrics.Default() when m is nil.
func NewServer(deps Dependencies, m *metrics.Manager) *Server {
	return &Server{
		greetingHandler: NewGreetingHandler(deps),
		healthHandler:   NewHealthHandler(deps),
		infoHandler:     NewInfoHandler(deps),
		metrics:         orDefault(m),
	}
}

// Routes returns the route table in registration order.
func (s *Server) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Pattern: "/{$}", Name: "root", Handler: s.greetingHandler.HandleRoot},
		{Method: http.MethodGet, Pattern: "/health", Name: "health", Handler: s.healthHandler.HandleHealth},
		{Method: http.MethodGet, Pattern: "/hello/{name}", Name: "hello_name", Handler: s.greetingHandler.HandleHelloName},
		{Method: http.MethodGet, Pattern: "/info", Name: "info", Handler: s.infoHandler.HandleInfo},
	}
}

// Register attaches all HTTP routes to mux. Unmatched paths and methods fall
// through to the mux's own 404 and 405 responses.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	for _, route := range s.Routes() {
		mux.HandleFunc(route.Method+" "+route.Pattern, MetricsMiddleware(s.metrics, route.Handler, route.Name))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

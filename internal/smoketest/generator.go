package smoketest

import (
	"net/url"

	"github.com/google/uuid"
)

// Route names, matching the labels the service uses in its metrics.
const (
	RouteRoot      = "root"
	RouteHealth    = "health"
	RouteHelloName = "hello_name"
	RouteInfo      = "info"
)

var routeOrder = []string{RouteRoot, RouteHealth, RouteHelloName, RouteInfo}

// Probe is one request and what its response must contain.
type Probe struct {
	Route     string
	Path      string
	Name      string // set for RouteHelloName
	RequestID string
}

// generateProbes spreads n probes round-robin over the four routes. Greeting
// probes carry a generated name so the echo can be checked.
func generateProbes(n int) []Probe {
	if n <= 0 {
		return nil
	}
	probes := make([]Probe, 0, n)
	for i := 0; i < n; i++ {
		p := Probe{
			Route:     routeOrder[i%len(routeOrder)],
			RequestID: uuid.NewString(),
		}
		switch p.Route {
		case RouteRoot:
			p.Path = "/"
		case RouteHealth:
			p.Path = "/health"
		case RouteHelloName:
			p.Name = "smoke " + uuid.NewString()[:8]
			p.Path = "/hello/" + url.PathEscape(p.Name)
		case RouteInfo:
			p.Path = "/info"
		}
		probes = append(probes, p)
	}
	return probes
}

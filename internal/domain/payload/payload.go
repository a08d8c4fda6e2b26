// Package payload contains the JSON response bodies served by the API.
// Field order in each struct is the field order on the wire.
package payload

// Service identity constants.
const (
	ServiceName = "demo-microservice"
	Version     = "1.0.0"
	Description = "A simple Spring Boot microservice"
	StatusUp    = "UP"
	RootMessage = "Hello from Spring Boot Microservice!"
)

// Root is the body of GET /.
type Root struct {
	Message   string        `json:"message"`
	Timestamp LocalDateTime `json:"timestamp"`
	Service   string        `json:"service"`
	Version   string        `json:"version"`
}

// Health is the body of GET /health.
type Health struct {
	Status    string        `json:"status"`
	Timestamp LocalDateTime `json:"timestamp"`
	Service   string        `json:"service"`
}

// Greeting is the body of GET /hello/{name}.
type Greeting struct {
	Message   string        `json:"message"`
	Timestamp LocalDateTime `json:"timestamp"`
	Service   string        `json:"service"`
}

// Info is the body of GET /info. The dotted keys are kept for clients that
// read them; their values describe the Go runtime hosting the service.
type Info struct {
	Service        string        `json:"service"`
	Version        string        `json:"version"`
	Description    string        `json:"description"`
	Timestamp      LocalDateTime `json:"timestamp"`
	RuntimeVersion string        `json:"java.version"`
	OSName         string        `json:"os.name"`
}

// GreetingMessage interpolates name verbatim.
func GreetingMessage(name string) string {
	return "Hello " + name + "!"
}

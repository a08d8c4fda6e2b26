package smoketest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/demo-microservice/internal/domain/payload"
)

// Verification errors.
var (
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrUnexpectedBody   = errors.New("unexpected body")
	ErrRequestIDEcho    = errors.New("request id not echoed")
)

// verifyResponse checks status, headers and body of a probe's response.
func verifyResponse(p Probe, status int, header http.Header, body []byte) error {
	if status != http.StatusOK {
		return fmt.Errorf("%w: %s got %d", ErrUnexpectedStatus, p.Path, status)
	}
	if ct := header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		return fmt.Errorf("%w: %s content type %q", ErrUnexpectedBody, p.Path, ct)
	}
	if p.RequestID != "" && header.Get("X-Request-ID") != p.RequestID {
		return fmt.Errorf("%w: %s", ErrRequestIDEcho, p.Path)
	}

	if err := validateSchema(p.Route, body); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnexpectedBody, p.Path, err)
	}

	switch p.Route {
	case RouteRoot:
		var v payload.Root
		if err := json.Unmarshal(body, &v); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrUnexpectedBody, p.Path, err)
		}
		return expectAll(p.Path,
			field{"message", v.Message, payload.RootMessage},
			field{"service", v.Service, payload.ServiceName},
			field{"version", v.Version, payload.Version},
		)
	case RouteHealth:
		var v payload.Health
		if err := json.Unmarshal(body, &v); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrUnexpectedBody, p.Path, err)
		}
		return expectAll(p.Path,
			field{"status", v.Status, payload.StatusUp},
			field{"service", v.Service, payload.ServiceName},
		)
	case RouteHelloName:
		var v payload.Greeting
		if err := json.Unmarshal(body, &v); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrUnexpectedBody, p.Path, err)
		}
		return expectAll(p.Path,
			field{"message", v.Message, payload.GreetingMessage(p.Name)},
			field{"service", v.Service, payload.ServiceName},
		)
	case RouteInfo:
		var v payload.Info
		if err := json.Unmarshal(body, &v); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrUnexpectedBody, p.Path, err)
		}
		if v.RuntimeVersion == "" || v.OSName == "" {
			return fmt.Errorf("%w: %s: empty runtime fields", ErrUnexpectedBody, p.Path)
		}
		return expectAll(p.Path,
			field{"service", v.Service, payload.ServiceName},
			field{"version", v.Version, payload.Version},
			field{"description", v.Description, payload.Description},
		)
	}
	return nil
}

// verifyNotFound checks that an unknown path is rejected.
func verifyNotFound(status int) error {
	if status != http.StatusNotFound {
		return fmt.Errorf("%w: unknown path got %d", ErrUnexpectedStatus, status)
	}
	return nil
}

type field struct {
	name      string
	got, want string
}

func expectAll(path string, fields ...field) error {
	for _, f := range fields {
		if f.got != f.want {
			return fmt.Errorf("%w: %s: %s is %q, want %q", ErrUnexpectedBody, path, f.name, f.got, f.want)
		}
	}
	return nil
}

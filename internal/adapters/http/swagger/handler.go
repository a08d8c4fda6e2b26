// Package swagger serves the embedded OpenAPI document and a ReDoc viewer.
package swagger

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
)

// RedocBundle is the file name of the ReDoc standalone bundle.
const RedocBundle = "redoc.standalone.js"

// redocCDN is used when no local bundle is configured.
const redocCDN = "https://cdn.redoc.ly/redoc/latest/bundles/" + RedocBundle

// localRedocPath is where a local bundle is served.
const localRedocPath = "/api-docs/" + RedocBundle

// ErrAssets reports an unusable docs assets directory.
var ErrAssets = errors.New("swagger assets unavailable")

// OpenAPI contains the embedded OpenAPI YAML document.
//
//go:embed openapi.yaml
var OpenAPI []byte

type options struct {
	assets fs.FS
}

// Option configures Register.
type Option func(*options)

// WithAssets serves the ReDoc bundle from assets, so the docs page works
// without reaching the CDN. assets must contain RedocBundle at its root.
func WithAssets(assets fs.FS) Option {
	return func(o *options) {
		o.assets = assets
	}
}

// CheckAssetsDir verifies that dir holds the ReDoc bundle.
func CheckAssetsDir(dir string) error {
	if _, err := fs.Stat(os.DirFS(dir), RedocBundle); err != nil {
		return fmt.Errorf("%w: %w", ErrAssets, err)
	}
	return nil
}

// Register attaches the docs routes to mux:
//
//	GET /api-docs                      -> ReDoc HTML
//	GET /openapi.yaml                  -> embedded OpenAPI document
//	GET /api-docs/redoc.standalone.js  -> local ReDoc bundle (WithAssets only)
func Register(_ context.Context, mux *http.ServeMux, opts ...Option) {
	if mux == nil {
		panic("mux is nil")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	scriptSrc := redocCDN
	if o.assets != nil {
		scriptSrc = localRedocPath
		mux.HandleFunc("GET "+localRedocPath, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
			http.ServeFileFS(w, r, o.assets, RedocBundle)
		})
	}
	page := fmt.Sprintf(indexHTML, scriptSrc)

	mux.HandleFunc("GET /api-docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	})

	mux.HandleFunc("GET /openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(OpenAPI)
	})
}

// Minimal HTML that loads ReDoc from %s and points it at /openapi.yaml.
const indexHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>demo-microservice API Docs</title>
    <style>body{margin:0;padding:0}</style>
  </head>
  <body>
    <redoc id="redoc-container"></redoc>
    <script src="%s"></script>
    <script>Redoc.init('/openapi.yaml', { suppressWarnings: true }, document.getElementById('redoc-container'));</script>
  </body>
</html>`

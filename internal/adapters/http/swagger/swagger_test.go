package swagger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/smartystreets/goconvey/convey"
)

func TestSwaggerHandler(t *testing.T) {
	convey.Convey("Given a swagger handler", t, func() {
		ctx := context.Background()
		mux := http.NewServeMux()

		convey.Convey("When registering the swagger handler", func() {
			Register(ctx, mux)

			convey.Convey("Then it should handle /openapi.yaml route", func() {
				req := httptest.NewRequest("GET", "/openapi.yaml", http.NoBody)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "application/yaml; charset=utf-8")
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "/hello/{name}:")
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "java.version")
			})

			convey.Convey("And it should handle /api-docs route", func() {
				req := httptest.NewRequest("GET", "/api-docs", http.NoBody)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "text/html; charset=utf-8")
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "redoc-container")
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "/openapi.yaml")
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "cdn.redoc.ly")
			})

			convey.Convey("And no local bundle route should exist", func() {
				req := httptest.NewRequest("GET", "/api-docs/redoc.standalone.js", http.NoBody)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				convey.So(w.Code, convey.ShouldEqual, http.StatusNotFound)
			})

			convey.Convey("And it should reject other methods", func() {
				req := httptest.NewRequest("POST", "/openapi.yaml", http.NoBody)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				convey.So(w.Code, convey.ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestSwaggerHandlerWithLocalAssets(t *testing.T) {
	convey.Convey("Given a local ReDoc bundle", t, func() {
		assets := fstest.MapFS{RedocBundle: &fstest.MapFile{Data: []byte("window.Redoc={init:function(){}};")}}
		mux := http.NewServeMux()
		Register(context.Background(), mux, WithAssets(assets))

		convey.Convey("When requesting the docs page", func() {
			req := httptest.NewRequest("GET", "/api-docs", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			convey.Convey("Then it should load the bundle locally", func() {
				convey.So(w.Body.String(), convey.ShouldContainSubstring, `src="/api-docs/redoc.standalone.js"`)
				convey.So(w.Body.String(), convey.ShouldNotContainSubstring, "cdn.redoc.ly")
			})
		})

		convey.Convey("When requesting the bundle", func() {
			req := httptest.NewRequest("GET", "/api-docs/redoc.standalone.js", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			convey.Convey("Then it should be served from the assets", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "application/javascript; charset=utf-8")
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "window.Redoc")
			})
		})
	})
}

func TestCheckAssetsDir(t *testing.T) {
	convey.Convey("Given an assets directory", t, func() {
		dir := t.TempDir()

		convey.Convey("When the bundle is missing", func() {
			convey.Convey("Then it should be rejected", func() {
				convey.So(errors.Is(CheckAssetsDir(dir), ErrAssets), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the bundle is present", func() {
			convey.So(os.WriteFile(filepath.Join(dir, RedocBundle), []byte("//"), 0o600), convey.ShouldBeNil)

			convey.Convey("Then it should be accepted", func() {
				convey.So(CheckAssetsDir(dir), convey.ShouldBeNil)
			})
		})
	})
}

func TestSwaggerHandlerWithNilMux(t *testing.T) {
	convey.Convey("Given a nil mux", t, func() {
		convey.Convey("Then registering should panic", func() {
			convey.So(func() {
				Register(context.Background(), nil)
			}, convey.ShouldPanic)
		})
	})
}

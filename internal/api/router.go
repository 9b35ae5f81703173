package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Reader is the read side of the snapshot cache.
type Reader interface {
	Read() ([]byte, bool)
}

// RouterDeps wires the HTTP surface.
type RouterDeps struct {
	Snapshots Reader
	Logger    *zap.Logger
	// StaticDir, when set, is served for every path no route matches.
	StaticDir string
}

// NewRouter returns the service's HTTP handler.
func NewRouter(d RouterDeps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(recoverPanic(logger))
	r.Use(withGzip)
	r.Use(withCORS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/api/data", dataHandler(d.Snapshots))

	if d.StaticDir != "" {
		r.NotFound(http.FileServer(http.Dir(d.StaticDir)).ServeHTTP)
	}
	return r
}

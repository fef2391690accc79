package site

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"portfolio-contact/api/pkg/requestid"
)

const healthTimeout = 2 * time.Second

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Service serves the health probe and the built front-end.
type Service struct {
	store     Pinger
	staticDir string
}

// NewService returns a Service serving files from staticDir. The
// directory may be missing at startup; the SPA then answers 404.
func NewService(store Pinger, staticDir string) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("service: store cannot be nil")
	}
	if staticDir == "" {
		return nil, fmt.Errorf("service: static dir cannot be empty")
	}
	if _, err := os.Stat(filepath.Join(staticDir, "index.html")); err != nil {
		slog.Warn("front-end index not found, SPA routes will 404", "dir", staticDir, "error", err)
	}
	return &Service{store: store, staticDir: staticDir}, nil
}

// LoadRoutes registers the health probe on the API router.
func (s *Service) LoadRoutes(apiRouter *mux.Router) {
	apiRouter.HandleFunc("/health", s.HandleHealth).Methods(http.MethodGet)
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (s *Service) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := s.store.Ping(ctx); err != nil {
		slog.Error("health check failed", "requestId", requestid.FromContext(r.Context()), "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(healthResponse{Status: "unhealthy", Message: "store unreachable"})
		return
	}
	_ = json.NewEncoder(w).Encode(healthResponse{Status: "ok", Message: "portfolio contact API"})
}

// APINotFound answers unknown /api routes with a JSON 404.
func APINotFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "API route not found"})
}

// MethodNotAllowed answers a known /api route called with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "method not allowed"})
}

// SPA serves static files, falling back to index.html for any other path
// so client-side routes load the app. Paths under /api/ never fall back.
func (s *Service) SPA() http.Handler {
	root := http.Dir(s.staticDir)
	files := http.FileServer(root)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
			APINotFound(w, r)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		name := path.Clean("/" + r.URL.Path)
		if name != "/" && isFile(root, name) {
			files.ServeHTTP(w, r)
			return
		}

		index := filepath.Join(s.staticDir, "index.html")
		if _, err := os.Stat(index); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				slog.Error("failed to stat index", "path", index, "error", err)
			}
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, index)
	})
}

func isFile(root http.FileSystem, name string) bool {
	f, err := root.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()
	info, err := f.Stat()
	return err == nil && !info.IsDir()
}

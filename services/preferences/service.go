package preferences

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"portfolio-contact/api/pkg/requestid"
)

// Service exposes the visitor's theme and locale over HTTP.
type Service struct {
	cookies *CookieStore
}

func NewService(cookies *CookieStore) (*Service, error) {
	if cookies == nil {
		return nil, fmt.Errorf("service: cookie store cannot be nil")
	}
	return &Service{cookies: cookies}, nil
}

func (s *Service) LoadRoutes(parentRouter *mux.Router) {
	router := parentRouter.PathPrefix("/preferences").Subrouter()
	router.StrictSlash(false)
	router.Use(jsonMiddleware)

	router.HandleFunc("", s.HandleGet).Methods(http.MethodGet)
	router.HandleFunc("", s.HandleUpdate).Methods(http.MethodPut)
	router.HandleFunc("/theme/toggle", s.HandleToggleTheme).Methods(http.MethodPost)
}

// jsonMiddleware sets the Content-Type header and advertises the client
// hints Resolve reads.
func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Accept-CH", HeaderColorScheme)
		w.Header().Add("Vary", "Cookie, "+HeaderLanguage+", "+HeaderColorScheme)
		next.ServeHTTP(w, r)
	})
}

// HandleGet returns the resolved preferences. A lang query parameter is
// persisted so later visits keep the language.
func (s *Service) HandleGet(w http.ResponseWriter, r *http.Request) {
	p := Resolve(r, s.cookies)
	if r.URL.Query().Has(LangParam) {
		if _, err := ParseLocale(r.URL.Query().Get(LangParam)); err == nil {
			s.cookies.Save(w, p)
		}
	}
	writeJSON(w, http.StatusOK, p)
}

// updateRequest is a partial update; omitted fields keep their value.
type updateRequest struct {
	Theme  *string `json:"theme"`
	Locale *string `json:"locale"`
}

func (s *Service) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	rid := requestid.FromContext(r.Context())

	var req updateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		slog.Warn("failed to decode preferences", "requestId", rid, "error", err)
		writeErrorJSON(w, "INVALID_BODY", "request body must be a JSON object", http.StatusBadRequest)
		return
	}

	p := Resolve(r, s.cookies)
	var errs []error
	if req.Theme != nil {
		t, err := ParseTheme(*req.Theme)
		errs = append(errs, err)
		if err == nil {
			p.Theme = t
		}
	}
	if req.Locale != nil {
		l, err := ParseLocale(*req.Locale)
		errs = append(errs, err)
		if err == nil {
			p = New(p.Theme, l)
		}
	}
	if err := errors.Join(errs...); err != nil {
		writeErrorJSON(w, "INVALID_PREFERENCE", err.Error(), http.StatusBadRequest)
		return
	}

	s.cookies.Save(w, p)
	slog.Info("preferences updated", "requestId", rid, "theme", p.Theme, "locale", p.Locale)
	writeJSON(w, http.StatusOK, p)
}

func (s *Service) HandleToggleTheme(w http.ResponseWriter, r *http.Request) {
	p := Resolve(r, s.cookies)
	p.Theme = p.Theme.Toggle()
	s.cookies.Save(w, p)
	slog.Debug("theme toggled", "requestId", requestid.FromContext(r.Context()), "theme", p.Theme)
	writeJSON(w, http.StatusOK, p)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func writeErrorJSON(w http.ResponseWriter, errCode, message string, status int) {
	writeJSON(w, status, map[string]any{"code": errCode, "message": message})
}

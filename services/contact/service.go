package contact

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"portfolio-contact/api/pkg/clients/email"
	"portfolio-contact/api/pkg/contactform"
	"portfolio-contact/api/services/storage"
)

// Service handles HTTP requests for contact submissions.
// It depends on the Storage and email.Client interfaces rather than
// concrete implementations; both are process-wide and shared by requests.
type Service struct {
	storage   storage.Storage
	mailer    email.Client
	schema    *contactform.Schema
	adminHash []byte
	metrics   *metrics
}

// Option configures a Service.
type Option func(*Service)

// WithSchema replaces the default validation schema.
func WithSchema(schema *contactform.Schema) Option {
	return func(s *Service) {
		if schema != nil {
			s.schema = schema
		}
	}
}

// WithAdminTokenHash enables GET /contact for bearers of the token whose
// bcrypt hash is given.
func WithAdminTokenHash(hash string) Option {
	return func(s *Service) {
		if hash != "" {
			s.adminHash = []byte(hash)
		}
	}
}

// WithRegisterer registers the submission counters with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(s *Service) {
		if reg != nil {
			reg.MustRegister(s.metrics.submissions)
		}
	}
}

// NewService creates a contact Service with the given store and mailer.
func NewService(store storage.Storage, mailer email.Client, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("service: store cannot be nil")
	}
	if mailer == nil {
		return nil, fmt.Errorf("service: mailer cannot be nil")
	}

	s := &Service{
		storage: store,
		mailer:  mailer,
		schema:  contactform.New(),
		metrics: newMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// jsonMiddleware sets the Content-Type header to application/json
func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func (s *Service) LoadRoutes(parentRouter *mux.Router) {
	router := parentRouter.PathPrefix("/contact").Subrouter()
	router.StrictSlash(false)
	router.Use(recoverJSON, jsonMiddleware)
	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	router.HandleFunc("", s.HandleSubmit).Methods(http.MethodPost)
	router.Handle("", s.requireAdmin(http.HandlerFunc(s.HandleList))).Methods(http.MethodGet)
}

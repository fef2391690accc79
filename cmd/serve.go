package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"portfolio-contact/api/pkg/clients/email"
	"portfolio-contact/api/pkg/config"
	"portfolio-contact/api/pkg/contactform"
	"portfolio-contact/api/pkg/requestid"
	"portfolio-contact/api/services/contact"
	"portfolio-contact/api/services/preferences"
	"portfolio-contact/api/services/site"
	"portfolio-contact/api/services/storage"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site and its API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, closer, err := setup()
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, release, err := openStore(ctx, cfg.Store)
	if err != nil {
		slog.Error("Failed to open store", "error", err)
		return err
	}
	defer release()

	if err := migrate(ctx, store); err != nil {
		slog.Error("Failed to migrate store", "error", err)
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	handler, err := newHandler(cfg, store, newMailer(cfg.Mail), reg)
	if err != nil {
		slog.Error("Failed to build router", "error", err)
		return err
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// the SMTP send runs inside the request
		WriteTimeout: cfg.Mail.Timeout + 30*time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("Starting server", "addr", cfg.HTTP.Addr, "store", cfg.Store.Driver, "mail", cfg.Mail.Driver)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		slog.Error("Server error", "error", err)
		return err

	case sig := <-shutdown:
		slog.Info("Shutdown signal received", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("Could not stop server gracefully", "error", err)
			srv.Close()
		}
	}
	return nil
}

func newMailer(cfg config.MailConfig) email.Client {
	if cfg.Driver == config.MailStub {
		slog.Warn("using stub mail client, notifications are only logged")
		return email.NewStubClient(cfg.From, cfg.To)
	}
	return email.NewSMTPClient(email.SMTPConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Secure:   cfg.Secure,
		User:     cfg.User,
		Password: cfg.Password,
		From:     cfg.From,
		To:       cfg.To,
		Timeout:  cfg.Timeout,
	})
}

// newHandler wires every service into one router:
//
//	/api/contact      submissions and the admin listing
//	/api/preferences  theme and locale
//	/api/health       store reachability
//	/api/*            JSON 404
//	/metrics          prometheus
//	/*                the single page app
func newHandler(cfg *config.Config, store storage.Storage, mailer email.Client, reg *prometheus.Registry) (http.Handler, error) {
	schema := contactform.New(contactform.WithDefaultSubject(cfg.Contact.DefaultSubject))

	contactService, err := contact.NewService(store, mailer,
		contact.WithSchema(schema),
		contact.WithAdminTokenHash(cfg.Admin.TokenHash),
		contact.WithRegisterer(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create contact service: %w", err)
	}

	preferencesService, err := preferences.NewService(preferences.NewCookieStore(cfg.HTTP.SecureCookies))
	if err != nil {
		return nil, fmt.Errorf("failed to create preferences service: %w", err)
	}

	siteService, err := site.NewService(store, cfg.HTTP.StaticDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create site service: %w", err)
	}

	mainRouter := mux.NewRouter()
	mainRouter.Use(requestid.Middleware)

	apiRouter := mainRouter.PathPrefix("/api").Subrouter()
	apiRouter.Use(site.RequestLogger)
	apiRouter.NotFoundHandler = site.RequestLogger(http.HandlerFunc(site.APINotFound))
	apiRouter.MethodNotAllowedHandler = site.RequestLogger(http.HandlerFunc(site.MethodNotAllowed))

	contactService.LoadRoutes(apiRouter)
	preferencesService.LoadRoutes(apiRouter)
	siteService.LoadRoutes(apiRouter)

	mainRouter.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})).Methods(http.MethodGet)
	mainRouter.PathPrefix("/").Handler(siteService.SPA())

	corsHandler := handlers.CORS(
		handlers.AllowedOrigins(cfg.HTTP.CORSOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", requestid.Header}),
		handlers.ExposedHeaders([]string{requestid.Header}),
		handlers.AllowCredentials(),
	)(mainRouter)

	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{}),
	)(handlers.ProxyHeaders(corsHandler)), nil
}

// recoveryLogger sends panics caught outside the API routes to slog.
type recoveryLogger struct{}

func (recoveryLogger) Println(v ...interface{}) {
	slog.Error("recovered from panic", "panic", fmt.Sprint(v...))
}

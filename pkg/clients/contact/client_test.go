package contact_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"portfolio-contact/api/pkg/clients/contact"
	"portfolio-contact/api/pkg/contactform"
)

func validForm() *contact.Form {
	return &contact.Form{Name: "Jo", Email: "a@b.com", Subject: "Hi", Message: "1234567890"}
}

func TestSubmit(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantKind    contact.NotificationKind
		wantTitle   string
		wantDesc    string
		wantCleared bool
		wantErr     bool
	}{
		{
			name:        "created",
			status:      http.StatusCreated,
			body:        `{"message":"Message sent successfully!","id":7,"emailStatus":"sent"}`,
			wantKind:    contact.KindSuccess,
			wantTitle:   contact.SuccessTitle,
			wantDesc:    contact.SuccessDescription,
			wantCleared: true,
		},
		{
			name:        "partial success",
			status:      http.StatusMultiStatus,
			body:        `{"message":"saved","id":8,"emailStatus":"failed","emailError":{"code":"EAUTH"}}`,
			wantKind:    contact.KindSuccess,
			wantTitle:   contact.PartialTitle,
			wantDesc:    contact.PartialDescription,
			wantCleared: true,
		},
		{
			name:     "server error with message",
			status:   http.StatusInternalServerError,
			body:     `{"message":"Failed to save your message. Please try again later.","emailStatus":"not_attempted"}`,
			wantKind: contact.KindError,
			wantDesc: "Failed to save your message. Please try again later.",
			wantErr:  true,
		},
		{
			name:     "non-JSON error falls back",
			status:   http.StatusBadGateway,
			body:     `<html>bad gateway</html>`,
			wantKind: contact.KindError,
			wantDesc: contact.FallbackError,
			wantErr:  true,
		},
		{
			name:     "empty error body falls back",
			status:   http.StatusServiceUnavailable,
			wantKind: contact.KindError,
			wantDesc: contact.FallbackError,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				if r.Method != http.MethodPost || r.URL.Path != "/api/contact" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				if ct := r.Header.Get("Content-Type"); ct != "application/json" {
					t.Errorf("expected JSON content type, got %q", ct)
				}
				var got contactform.Submission
				if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
					t.Errorf("failed to decode request: %v", err)
				}
				if got.Email != "a@b.com" || got.Subject != "Hi" {
					t.Errorf("unexpected payload %+v", got)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			form := validForm()
			c := contact.NewHTTPClient(srv.URL+"/", srv.Client(), nil)
			out, err := c.Submit(context.Background(), form)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if hits.Load() != 1 {
				t.Errorf("expected exactly one request, got %d", hits.Load())
			}
			if out.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, out.StatusCode)
			}
			if out.Notification.Kind != tt.wantKind {
				t.Errorf("expected kind %s, got %s", tt.wantKind, out.Notification.Kind)
			}
			if tt.wantTitle != "" && out.Notification.Title != tt.wantTitle {
				t.Errorf("expected title %q, got %q", tt.wantTitle, out.Notification.Title)
			}
			if out.Notification.Description != tt.wantDesc {
				t.Errorf("expected description %q, got %q", tt.wantDesc, out.Notification.Description)
			}
			if cleared := *form == (contact.Form{}); cleared != tt.wantCleared {
				t.Errorf("expected cleared=%v, form is %+v", tt.wantCleared, form)
			}
			if (out.Err != nil) != tt.wantErr {
				t.Errorf("expected Err set=%v, got %v", tt.wantErr, out.Err)
			}
			if c.Submitting() {
				t.Error("in-flight guard not released")
			}
		})
	}
}

func TestSubmit_LocalValidationSendsNothing(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	form := &contact.Form{Name: "J", Email: "nope", Subject: "Hi", Message: "short"}
	out, err := contact.NewHTTPClient(srv.URL, srv.Client(), nil).Submit(context.Background(), form)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits.Load() != 0 {
		t.Errorf("expected no request, got %d", hits.Load())
	}
	for _, f := range []string{"name", "email", "message"} {
		if _, ok := out.FieldErrors[f]; !ok {
			t.Errorf("expected error for %s, got %v", f, out.FieldErrors)
		}
	}
	if form.Name != "J" {
		t.Error("rejected form must keep its values")
	}
}

func TestSubmit_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	form := validForm()
	out, err := contact.NewHTTPClient(url, nil, nil).Submit(context.Background(), form)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Notification.Kind != contact.KindError || out.Notification.Description != contact.FallbackError {
		t.Errorf("expected fallback error notification, got %+v", out.Notification)
	}
	if out.Err == nil {
		t.Error("expected transport error in outcome")
	}
	if form.Name == "" {
		t.Error("failed submission must keep form values")
	}
}

func TestSubmit_InFlightGuard(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			close(entered)
		}
		<-release
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"ok","id":1,"emailStatus":"sent"}`))
	}))
	defer srv.Close()

	c := contact.NewHTTPClient(srv.URL, srv.Client(), nil)

	done := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background(), validForm())
		done <- err
	}()

	<-entered
	if !c.Submitting() {
		t.Error("expected Submitting while a request is outstanding")
	}
	if _, err := c.Submit(context.Background(), validForm()); !errors.Is(err, contact.ErrSubmissionInFlight) {
		t.Errorf("expected ErrSubmissionInFlight, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first submission failed: %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("expected one request, got %d", hits.Load())
	}
	if c.Submitting() {
		t.Error("guard not released after completion")
	}
}

func TestSubmit_NilForm(t *testing.T) {
	if _, err := contact.NewHTTPClient("http://localhost", nil, nil).Submit(context.Background(), nil); err == nil {
		t.Error("expected error for nil form")
	}
}

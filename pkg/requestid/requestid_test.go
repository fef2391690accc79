package requestid_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"portfolio-contact/api/pkg/requestid"
)

func TestMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		wantSame bool
	}{
		{name: "mints uuid when absent"},
		{name: "keeps client id", incoming: "abc-123", wantSame: true},
		{name: "replaces oversized id", incoming: strings.Repeat("x", 200)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := requestid.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = requestid.FromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(requestid.Header, tt.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if seen == "" {
				t.Fatal("expected request id in context")
			}
			if rec.Header().Get(requestid.Header) != seen {
				t.Errorf("expected response header %q, got %q", seen, rec.Header().Get(requestid.Header))
			}
			if tt.wantSame {
				if seen != tt.incoming {
					t.Errorf("expected %q, got %q", tt.incoming, seen)
				}
				return
			}
			if _, err := uuid.Parse(seen); err != nil {
				t.Errorf("expected minted uuid, got %q", seen)
			}
		})
	}
}

func TestFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := requestid.FromContext(req.Context()); id != "" {
		t.Errorf("expected empty id, got %q", id)
	}
}

package contact

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"portfolio-contact/api/pkg/requestid"
)

// recoverJSON turns a panic in a contact handler into the generic 500
// body. Details go to the log only.
func recoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			slog.Error("panic in contact handler",
				"requestId", requestid.FromContext(r.Context()),
				"panic", rec,
				"stack", string(debug.Stack()),
			)
			writeJSON(w, http.StatusInternalServerError, SubmitResponse{
				Message:     "Internal server error.",
				EmailStatus: EmailUnknown,
			})
		}()
		next.ServeHTTP(w, r)
	})
}

// requireAdmin lets a request through only with a bearer token matching
// the configured bcrypt hash.
func (s *Service) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := requestid.FromContext(r.Context())

		if len(s.adminHash) == 0 {
			writeErrorJSON(w, "FORBIDDEN", "admin listing disabled", http.StatusForbidden)
			return
		}

		token, ok := bearerToken(r)
		if !ok {
			w.Header().Set("WWW-Authenticate", `Bearer realm="contact"`)
			writeErrorJSON(w, "UNAUTHORIZED", "missing bearer token", http.StatusUnauthorized)
			return
		}

		if err := bcrypt.CompareHashAndPassword(s.adminHash, []byte(token)); err != nil {
			slog.Warn("rejected admin token", "requestId", rid)
			w.Header().Set("WWW-Authenticate", `Bearer realm="contact", error="invalid_token"`)
			writeErrorJSON(w, "UNAUTHORIZED", "invalid bearer token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

package contact

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"portfolio-contact/api/pkg/clients/email"
	"portfolio-contact/api/pkg/contactform"
	"portfolio-contact/api/pkg/requestid"
	"portfolio-contact/api/services/storage"
)

// maxRequestBody limits the size of a submission body.
const maxRequestBody = 64 << 10 // 64KB

// maxListLimit caps the page size of the administrative listing.
const maxListLimit = 1000

// Email dispatch states reported in submission responses.
const (
	EmailSent         = "sent"
	EmailFailed       = "failed"
	EmailNotAttempted = "not_attempted"
	EmailUnknown      = "unknown"
)

// StatusPartialSuccess is returned when the message was stored but the
// owner notification could not be delivered.
const StatusPartialSuccess = http.StatusMultiStatus

// SubmitResponse is the JSON body of every POST /contact response.
type SubmitResponse struct {
	Message     string                  `json:"message"`
	ID          *int64                  `json:"id,omitempty"`
	EmailStatus string                  `json:"emailStatus,omitempty"`
	EmailError  *email.SendError        `json:"emailError,omitempty"`
	Errors      contactform.FieldErrors `json:"errors,omitempty"`
}

// HandleSubmit validates a contact payload, stores it and notifies the site
// owner by email. Storage always precedes email and an email failure never
// undoes the stored record:
//
//	400 validation failed, nothing stored or sent
//	500 store failed, email not attempted
//	201 stored and emailed
//	207 stored, email failed
func (s *Service) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	rid := requestid.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var payload contactform.Payload
	if err := decodeBody(r.Body, &payload); err != nil {
		slog.Warn("failed to decode contact body", "requestId", rid, "error", err)
		s.metrics.observe(outcomeRejected)
		writeJSON(w, http.StatusBadRequest, SubmitResponse{
			Message: "Invalid contact submission.",
			Errors:  contactform.FieldErrors{"body": bodyError(err)},
		})
		return
	}

	result := s.schema.Check(payload)
	if !result.OK() {
		slog.Info("contact submission rejected", "requestId", rid, "fields", result.Errors.Error())
		s.metrics.observe(outcomeRejected)
		writeJSON(w, http.StatusBadRequest, SubmitResponse{
			Message: "Invalid contact submission.",
			Errors:  result.Errors,
		})
		return
	}
	sub := result.Submission

	// Once accepted the submission runs to completion even if the client
	// goes away; each stage is bounded by its own timeout.
	ctx := context.WithoutCancel(r.Context())

	msg, err := s.storage.CreateMessage(ctx, storage.NewContactMessage{
		Name:    sub.Name,
		Email:   sub.Email,
		Subject: sub.Subject,
		Message: sub.Message,
	})
	if err != nil {
		slog.Error("failed to store contact message", "requestId", rid, "error", err)
		s.metrics.observe(outcomePersistFailed)
		writeJSON(w, http.StatusInternalServerError, SubmitResponse{
			Message:     "Failed to save your message. Please try again later.",
			EmailStatus: EmailNotAttempted,
		})
		return
	}
	slog.Info("contact message stored", "requestId", rid, "id", msg.ID)

	id := msg.ID
	if sendErr := s.notify(ctx, sub); sendErr != nil {
		slog.Error("failed to send contact notification",
			"requestId", rid,
			"id", id,
			"code", sendErr.Code,
			"error", sendErr.Message,
		)
		s.metrics.observe(outcomeEmailFailed)
		writeJSON(w, StatusPartialSuccess, SubmitResponse{
			Message:     "Your message was saved, but the notification email could not be sent.",
			ID:          &id,
			EmailStatus: EmailFailed,
			EmailError:  sendErr,
		})
		return
	}

	s.metrics.observe(outcomeSent)
	writeJSON(w, http.StatusCreated, SubmitResponse{
		Message:     "Message sent successfully!",
		ID:          &id,
		EmailStatus: EmailSent,
	})
}

// notify composes and sends the owner notification, folding every failure
// into a SendError suitable for the response body.
func (s *Service) notify(ctx context.Context, sub contactform.Submission) *email.SendError {
	mail, err := composeNotification(sub)
	if err != nil {
		return &email.SendError{Code: email.CodeMessage, Message: err.Error()}
	}

	res, err := s.mailer.Send(ctx, mail)
	if err != nil {
		return email.AsSendError(err)
	}
	if res == nil || !res.Sent {
		status := "not sent"
		if res != nil && res.DeliveryStatus != "" {
			status = res.DeliveryStatus
		}
		return &email.SendError{Code: email.CodeMessage, Message: "mail client reported " + status}
	}
	return nil
}

// HandleList returns stored messages ordered by id. Optional limit and
// offset query parameters page through the list.
func (s *Service) HandleList(w http.ResponseWriter, r *http.Request) {
	rid := requestid.FromContext(r.Context())

	opts, err := parseListOptions(r)
	if err != nil {
		slog.Warn("invalid list query", "requestId", rid, "error", err)
		writeErrorJSON(w, "INVALID_QUERY", err.Error(), http.StatusBadRequest)
		return
	}

	messages, err := s.storage.ListMessages(r.Context(), opts)
	if err != nil {
		slog.Error("failed to list contact messages", "requestId", rid, "error", err)
		writeErrorJSON(w, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}
	if messages == nil {
		messages = []storage.ContactMessage{}
	}

	writeJSON(w, http.StatusOK, messages)
}

func parseListOptions(r *http.Request) (storage.ListOptions, error) {
	var opts storage.ListOptions
	q := r.URL.Query()

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxListLimit {
			return opts, errors.New("limit must be between 1 and 1000")
		}
		opts.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, errors.New("offset must be a non-negative integer")
		}
		opts.Offset = n
	}
	return opts, nil
}

// errTrailingData is returned when a body holds more than one JSON value.
var errTrailingData = errors.New("request body must contain a single JSON object")

// decodeBody decodes exactly one JSON value from body into v.
func decodeBody(body io.Reader, v any) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return errTrailingData
	}
	return nil
}

func bodyError(err error) string {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return "Request body is too large."
	}
	return "Request body must be a JSON object."
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// methodNotAllowed runs outside the subrouter middleware, so it sets its
// own headers.
func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Allow", "GET, POST")
	writeErrorJSON(w, "METHOD_NOT_ALLOWED", "method not allowed", http.StatusMethodNotAllowed)
}

// writeErrorJSON writes a structured JSON error response with a machine-readable
// code and a human-readable message.
func writeErrorJSON(w http.ResponseWriter, errCode, message string, status int) {
	writeJSON(w, status, map[string]any{"code": errCode, "message": message})
}

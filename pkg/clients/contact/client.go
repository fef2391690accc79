// Package contact is an HTTP client for the contact endpoint that behaves
// like the site's contact form: validate locally, submit once, report a
// notification.
package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"

	"portfolio-contact/api/pkg/contactform"
)

// ErrSubmissionInFlight is returned when Submit is called while another
// submission from the same client is outstanding.
var ErrSubmissionInFlight = errors.New("contact: a submission is already in flight")

const maxResponseBody = 1 << 20

// Notification texts.
const (
	SuccessTitle       = "Message sent successfully!"
	SuccessDescription = "Thanks for your message. I will get back to you soon."
	PartialTitle       = "Message received"
	PartialDescription = "Your message was saved, but the notification email could not be sent."
	ErrorTitle         = "Sending failed"
	FallbackError      = "Something went wrong while sending your message. Please try again."
)

// Form holds the values typed into the contact form.
type Form struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// Reset clears every field.
func (f *Form) Reset() {
	*f = Form{}
}

func (f *Form) payload() contactform.Payload {
	subject := f.Subject
	return contactform.Payload{
		Name:    f.Name,
		Email:   f.Email,
		Subject: &subject,
		Message: f.Message,
	}
}

// NotificationKind distinguishes success from error toasts.
type NotificationKind string

const (
	KindSuccess NotificationKind = "success"
	KindError   NotificationKind = "error"
)

// Notification is the transient message shown after a submission.
type Notification struct {
	Kind        NotificationKind
	Title       string
	Description string
}

// Outcome describes what happened to a submission. When FieldErrors is set
// the form was rejected locally or by the server and Notification may be
// empty. Err holds the transport error behind an error notification, if any.
type Outcome struct {
	Notification Notification
	StatusCode   int
	ID           *int64
	EmailStatus  string
	FieldErrors  contactform.FieldErrors
	Err          error
}

// Submitter submits contact forms.
type Submitter interface {
	Submit(ctx context.Context, form *Form) (*Outcome, error)
}

// HTTPClient posts forms to {baseURL}/api/contact.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	schema     *contactform.Schema
	inFlight   atomic.Bool
}

var _ Submitter = (*HTTPClient)(nil)

// NewHTTPClient creates a client for the site at baseURL.
// Accepts an optional http.Client for custom timeouts or transport settings
// and an optional schema; it should match the server's.
func NewHTTPClient(baseURL string, httpClient *http.Client, schema *contactform.Schema) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if schema == nil {
		schema = contactform.New()
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		schema:     schema,
	}
}

// Submitting reports whether a submission is outstanding.
func (c *HTTPClient) Submitting() bool {
	return c.inFlight.Load()
}

// serverResponse is the subset of the submission response the form uses.
type serverResponse struct {
	Message     string                  `json:"message"`
	ID          *int64                  `json:"id"`
	EmailStatus string                  `json:"emailStatus"`
	Errors      contactform.FieldErrors `json:"errors"`
}

// Submit validates form and, if it passes, sends exactly one request.
// On a 2xx response the form is cleared. Failures to reach the server or
// non-2xx answers are reported through an error notification; the
// returned error is reserved for misuse and ErrSubmissionInFlight.
func (c *HTTPClient) Submit(ctx context.Context, form *Form) (*Outcome, error) {
	if form == nil {
		return nil, fmt.Errorf("contact: form cannot be nil")
	}

	result := c.schema.Check(form.payload())
	if !result.OK() {
		return &Outcome{FieldErrors: result.Errors}, nil
	}

	if !c.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmissionInFlight
	}
	defer c.inFlight.Store(false)

	body, err := json.Marshal(result.Submission)
	if err != nil {
		return nil, fmt.Errorf("failed to encode submission: %w", err)
	}

	url := c.baseURL + "/api/contact"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	slog.Debug("submitting contact form", "url", url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("contact request failed", "url", url, "error", err)
		return &Outcome{Notification: errorNotification(""), Err: err}, nil
	}
	defer resp.Body.Close()

	var sr serverResponse
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if readErr == nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, &sr); err != nil {
			slog.Debug("contact response is not JSON", "status", resp.StatusCode, "error", err)
		}
	}

	out := &Outcome{
		StatusCode:  resp.StatusCode,
		ID:          sr.ID,
		EmailStatus: sr.EmailStatus,
		FieldErrors: sr.Errors,
	}

	switch {
	case resp.StatusCode == http.StatusMultiStatus:
		form.Reset()
		out.Notification = Notification{Kind: KindSuccess, Title: PartialTitle, Description: PartialDescription}
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		form.Reset()
		out.Notification = Notification{Kind: KindSuccess, Title: SuccessTitle, Description: SuccessDescription}
	default:
		out.Notification = errorNotification(sr.Message)
		out.Err = fmt.Errorf("contact API returned %d", resp.StatusCode)
	}
	return out, nil
}

func errorNotification(serverMessage string) Notification {
	desc := strings.TrimSpace(serverMessage)
	if desc == "" {
		desc = FallbackError
	}
	return Notification{Kind: KindError, Title: ErrorTitle, Description: desc}
}

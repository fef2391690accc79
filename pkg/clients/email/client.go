package email

import (
	"context"
	"log/slog"
)

// Message represents an email to be sent.
type Message struct {
	To       string
	From     string
	ReplyTo  string
	Subject  string
	TextBody string
	HTMLBody string
}

// Result holds the outcome of a send attempt.
type Result struct {
	DeliveryStatus string
	Sent           bool
}

// Client defines the interface for sending emails.
// Implementations can be swapped between a stub (for dev/testing)
// and a real relay (SMTPClient).
type Client interface {
	Send(ctx context.Context, msg Message) (*Result, error)
}

// StubClient simulates sending emails by logging them.
type StubClient struct {
	FromAddress string
	ToAddress   string
}

// NewStubClient creates an email client that logs instead of sending.
func NewStubClient(fromAddress, toAddress string) *StubClient {
	return &StubClient{FromAddress: fromAddress, ToAddress: toAddress}
}

func (c *StubClient) Send(_ context.Context, msg Message) (*Result, error) {
	if msg.From == "" {
		msg.From = c.FromAddress
	}
	if msg.To == "" {
		msg.To = c.ToAddress
	}
	slog.Info("sending email (stub)", "to", msg.To, "from", msg.From, "replyTo", msg.ReplyTo, "subject", msg.Subject)
	return &Result{
		DeliveryStatus: "sent",
		Sent:           true,
	}, nil
}

package email

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds relay settings. Every field except Timeout is required
// for a send to be attempted.
type SMTPConfig struct {
	Host     string
	Port     int
	Secure   bool // implicit TLS (usually port 465); otherwise STARTTLS when offered
	User     string
	Password string
	From     string
	To       string
	Timeout  time.Duration
}

func (c SMTPConfig) missing() []string {
	var m []string
	if c.Host == "" {
		m = append(m, "host")
	}
	if c.Port <= 0 {
		m = append(m, "port")
	}
	if c.User == "" {
		m = append(m, "user")
	}
	if c.Password == "" {
		m = append(m, "password")
	}
	if c.From == "" && c.User == "" {
		m = append(m, "from")
	}
	if c.To == "" {
		m = append(m, "to")
	}
	return m
}

// SMTPClient delivers messages through an authenticated SMTP relay.
// The underlying go-mail client is built on first use and shared by all
// sends; sends are serialised.
type SMTPClient struct {
	cfg SMTPConfig

	mu     sync.Mutex
	client *mail.Client
}

// NewSMTPClient never fails: incomplete configuration is reported by Send
// so the rest of the site keeps serving.
func NewSMTPClient(cfg SMTPConfig) *SMTPClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &SMTPClient{cfg: cfg}
}

func (c *SMTPClient) Send(ctx context.Context, msg Message) (*Result, error) {
	if missing := c.cfg.missing(); len(missing) > 0 {
		return nil, &SendError{
			Code:    CodeConfig,
			Message: "mail relay is not configured: missing " + strings.Join(missing, ", "),
		}
	}

	m, err := c.compose(msg)
	if err != nil {
		return nil, &SendError{Code: CodeEnvelope, Message: err.Error(), err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	client, err := c.mailClient()
	if err != nil {
		return nil, &SendError{Code: CodeConfig, Message: err.Error(), err: err}
	}

	slog.Debug("sending email", "host", c.cfg.Host, "port", c.cfg.Port, "subject", msg.Subject)
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return nil, AsSendError(err)
	}

	return &Result{DeliveryStatus: "sent", Sent: true}, nil
}

func (c *SMTPClient) compose(msg Message) (*mail.Msg, error) {
	from := msg.From
	if from == "" {
		from = c.cfg.From
	}
	if from == "" {
		from = c.cfg.User
	}
	to := msg.To
	if to == "" {
		to = c.cfg.To
	}

	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", from, err)
	}
	if err := m.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return nil, fmt.Errorf("invalid reply-to %q: %w", msg.ReplyTo, err)
		}
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.TextBody)
	if msg.HTMLBody != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTMLBody)
	}
	return m, nil
}

// mailClient must be called with c.mu held.
func (c *SMTPClient) mailClient() (*mail.Client, error) {
	if c.client != nil {
		return c.client, nil
	}

	opts := []mail.Option{
		mail.WithPort(c.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(c.cfg.User),
		mail.WithPassword(c.cfg.Password),
		mail.WithTimeout(c.cfg.Timeout),
	}
	if c.cfg.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	client, err := mail.NewClient(c.cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	c.client = client
	return client, nil
}

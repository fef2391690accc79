package email

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/textproto"
	"strings"

	"github.com/wneessen/go-mail"
)

// Relay error codes reported to API callers.
const (
	CodeAuth       = "EAUTH"
	CodeConnection = "ECONNECTION"
	CodeTimeout    = "ETIMEDOUT"
	CodeEnvelope   = "EENVELOPE"
	CodeMessage    = "EMESSAGE"
	CodeConfig     = "ECONFIG"
	CodeProtocol   = "EPROTOCOL"
)

// SendError is a transport failure in a form that can be shown to API
// callers: a stable code, a message and the raw relay response if any.
type SendError struct {
	Code     string `json:"code,omitempty"`
	Message  string `json:"message,omitempty"`
	Response string `json:"response,omitempty"`

	err error
}

func (e *SendError) Error() string {
	if e.Response != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Response)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *SendError) Unwrap() error {
	return e.err
}

// AsSendError classifies err. A *SendError anywhere in the chain is
// returned as is.
func AsSendError(err error) *SendError {
	if err == nil {
		return nil
	}

	var se *SendError
	if errors.As(err, &se) {
		return se
	}

	out := &SendError{Message: err.Error(), err: err}

	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		out.Response = fmt.Sprintf("%d %s", tpErr.Code, tpErr.Msg)
		switch tpErr.Code {
		case 530, 534, 535, 538:
			out.Code = CodeAuth
		default:
			out.Code = CodeProtocol
		}
		return out
	}

	if errors.Is(err, context.DeadlineExceeded) {
		out.Code = CodeTimeout
		return out
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			out.Code = CodeTimeout
		} else {
			out.Code = CodeConnection
		}
		return out
	}

	var mailErr *mail.SendError
	if errors.As(err, &mailErr) {
		switch mailErr.Reason {
		case mail.ErrGetSender, mail.ErrGetRcpts, mail.ErrSMTPMailFrom, mail.ErrSMTPRcptTo:
			out.Code = CodeEnvelope
		case mail.ErrConnCheck:
			out.Code = CodeConnection
		default:
			out.Code = CodeMessage
		}
		return out
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "auth"):
		out.Code = CodeAuth
	case strings.Contains(lower, "dial"), strings.Contains(lower, "connection"):
		out.Code = CodeConnection
	default:
		out.Code = CodeProtocol
	}
	return out
}

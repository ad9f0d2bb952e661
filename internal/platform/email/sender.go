package email

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNoRecipients    = errors.New("email has no recipients")
	ErrHeaderInjection = errors.New("email header contains a line break")
)

// Message is one outgoing email. Body is sent as HTML.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Validate rejects messages that cannot be delivered or would smuggle extra
// headers through user-supplied addresses.
func (m Message) Validate() error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	for _, v := range append([]string{m.From, m.Subject}, m.To...) {
		if strings.ContainsAny(v, "\r\n") {
			return ErrHeaderInjection
		}
	}
	return nil
}

// Sender delivers email; the OTP service depends on this rather than on SMTP.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

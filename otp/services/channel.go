package services

import (
	"context"

	"github.com/drapcode/exchange-engine/internal/platform/email"
	"github.com/drapcode/exchange-engine/internal/platform/sms"
	"github.com/drapcode/exchange-engine/internal/pkg/placeholder"
)

// channel is one OTP delivery route and the user fields it keeps state in.
type channel struct {
	name         string
	addressField string
	codeField    string
	expiryField  string
	tokenField   string
	deliver      func(ctx context.Context, address, code string) error
}

func (ch channel) stateFields() []string {
	return []string{ch.codeField, ch.expiryField, ch.tokenField}
}

func (s *service) emailChannel() channel {
	return channel{
		name:         "email",
		addressField: "email",
		codeField:    "emailOtp",
		expiryField:  "emailOtpExpiry",
		tokenField:   "emailOtpToken",
		deliver: func(ctx context.Context, address, code string) error {
			return s.email.Send(ctx, email.Message{
				From:    s.cfg.EmailFrom,
				To:      []string{address},
				Subject: s.cfg.EmailSubject,
				Body:    s.render(code),
			})
		},
	}
}

func (s *service) smsChannel() channel {
	return channel{
		name:         "sms",
		addressField: "phone_number",
		codeField:    "smsOtp",
		expiryField:  "smsOtpExpiry",
		tokenField:   "smsOtpToken",
		deliver: func(ctx context.Context, address, code string) error {
			return s.sms.Send(ctx, sms.Message{To: address, Body: s.render(code)})
		},
	}
}

func (s *service) render(code string) string {
	return placeholder.Substitute(s.cfg.MessageTemplate, map[string]interface{}{"otp": code})
}

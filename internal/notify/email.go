package notify

import (
	"context"

	"github.com/pkg/errors"
	"gopkg.in/gomail.v2"

	"github.com/talkincode/tuxedoshop/config"
	"github.com/talkincode/tuxedoshop/internal/domain"
)

// EmailSender delivers plain text mail over SMTP
type EmailSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailSender(cfg config.SmtpConfig) *EmailSender {
	return &EmailSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass),
		from:   cfg.From,
	}
}

func (s *EmailSender) Channel() string {
	return "email"
}

func (s *EmailSender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrapf(domain.ErrNotification, "email: %v", err)
	}
	m := NewEmailMessage(s.from, to, subject, body)
	if err := s.dialer.DialAndSend(m); err != nil {
		return errors.Wrapf(domain.ErrNotification, "email: %v", err)
	}
	return nil
}

// NewEmailMessage builds the alert mail.
func NewEmailMessage(from, to, subject, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return m
}

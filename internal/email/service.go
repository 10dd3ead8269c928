package email

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/vaxtrack/reminder-api/internal/model"
)

type Service interface {
	SendDispatchAlert(ctx context.Context, to string, failures []*model.DispatchLogEntry) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// SendDispatchAlert mails the ops address a summary of dispatches that could
// not be delivered. A missed notification must be observable without ever
// failing reminder processing.
func (s *smtpService) SendDispatchAlert(ctx context.Context, to string, failures []*model.DispatchLogEntry) error {
	if len(failures) == 0 {
		return nil
	}

	var body strings.Builder
	fmt.Fprintf(&body, "%d notification dispatch(es) failed:\n\n", len(failures))
	for _, f := range failures {
		reason := ""
		if f.LastError != nil {
			reason = *f.LastError
		}
		fmt.Fprintf(&body, "reminder=%s channel=%s offset=%dd fire_at=%s: %s\n",
			f.ReminderID, f.Channel, f.OffsetDays, f.FireAt.Format("2006-01-02 15:04"), reason)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("[reminder-api] %d failed dispatches", len(failures)))
	m.SetBody("text/plain", body.String())

	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(m) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send dispatch alert: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

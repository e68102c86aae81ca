package services

import (
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/trailmark/trailmark-backend/internal/config"
)

// Mailer sends a single plain-text message. Magic-link dispatch is
// fire-and-forget; implementations must not block indefinitely.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends through a standard SMTP relay.
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.MailFrom,
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.from, to, subject, body))

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	if err := smtp.SendMail(m.host+":"+m.port, auth, m.from, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}

// LogMailer logs instead of sending. Used in development and tests.
type LogMailer struct{}

func (LogMailer) Send(to, subject, body string) error {
	slog.Info("mail dispatched", "to", to, "subject", subject, "body", body)
	return nil
}

// Package mail sends the verification and password-reset emails. The Mailer
// interface keeps the services independent of delivery: SMTP in production,
// a log-only mailer for development and tests.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
)

// Mailer delivers a plain-text email to a single recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer sends mail through a plain-auth SMTP relay.
type SMTPMailer struct {
	addr string // host:port
	auth smtp.Auth
	from string
}

// NewSMTPMailer creates a mailer for the given relay. Pass empty username to
// skip authentication (local relays).
func NewSMTPMailer(host, port, username, password, from string) *SMTPMailer {
	var a smtp.Auth
	if username != "" {
		a = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPMailer{
		addr: host + ":" + port,
		auth: a,
		from: from,
	}
}

// Send delivers the message. The context is accepted for interface symmetry;
// net/smtp does not support cancellation mid-send.
func (m *SMTPMailer) Send(_ context.Context, to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.from, to, subject, body)
	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

// LogMailer writes mail to the log instead of delivering it. Used when no
// SMTP relay is configured.
type LogMailer struct{}

// Send logs the message at info level.
func (LogMailer) Send(_ context.Context, to, subject, body string) error {
	slog.Info("mail (not delivered, no SMTP configured)",
		"to", to,
		"subject", subject,
		"body", body,
	)
	return nil
}

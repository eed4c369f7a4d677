package mailer

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/account-service/internal/config"
	"gopkg.in/gomail.v2"
)

var (
	ErrNotConfigured  = errors.New("mailer: smtp config missing")
	ErrEmptyRecipient = errors.New("mailer: empty recipient")
)

// Mailer delivers account emails. A non-nil error means the message was not
// handed to the transport.
type Mailer interface {
	SendActivationLink(ctx context.Context, to, link string) error
	SendActivationCode(ctx context.Context, to, code string) error
	SendPasswordReset(ctx context.Context, to, link string) error
}

type SMTPMailer struct {
	cfg    *config.Config
	dialer *gomail.Dialer
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
	}
}

func (m *SMTPMailer) SendActivationLink(ctx context.Context, to, link string) error {
	body := fmt.Sprintf(`<p>Click on the following link to activate the account:</p>
<p><a href="%s">%s</a></p>`, html.EscapeString(link), html.EscapeString(link))
	return m.send(ctx, to, "Activate your account", body)
}

func (m *SMTPMailer) SendActivationCode(ctx context.Context, to, code string) error {
	body := fmt.Sprintf(`<p>Your OTP for activating the account is:</p>
<div style="font-size: 28px; font-weight: bold; letter-spacing: 3px;">%s</div>
<p>The code is valid for %s.</p>`, html.EscapeString(code), m.cfg.OTPTTL)
	return m.send(ctx, to, "Your activation code", body)
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	body := fmt.Sprintf(`<p>Click on the following link to update your password:</p>
<p><a href="%s">%s</a></p>
<p>If you did not ask for a password reset you can ignore this email.</p>`, html.EscapeString(link), html.EscapeString(link))
	return m.send(ctx, to, "Reset your password", body)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	msg, err := m.buildMessage(to, subject, body)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	slog.Info("email sent", "to", to, "subject", subject)
	return nil
}

func (m *SMTPMailer) buildMessage(to, subject, body string) (*gomail.Message, error) {
	if m.cfg.SMTPHost == "" || m.cfg.MailFrom == "" {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(to) == "" {
		return nil, ErrEmptyRecipient
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.MailFrom)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)
	return msg, nil
}

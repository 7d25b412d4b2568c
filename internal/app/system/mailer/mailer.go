// internal/app/system/mailer/mailer.go
package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/pantry/email"
	"go.uber.org/zap"
)

// Email is one plain-text message.
type Email struct {
	To       []string
	Subject  string
	TextBody string
}

// Mailer sends email.
type Mailer interface {
	Send(ctx context.Context, e Email) error
}

// Config holds SMTP settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// sendTimeout bounds one SMTP dial-and-send.
const sendTimeout = 30 * time.Second

// New returns an SMTP mailer, or a log-only mailer when no host is set.
func New(cfg Config, log *zap.Logger) Mailer {
	if cfg.Host == "" {
		return &LogMailer{Log: log}
	}
	return &SMTPMailer{sender: email.NewSender(senderConfig(cfg)), log: log}
}

func senderConfig(cfg Config) email.Config {
	return email.Config{
		Host:        cfg.Host,
		Port:        cfg.Port,
		Username:    cfg.Username,
		Password:    cfg.Password,
		FromAddress: cfg.From,
		UseSSL:      cfg.Port == 465,
		Timeout:     sendTimeout,
	}
}

// SMTPMailer delivers through an SMTP relay. STARTTLS is required except on
// port 465, which uses implicit TLS.
type SMTPMailer struct {
	sender *email.Sender
	log    *zap.Logger
}

func (m *SMTPMailer) Send(ctx context.Context, e Email) error {
	if len(e.To) == 0 {
		return errors.New("mailer: no recipients")
	}
	err := m.sender.Send(ctx, email.Message{
		To:       e.To,
		Subject:  e.Subject,
		TextBody: e.TextBody,
	})
	if err != nil {
		return fmt.Errorf("send mail %q: %w", e.Subject, err)
	}
	m.log.Info("mail sent", zap.Strings("to", e.To), zap.String("subject", e.Subject))
	return nil
}

// LogMailer writes messages to the log. Used in development.
type LogMailer struct {
	Log *zap.Logger
}

func (m *LogMailer) Send(_ context.Context, e Email) error {
	m.Log.Info("mail (not sent; no smtp host)",
		zap.Strings("to", e.To),
		zap.String("subject", e.Subject),
		zap.String("body", e.TextBody))
	return nil
}

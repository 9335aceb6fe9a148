// Package mailer delivers the consolidated expiry notice by e-mail over
// implicit TLS with SMTP PLAIN authentication.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
)

var ErrMissingCredentials = errors.New("mail sender, credential or recipient not configured")

type Config struct {
	Host      string
	Port      int
	User      string
	Password  string
	Recipient string
	Timeout   time.Duration
}

// SMTPSender sends one plain-text message per Deliver call.
type SMTPSender struct {
	cfg  Config
	send func(ctx context.Context, msg *mail.Msg) error
}

func NewSMTPSender(cfg Config) (*SMTPSender, error) {
	cfg.User = strings.TrimSpace(cfg.User)
	cfg.Recipient = strings.TrimSpace(cfg.Recipient)
	if cfg.User == "" || cfg.Password == "" || cfg.Recipient == "" {
		return nil, ErrMissingCredentials
	}
	if cfg.Host == "" {
		return nil, errors.New("smtp host is empty")
	}
	s := &SMTPSender{cfg: cfg}
	s.send = s.dialAndSend
	return s, nil
}

func (s *SMTPSender) Name() string { return "mail" }

func (s *SMTPSender) Deliver(ctx context.Context, subject, body string) error {
	msg, err := s.buildMessage(subject, body)
	if err != nil {
		return err
	}
	if err := s.send(ctx, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", s.cfg.Recipient, err)
	}
	return nil
}

func (s *SMTPSender) buildMessage(subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.User); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", s.cfg.User, err)
	}
	if err := msg.To(s.cfg.Recipient); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", s.cfg.Recipient, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}

func (s *SMTPSender) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.User),
		mail.WithPassword(s.cfg.Password),
	}
	if s.cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(s.cfg.Timeout))
	}
	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}

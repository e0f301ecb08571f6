// Package email sends operator notifications over SMTP.
package email

import (
	"context"
	"errors"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/clinic-directory/internal/config"
)

type Message struct {
	To      []string
	Subject string
	Body    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return errors.New("email: no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	return s.dialer.DialAndSend(m)
}

// LogSender stands in when no SMTP host is configured.
type LogSender struct {
	Sent func(Message)
}

func (s LogSender) Send(ctx context.Context, msg Message) error {
	if s.Sent != nil {
		s.Sent(msg)
	}
	return nil
}

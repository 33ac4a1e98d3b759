// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dispatch

import (
	"context"
	"fmt"
	"io"

	"github.com/wneessen/go-mail"

	"github.com/pdiddy/reviewer-outreach/internal/config"
	"github.com/pdiddy/reviewer-outreach/pkg/types"
)

// Message is a plain-text e-mail ready for transmission.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Transport transmits one message. SMTPTransport is the production implementation.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// BuildMessage renders msg as a MIME message.
func BuildMessage(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("setting sender %q: %w", msg.From, err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("setting recipient %q: %w", msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetMessageID()
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	return m, nil
}

// MessageSize returns the encoded size of msg in bytes.
func MessageSize(m *mail.Msg) (int64, error) {
	return m.WriteTo(io.Discard)
}

// SMTPTransport sends through an authenticated SMTP relay.
type SMTPTransport struct {
	cfg types.SMTPConfig
}

// NewSMTPTransport requires the relay login to be present.
func NewSMTPTransport(cfg types.SMTPConfig) (*SMTPTransport, error) {
	if err := config.RequireSMTPCredentials(cfg); err != nil {
		return nil, err
	}
	return &SMTPTransport{cfg: cfg}, nil
}

// Send dials the relay, authenticates, and transmits msg. Each call uses a
// fresh connection.
func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	m, err := BuildMessage(msg)
	if err != nil {
		return err
	}

	policy := mail.NoTLS
	if t.cfg.UseTLS {
		policy = mail.TLSMandatory
	}
	opts := []mail.Option{
		mail.WithPort(t.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(t.cfg.Username),
		mail.WithPassword(t.cfg.Password),
		mail.WithTLSPolicy(policy),
	}
	if t.cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(t.cfg.Timeout))
	}

	client, err := mail.NewClient(t.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("sending to %s: %w", msg.To, err)
	}
	return nil
}

// Package mailer provides the hosted-provider implementation of mail.Mailer.
package mailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"fabriq/internal/core/mail"
	"fabriq/pkg/logger"
)

// Compile-time check that ResendMailer implements mail.Mailer.
var _ mail.Mailer = (*ResendMailer)(nil)

// Config holds the mailer configuration.
type Config struct {
	APIKey      string
	FromAddress string
	ReplyTo     string
}

// ResendMailer sends email through the Resend API.
// Without an API key the mailer stays disabled and Send becomes a logged
// no-op, so quote workflows keep working in development environments.
type ResendMailer struct {
	client      *resend.Client
	enabled     bool
	fromAddress string
	replyTo     string
}

// New creates a mailer. A missing API key yields a disabled mailer.
func New(cfg Config) *ResendMailer {
	if cfg.APIKey == "" {
		return &ResendMailer{enabled: false}
	}

	return &ResendMailer{
		client:      resend.NewClient(cfg.APIKey),
		enabled:     true,
		fromAddress: cfg.FromAddress,
		replyTo:     cfg.ReplyTo,
	}
}

// Enabled reports whether a provider is configured.
func (m *ResendMailer) Enabled() bool {
	return m.enabled
}

// Send delivers msg and returns the provider message ID.
func (m *ResendMailer) Send(ctx context.Context, msg mail.Message) (string, error) {
	if !m.enabled {
		logger.Warn(ctx, "mailer disabled, skipping email", "to", msg.To, "subject", msg.Subject)
		return "", nil
	}

	params := &resend.SendEmailRequest{
		From:    m.fromAddress,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}

	if m.replyTo != "" {
		params.ReplyTo = m.replyTo
	}

	for _, att := range msg.Attachments {
		params.Attachments = append(params.Attachments, &resend.Attachment{
			Filename:    att.Filename,
			Content:     att.Content,
			ContentType: att.ContentType,
		})
	}

	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", fmt.Errorf("send email: %w", err)
	}

	return sent.Id, nil
}

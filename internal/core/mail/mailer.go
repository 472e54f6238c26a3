// Package mail provides the domain contract for outbound email.
// The hosted-provider implementation lives in infrastructure.
package mail

import (
	"context"
)

// Attachment is a file attached to an outbound message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Message is an outbound email.
type Message struct {
	To          string
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
}

// Mailer sends email through the configured provider.
// A disabled mailer reports success without sending, so document workflows
// keep working in environments without provider credentials.
type Mailer interface {
	// Send delivers msg and returns the provider message ID.
	Send(ctx context.Context, msg Message) (string, error)

	// Enabled reports whether a provider is configured.
	Enabled() bool
}

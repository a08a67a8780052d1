// Package notify delivers out-of-band messages to file owners. The share
// flow uses it to hand the verification code to the owner; delivery is
// fire-and-forget from the caller's perspective, with failures reported as
// ErrNotifierFailure.
package notify

import "context"

// Message is one notification to one recipient. HTML is optional; Text is
// the fallback body.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Notifier delivers a message to its recipient.
type Notifier interface {
	Notify(ctx context.Context, msg *Message) error
}

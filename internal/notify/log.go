package notify

import (
	"context"

	"github.com/dmitrijs2005/secureshare/internal/logging"
)

// LogNotifier writes messages to the log instead of delivering them.
// Development stand-in for a real relay, so the verification flow can be
// exercised without SMTP.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(l logging.Logger) *LogNotifier {
	return &LogNotifier{logger: l.With("module", "log_notifier")}
}

func (n *LogNotifier) Notify(ctx context.Context, msg *Message) error {
	n.logger.Info(ctx, "notification (not delivered)",
		"to", msg.To, "subject", msg.Subject, "text", msg.Text)
	return nil
}

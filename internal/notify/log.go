package notify

import (
	"context"
	"log/slog"
	"time"
)

const backendLog = "log"

// LogNotifier implements Notifier by writing the message to the structured
// log instead of delivering it. Useful for local runs and dry setups.
type LogNotifier struct {
	log *slog.Logger
}

// NewLogNotifier creates a notifier that logs messages at info level.
func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

// Send logs text and always succeeds.
func (n *LogNotifier) Send(ctx context.Context, recipient, text string) error {
	defer observe(backendLog, time.Now())

	n.log.InfoContext(ctx, "notification",
		"backend", backendLog,
		"recipient", recipient,
		"message", text,
	)
	return nil
}

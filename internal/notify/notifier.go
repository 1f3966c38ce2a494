// Package notify defines the notification interface and implementations
// for delivering deal reports to a recipient.
package notify

import (
	"context"
	"time"

	"github.com/donaldgifford/deal-notifier/internal/metrics"
)

// Notifier delivers a text message to one recipient. A nil error means the
// backend accepted the message.
type Notifier interface {
	Send(ctx context.Context, recipient, text string) error
}

// observe records how long a delivery attempt took for the given backend.
func observe(backend string, start time.Time) {
	metrics.NotificationDuration.WithLabelValues(backend).Observe(time.Since(start).Seconds())
}

// Package notify delivers operator alerts. Alerts are best effort: a failed
// delivery is logged and never changes a trading decision.
package notify

import (
	"context"
	"time"

	"github.com/rustyeddy/propguard/internal/logger"
)

// Notifier sends one text alert.
type Notifier interface {
	Notify(ctx context.Context, msg string) error
}

// Log writes alerts to the process log.
type Log struct{}

func (Log) Notify(_ context.Context, msg string) error {
	logger.Warnf("alert: %s", msg)
	return nil
}

// Multi fans one alert out to several notifiers and returns the first error.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, msg string) error {
	var first error
	for _, n := range m {
		if err := n.Notify(ctx, msg); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// DefaultDeadline bounds how long BestEffort waits on one message.
const DefaultDeadline = 5 * time.Second

// BestEffort wraps n so delivery errors are logged and swallowed, and no
// message holds the caller longer than DefaultDeadline.
// A nil n yields a notifier that does nothing.
func BestEffort(n Notifier) Notifier {
	return BestEffortWithin(n, DefaultDeadline)
}

// BestEffortWithin is BestEffort with a custom deadline.
func BestEffortWithin(n Notifier, d time.Duration) Notifier {
	return bestEffort{n: n, deadline: d}
}

type bestEffort struct {
	n        Notifier
	deadline time.Duration
}

func (b bestEffort) Notify(ctx context.Context, msg string) error {
	if b.n == nil {
		return nil
	}
	if b.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.deadline)
		defer cancel()
	}
	if err := b.n.Notify(ctx, msg); err != nil {
		logger.Errorf("notify failed: %v", err)
	}
	return nil
}

package notify

import (
	"context"

	"go.uber.org/multierr"
)

// Notifier delivers an alert. Delivery is best effort: callers log
// failures and never retry or block a check cycle on them.
type Notifier interface {
	Send(ctx context.Context, title, text string) error
}

// Multi fans an alert out to several notifiers and joins their errors.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, title, text string) error {
	var err error
	for _, n := range m {
		if n == nil {
			continue
		}
		err = multierr.Append(err, n.Send(ctx, title, text))
	}
	return err
}

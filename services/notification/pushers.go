package notification

import (
	"context"

	"freelancehub/models"

	"go.uber.org/multierr"
)

// Pushers fans every push out to each transport in order.
type Pushers []Pusher

func (p Pushers) PushNotification(ctx context.Context, userID string, n *models.Notification) (int, error) {
	var delivered int
	var errs error
	for _, pusher := range p {
		d, err := pusher.PushNotification(ctx, userID, n)
		delivered += d
		errs = multierr.Append(errs, err)
	}
	return delivered, errs
}

func (p Pushers) PushUnreadCount(ctx context.Context, userID string, count int64) (int, error) {
	var delivered int
	var errs error
	for _, pusher := range p {
		d, err := pusher.PushUnreadCount(ctx, userID, count)
		delivered += d
		errs = multierr.Append(errs, err)
	}
	return delivered, errs
}

package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"chefbook/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TypeNotifyRetry is the asynq task type for re-delivering failed sends.
const TypeNotifyRetry = "notify:retry"

// RetryQueue is the slice of the asynq client the dispatcher needs for
// enqueuing retry tasks. *asynq.Client satisfies it.
type RetryQueue interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// DefaultDispatcher is the production Dispatcher. Queue is optional; when
// set, failed sends are enqueued for out-of-band retry.
type DefaultDispatcher struct {
	Sender Sender
	Queue  RetryQueue
	Logger *zap.Logger
}

func (d *DefaultDispatcher) BookingRequested(ctx context.Context, b *models.Booking) error {
	n := models.Notification{
		Type:  models.NotifyBookingRequested,
		Title: "New booking request 🍽️",
		Body: fmt.Sprintf("%s requested %s on %s at %s for %d guest%s.",
			b.Customer.Name, b.TemplateProductID, b.RequestedDate, b.RequestedTime,
			b.PartySize, plural(b.PartySize)),
		Data: d.bookingData(b),
	}
	return d.deliver(ctx, n, b.ID)
}

func (d *DefaultDispatcher) BookingAccepted(ctx context.Context, b *models.Booking) error {
	n := models.Notification{
		Type:  models.NotifyBookingAccepted,
		Title: "Booking confirmed",
		Body: fmt.Sprintf("Booking for %s on %s at %s was accepted by %s.",
			b.Customer.Name, b.RequestedDate, b.RequestedTime, b.AcceptedBy),
		Data: d.bookingData(b),
	}
	return d.deliver(ctx, n, b.ID)
}

func (d *DefaultDispatcher) BookingRejected(ctx context.Context, b *models.Booking) error {
	n := models.Notification{
		Type:  models.NotifyBookingRejected,
		Title: "Booking cancelled",
		Body: fmt.Sprintf("Booking for %s on %s at %s was cancelled: %s",
			b.Customer.Name, b.RequestedDate, b.RequestedTime, b.RejectionReason),
		Data: d.bookingData(b),
	}
	return d.deliver(ctx, n, b.ID)
}

func (d *DefaultDispatcher) bookingData(b *models.Booking) map[string]string {
	return map[string]string{
		"bookingId":     b.ID,
		"status":        string(b.Status),
		"requestedDate": b.RequestedDate,
		"requestedTime": b.RequestedTime,
		"customerEmail": b.Customer.Email,
		"customerPhone": b.Customer.Phone,
	}
}

func (d *DefaultDispatcher) deliver(ctx context.Context, n models.Notification, bookingID string) error {
	err := d.Sender.Send(ctx, n)
	if err == nil {
		return nil
	}

	d.Logger.Warn("notification send failed",
		zap.String("type", n.Type),
		zap.String("bookingId", bookingID),
		zap.Error(err))

	if d.Queue != nil {
		payload, marshalErr := json.Marshal(models.NotificationRetryPayload{
			Notification: n,
			BookingID:    bookingID,
		})
		if marshalErr == nil {
			task := asynq.NewTask(TypeNotifyRetry, payload)
			if _, enqueueErr := d.Queue.EnqueueContext(ctx, task, asynq.MaxRetry(5)); enqueueErr != nil {
				d.Logger.Error("failed to enqueue notification retry",
					zap.String("bookingId", bookingID),
					zap.Error(enqueueErr))
			}
		}
	}

	return fmt.Errorf("notification %s for booking %s: %w", n.Type, bookingID, err)
}

// plural returns "s" if n is not 1, otherwise returns an empty string.
func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

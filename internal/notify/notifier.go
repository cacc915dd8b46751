// Package notify emits best-effort notification requests after booking
// state transitions commit. Delivery is decoupled through a broker topic;
// a failed emit never unwinds the transition that triggered it.
package notify

import (
	"context"

	"bookline/pkg/kafka"
	"bookline/pkg/logger"
	"bookline/pkg/middleware"
	"bookline/pkg/model"
)

// Notifier is the lifecycle manager's outbound notification port.
type Notifier interface {
	BookingReceived(ctx context.Context, booking *model.Booking) error
	PendingReview(ctx context.Context, booking *model.Booking) error
	BookingConfirmed(ctx context.Context, booking *model.Booking) error
	BookingRejected(ctx context.Context, booking *model.Booking, message string) error
}

// Publisher is the broker side of the notifier. *kafka.Producer satisfies
// it; tests substitute a recorder.
type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type Config struct {
	AdminEmail  string
	SenderEmail string
	Source      string
}

type kafkaNotifier struct {
	publisher Publisher
	cfg       Config
	log       *logger.Logger
}

func NewKafkaNotifier(publisher Publisher, cfg Config, log *logger.Logger) Notifier {
	return &kafkaNotifier{
		publisher: publisher,
		cfg:       cfg,
		log:       log,
	}
}

func (n *kafkaNotifier) publish(ctx context.Context, eventType string, booking *model.Booking, email EmailNotification) error {
	builder := kafka.NewMessage().
		WithKey(booking.Email).
		WithValue(email).
		WithEventType(eventType).
		WithHeader("booking_id", booking.ID).
		WithSource(n.cfg.Source)

	// Carry the request ID as correlation ID so a delivered email can be
	// traced back to the request that caused it.
	if requestID := middleware.RequestIDFromContext(ctx); requestID != "" {
		builder = builder.WithCorrelationID(requestID)
	}

	return n.publisher.Publish(ctx, builder.Build())
}

func (n *kafkaNotifier) BookingReceived(ctx context.Context, booking *model.Booking) error {
	return n.publish(ctx, EventBookingReceived, booking, receivedEmail(booking, n.cfg.SenderEmail))
}

func (n *kafkaNotifier) PendingReview(ctx context.Context, booking *model.Booking) error {
	return n.publish(ctx, EventPendingReview, booking, pendingReviewEmail(booking, n.cfg.SenderEmail, n.cfg.AdminEmail))
}

func (n *kafkaNotifier) BookingConfirmed(ctx context.Context, booking *model.Booking) error {
	return n.publish(ctx, EventBookingConfirmed, booking, confirmedEmail(booking, n.cfg.SenderEmail))
}

func (n *kafkaNotifier) BookingRejected(ctx context.Context, booking *model.Booking, message string) error {
	return n.publish(ctx, EventBookingRejected, booking, rejectedEmail(booking, n.cfg.SenderEmail, message))
}

// NopNotifier discards every notification. Used when dispatch is disabled
// by configuration.
type NopNotifier struct{}

func (NopNotifier) BookingReceived(context.Context, *model.Booking) error { return nil }

func (NopNotifier) PendingReview(context.Context, *model.Booking) error { return nil }

func (NopNotifier) BookingConfirmed(context.Context, *model.Booking) error { return nil }

func (NopNotifier) BookingRejected(context.Context, *model.Booking, string) error { return nil }

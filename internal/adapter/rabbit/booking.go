package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/calinga/care-booking-system/internal/domain/models"
	"github.com/calinga/care-booking-system/pkg/logger"
	wrap "github.com/calinga/care-booking-system/pkg/logger/wrapper"
	"github.com/calinga/care-booking-system/pkg/metrics"
	"github.com/calinga/care-booking-system/pkg/rabbit"
)

const (
	BookingExchange = "booking_topic"

	QueueStatusCareseeker = "booking_status_careseeker"
	QueueStatusCaregiver  = "booking_status_caregiver"
)

// BookingBroker publishes booking status events for downstream delivery
// collaborators (push, SMS). Routing key is booking.status.{new_status},
// so a consumer can bind to just the statuses it cares about.
type BookingBroker struct {
	client   *rabbit.RabbitMQ
	exchange string
	service  string

	l logger.Logger
}

func NewBookingBroker(client *rabbit.RabbitMQ, service string, log logger.Logger) *BookingBroker {
	return &BookingBroker{
		client:   client,
		exchange: BookingExchange,
		service:  service,
		l:        log,
	}
}

// Setup declares the exchange. Queues and bindings belong to consumers.
func (b *BookingBroker) Setup(ctx context.Context) error {
	if err := b.client.EnsureConnection(ctx); err != nil {
		return wrap.Error(ctx, err)
	}
	if err := b.client.Channel.ExchangeDeclare(
		b.exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return wrap.Error(ctx, fmt.Errorf("failed to declare exchange: %w", err))
	}
	return nil
}

func (b *BookingBroker) PublishStatusChange(ctx context.Context, msg models.BookingStatusMessage) error {
	ctx = wrap.WithAction(ctx, "rabbitmq_publish_booking_status")

	if err := b.client.EnsureConnection(ctx); err != nil {
		b.l.Error(ctx, "ensure connection failed", err)
		return wrap.Error(ctx, err)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("failed to marshal message: %w", err))
	}

	key := fmt.Sprintf("booking.status.%s", msg.NewStatus)

	err = retry(5, time.Second, func() error {
		return b.client.Channel.PublishWithContext(
			ctx,
			b.exchange,
			key,
			true,  // mandatory
			false, // immediate
			amqp.Publishing{
				ContentType:   "application/json",
				CorrelationId: msg.BookingID.String(),
				Body:          body,
				Timestamp:     time.Now(),
			},
		)
	})
	metrics.RecordRabbitMQPublish(b.service, b.exchange, err)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("failed to publish booking status: %w", err))
	}

	b.l.Debug(ctx, "published booking status event", "routing_key", key)
	return nil
}

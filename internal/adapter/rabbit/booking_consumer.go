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

// StatusHandlerFunc processes one booking status event.
type StatusHandlerFunc func(ctx context.Context, msg models.BookingStatusMessage) error

// BookingStatusConsumer subscribes to booking.status.* events so the
// caregiver service can push live updates to connected caregivers.
type BookingStatusConsumer struct {
	client  *rabbit.RabbitMQ
	service string

	l logger.Logger
}

func NewBookingStatusConsumer(client *rabbit.RabbitMQ, service string, l logger.Logger) *BookingStatusConsumer {
	return &BookingStatusConsumer{client: client, service: service, l: l}
}

func (c *BookingStatusConsumer) declareAndBindQueue(ctx context.Context, queueName, bindingKey, exchangeName string) (amqp.Queue, error) {
	const op = "BookingStatusConsumer.declareAndBindQueue"

	q, err := c.client.Channel.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		return q, wrap.Error(ctx, fmt.Errorf("%s: declare queue failed: %w", op, err))
	}

	if err := c.client.Channel.QueueBind(q.Name, bindingKey, exchangeName, false, nil); err != nil {
		return q, wrap.Error(ctx, fmt.Errorf("%s: bind queue failed: %w", op, err))
	}

	return q, nil
}

func (c *BookingStatusConsumer) handleMessage(ctx context.Context, fn StatusHandlerFunc, msg amqp.Delivery) {
	const op = "BookingStatusConsumer.handleMessage"

	var event models.BookingStatusMessage
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		c.l.Error(ctx, "decode failed", err, "op", op)
		metrics.RecordRabbitMQConsume(c.service, QueueStatusCaregiver, err)
		_ = msg.Nack(false, false)
		return
	}

	ctx = wrap.WithBookingID(ctx, event.BookingID.String())

	err := fn(ctx, event)
	metrics.RecordRabbitMQConsume(c.service, QueueStatusCaregiver, err)
	if err != nil {
		// A caregiver without a live socket is not a failure worth redelivery.
		c.l.Debug(ctx, "status event not delivered", "reason", err.Error())
		_ = msg.Reject(false)
		return
	}

	if err := msg.Ack(false); err != nil {
		c.l.Warn(ctx, "ack failed", "error", err.Error(), "op", op)
	}
}

// Consume listens for booking.status.* events and hands them to fn,
// reconnecting and redeclaring topology until ctx is cancelled.
func (c *BookingStatusConsumer) Consume(ctx context.Context, fn StatusHandlerFunc) error {
	const op = "BookingStatusConsumer.Consume"
	ctx = wrap.WithAction(ctx, "consume_booking_status")

	for {
		if ctx.Err() != nil {
			c.l.Debug(ctx, "booking status consumer stopped by context")
			return nil
		}

		if err := c.client.EnsureConnection(ctx); err != nil {
			c.l.Error(ctx, "ensure connection failed", err, "op", op)
			time.Sleep(2 * time.Second)
			continue
		}

		if err := c.client.Channel.ExchangeDeclare(BookingExchange, "topic", true, false, false, false, nil); err != nil {
			c.l.Error(ctx, "declare exchange failed", err, "op", op)
			time.Sleep(3 * time.Second)
			continue
		}

		q, err := c.declareAndBindQueue(ctx, QueueStatusCaregiver, "booking.status.*", BookingExchange)
		if err != nil {
			c.l.Error(ctx, "declare queue failed", err, "op", op)
			time.Sleep(2 * time.Second)
			continue
		}

		msgs, err := c.client.Channel.Consume(q.Name, "", false, false, false, false, nil)
		if err != nil {
			c.l.Error(ctx, "consume failed", err, "op", op)
			time.Sleep(2 * time.Second)
			continue
		}

		c.l.Info(ctx, "start consuming booking status events", "queue", q.Name)

	consumeLoop:
		for {
			select {
			case <-ctx.Done():
				c.l.Info(ctx, "booking status consumer shutting down", "op", op)
				return nil

			case msg, ok := <-msgs:
				if !ok {
					c.l.Warn(ctx, "message channel closed, reconnecting...", "op", op)
					time.Sleep(2 * time.Second)
					continue consumeLoop
				}

				go c.handleMessage(ctx, fn, msg)
			}
		}
	}
}

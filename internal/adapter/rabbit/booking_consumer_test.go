package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/calinga/care-booking-system/internal/domain/models"
	"github.com/calinga/care-booking-system/internal/domain/types"
	"github.com/calinga/care-booking-system/pkg/logger"
	"github.com/calinga/care-booking-system/pkg/uuid"
)

func newTestConsumer() *BookingStatusConsumer {
	return &BookingStatusConsumer{service: "caregiver-service", l: logger.NewDiscard()}
}

func TestHandleMessage_DispatchesDecodedEvent(t *testing.T) {
	c := newTestConsumer()

	want := models.BookingStatusMessage{
		BookingID:    uuid.New(),
		OldStatus:    types.StatusPending,
		NewStatus:    types.StatusAccepted,
		CareseekerID: uuid.New(),
		CaregiverID:  uuid.New(),
		Timestamp:    time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC),
	}
	body, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}

	var got models.BookingStatusMessage
	calls := 0
	c.handleMessage(context.Background(), func(_ context.Context, msg models.BookingStatusMessage) error {
		calls++
		got = msg
		return nil
	}, amqp.Delivery{Body: body})

	if calls != 1 {
		t.Fatalf("handler called %d times, want 1", calls)
	}
	if got.BookingID != want.BookingID || got.NewStatus != want.NewStatus || got.CaregiverID != want.CaregiverID {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestHandleMessage_MalformedBodySkipsHandler(t *testing.T) {
	c := newTestConsumer()

	calls := 0
	c.handleMessage(context.Background(), func(_ context.Context, _ models.BookingStatusMessage) error {
		calls++
		return nil
	}, amqp.Delivery{Body: []byte(`{"booking_id":`)})

	if calls != 0 {
		t.Fatalf("handler called %d times for malformed body, want 0", calls)
	}
}

func TestHandleMessage_HandlerErrorIsDropped(t *testing.T) {
	c := newTestConsumer()

	body, err := json.Marshal(models.BookingStatusMessage{BookingID: uuid.New()})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}

	// An undeliverable event is rejected, not redelivered forever.
	c.handleMessage(context.Background(), func(_ context.Context, _ models.BookingStatusMessage) error {
		return errors.New("no live socket")
	}, amqp.Delivery{Body: body})
}

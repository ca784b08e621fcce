package wshandler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/calinga/care-booking-system/internal/domain/models"
	"github.com/calinga/care-booking-system/internal/domain/types"
	"github.com/calinga/care-booking-system/pkg/logger"
	"github.com/calinga/care-booking-system/pkg/uuid"
	"github.com/calinga/care-booking-system/pkg/validator"
	ws "github.com/calinga/care-booking-system/pkg/wsHub"
)

type stubReporter struct{}

func (stubReporter) ReportLocation(context.Context, uuid.UUID, models.GeoPoint) error { return nil }
func (stubReporter) SetActive(context.Context, uuid.UUID, bool) error                 { return nil }

func TestPushStatusUpdate_NoSocketReturnsNotFound(t *testing.T) {
	hub := NewCaregiverHub(ws.NewConnHub(logger.NewDiscard()), stubReporter{}, logger.NewDiscard())

	event := models.BookingStatusMessage{
		BookingID:   uuid.New(),
		OldStatus:   types.StatusPending,
		NewStatus:   types.StatusAccepted,
		CaregiverID: uuid.New(),
		Timestamp:   time.Now(),
	}

	// Disconnected caregivers keep the inbox record, the push just fails.
	if err := hub.PushStatusUpdate(context.Background(), event); !errors.Is(err, ws.ErrConnIsNotFound) {
		t.Fatalf("got %v, want ErrConnIsNotFound for a caregiver without a socket", err)
	}
}

func TestLocationMessage_Validate(t *testing.T) {
	lat, lon := 34.14, -118.14
	bad := 123.0

	tests := []struct {
		name  string
		msg   locationMessage
		valid bool
	}{
		{"valid", locationMessage{Type: "location_update", Latitude: &lat, Longitude: &lon}, true},
		{"wrong type", locationMessage{Type: "ping", Latitude: &lat, Longitude: &lon}, false},
		{"missing latitude", locationMessage{Type: "location_update", Longitude: &lon}, false},
		{"latitude out of range", locationMessage{Type: "location_update", Latitude: &bad, Longitude: &lon}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validator.New()
			tt.msg.Validate(v)
			if v.Valid() != tt.valid {
				t.Fatalf("valid = %v, want %v (errors: %v)", v.Valid(), tt.valid, v.Errors)
			}
		})
	}
}

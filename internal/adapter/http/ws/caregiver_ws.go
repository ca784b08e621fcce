package wshandler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/calinga/care-booking-system/internal/domain/models"
	"github.com/calinga/care-booking-system/internal/domain/types"
	"github.com/calinga/care-booking-system/pkg/logger"
	wrap "github.com/calinga/care-booking-system/pkg/logger/wrapper"
	"github.com/calinga/care-booking-system/pkg/metrics"
	"github.com/calinga/care-booking-system/pkg/uuid"
	"github.com/calinga/care-booking-system/pkg/validator"
	ws "github.com/calinga/care-booking-system/pkg/wsHub"
)

// LocationReporter is the slice of the caregiver service the WS channel
// needs: stream in fixes, toggle availability on connect/disconnect.
type LocationReporter interface {
	ReportLocation(ctx context.Context, ownerID uuid.UUID, pos models.GeoPoint) error
	SetActive(ctx context.Context, ownerID uuid.UUID, active bool) error
}

// locationMessage is one inbound frame on a caregiver socket.
type locationMessage struct {
	Type      string   `json:"type"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (m *locationMessage) Validate(v *validator.Validator) {
	v.Check(m.Type == "location_update", "type", "must be location_update")
	v.Check(m.Latitude != nil, "latitude", "must be provided")
	if m.Latitude != nil {
		v.Check(*m.Latitude >= -90 && *m.Latitude <= 90, "latitude", "must be between -90 and 90")
	}
	v.Check(m.Longitude != nil, "longitude", "must be provided")
	if m.Longitude != nil {
		v.Check(*m.Longitude >= -180 && *m.Longitude <= 180, "longitude", "must be between -180 and 180")
	}
}

// CaregiverHub owns the live caregiver sockets. A connected caregiver
// streams location fixes; sign-on and sign-off flip availability, same
// as the REST activate/deactivate endpoints.
type CaregiverHub struct {
	connections *ws.ConnectionHub
	service     LocationReporter
	upgrader    websocket.Upgrader

	l logger.Logger
}

func NewCaregiverHub(connHub *ws.ConnectionHub, service LocationReporter, l logger.Logger) *CaregiverHub {
	return &CaregiverHub{
		connections: connHub,
		service:     service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		l: l,
	}
}

// HandleWS godoc
// @Summary      Caregiver live channel
// @Description  WebSocket for streaming location fixes
// @Tags         Caregivers
// @Param        caregiver_id path string true "Caregiver ID"
// @Router       /ws/caregivers/{caregiver_id} [get]
func (h *CaregiverHub) HandleWS(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "caregiver_ws")

	caregiverID, err := uuid.Parse(r.PathValue("caregiver_id"))
	if err != nil {
		h.l.Warn(ctx, "invalid caregiver uuid format")
		http.Error(w, "invalid caregiver_id format", http.StatusBadRequest)
		return
	}
	ctx = wrap.WithUserID(ctx, caregiverID.String())

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to upgrade connection", err)
		return
	}

	conn := ws.NewConn(context.WithoutCancel(ctx), caregiverID, wsConn)
	if err := h.connections.Add(conn); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to register connection", err)
		conn.Close()
		return
	}

	service := string(types.CaregiverAndLocationService)
	metrics.WebSocketConnectionsGauge.WithLabelValues(service).Inc()
	defer metrics.WebSocketConnectionsGauge.WithLabelValues(service).Dec()

	// A live socket means an available caregiver.
	if err := h.service.SetActive(ctx, caregiverID, true); err != nil {
		h.l.Warn(ctx, "could not activate caregiver on connect", "error", err.Error())
	}

	h.l.Info(ctx, "caregiver connected", "connections", h.connections.Len())

	err = conn.Listen(func(msg map[string]any) error {
		return h.handleMessage(ctx, conn, caregiverID, msg)
	})
	if err != nil {
		h.l.Debug(ctx, "caregiver socket closed", "reason", err.Error())
	}

	if err := h.service.SetActive(ctx, caregiverID, false); err != nil {
		h.l.Warn(ctx, "could not deactivate caregiver on disconnect", "error", err.Error())
	}
	if err := h.connections.Delete(caregiverID); err != nil {
		h.l.Debug(ctx, "connection already removed", "error", err.Error())
	}
}

func (h *CaregiverHub) handleMessage(ctx context.Context, conn *ws.Conn, caregiverID uuid.UUID, msg map[string]any) error {
	var locMsg locationMessage
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, &locMsg); err != nil {
		return errorResponse(conn, "malformed message")
	}

	v := validator.New()
	locMsg.Validate(v)
	if !v.Valid() {
		// bad frame: tell the client, keep the socket alive
		return failedValidationResponse(conn, v.Errors)
	}

	pos := models.GeoPoint{Latitude: *locMsg.Latitude, Longitude: *locMsg.Longitude}
	if err := h.service.ReportLocation(ctx, caregiverID, pos); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to store streamed fix", err)
		return errorResponse(conn, "could not store location")
	}

	return conn.Send(map[string]any{"type": "location_ack"})
}

// PushStatusUpdate forwards a booking status event to the caregiver's
// live socket. Errors mean no socket, the inbox still has the record.
func (h *CaregiverHub) PushStatusUpdate(ctx context.Context, event models.BookingStatusMessage) error {
	return h.connections.SendTo(event.CaregiverID, map[string]any{
		"type":       "booking_update",
		"booking_id": event.BookingID.String(),
		"old_status": string(event.OldStatus),
		"new_status": string(event.NewStatus),
		"timestamp":  event.Timestamp.Format(time.RFC3339),
	})
}

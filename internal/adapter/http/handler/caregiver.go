package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/calinga/care-booking-system/internal/adapter/http/handler/dto"
	"github.com/calinga/care-booking-system/internal/domain/models"
	"github.com/calinga/care-booking-system/pkg/logger"
	wrap "github.com/calinga/care-booking-system/pkg/logger/wrapper"
	"github.com/calinga/care-booking-system/pkg/uuid"
	"github.com/calinga/care-booking-system/pkg/validator"
)

type CaregiverService interface {
	ReportLocation(ctx context.Context, ownerID uuid.UUID, pos models.GeoPoint) error
	SetActive(ctx context.Context, ownerID uuid.UUID, active bool) error
	Nearby(ctx context.Context, origin models.GeoPoint, radiusMiles float64) ([]models.Match, error)
	Notifications(ctx context.Context, recipientID uuid.UUID) ([]models.Notification, error)
	MarkNotificationSeen(ctx context.Context, id, recipientID uuid.UUID) error
}

type Caregiver struct {
	service CaregiverService
	l       logger.Logger
}

func NewCaregiver(service CaregiverService, l logger.Logger) *Caregiver {
	return &Caregiver{
		service: service,
		l:       l,
	}
}

// Nearby godoc
// @Summary      Find nearby caregivers
// @Description  Ranked list of active, approved caregivers around the seeker
// @Tags         Caregivers
// @Produce      json
// @Param        latitude query number false "Seeker latitude"
// @Param        longitude query number false "Seeker longitude"
// @Param        radius_miles query number false "Search radius in miles"
// @Success      200 {array} dto.MatchResponse
// @Router       /caregivers/nearby [get]
func (h *Caregiver) Nearby(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "find_nearby_caregivers")

	// Missing or unparsable coordinates collapse to the unknown-location
	// sentinel: the search still answers, just unranked.
	origin := models.GeoPoint{
		Latitude:  queryFloat(r, "latitude"),
		Longitude: queryFloat(r, "longitude"),
	}
	radius := queryFloat(r, "radius_miles")

	matches, err := h.service.Nearby(ctx, origin, radius)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to find nearby caregivers", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"caregivers": dto.FromMatches(matches),
		"count":      len(matches),
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// UpdateLocation godoc
// @Summary      Report location fix
// @Tags         Caregivers
// @Accept       json
// @Produce      json
// @Param        caregiver_id path string true "Caregiver ID"
// @Param        request body dto.LocationUpdateRequest true "Coordinates"
// @Success      200 {object} map[string]string
// @Router       /caregivers/{caregiver_id}/location [post]
func (h *Caregiver) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "report_location")

	caregiverID, err := uuid.Parse(r.PathValue("caregiver_id"))
	if err != nil {
		h.l.Warn(ctx, "invalid caregiver uuid format")
		errorResponse(w, http.StatusBadRequest, "invalid caregiver_id format")
		return
	}

	var locationReq dto.LocationUpdateRequest
	if err := readJSON(w, r, &locationReq); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to read request JSON data", err)
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	v := validator.New()
	locationReq.Validate(v)
	if !v.Valid() {
		h.l.Warn(ctx, "invalid request data")
		failedValidationResponse(w, v.Errors)
		return
	}

	if err := h.service.ReportLocation(ctx, caregiverID, locationReq.ToPoint()); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to store location fix", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"message": "location updated"}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// Activate godoc
// @Summary      Caregiver goes available
// @Tags         Caregivers
// @Produce      json
// @Param        caregiver_id path string true "Caregiver ID"
// @Success      200 {object} map[string]string
// @Router       /caregivers/{caregiver_id}/activate [post]
func (h *Caregiver) Activate(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "activate_caregiver")
	h.setActive(ctx, w, r, true, "you are now visible to careseekers")
}

// Deactivate godoc
// @Summary      Caregiver goes unavailable
// @Tags         Caregivers
// @Produce      json
// @Param        caregiver_id path string true "Caregiver ID"
// @Success      200 {object} map[string]string
// @Router       /caregivers/{caregiver_id}/deactivate [post]
func (h *Caregiver) Deactivate(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "deactivate_caregiver")
	h.setActive(ctx, w, r, false, "you are no longer visible to careseekers")
}

func (h *Caregiver) setActive(ctx context.Context, w http.ResponseWriter, r *http.Request, active bool, message string) {
	caregiverID, err := uuid.Parse(r.PathValue("caregiver_id"))
	if err != nil {
		h.l.Warn(ctx, "invalid caregiver uuid format")
		errorResponse(w, http.StatusBadRequest, "invalid caregiver_id format")
		return
	}

	if err := h.service.SetActive(ctx, caregiverID, active); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to toggle availability", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"active":  active,
		"message": message,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "caregiver availability changed", "caregiver_id", caregiverID, "active", active)
}

// Notifications godoc
// @Summary      List notifications
// @Tags         Notifications
// @Produce      json
// @Success      200 {array} dto.NotificationResponse
// @Router       /notifications [get]
func (h *Caregiver) Notifications(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_notifications")

	actor := models.UserFromContext(ctx)
	if actor.IsAnonymous() {
		errorResponse(w, http.StatusUnauthorized, "authorization required")
		return
	}

	notifications, err := h.service.Notifications(ctx, actor.ID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to list notifications", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"notifications": dto.FromNotifications(notifications)}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// MarkNotificationSeen godoc
// @Summary      Mark notification as seen
// @Tags         Notifications
// @Produce      json
// @Param        notification_id path string true "Notification ID"
// @Success      200 {object} map[string]string
// @Router       /notifications/{notification_id}/seen [post]
func (h *Caregiver) MarkNotificationSeen(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "mark_notification_seen")

	actor := models.UserFromContext(ctx)
	if actor.IsAnonymous() {
		errorResponse(w, http.StatusUnauthorized, "authorization required")
		return
	}

	notificationID, err := uuid.Parse(r.PathValue("notification_id"))
	if err != nil {
		h.l.Warn(ctx, "invalid notification uuid format")
		errorResponse(w, http.StatusBadRequest, "invalid notification_id format")
		return
	}

	if err := h.service.MarkNotificationSeen(ctx, notificationID, actor.ID); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to mark notification as seen", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"message": "notification marked as seen"}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// queryFloat returns the named query parameter as a float, or 0 when
// absent or malformed.
func queryFloat(r *http.Request, name string) float64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return f
}

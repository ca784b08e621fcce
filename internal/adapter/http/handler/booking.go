package handler

import (
	"context"
	"net/http"

	"github.com/calinga/care-booking-system/internal/adapter/http/handler/dto"
	"github.com/calinga/care-booking-system/internal/domain/models"
	"github.com/calinga/care-booking-system/internal/domain/types"
	"github.com/calinga/care-booking-system/internal/service/booking"
	"github.com/calinga/care-booking-system/pkg/logger"
	wrap "github.com/calinga/care-booking-system/pkg/logger/wrapper"
	"github.com/calinga/care-booking-system/pkg/uuid"
	"github.com/calinga/care-booking-system/pkg/validator"
)

type BookingService interface {
	Create(ctx context.Context, req booking.CreateRequest) (*models.Booking, error)
	Get(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)
	Accept(ctx context.Context, bookingID, actorID uuid.UUID) (*models.Booking, error)
	Complete(ctx context.Context, bookingID, actorID uuid.UUID, completionNotes string) (*models.Booking, error)
	Cancel(ctx context.Context, bookingID, actorID uuid.UUID) (*models.Booking, error)
	ListForCareseeker(ctx context.Context, careseekerID uuid.UUID) ([]models.Booking, error)
	ListForCaregiver(ctx context.Context, caregiverID uuid.UUID) ([]models.Booking, error)
}

type Booking struct {
	service BookingService
	l       logger.Logger
}

func NewBooking(service BookingService, l logger.Logger) *Booking {
	return &Booking{
		service: service,
		l:       l,
	}
}

// Create godoc
// @Summary      Create booking
// @Description  Careseeker books a caregiver for a time window
// @Tags         Bookings
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateBookingRequest true "Booking request"
// @Success      201 {object} dto.BookingResponse
// @Failure      422 {object} map[string]string
// @Router       /bookings [post]
func (h *Booking) Create(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "create_booking")

	actor := models.UserFromContext(ctx)
	if actor.IsAnonymous() {
		errorResponse(w, http.StatusUnauthorized, "authorization required")
		return
	}

	var createReq dto.CreateBookingRequest
	if err := readJSON(w, r, &createReq); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to read request JSON data", err)
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	v := validator.New()
	createReq.Validate(v)
	if !v.Valid() {
		h.l.Warn(ctx, "invalid request data")
		failedValidationResponse(w, v.Errors)
		return
	}

	req, err := createReq.ToRequest(actor.ID)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.Create(ctx, req)
	if err != nil {
		h.respondServiceError(ctx, w, "failed to create booking", err)
		return
	}

	response := envelope{"booking": dto.FromBooking(created)}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "booking created", "booking_id", created.ID)
}

// Get godoc
// @Summary      Get booking
// @Tags         Bookings
// @Produce      json
// @Param        booking_id path string true "Booking ID"
// @Success      200 {object} dto.BookingResponse
// @Router       /bookings/{booking_id} [get]
func (h *Booking) Get(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_booking")

	bookingID, ok := h.pathID(ctx, w, r, "booking_id")
	if !ok {
		return
	}

	found, err := h.service.Get(ctx, bookingID)
	if err != nil {
		h.respondServiceError(ctx, w, "failed to get booking", err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"booking": dto.FromBooking(found)}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// Accept godoc
// @Summary      Accept booking
// @Description  Caregiver accepts a pending booking
// @Tags         Bookings
// @Produce      json
// @Param        booking_id path string true "Booking ID"
// @Success      200 {object} dto.BookingResponse
// @Failure      409 {object} map[string]string
// @Router       /bookings/{booking_id}/accept [post]
func (h *Booking) Accept(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "accept_booking")
	h.transition(ctx, w, r, func(ctx context.Context, bookingID, actorID uuid.UUID) (*models.Booking, error) {
		return h.service.Accept(ctx, bookingID, actorID)
	})
}

// Complete godoc
// @Summary      Complete booking
// @Description  Caregiver marks an accepted booking as completed
// @Tags         Bookings
// @Accept       json
// @Produce      json
// @Param        booking_id path string true "Booking ID"
// @Param        request body dto.CompleteBookingRequest true "Completion notes"
// @Success      200 {object} dto.BookingResponse
// @Failure      409 {object} map[string]string
// @Router       /bookings/{booking_id}/complete [post]
func (h *Booking) Complete(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "complete_booking")

	var completeReq dto.CompleteBookingRequest
	if err := readJSON(w, r, &completeReq); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to read request JSON data", err)
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	v := validator.New()
	completeReq.Validate(v)
	if !v.Valid() {
		h.l.Warn(ctx, "invalid request data")
		failedValidationResponse(w, v.Errors)
		return
	}

	h.transition(ctx, w, r, func(ctx context.Context, bookingID, actorID uuid.UUID) (*models.Booking, error) {
		return h.service.Complete(ctx, bookingID, actorID, completeReq.CompletionNotes)
	})
}

// Cancel godoc
// @Summary      Cancel booking
// @Description  Either party cancels a pending or accepted booking
// @Tags         Bookings
// @Produce      json
// @Param        booking_id path string true "Booking ID"
// @Success      200 {object} dto.BookingResponse
// @Failure      409 {object} map[string]string
// @Router       /bookings/{booking_id}/cancel [post]
func (h *Booking) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "cancel_booking")
	h.transition(ctx, w, r, func(ctx context.Context, bookingID, actorID uuid.UUID) (*models.Booking, error) {
		return h.service.Cancel(ctx, bookingID, actorID)
	})
}

// ListForCareseeker godoc
// @Summary      List careseeker bookings
// @Tags         Bookings
// @Produce      json
// @Param        careseeker_id path string true "Careseeker ID"
// @Success      200 {array} dto.BookingResponse
// @Router       /careseekers/{careseeker_id}/bookings [get]
func (h *Booking) ListForCareseeker(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_careseeker_bookings")

	careseekerID, ok := h.pathID(ctx, w, r, "careseeker_id")
	if !ok {
		return
	}

	bookings, err := h.service.ListForCareseeker(ctx, careseekerID)
	if err != nil {
		h.respondServiceError(ctx, w, "failed to list bookings", err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"bookings": dto.FromBookings(bookings)}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// ListForCaregiver godoc
// @Summary      List caregiver bookings
// @Tags         Bookings
// @Produce      json
// @Param        caregiver_id path string true "Caregiver ID"
// @Success      200 {array} dto.BookingResponse
// @Router       /caregivers/{caregiver_id}/bookings [get]
func (h *Booking) ListForCaregiver(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_caregiver_bookings")

	caregiverID, ok := h.pathID(ctx, w, r, "caregiver_id")
	if !ok {
		return
	}

	bookings, err := h.service.ListForCaregiver(ctx, caregiverID)
	if err != nil {
		h.respondServiceError(ctx, w, "failed to list bookings", err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"bookings": dto.FromBookings(bookings)}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

func (h *Booking) transition(
	ctx context.Context,
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, bookingID, actorID uuid.UUID) (*models.Booking, error),
) {
	actor := models.UserFromContext(ctx)
	if actor.IsAnonymous() {
		errorResponse(w, http.StatusUnauthorized, "authorization required")
		return
	}

	bookingID, ok := h.pathID(ctx, w, r, "booking_id")
	if !ok {
		return
	}

	updated, err := apply(ctx, bookingID, actor.ID)
	if err != nil {
		h.respondServiceError(ctx, w, "failed to transition booking", err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"booking": dto.FromBooking(updated)}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "booking status is now "+updated.Status.String(), "booking_id", updated.ID)
}

func (h *Booking) pathID(ctx context.Context, w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		h.l.Warn(ctx, "invalid uuid in path", "param", name)
		errorResponse(w, http.StatusBadRequest, "invalid "+name+" format")
		return uuid.UUID{}, false
	}
	return id, true
}

// respondServiceError renders typed domain errors with their mapped
// status, keeping the field detail for validation failures.
func (h *Booking) respondServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if v, ok := types.IsValidation(err); ok {
		h.l.Warn(ctx, msg, "field", v.Field, "reason", v.Reason)
		failedValidationResponse(w, map[string]string{v.Field: v.Reason})
		return
	}
	h.l.Error(wrap.ErrorCtx(ctx, err), msg, err)
	errorResponse(w, GetCode(err), err.Error())
}

package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/calinga/care-booking-system/internal/domain/models"
	"github.com/calinga/care-booking-system/internal/domain/types"
	"github.com/calinga/care-booking-system/pkg/logger"
	wrap "github.com/calinga/care-booking-system/pkg/logger/wrapper"
	"github.com/calinga/care-booking-system/pkg/metrics"
	"github.com/calinga/care-booking-system/pkg/trm"
	"github.com/calinga/care-booking-system/pkg/uuid"
)

const (
	DefaultMinLeadTime = 15 * time.Minute
	DefaultMinDuration = time.Hour
)

// Config carries the booking validation policy.
type Config struct {
	MinLeadTime time.Duration
	MinDuration time.Duration
}

func (c Config) withDefaults() Config {
	if c.MinLeadTime <= 0 {
		c.MinLeadTime = DefaultMinLeadTime
	}
	if c.MinDuration <= 0 {
		c.MinDuration = DefaultMinDuration
	}
	return c
}

// allowed is the closed transition set. Terminal states have no row.
var allowed = map[types.BookingStatus]map[types.BookingStatus]bool{
	types.StatusPending:  {types.StatusAccepted: true, types.StatusCancelled: true},
	types.StatusAccepted: {types.StatusCompleted: true, types.StatusCancelled: true},
}

type BookingService struct {
	bookings      BookingRepo
	profiles      ProfileRepo
	notifications NotificationRepo
	publisher     StatusPublisher
	logger        logger.Logger
	trm           trm.TxManager
	cfg           Config

	// wall clock, swappable in tests
	now func() time.Time
}

func NewBookingService(
	bookings BookingRepo,
	profiles ProfileRepo,
	notifications NotificationRepo,
	publisher StatusPublisher,
	logger logger.Logger,
	trm trm.TxManager,
	cfg Config,
) *BookingService {
	return &BookingService{
		bookings:      bookings,
		profiles:      profiles,
		notifications: notifications,
		publisher:     publisher,
		logger:        logger,
		trm:           trm,
		cfg:           cfg.withDefaults(),
		now:           time.Now,
	}
}

// CreateRequest is a careseeker's proposed booking. The caregiver's tier
// and hourly rate come from the profile, never from the client.
type CreateRequest struct {
	CareseekerID  uuid.UUID
	CaregiverID   uuid.UUID
	TimeFrom      time.Time
	TimeTo        time.Time
	Address       string
	Notes         string
	PaymentMethod types.PaymentMethod
}

// Create validates the request, prices the window and persists the
// booking together with its caregiver notification in one transaction.
// Nothing is persisted when any constraint fails.
func (s *BookingService) Create(ctx context.Context, req CreateRequest) (*models.Booking, error) {
	ctx = wrap.WithAction(ctx, "create_booking")

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	profile, err := s.profiles.FindByOwner(ctx, req.CaregiverID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	if !profile.IsApproved {
		return nil, types.Validation("caregiver_id", "caregiver is not approved")
	}

	hours := totalHours(req.TimeFrom, req.TimeTo)

	created := &models.Booking{
		ID:            uuid.New(),
		CareseekerID:  req.CareseekerID,
		CaregiverID:   req.CaregiverID,
		CaregiverTier: profile.Tier,
		TimeFrom:      req.TimeFrom,
		TimeTo:        req.TimeTo,
		Address:       strings.TrimSpace(req.Address),
		Notes:         req.Notes,
		HourlyRate:    profile.HourlyRate,
		TotalHours:    hours,
		TotalAmount:   totalAmount(hours, profile.HourlyRate),
		PaymentMethod: req.PaymentMethod,
		Status:        types.StatusPending,
		CreatedAt:     s.now(),
	}
	ctx = wrap.WithBookingID(ctx, created.ID.String())

	err = s.trm.Do(ctx, func(ctx context.Context) error {
		if err := s.bookings.Create(ctx, created); err != nil {
			return wrap.Error(ctx, fmt.Errorf("could not create booking: %w", err))
		}

		notification := &models.Notification{
			ID:          uuid.New(),
			RecipientID: created.CaregiverID,
			Title:       "New booking request",
			Message: fmt.Sprintf("You have a new %s booking request for %s",
				created.CaregiverTier, created.TimeFrom.Format("Jan 2, 3:04 PM")),
			CreatedAt: s.now(),
		}
		if err := s.notifications.Create(ctx, notification); err != nil {
			return wrap.Error(ctx, fmt.Errorf("could not create notification: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	metrics.RecordBookingCreated(string(types.BookingService), string(created.CaregiverTier))
	s.publishStatusChange(ctx, created, "")

	s.logger.Info(ctx, "booking created",
		"caregiver_id", created.CaregiverID.String(),
		"total_amount", created.DisplayAmount(),
	)
	return created, nil
}

func (s *BookingService) validateRequest(req CreateRequest) error {
	now := s.now()

	if req.CaregiverID.IsZero() {
		return types.Validation("caregiver_id", "must be provided")
	}
	if req.TimeFrom.Before(now.Add(s.cfg.MinLeadTime)) {
		return types.Validation("time_from",
			fmt.Sprintf("must be at least %s in the future", s.cfg.MinLeadTime))
	}
	if !req.TimeTo.After(req.TimeFrom) {
		return types.Validation("time_to", "must be after time_from")
	}
	if req.TimeTo.Sub(req.TimeFrom) < s.cfg.MinDuration {
		return types.Validation("time_to",
			fmt.Sprintf("booking must last at least %s", s.cfg.MinDuration))
	}
	if strings.TrimSpace(req.Address) == "" {
		return types.Validation("address", "must be provided")
	}
	if _, ok := types.ParsePaymentMethod(string(req.PaymentMethod)); !ok {
		return types.Validation("payment_method", "unknown payment method")
	}
	return nil
}

// Accept moves a pending booking to accepted on behalf of the caregiver.
func (s *BookingService) Accept(ctx context.Context, bookingID, actorID uuid.UUID) (*models.Booking, error) {
	ctx = wrap.WithAction(ctx, "accept_booking")
	return s.transition(ctx, bookingID, actorID, types.StatusAccepted, "")
}

// Complete moves an accepted booking to completed. Notes are mandatory
// and become the booking's completion record.
func (s *BookingService) Complete(ctx context.Context, bookingID, actorID uuid.UUID, completionNotes string) (*models.Booking, error) {
	ctx = wrap.WithAction(ctx, "complete_booking")
	if strings.TrimSpace(completionNotes) == "" {
		return nil, types.Validation("completion_notes", "must be provided")
	}
	return s.transition(ctx, bookingID, actorID, types.StatusCompleted, completionNotes)
}

// Cancel moves a pending or accepted booking to cancelled. Either party
// on the booking may cancel; finer-grained policy is the caller's.
func (s *BookingService) Cancel(ctx context.Context, bookingID, actorID uuid.UUID) (*models.Booking, error) {
	ctx = wrap.WithAction(ctx, "cancel_booking")
	return s.transition(ctx, bookingID, actorID, types.StatusCancelled, "")
}

// transition applies the state machine with a read-modify-write against
// the persisted booking, so a concurrent transition that already landed
// is always re-validated from the current status. Reapplying a
// transition the booking already took is a no-op success.
func (s *BookingService) transition(
	ctx context.Context,
	bookingID, actorID uuid.UUID,
	target types.BookingStatus,
	completionNotes string,
) (*models.Booking, error) {
	ctx = wrap.WithBookingID(ctx, bookingID.String())

	var (
		updated *models.Booking
		from    types.BookingStatus
		noop    bool
	)

	err := s.trm.Do(ctx, func(ctx context.Context) error {
		booking, err := s.bookings.FindByID(ctx, bookingID)
		if err != nil {
			return wrap.Error(ctx, err)
		}

		if booking.Status == target {
			updated, noop = booking, true
			return nil
		}
		if !allowed[booking.Status][target] {
			return wrap.Error(ctx, types.InvalidTransition(booking.Status, target))
		}

		from = booking.Status
		booking.Status = target
		if target == types.StatusCompleted {
			completedAt := s.now()
			booking.CompletedAt = &completedAt
			booking.CompletionNotes = completionNotes
		}

		if err := s.bookings.Update(ctx, booking); err != nil {
			return wrap.Error(ctx, fmt.Errorf("could not update booking: %w", err))
		}

		if notification := s.transitionNotification(booking, actorID, target); notification != nil {
			if err := s.notifications.Create(ctx, notification); err != nil {
				return wrap.Error(ctx, fmt.Errorf("could not create notification: %w", err))
			}
		}

		updated = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	if noop {
		s.logger.Debug(ctx, "transition already applied", "status", target.String())
		return updated, nil
	}

	metrics.RecordBookingTransition(string(types.BookingService), string(from), string(target))
	s.publishStatusChange(ctx, updated, from)

	s.logger.Info(ctx, "booking status changed",
		"from", from.String(),
		"to", target.String(),
	)
	return updated, nil
}

// transitionNotification builds the advisory record for the counterparty.
// Cancellation is visible through the booking itself and the broker
// event, so only accept and complete produce an inbox entry.
func (s *BookingService) transitionNotification(booking *models.Booking, actorID uuid.UUID, target types.BookingStatus) *models.Notification {
	recipient := booking.CareseekerID
	if actorID == booking.CareseekerID {
		recipient = booking.CaregiverID
	}

	var title, message string
	switch target {
	case types.StatusAccepted:
		title = "Booking accepted"
		message = fmt.Sprintf("Your booking for %s was accepted", booking.TimeFrom.Format("Jan 2, 3:04 PM"))
	case types.StatusCompleted:
		title = "Booking completed"
		message = fmt.Sprintf("Your booking was completed. Total: $%.2f", booking.DisplayAmount())
	default:
		return nil
	}

	return &models.Notification{
		ID:          uuid.New(),
		RecipientID: recipient,
		Title:       title,
		Message:     message,
		CreatedAt:   s.now(),
	}
}

// publishStatusChange is best effort. The booking is already committed,
// so a broker failure is logged and swallowed.
func (s *BookingService) publishStatusChange(ctx context.Context, booking *models.Booking, from types.BookingStatus) {
	if s.publisher == nil {
		return
	}
	msg := models.BookingStatusMessage{
		BookingID:    booking.ID,
		OldStatus:    from,
		NewStatus:    booking.Status,
		CareseekerID: booking.CareseekerID,
		CaregiverID:  booking.CaregiverID,
		Timestamp:    s.now(),
	}
	if err := s.publisher.PublishStatusChange(ctx, msg); err != nil {
		s.logger.Warn(ctx, "could not publish booking status change", "error", err.Error())
	}
}

// Get returns a booking by id.
func (s *BookingService) Get(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	ctx = wrap.WithAction(ctx, "get_booking")
	ctx = wrap.WithBookingID(ctx, bookingID.String())

	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	return booking, nil
}

// ListForCareseeker returns every booking the careseeker has made.
func (s *BookingService) ListForCareseeker(ctx context.Context, careseekerID uuid.UUID) ([]models.Booking, error) {
	ctx = wrap.WithAction(ctx, "list_careseeker_bookings")

	bookings, err := s.bookings.ListByCareseeker(ctx, careseekerID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	return bookings, nil
}

// ListForCaregiver returns every booking addressed to the caregiver.
func (s *BookingService) ListForCaregiver(ctx context.Context, caregiverID uuid.UUID) ([]models.Booking, error) {
	ctx = wrap.WithAction(ctx, "list_caregiver_bookings")

	bookings, err := s.bookings.ListByCaregiver(ctx, caregiverID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	return bookings, nil
}

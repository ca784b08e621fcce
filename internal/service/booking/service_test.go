package booking

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/calinga/care-booking-system/internal/domain/models"
	"github.com/calinga/care-booking-system/internal/domain/types"
	"github.com/calinga/care-booking-system/pkg/logger"
	"github.com/calinga/care-booking-system/pkg/uuid"
)

/* ======================= fakes ======================= */

type fakeBookingRepo struct {
	bookings  map[uuid.UUID]models.Booking
	createErr error
	updateErr error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]models.Booking)}
}

func (f *fakeBookingRepo) Create(_ context.Context, b *models.Booking) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.bookings[b.ID] = *b
	return nil
}

func (f *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, types.ErrBookingNotFound
	}
	copied := b
	return &copied, nil
}

func (f *fakeBookingRepo) Update(_ context.Context, b *models.Booking) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.bookings[b.ID]; !ok {
		return types.ErrBookingNotFound
	}
	f.bookings[b.ID] = *b
	return nil
}

func (f *fakeBookingRepo) ListByCareseeker(_ context.Context, id uuid.UUID) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		if b.CareseekerID == id {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) ListByCaregiver(_ context.Context, id uuid.UUID) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		if b.CaregiverID == id {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeProfileRepo struct {
	profiles map[uuid.UUID]models.CaregiverProfile
}

func (f *fakeProfileRepo) FindByOwner(_ context.Context, id uuid.UUID) (*models.CaregiverProfile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, types.ErrProfileNotFound
	}
	return &p, nil
}

type fakeNotificationRepo struct {
	created   []models.Notification
	createErr error
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *models.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, *n)
	return nil
}

type fakePublisher struct {
	published []models.BookingStatusMessage
	err       error
}

func (f *fakePublisher) PublishStatusChange(_ context.Context, msg models.BookingStatusMessage) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, msg)
	return nil
}

// passthroughTxManager runs the function directly, no pgx involved.
type passthroughTxManager struct{}

func (passthroughTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

/* ======================= harness ======================= */

type harness struct {
	svc           *BookingService
	bookings      *fakeBookingRepo
	profiles      *fakeProfileRepo
	notifications *fakeNotificationRepo
	publisher     *fakePublisher
	now           time.Time
	caregiverID   uuid.UUID
	careseekerID  uuid.UUID
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		bookings:      newFakeBookingRepo(),
		profiles:      &fakeProfileRepo{profiles: make(map[uuid.UUID]models.CaregiverProfile)},
		notifications: &fakeNotificationRepo{},
		publisher:     &fakePublisher{},
		now:           time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC),
		caregiverID:   uuid.New(),
		careseekerID:  uuid.New(),
	}
	h.profiles.profiles[h.caregiverID] = models.CaregiverProfile{
		OwnerID:    h.caregiverID,
		Name:       "Maria Santos",
		Tier:       types.TierRN,
		HourlyRate: 20.0,
		IsApproved: true,
	}

	h.svc = NewBookingService(
		h.bookings, h.profiles, h.notifications, h.publisher,
		logger.NewDiscard(), passthroughTxManager{}, Config{},
	)
	h.svc.now = func() time.Time { return h.now }
	return h
}

func (h *harness) validRequest() CreateRequest {
	return CreateRequest{
		CareseekerID:  h.careseekerID,
		CaregiverID:   h.caregiverID,
		TimeFrom:      h.now.Add(20 * time.Minute),
		TimeTo:        h.now.Add(20*time.Minute + 90*time.Minute),
		Address:       "123 Mabini St, Pasadena CA",
		PaymentMethod: types.PayCash,
	}
}

func (h *harness) createBooking(t *testing.T) *models.Booking {
	t.Helper()
	b, err := h.svc.Create(context.Background(), h.validRequest())
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return b
}

func wantValidation(t *testing.T, err error, field string) {
	t.Helper()
	v, ok := types.IsValidation(err)
	if !ok {
		t.Fatalf("got %v, want ValidationError", err)
	}
	if v.Field != field {
		t.Fatalf("validation field = %q, want %q", v.Field, field)
	}
}

/* ======================= create ======================= */

func TestCreate_Succeeds(t *testing.T) {
	h := newHarness(t)

	b := h.createBooking(t)

	if b.ID.IsZero() {
		t.Fatal("booking has no id")
	}
	if b.Status != types.StatusPending {
		t.Fatalf("status = %s, want pending", b.Status)
	}
	if b.CaregiverTier != types.TierRN {
		t.Fatalf("tier = %s, want RN (from profile)", b.CaregiverTier)
	}
	if !b.CreatedAt.Equal(h.now) {
		t.Fatalf("created_at = %v, want %v", b.CreatedAt, h.now)
	}
	if b.TotalHours != 1.5 {
		t.Fatalf("total_hours = %v, want 1.5", b.TotalHours)
	}
	if math.Abs(b.TotalAmount-30.0) > 1e-9 {
		t.Fatalf("total_amount = %v, want 30.00", b.TotalAmount)
	}

	if _, ok := h.bookings.bookings[b.ID]; !ok {
		t.Fatal("booking was not persisted")
	}
	if len(h.notifications.created) != 1 {
		t.Fatalf("got %d notifications, want 1 (for the caregiver)", len(h.notifications.created))
	}
	if h.notifications.created[0].RecipientID != h.caregiverID {
		t.Fatal("caregiver is not the notification recipient")
	}
	if len(h.publisher.published) != 1 || h.publisher.published[0].NewStatus != types.StatusPending {
		t.Fatalf("expected one pending status event, got %+v", h.publisher.published)
	}
}

func TestCreate_LeadTimeTooShort(t *testing.T) {
	h := newHarness(t)

	req := h.validRequest()
	req.TimeFrom = h.now.Add(10 * time.Minute)
	req.TimeTo = req.TimeFrom.Add(time.Hour)

	_, err := h.svc.Create(context.Background(), req)
	wantValidation(t, err, "time_from")

	if len(h.bookings.bookings) != 0 || len(h.notifications.created) != 0 {
		t.Fatal("failed create must persist nothing")
	}
}

func TestCreate_DurationTooShort(t *testing.T) {
	h := newHarness(t)

	req := h.validRequest()
	req.TimeTo = req.TimeFrom.Add(30 * time.Minute)

	_, err := h.svc.Create(context.Background(), req)
	wantValidation(t, err, "time_to")
}

func TestCreate_WindowNotIncreasing(t *testing.T) {
	h := newHarness(t)

	req := h.validRequest()
	req.TimeTo = req.TimeFrom

	_, err := h.svc.Create(context.Background(), req)
	wantValidation(t, err, "time_to")
}

func TestCreate_EmptyAddress(t *testing.T) {
	h := newHarness(t)

	req := h.validRequest()
	req.Address = "   "

	_, err := h.svc.Create(context.Background(), req)
	wantValidation(t, err, "address")
}

func TestCreate_UnknownPaymentMethod(t *testing.T) {
	h := newHarness(t)

	req := h.validRequest()
	req.PaymentMethod = "Barter"

	_, err := h.svc.Create(context.Background(), req)
	wantValidation(t, err, "payment_method")
}

func TestCreate_UnapprovedCaregiver(t *testing.T) {
	h := newHarness(t)

	p := h.profiles.profiles[h.caregiverID]
	p.IsApproved = false
	h.profiles.profiles[h.caregiverID] = p

	_, err := h.svc.Create(context.Background(), h.validRequest())
	wantValidation(t, err, "caregiver_id")
}

func TestCreate_UnknownCaregiver(t *testing.T) {
	h := newHarness(t)

	req := h.validRequest()
	req.CaregiverID = uuid.New()

	_, err := h.svc.Create(context.Background(), req)
	if !errors.Is(err, types.ErrProfileNotFound) {
		t.Fatalf("got %v, want ErrProfileNotFound", err)
	}
}

func TestCreate_PublisherFailureDoesNotFailCreate(t *testing.T) {
	h := newHarness(t)
	h.publisher.err = errors.New("broker down")

	if _, err := h.svc.Create(context.Background(), h.validRequest()); err != nil {
		t.Fatalf("create must survive a publish failure, got %v", err)
	}
}

/* ======================= transitions ======================= */

func TestTransition_AcceptPendingBooking(t *testing.T) {
	h := newHarness(t)
	b := h.createBooking(t)
	h.notifications.created = nil

	accepted, err := h.svc.Accept(context.Background(), b.ID, h.caregiverID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != types.StatusAccepted {
		t.Fatalf("status = %s, want accepted", accepted.Status)
	}
	if len(h.notifications.created) != 1 || h.notifications.created[0].RecipientID != h.careseekerID {
		t.Fatal("acceptance must notify the careseeker")
	}
	if got := h.bookings.bookings[b.ID].Status; got != types.StatusAccepted {
		t.Fatalf("persisted status = %s, want accepted", got)
	}
}

func TestTransition_CompleteRequiresAcceptedState(t *testing.T) {
	h := newHarness(t)
	b := h.createBooking(t)

	_, err := h.svc.Complete(context.Background(), b.ID, h.caregiverID, "done")
	tr, ok := types.IsInvalidTransition(err)
	if !ok {
		t.Fatalf("got %v, want InvalidTransition", err)
	}
	if tr.From != types.StatusPending || tr.To != types.StatusCompleted {
		t.Fatalf("transition = %s -> %s, want pending -> completed", tr.From, tr.To)
	}
}

func TestTransition_CompleteAcceptedBooking(t *testing.T) {
	h := newHarness(t)
	b := h.createBooking(t)
	if _, err := h.svc.Accept(context.Background(), b.ID, h.caregiverID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	done, err := h.svc.Complete(context.Background(), b.ID, h.caregiverID, "medication administered, vitals stable")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != types.StatusCompleted {
		t.Fatalf("status = %s, want completed", done.Status)
	}
	if done.CompletedAt == nil || !done.CompletedAt.Equal(h.now) {
		t.Fatalf("completed_at = %v, want %v", done.CompletedAt, h.now)
	}
	if done.CompletionNotes == "" {
		t.Fatal("completion notes were not stored")
	}
}

func TestTransition_CompleteRequiresNotes(t *testing.T) {
	h := newHarness(t)
	b := h.createBooking(t)
	if _, err := h.svc.Accept(context.Background(), b.ID, h.caregiverID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	_, err := h.svc.Complete(context.Background(), b.ID, h.caregiverID, "  ")
	wantValidation(t, err, "completion_notes")
}

func TestTransition_TerminalStateRejectsEverything(t *testing.T) {
	h := newHarness(t)
	b := h.createBooking(t)
	if _, err := h.svc.Cancel(context.Background(), b.ID, h.careseekerID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	_, err := h.svc.Accept(context.Background(), b.ID, h.caregiverID)
	if _, ok := types.IsInvalidTransition(err); !ok {
		t.Fatalf("got %v, want InvalidTransition out of cancelled", err)
	}
}

func TestTransition_CancelCompletedBookingFails(t *testing.T) {
	h := newHarness(t)
	b := h.createBooking(t)
	if _, err := h.svc.Accept(context.Background(), b.ID, h.caregiverID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := h.svc.Complete(context.Background(), b.ID, h.caregiverID, "done"); err != nil {
		t.Fatalf("complete: %v", err)
	}

	_, err := h.svc.Cancel(context.Background(), b.ID, h.careseekerID)
	tr, ok := types.IsInvalidTransition(err)
	if !ok {
		t.Fatalf("got %v, want InvalidTransition", err)
	}
	if tr.From != types.StatusCompleted || tr.To != types.StatusCancelled {
		t.Fatalf("transition = %s -> %s, want completed -> cancelled", tr.From, tr.To)
	}
}

func TestTransition_ReapplyingIsIdempotent(t *testing.T) {
	h := newHarness(t)
	b := h.createBooking(t)
	if _, err := h.svc.Accept(context.Background(), b.ID, h.caregiverID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	notifications := len(h.notifications.created)
	events := len(h.publisher.published)

	again, err := h.svc.Accept(context.Background(), b.ID, h.caregiverID)
	if err != nil {
		t.Fatalf("idempotent re-accept must succeed, got %v", err)
	}
	if again.Status != types.StatusAccepted {
		t.Fatalf("status = %s, want accepted", again.Status)
	}
	if len(h.notifications.created) != notifications {
		t.Fatal("no-op transition must not create another notification")
	}
	if len(h.publisher.published) != events {
		t.Fatal("no-op transition must not publish another event")
	}
}

func TestTransition_RevalidatesAgainstPersistedStatus(t *testing.T) {
	h := newHarness(t)
	b := h.createBooking(t)

	// Another actor's cancel lands first; the caregiver's accept still
	// holds a pending snapshot but must be judged on the stored status.
	if _, err := h.svc.Cancel(context.Background(), b.ID, h.careseekerID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	_, err := h.svc.Accept(context.Background(), b.ID, h.caregiverID)
	tr, ok := types.IsInvalidTransition(err)
	if !ok {
		t.Fatalf("got %v, want InvalidTransition", err)
	}
	if tr.From != types.StatusCancelled {
		t.Fatalf("transition judged from %s, want cancelled (current persisted status)", tr.From)
	}
}

func TestTransition_UnknownBooking(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.Accept(context.Background(), uuid.New(), h.caregiverID)
	if !errors.Is(err, types.ErrBookingNotFound) {
		t.Fatalf("got %v, want ErrBookingNotFound", err)
	}
}

/* ======================= pricing ======================= */

func TestPricing_FullPrecisionStoredRoundedForDisplay(t *testing.T) {
	h := newHarness(t)

	p := h.profiles.profiles[h.caregiverID]
	p.HourlyRate = 33.33
	h.profiles.profiles[h.caregiverID] = p

	req := h.validRequest()
	req.TimeTo = req.TimeFrom.Add(100 * time.Minute)

	b, err := h.svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	wantExact := (100.0 / 60.0) * 33.33
	if math.Abs(b.TotalAmount-wantExact) > 1e-9 {
		t.Fatalf("total_amount = %v, want full precision %v", b.TotalAmount, wantExact)
	}
	if got := b.DisplayAmount(); got != models.RoundCurrency(wantExact) {
		t.Fatalf("display amount = %v, want %v", got, models.RoundCurrency(wantExact))
	}
}

package caregiver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/calinga/care-booking-system/internal/domain/models"
	"github.com/calinga/care-booking-system/internal/domain/types"
	"github.com/calinga/care-booking-system/pkg/logger"
	"github.com/calinga/care-booking-system/pkg/uuid"
)

/* ======================= fakes ======================= */

type fakeLocationRepo struct {
	records map[uuid.UUID]models.CaregiverLocation
}

func newFakeLocationRepo() *fakeLocationRepo {
	return &fakeLocationRepo{records: make(map[uuid.UUID]models.CaregiverLocation)}
}

func (f *fakeLocationRepo) Upsert(_ context.Context, l *models.CaregiverLocation) error {
	existing, ok := f.records[l.OwnerID]
	if ok {
		existing.Position = l.Position
		existing.LastUpdatedAt = l.LastUpdatedAt
		f.records[l.OwnerID] = existing
		return nil
	}
	f.records[l.OwnerID] = *l
	return nil
}

func (f *fakeLocationRepo) FindByOwner(_ context.Context, id uuid.UUID) (*models.CaregiverLocation, error) {
	l, ok := f.records[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return &l, nil
}

func (f *fakeLocationRepo) SetActive(_ context.Context, id uuid.UUID, active bool) (bool, error) {
	l, ok := f.records[id]
	if !ok {
		// first toggle before any fix creates the row, sentinel position
		f.records[id] = models.CaregiverLocation{
			OwnerID:  id,
			Role:     types.RoleCaregiver,
			IsActive: active,
		}
		return true, nil
	}
	if l.IsActive == active {
		return false, nil
	}
	l.IsActive = active
	f.records[id] = l
	return true, nil
}

func (f *fakeLocationRepo) SnapshotCaregivers(_ context.Context) ([]models.CaregiverLocation, error) {
	out := make([]models.CaregiverLocation, 0, len(f.records))
	for _, l := range f.records {
		out = append(out, l)
	}
	return out, nil
}

func (f *fakeLocationRepo) ListUnlocatedCaregivers(_ context.Context) ([]models.CaregiverLocation, error) {
	var out []models.CaregiverLocation
	for _, l := range f.records {
		if l.IsActive && !l.Position.Known() {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLocationRepo) FindByOwners(_ context.Context, ids []uuid.UUID) ([]models.CaregiverLocation, error) {
	var out []models.CaregiverLocation
	for _, id := range ids {
		if l, ok := f.records[id]; ok {
			out = append(out, l)
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

func (f *fakeProfileRepo) FindByOwners(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]models.CaregiverProfile, error) {
	out := make(map[uuid.UUID]models.CaregiverProfile, len(ids))
	for _, id := range ids {
		if p, ok := f.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type fakeNotificationRepo struct {
	inbox map[uuid.UUID][]models.Notification
}

func (f *fakeNotificationRepo) ListByRecipient(_ context.Context, id uuid.UUID) ([]models.Notification, error) {
	return f.inbox[id], nil
}

func (f *fakeNotificationRepo) MarkSeen(_ context.Context, id, recipientID uuid.UUID) error {
	for i, n := range f.inbox[recipientID] {
		if n.ID == id {
			f.inbox[recipientID][i].Seen = true
			return nil
		}
	}
	return types.ErrNotificationNotFound
}

type fakeGeoIndex struct {
	entries   map[uuid.UUID]models.GeoPoint
	nearbyErr error
	queries   int
}

func newFakeGeoIndex() *fakeGeoIndex {
	return &fakeGeoIndex{entries: make(map[uuid.UUID]models.GeoPoint)}
}

func (f *fakeGeoIndex) Upsert(_ context.Context, id uuid.UUID, pos models.GeoPoint) error {
	f.entries[id] = pos
	return nil
}

func (f *fakeGeoIndex) Remove(_ context.Context, id uuid.UUID) error {
	delete(f.entries, id)
	return nil
}

func (f *fakeGeoIndex) Nearby(_ context.Context, _ models.GeoPoint, _ float64) ([]uuid.UUID, error) {
	f.queries++
	if f.nearbyErr != nil {
		return nil, f.nearbyErr
	}
	out := make([]uuid.UUID, 0, len(f.entries))
	for id := range f.entries {
		out = append(out, id)
	}
	return out, nil
}

/* ======================= harness ======================= */

type harness struct {
	svc           *CaregiverService
	locations     *fakeLocationRepo
	profiles      *fakeProfileRepo
	notifications *fakeNotificationRepo
	index         *fakeGeoIndex
	now           time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		locations:     newFakeLocationRepo(),
		profiles:      &fakeProfileRepo{profiles: make(map[uuid.UUID]models.CaregiverProfile)},
		notifications: &fakeNotificationRepo{inbox: make(map[uuid.UUID][]models.Notification)},
		index:         newFakeGeoIndex(),
		now:           time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC),
	}
	h.svc = NewCaregiverService(
		h.locations, h.profiles, h.notifications, h.index,
		logger.NewDiscard(), Config{},
	)
	h.svc.now = func() time.Time { return h.now }
	return h
}

func (h *harness) addCaregiver(pos models.GeoPoint, active, approved bool) uuid.UUID {
	id := uuid.New()
	h.locations.records[id] = models.CaregiverLocation{
		OwnerID:  id,
		Role:     types.RoleCaregiver,
		IsActive: active,
		Position: pos,
	}
	h.profiles.profiles[id] = models.CaregiverProfile{
		OwnerID:    id,
		Name:       "caregiver",
		Tier:       types.TierHHA,
		HourlyRate: 18,
		IsApproved: approved,
	}
	if active && pos.Known() {
		h.index.entries[id] = pos
	}
	return id
}

/* ======================= tests ======================= */

func TestReportLocation_StoresFixAndIndexesIt(t *testing.T) {
	h := newHarness(t)
	id := uuid.New()
	pos := models.GeoPoint{Latitude: 34.14, Longitude: -118.14}

	if err := h.svc.ReportLocation(context.Background(), id, pos); err != nil {
		t.Fatalf("report location: %v", err)
	}

	stored, ok := h.locations.records[id]
	if !ok {
		t.Fatal("location fix was not stored")
	}
	if stored.Position != pos {
		t.Fatalf("stored position = %v, want %v", stored.Position, pos)
	}
	if !stored.LastUpdatedAt.Equal(h.now) {
		t.Fatalf("last_updated_at = %v, want %v", stored.LastUpdatedAt, h.now)
	}
	if _, ok := h.index.entries[id]; !ok {
		t.Fatal("located fix must enter the geo index")
	}
}

func TestReportLocation_SentinelSkipsIndex(t *testing.T) {
	h := newHarness(t)
	id := uuid.New()

	if err := h.svc.ReportLocation(context.Background(), id, models.GeoPoint{}); err != nil {
		t.Fatalf("report location: %v", err)
	}
	if _, ok := h.index.entries[id]; ok {
		t.Fatal("unknown position must not enter the geo index")
	}
}

func TestSetActive_DeactivationDropsFromIndex(t *testing.T) {
	h := newHarness(t)
	id := h.addCaregiver(models.GeoPoint{Latitude: 34.14, Longitude: -118.14}, true, true)

	if err := h.svc.SetActive(context.Background(), id, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if h.locations.records[id].IsActive {
		t.Fatal("caregiver still active after deactivation")
	}
	if _, ok := h.index.entries[id]; ok {
		t.Fatal("deactivated caregiver still in geo index")
	}
}

func TestSetActive_ReactivationRestoresIndexEntry(t *testing.T) {
	h := newHarness(t)
	id := h.addCaregiver(models.GeoPoint{Latitude: 34.14, Longitude: -118.14}, true, true)

	if err := h.svc.SetActive(context.Background(), id, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if err := h.svc.SetActive(context.Background(), id, true); err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	if _, ok := h.index.entries[id]; !ok {
		t.Fatal("reactivated caregiver missing from geo index")
	}
}

func TestSetActive_ActivationBeforeFirstFixIsStored(t *testing.T) {
	h := newHarness(t)
	id := uuid.New()
	h.profiles.profiles[id] = models.CaregiverProfile{
		OwnerID:    id,
		Name:       "caregiver",
		Tier:       types.TierHHA,
		HourlyRate: 18,
		IsApproved: true,
	}

	// Sign-in happens before the device reports any position.
	if err := h.svc.SetActive(context.Background(), id, true); err != nil {
		t.Fatalf("activate: %v", err)
	}

	stored, ok := h.locations.records[id]
	if !ok {
		t.Fatal("activation before the first fix must create the record")
	}
	if !stored.IsActive {
		t.Fatal("caregiver stored inactive after activation")
	}
	if stored.Position.Known() {
		t.Fatalf("fresh record position = %v, want unknown sentinel", stored.Position)
	}

	// A first session without a fix is still matchable, unranked.
	origin := models.GeoPoint{Latitude: 34.1478, Longitude: -118.1445}
	matches, err := h.svc.Nearby(context.Background(), origin, 0)
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}
	if len(matches) != 1 || matches[0].Profile.OwnerID != id || matches[0].DistanceKnown {
		t.Fatalf("want one unranked match for the fresh caregiver, got %+v", matches)
	}

	// The first fix must not undo the activation.
	pos := models.GeoPoint{Latitude: 34.15, Longitude: -118.1445}
	if err := h.svc.ReportLocation(context.Background(), id, pos); err != nil {
		t.Fatalf("report location: %v", err)
	}
	if !h.locations.records[id].IsActive {
		t.Fatal("first location fix flipped the caregiver back to inactive")
	}
}

func TestNearby_UsesIndexAndRanksByDistance(t *testing.T) {
	h := newHarness(t)
	origin := models.GeoPoint{Latitude: 34.1478, Longitude: -118.1445}

	far := h.addCaregiver(models.GeoPoint{Latitude: 34.20, Longitude: -118.1445}, true, true)
	near := h.addCaregiver(models.GeoPoint{Latitude: 34.15, Longitude: -118.1445}, true, true)
	h.addCaregiver(models.GeoPoint{Latitude: 34.15, Longitude: -118.1445}, false, true) // inactive
	h.addCaregiver(models.GeoPoint{Latitude: 34.15, Longitude: -118.1445}, true, false) // unapproved

	matches, err := h.svc.Nearby(context.Background(), origin, 0)
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}
	if h.index.queries != 1 {
		t.Fatalf("geo index queried %d times, want 1", h.index.queries)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].Profile.OwnerID != near || matches[1].Profile.OwnerID != far {
		t.Fatal("matches not ordered nearest first")
	}
}

func TestNearby_IncludesUnlocatedCaregivers(t *testing.T) {
	h := newHarness(t)
	origin := models.GeoPoint{Latitude: 34.1478, Longitude: -118.1445}

	located := h.addCaregiver(models.GeoPoint{Latitude: 34.15, Longitude: -118.1445}, true, true)
	unlocated := h.addCaregiver(models.GeoPoint{}, true, true)

	matches, err := h.svc.Nearby(context.Background(), origin, 0)
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2 (located + unlocated)", len(matches))
	}
	if matches[0].Profile.OwnerID != located || !matches[0].DistanceKnown {
		t.Fatal("located caregiver must rank first with a known distance")
	}
	if matches[1].Profile.OwnerID != unlocated || matches[1].DistanceKnown {
		t.Fatal("unlocated caregiver must follow with unknown distance")
	}
}

func TestNearby_UnknownOriginSkipsIndex(t *testing.T) {
	h := newHarness(t)
	h.addCaregiver(models.GeoPoint{Latitude: 34.15, Longitude: -118.1445}, true, true)

	matches, err := h.svc.Nearby(context.Background(), models.GeoPoint{}, 0)
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}
	if h.index.queries != 0 {
		t.Fatal("sentinel origin must not hit the geo index")
	}
	if len(matches) != 1 || matches[0].DistanceKnown {
		t.Fatalf("want one unranked match, got %+v", matches)
	}
}

func TestNearby_IndexOutageFallsBackToSnapshot(t *testing.T) {
	h := newHarness(t)
	origin := models.GeoPoint{Latitude: 34.1478, Longitude: -118.1445}
	h.addCaregiver(models.GeoPoint{Latitude: 34.15, Longitude: -118.1445}, true, true)
	h.index.nearbyErr = errors.New("connection refused")

	matches, err := h.svc.Nearby(context.Background(), origin, 0)
	if err != nil {
		t.Fatalf("nearby must survive an index outage, got %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches from fallback snapshot, want 1", len(matches))
	}
}

func TestNotifications_MarkSeenScopedToRecipient(t *testing.T) {
	h := newHarness(t)
	owner := uuid.New()
	stranger := uuid.New()
	n := models.Notification{ID: uuid.New(), RecipientID: owner, Title: "Booking accepted"}
	h.notifications.inbox[owner] = []models.Notification{n}

	if err := h.svc.MarkNotificationSeen(context.Background(), n.ID, stranger); !errors.Is(err, types.ErrNotificationNotFound) {
		t.Fatalf("got %v, want ErrNotificationNotFound for a stranger", err)
	}
	if err := h.svc.MarkNotificationSeen(context.Background(), n.ID, owner); err != nil {
		t.Fatalf("mark seen: %v", err)
	}
	if !h.notifications.inbox[owner][0].Seen {
		t.Fatal("notification not flagged as seen")
	}
}

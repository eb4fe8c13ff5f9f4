package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	bookingRepo "chefbook/database/repository/booking"
	"chefbook/models"
	"chefbook/services/workflow"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// fakeBookingRepo is an in-memory Repository with the same CAS and
// transactional-confirm semantics as the mongo implementation.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking

	failCreate bool
	failFind   bool

	// staleConflictRead makes ConfirmTransactionally skip its conflict
	// re-read, the way a snapshot-isolated read misses a concurrent
	// confirm. The write-time uniqueness check in casUpdateLocked must
	// then catch the collision on its own, like the partial unique
	// index does in mongo.
	staleConflictRead bool
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[string]*models.Booking)}
}

func (f *fakeBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return errors.New("write refused")
	}
	copied := *b
	f.bookings[b.ID] = &copied
	return nil
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookingRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.bookings[id]; !ok {
		return bookingRepo.ErrNotFound
	}
	delete(f.bookings, id)
	return nil
}

func (f *fakeBookingRepo) FindConfirmedBySlot(ctx context.Context, slot models.Slot) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFind {
		return nil, errors.New("store unavailable")
	}
	return f.findConfirmedLocked(slot), nil
}

func (f *fakeBookingRepo) findConfirmedLocked(slot models.Slot) *models.Booking {
	for _, b := range f.bookings {
		if b.Status == models.StatusConfirmed && b.RequestedDate == slot.Date && b.RequestedTime == slot.Time {
			copied := *b
			return &copied
		}
	}
	return nil
}

func (f *fakeBookingRepo) ListByStatus(ctx context.Context, status models.BookingStatus) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, b := range f.bookings {
		if status == "" || b.Status == status {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) ListConfirmedBefore(ctx context.Context, date string) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, b := range f.bookings {
		if b.Status == models.StatusConfirmed && b.RequestedDate < date {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) UpdateStatus(ctx context.Context, id string, expected, next models.BookingStatus, fields bson.M) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.casUpdateLocked(id, expected, next, fields)
}

func (f *fakeBookingRepo) casUpdateLocked(id string, expected, next models.BookingStatus, fields bson.M) (*models.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	if b.Status != expected {
		return nil, bookingRepo.ErrStaleStatus
	}
	if next == models.StatusConfirmed {
		if holder := f.findConfirmedLocked(b.Slot()); holder != nil && holder.ID != id {
			return nil, bookingRepo.ErrSlotTaken
		}
	}
	b.Status = next
	b.UpdatedAt = time.Now()
	for k, v := range fields {
		switch k {
		case "accepted_at":
			at := v.(time.Time)
			b.AcceptedAt = &at
		case "accepted_by":
			b.AcceptedBy = v.(string)
		case "assigned_chef_id":
			b.AssignedChefID = v.(string)
		case "rejection_reason":
			b.RejectionReason = v.(string)
		case "chef_notes":
			b.ChefNotes = v.(string)
		}
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookingRepo) ConfirmTransactionally(ctx context.Context, id string, slot models.Slot, fields bson.M) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.staleConflictRead {
		if holder := f.findConfirmedLocked(slot); holder != nil && holder.ID != id {
			return nil, fmt.Errorf("%w (booking %s)", bookingRepo.ErrSlotTaken, holder.ID)
		}
	}
	return f.casUpdateLocked(id, models.StatusPending, models.StatusConfirmed, fields)
}

// fakeDispatcher records dispatched notifications and can simulate a broken
// channel.
type fakeDispatcher struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (f *fakeDispatcher) record(kind string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return NewNotificationError("channel down")
	}
	f.sent = append(f.sent, kind)
	return nil
}

func (f *fakeDispatcher) BookingRequested(ctx context.Context, b *models.Booking) error {
	return f.record(models.NotifyBookingRequested)
}

func (f *fakeDispatcher) BookingAccepted(ctx context.Context, b *models.Booking) error {
	return f.record(models.NotifyBookingAccepted)
}

func (f *fakeDispatcher) BookingRejected(ctx context.Context, b *models.Booking) error {
	return f.record(models.NotifyBookingRejected)
}

func newTestService() (*DefaultBookingService, *fakeBookingRepo, *fakeDispatcher) {
	repo := newFakeBookingRepo()
	disp := &fakeDispatcher{}
	svc := &DefaultBookingService{
		Repo:         repo,
		Pricing:      &DefaultPricingResolver{Catalog: newFakeCatalog()},
		Conflicts:    &DefaultConflictChecker{Repo: repo},
		Notifier:     disp,
		Engine:       workflow.NewEngine(zap.NewNop()),
		MaxPartySize: 20,
		Logger:       zap.NewNop(),
	}
	return svc, repo, disp
}

func validInput() models.BookingInput {
	return models.BookingInput{
		TemplateProductID: "T1",
		RequestedDate:     "2025-06-01",
		RequestedTime:     "18:00",
		PartySize:         4,
		EventType:         "dinner party",
		Customer: models.CustomerInfo{
			Name:  "Ada Lovelace",
			Email: "ada@example.com",
			Phone: "+1555000",
		},
	}
}

func TestRequestBookingSuccess(t *testing.T) {
	svc, repo, disp := newTestService()

	b, err := svc.RequestBooking(context.Background(), validInput())
	if err != nil {
		t.Fatalf("RequestBooking: %v", err)
	}
	if b.Status != models.StatusPending {
		t.Fatalf("status = %s, want %s", b.Status, models.StatusPending)
	}
	if b.PricePerPerson != 10000 || b.TotalPrice != 40000 {
		t.Fatalf("pricing = %d/%d, want 10000/40000", b.PricePerPerson, b.TotalPrice)
	}
	if b.TotalPrice != b.PricePerPerson*int64(b.PartySize) {
		t.Fatalf("totalPrice %d != pricePerPerson %d * partySize %d", b.TotalPrice, b.PricePerPerson, b.PartySize)
	}
	if _, err := repo.GetByID(context.Background(), b.ID); err != nil {
		t.Fatalf("booking not persisted: %v", err)
	}
	if len(disp.sent) != 1 || disp.sent[0] != models.NotifyBookingRequested {
		t.Fatalf("notifications = %v, want one %s", disp.sent, models.NotifyBookingRequested)
	}
}

func TestRequestBookingValidation(t *testing.T) {
	svc, repo, _ := newTestService()

	cases := []struct {
		name   string
		mutate func(*models.BookingInput)
	}{
		{"missing template", func(in *models.BookingInput) { in.TemplateProductID = "" }},
		{"party size zero", func(in *models.BookingInput) { in.PartySize = 0 }},
		{"party size above max", func(in *models.BookingInput) { in.PartySize = 21 }},
		{"bad date", func(in *models.BookingInput) { in.RequestedDate = "June 1st" }},
		{"bad time", func(in *models.BookingInput) { in.RequestedTime = "6pm" }},
		{"missing customer name", func(in *models.BookingInput) { in.Customer.Name = "  " }},
		{"missing customer email", func(in *models.BookingInput) { in.Customer.Email = "" }},
		{"missing customer phone", func(in *models.BookingInput) { in.Customer.Phone = "  " }},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := svc.RequestBooking(context.Background(), in)
			if !HasCode(err, CodeValidation) {
				t.Fatalf("err = %v, want code %s", err, CodeValidation)
			}
		})
	}

	all, _ := repo.ListByStatus(context.Background(), "")
	if len(all) != 0 {
		t.Fatalf("invalid requests left %d rows in the store", len(all))
	}
}

func TestRequestBookingPersistFailureLeavesNoRow(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.failCreate = true

	_, err := svc.RequestBooking(context.Background(), validInput())
	if !HasCode(err, CodePersistence) {
		t.Fatalf("err = %v, want code %s", err, CodePersistence)
	}

	all, _ := repo.ListByStatus(context.Background(), "")
	if len(all) != 0 {
		t.Fatalf("persist failure left %d rows in the store", len(all))
	}
}

func TestRequestBookingNotifyFailureKeepsRow(t *testing.T) {
	svc, repo, disp := newTestService()
	disp.fail = true

	b, err := svc.RequestBooking(context.Background(), validInput())
	if err != nil {
		t.Fatalf("RequestBooking: %v (notification failure must not fail the saga)", err)
	}

	stored, err := repo.GetByID(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("booking missing after notification failure: %v", err)
	}
	if stored.Status != models.StatusPending {
		t.Fatalf("status = %s, want %s", stored.Status, models.StatusPending)
	}
}

func TestRequestBookingConflictWithConfirmedSlot(t *testing.T) {
	svc, repo, _ := newTestService()

	// Occupy the slot with a confirmed booking.
	repo.bookings["held"] = &models.Booking{
		ID:            "held",
		Status:        models.StatusConfirmed,
		RequestedDate: "2025-06-01",
		RequestedTime: "18:00",
	}

	_, err := svc.RequestBooking(context.Background(), validInput())
	if !HasCode(err, CodeConflict) {
		t.Fatalf("err = %v, want code %s", err, CodeConflict)
	}

	pending, _ := repo.ListByStatus(context.Background(), models.StatusPending)
	if len(pending) != 0 {
		t.Fatalf("conflicting request persisted %d pending rows", len(pending))
	}
}

func TestTwoPendingRequestsForSameSlotCoexist(t *testing.T) {
	svc, repo, _ := newTestService()

	first, err := svc.RequestBooking(context.Background(), validInput())
	if err != nil {
		t.Fatalf("first RequestBooking: %v", err)
	}
	second, err := svc.RequestBooking(context.Background(), validInput())
	if err != nil {
		t.Fatalf("second RequestBooking for same slot: %v", err)
	}

	pending, _ := repo.ListByStatus(context.Background(), models.StatusPending)
	if len(pending) != 2 {
		t.Fatalf("pending rows = %d, want 2", len(pending))
	}

	// Accepting the first wins the slot; accepting the second must now fail.
	if _, err := svc.AcceptBooking(context.Background(), first.ID, "chef-anna", ""); err != nil {
		t.Fatalf("AcceptBooking(first): %v", err)
	}
	_, err = svc.AcceptBooking(context.Background(), second.ID, "chef-anna", "")
	if !HasCode(err, CodeConflict) {
		t.Fatalf("accepting second booking for taken slot: err = %v, want code %s", err, CodeConflict)
	}

	stored, _ := repo.GetByID(context.Background(), second.ID)
	if stored.Status != models.StatusPending {
		t.Fatalf("losing booking status = %s, want still %s", stored.Status, models.StatusPending)
	}
}

func TestAcceptBookingSetsFieldsAndIsIdempotentSafe(t *testing.T) {
	svc, repo, disp := newTestService()

	b, err := svc.RequestBooking(context.Background(), validInput())
	if err != nil {
		t.Fatalf("RequestBooking: %v", err)
	}

	confirmed, err := svc.AcceptBooking(context.Background(), b.ID, "chef-anna", "chef-42")
	if err != nil {
		t.Fatalf("AcceptBooking: %v", err)
	}
	if confirmed.Status != models.StatusConfirmed {
		t.Fatalf("status = %s, want %s", confirmed.Status, models.StatusConfirmed)
	}
	if confirmed.AcceptedAt == nil || confirmed.AcceptedBy != "chef-anna" {
		t.Fatalf("acceptance fields not set: %+v", confirmed)
	}
	if confirmed.AssignedChefID != "chef-42" {
		t.Fatalf("assignedChefId = %q, want chef-42", confirmed.AssignedChefID)
	}

	// Second accept must observe the changed status and fail without mutating.
	_, err = svc.AcceptBooking(context.Background(), b.ID, "chef-bob", "")
	if !HasCode(err, CodeInvalidTransition) {
		t.Fatalf("second accept err = %v, want code %s", err, CodeInvalidTransition)
	}
	stored, _ := repo.GetByID(context.Background(), b.ID)
	if stored.AcceptedBy != "chef-anna" {
		t.Fatalf("second accept overwrote acceptedBy: %q", stored.AcceptedBy)
	}

	found := false
	for _, kind := range disp.sent {
		if kind == models.NotifyBookingAccepted {
			found = true
		}
	}
	if !found {
		t.Fatalf("acceptance notification not dispatched: %v", disp.sent)
	}
}

func TestConcurrentAcceptsForSameSlot(t *testing.T) {
	svc, repo, _ := newTestService()

	first, _ := svc.RequestBooking(context.Background(), validInput())
	second, _ := svc.RequestBooking(context.Background(), validInput())

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{first.ID, second.ID} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = svc.AcceptBooking(context.Background(), id, "chef-anna", "")
		}(i, id)
	}
	wg.Wait()

	confirmed, _ := repo.ListByStatus(context.Background(), models.StatusConfirmed)
	if len(confirmed) > 1 {
		t.Fatalf("%d bookings confirmed for the same slot", len(confirmed))
	}
	if errs[0] == nil && errs[1] == nil {
		t.Fatal("both concurrent accepts succeeded")
	}
}

func TestAcceptWithStaleConflictReadStillLosesSlot(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.staleConflictRead = true

	first, _ := svc.RequestBooking(context.Background(), validInput())
	second, _ := svc.RequestBooking(context.Background(), validInput())

	if _, err := svc.AcceptBooking(context.Background(), first.ID, "chef-anna", ""); err != nil {
		t.Fatalf("AcceptBooking(first): %v", err)
	}

	// With the conflict re-read disabled, only the write-time uniqueness
	// check stands between the second accept and a double booking.
	_, err := svc.AcceptBooking(context.Background(), second.ID, "chef-bob", "")
	if !HasCode(err, CodeConflict) {
		t.Fatalf("second accept err = %v, want code %s", err, CodeConflict)
	}

	confirmed, _ := repo.ListByStatus(context.Background(), models.StatusConfirmed)
	if len(confirmed) != 1 {
		t.Fatalf("%d bookings confirmed for the same slot, want 1", len(confirmed))
	}
	stored, _ := repo.GetByID(context.Background(), second.ID)
	if stored.Status != models.StatusPending {
		t.Fatalf("losing booking status = %s, want still %s", stored.Status, models.StatusPending)
	}
}

func TestRejectBookingRequiresReason(t *testing.T) {
	svc, repo, _ := newTestService()

	b, _ := svc.RequestBooking(context.Background(), validInput())

	_, err := svc.RejectBooking(context.Background(), b.ID, "", "notes")
	if !HasCode(err, CodeValidation) {
		t.Fatalf("err = %v, want code %s", err, CodeValidation)
	}
	stored, _ := repo.GetByID(context.Background(), b.ID)
	if stored.Status != models.StatusPending || stored.RejectionReason != "" {
		t.Fatalf("failed reject mutated the booking: %+v", stored)
	}
}

func TestRejectBooking(t *testing.T) {
	svc, _, disp := newTestService()

	b, _ := svc.RequestBooking(context.Background(), validInput())

	cancelled, err := svc.RejectBooking(context.Background(), b.ID, "fully booked that night", "try the weekend")
	if err != nil {
		t.Fatalf("RejectBooking: %v", err)
	}
	if cancelled.Status != models.StatusCancelled {
		t.Fatalf("status = %s, want %s", cancelled.Status, models.StatusCancelled)
	}
	if cancelled.RejectionReason != "fully booked that night" || cancelled.ChefNotes != "try the weekend" {
		t.Fatalf("rejection fields not set: %+v", cancelled)
	}

	found := false
	for _, kind := range disp.sent {
		if kind == models.NotifyBookingRejected {
			found = true
		}
	}
	if !found {
		t.Fatalf("rejection notification not dispatched: %v", disp.sent)
	}
}

func TestRejectConfirmedBooking(t *testing.T) {
	svc, _, _ := newTestService()

	b, _ := svc.RequestBooking(context.Background(), validInput())
	if _, err := svc.AcceptBooking(context.Background(), b.ID, "chef-anna", ""); err != nil {
		t.Fatalf("AcceptBooking: %v", err)
	}

	cancelled, err := svc.RejectBooking(context.Background(), b.ID, "customer no-show", "")
	if err != nil {
		t.Fatalf("RejectBooking after confirmation: %v", err)
	}
	if cancelled.Status != models.StatusCancelled {
		t.Fatalf("status = %s, want %s", cancelled.Status, models.StatusCancelled)
	}
}

func TestCompleteBookingGuards(t *testing.T) {
	svc, _, _ := newTestService()

	in := validInput()
	in.RequestedDate = time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	b, _ := svc.RequestBooking(context.Background(), in)
	svc.AcceptBooking(context.Background(), b.ID, "chef-anna", "")

	// Future event: completion needs an explicit override.
	_, err := svc.CompleteBooking(context.Background(), b.ID, false)
	if !HasCode(err, CodeInvalidTransition) {
		t.Fatalf("premature complete err = %v, want code %s", err, CodeInvalidTransition)
	}

	done, err := svc.CompleteBooking(context.Background(), b.ID, true)
	if err != nil {
		t.Fatalf("forced CompleteBooking: %v", err)
	}
	if done.Status != models.StatusCompleted {
		t.Fatalf("status = %s, want %s", done.Status, models.StatusCompleted)
	}
}

func TestCompletePastBookings(t *testing.T) {
	svc, repo, _ := newTestService()

	past := validInput()
	past.RequestedDate = time.Now().AddDate(0, 0, -3).Format("2006-01-02")
	b, _ := svc.RequestBooking(context.Background(), past)
	svc.AcceptBooking(context.Background(), b.ID, "chef-anna", "")

	future := validInput()
	future.RequestedDate = time.Now().AddDate(0, 0, 3).Format("2006-01-02")
	future.RequestedTime = "19:00"
	fb, _ := svc.RequestBooking(context.Background(), future)
	svc.AcceptBooking(context.Background(), fb.ID, "chef-anna", "")

	n, err := svc.CompletePastBookings(context.Background())
	if err != nil {
		t.Fatalf("CompletePastBookings: %v", err)
	}
	if n != 1 {
		t.Fatalf("completed = %d, want 1", n)
	}
	stored, _ := repo.GetByID(context.Background(), fb.ID)
	if stored.Status != models.StatusConfirmed {
		t.Fatalf("future booking status = %s, want still %s", stored.Status, models.StatusConfirmed)
	}
}

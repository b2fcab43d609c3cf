package bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rentora/rentals-backend/internal/database"
	"github.com/rentora/rentals-backend/internal/models"
)

// All service tests pin the calendar to this day.
var testToday = day(2025, 1, 15)

func fixedNow() time.Time {
	return time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
}

type notified struct {
	kind       NotificationKind
	bookingID  uint
	recipients []string
}

type recordingNotifier struct {
	events []notified
}

func (r *recordingNotifier) Notify(ctx context.Context, kind NotificationKind, booking *models.Booking, recipients []string) {
	r.events = append(r.events, notified{kind: kind, bookingID: booking.ID, recipients: recipients})
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// A fresh pooled connection would see a different empty :memory: db.
	sqlDB.SetMaxOpenConns(1)
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, email string, role models.UserRole) models.User {
	t.Helper()
	user := models.User{Username: email, Email: email, PasswordHash: "x", Role: string(role)}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}
	return user
}

func createProperty(t *testing.T, db *gorm.DB, owner models.User) models.Property {
	t.Helper()
	property := models.Property{
		OwnerID:      owner.ID,
		Title:        "Test flat",
		City:         "Berlin",
		Price:        1000,
		Rooms:        2,
		PropertyType: models.PropertyTypeApartment,
		IsActive:     true,
	}
	if err := db.Create(&property).Error; err != nil {
		t.Fatalf("failed to create property: %v", err)
	}
	property.Owner = owner
	return property
}

type fixture struct {
	db       *gorm.DB
	svc      *Service
	notifier *recordingNotifier
	owner    models.User
	tenant   models.User
	property models.Property
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	notifier := &recordingNotifier{}
	owner := createUser(t, db, "owner@test.local", models.UserRoleLandlord)
	tenant := createUser(t, db, "tenant@test.local", models.UserRoleTenant)
	return &fixture{
		db:       db,
		svc:      NewService(db, notifier, fixedNow),
		notifier: notifier,
		owner:    owner,
		tenant:   tenant,
		property: createProperty(t, db, owner),
	}
}

func (f *fixture) mustCreate(t *testing.T, start, end time.Time) *models.Booking {
	t.Helper()
	booking, err := f.svc.Create(context.Background(), &f.property, f.tenant.ID, start, end)
	if err != nil {
		t.Fatalf("failed to create booking [%v, %v): %v", start, end, err)
	}
	return booking
}

func TestCreateBooking(t *testing.T) {
	f := newFixture(t)

	booking := f.mustCreate(t, day(2025, 2, 1), day(2025, 2, 10))
	if booking.Status != models.BookingStatusConfirmed {
		t.Fatalf("future booking status = %s, want confirmed", booking.Status)
	}
	if booking.TenantID != f.tenant.ID || booking.PropertyID != f.property.ID {
		t.Fatalf("booking owner/property mismatch: %+v", booking)
	}

	if len(f.notifier.events) != 1 {
		t.Fatalf("got %d notifications, want 1", len(f.notifier.events))
	}
	ev := f.notifier.events[0]
	if ev.kind != KindNewBooking {
		t.Fatalf("notification kind = %s, want %s", ev.kind, KindNewBooking)
	}
	if len(ev.recipients) != 1 || ev.recipients[0] != f.owner.Email {
		t.Fatalf("new booking notice went to %v, want owner only", ev.recipients)
	}
}

func TestCreateBookingStartingTodayIsActive(t *testing.T) {
	f := newFixture(t)

	booking := f.mustCreate(t, testToday, day(2025, 1, 20))
	if booking.Status != models.BookingStatusActive {
		t.Fatalf("booking starting today has status %s, want active", booking.Status)
	}
}

func TestCreateBookingTruncatesTimestamps(t *testing.T) {
	f := newFixture(t)

	start := time.Date(2025, 2, 1, 14, 30, 0, 0, time.UTC)
	end := time.Date(2025, 2, 10, 9, 15, 0, 0, time.UTC)
	booking := f.mustCreate(t, start, end)
	if !booking.StartDate.Equal(day(2025, 2, 1)) || !booking.EndDate.Equal(day(2025, 2, 10)) {
		t.Fatalf("dates not truncated to midnight: [%v, %v)", booking.StartDate, booking.EndDate)
	}
}

func TestCreateBookingInvalidRanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name       string
		start, end time.Time
	}{
		{"inverted", day(2025, 2, 10), day(2025, 2, 1)},
		{"empty", day(2025, 2, 1), day(2025, 2, 1)},
		{"start in the past", day(2025, 1, 10), day(2025, 1, 20)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, &f.property, f.tenant.ID, tc.start, tc.end)
			if !errors.Is(err, ErrInvalidRange) {
				t.Fatalf("got %v, want ErrInvalidRange", err)
			}
		})
	}
	if len(f.notifier.events) != 0 {
		t.Fatalf("rejected bookings must not notify, got %d events", len(f.notifier.events))
	}
}

func TestCreateBookingSelfBooking(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), &f.property, f.owner.ID, day(2025, 2, 1), day(2025, 2, 10))
	if !errors.Is(err, ErrSelfBooking) {
		t.Fatalf("got %v, want ErrSelfBooking", err)
	}
}

func TestCreateBookingOverlap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := createUser(t, f.db, "tenant2@test.local", models.UserRoleTenant)

	f.mustCreate(t, day(2025, 2, 10), day(2025, 2, 20))

	_, err := f.svc.Create(ctx, &f.property, other.ID, day(2025, 2, 15), day(2025, 2, 25))
	if !errors.Is(err, ErrOverlap) {
		t.Fatalf("overlapping booking: got %v, want ErrOverlap", err)
	}

	// Back to back is fine: checkout day equals the next check-in day.
	if _, err := f.svc.Create(ctx, &f.property, other.ID, day(2025, 2, 20), day(2025, 2, 25)); err != nil {
		t.Fatalf("touching booking rejected: %v", err)
	}
	if _, err := f.svc.Create(ctx, &f.property, other.ID, day(2025, 2, 5), day(2025, 2, 10)); err != nil {
		t.Fatalf("touching booking before existing rejected: %v", err)
	}
}

func TestCancelledBookingFreesCalendar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := createUser(t, f.db, "tenant2@test.local", models.UserRoleTenant)

	booking := f.mustCreate(t, day(2025, 2, 10), day(2025, 2, 20))
	if _, err := f.svc.Cancel(ctx, booking.ID, models.CancelActorTenant); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if _, err := f.svc.Create(ctx, &f.property, other.ID, day(2025, 2, 10), day(2025, 2, 20)); err != nil {
		t.Fatalf("rebooking over a cancelled stay rejected: %v", err)
	}
}

func TestRecomputeStatus(t *testing.T) {
	checkout := fixedNow()
	cases := []struct {
		name    string
		booking models.Booking
		want    models.BookingStatus
	}{
		{
			name:    "future stay stays confirmed",
			booking: models.Booking{StartDate: day(2025, 1, 20), EndDate: day(2025, 1, 25), Status: models.BookingStatusConfirmed},
			want:    models.BookingStatusConfirmed,
		},
		{
			name:    "stay spanning today is active",
			booking: models.Booking{StartDate: day(2025, 1, 10), EndDate: day(2025, 1, 20), Status: models.BookingStatusConfirmed},
			want:    models.BookingStatusActive,
		},
		{
			name:    "stay starting today is active",
			booking: models.Booking{StartDate: day(2025, 1, 15), EndDate: day(2025, 1, 20), Status: models.BookingStatusConfirmed},
			want:    models.BookingStatusActive,
		},
		{
			name:    "ended stay without checkout is overdue",
			booking: models.Booking{StartDate: day(2025, 1, 1), EndDate: day(2025, 1, 10), Status: models.BookingStatusActive},
			want:    models.BookingStatusOverdue,
		},
		{
			name: "checkout confirmation beats overdue",
			booking: models.Booking{
				StartDate: day(2025, 1, 1), EndDate: day(2025, 1, 10),
				Status: models.BookingStatusActive, CheckoutConfirmedAt: &checkout,
			},
			want: models.BookingStatusCompleted,
		},
		{
			name:    "cancelled is terminal",
			booking: models.Booking{StartDate: day(2025, 1, 1), EndDate: day(2025, 1, 10), Status: models.BookingStatusCancelled},
			want:    models.BookingStatusCancelled,
		},
		{
			name:    "completed is terminal",
			booking: models.Booking{StartDate: day(2025, 1, 1), EndDate: day(2025, 1, 10), Status: models.BookingStatusCompleted},
			want:    models.BookingStatusCompleted,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := RecomputeStatus(&tc.booking, testToday)
			if got != tc.want {
				t.Fatalf("RecomputeStatus = %s, want %s", got, tc.want)
			}

			// Idempotent: applying the result changes nothing.
			tc.booking.Status = got
			if again := RecomputeStatus(&tc.booking, testToday); again != got {
				t.Fatalf("RecomputeStatus not idempotent: %s then %s", got, again)
			}
		})
	}
}

func TestCancelByTenantBeforeStart(t *testing.T) {
	f := newFixture(t)

	booking := f.mustCreate(t, day(2025, 2, 1), day(2025, 2, 10))
	cancelled, err := f.svc.Cancel(context.Background(), booking.ID, models.CancelActorTenant)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != models.BookingStatusCancelled {
		t.Fatalf("status = %s, want cancelled", cancelled.Status)
	}
	if cancelled.CancelledAt == nil {
		t.Fatal("CancelledAt not set")
	}
	if cancelled.CancelledBy != string(models.CancelActorTenant) {
		t.Fatalf("CancelledBy = %q, want TENANT", cancelled.CancelledBy)
	}

	last := f.notifier.events[len(f.notifier.events)-1]
	if last.kind != KindCancelled {
		t.Fatalf("last notification kind = %s, want %s", last.kind, KindCancelled)
	}
}

func TestCancelAfterStartNeedsAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Stay already running on the pinned day.
	booking := f.mustCreate(t, testToday, day(2025, 1, 20))

	if _, err := f.svc.Cancel(ctx, booking.ID, models.CancelActorTenant); !errors.Is(err, ErrNotAllowed) {
		t.Fatalf("tenant cancel after check-in: got %v, want ErrNotAllowed", err)
	}
	if _, err := f.svc.Cancel(ctx, booking.ID, models.CancelActorOwner); !errors.Is(err, ErrNotAllowed) {
		t.Fatalf("owner cancel after check-in: got %v, want ErrNotAllowed", err)
	}

	cancelled, err := f.svc.Cancel(ctx, booking.ID, models.CancelActorAdmin)
	if err != nil {
		t.Fatalf("admin cancel after check-in failed: %v", err)
	}
	if cancelled.CancelledBy != string(models.CancelActorAdmin) {
		t.Fatalf("CancelledBy = %q, want ADMIN", cancelled.CancelledBy)
	}
}

func TestCancelTwiceFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking := f.mustCreate(t, day(2025, 2, 1), day(2025, 2, 10))
	if _, err := f.svc.Cancel(ctx, booking.ID, models.CancelActorTenant); err != nil {
		t.Fatalf("first cancel failed: %v", err)
	}

	events := len(f.notifier.events)
	if _, err := f.svc.Cancel(ctx, booking.ID, models.CancelActorTenant); !errors.Is(err, ErrAlreadyCancelled) {
		t.Fatalf("second cancel: got %v, want ErrAlreadyCancelled", err)
	}
	if len(f.notifier.events) != events {
		t.Fatal("failed cancel must not notify")
	}
}

func TestCancelCompletedFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking := f.mustCreate(t, testToday, day(2025, 1, 20))
	if _, err := f.svc.ConfirmCheckout(ctx, booking.ID); err != nil {
		t.Fatalf("confirm checkout failed: %v", err)
	}

	if _, err := f.svc.Cancel(ctx, booking.ID, models.CancelActorAdmin); !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("cancel completed: got %v, want ErrAlreadyCompleted", err)
	}
}

func TestConfirmCheckout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking := f.mustCreate(t, testToday, day(2025, 1, 20))
	done, err := f.svc.ConfirmCheckout(ctx, booking.ID)
	if err != nil {
		t.Fatalf("confirm checkout failed: %v", err)
	}
	if done.Status != models.BookingStatusCompleted {
		t.Fatalf("status = %s, want completed", done.Status)
	}
	if done.CheckoutConfirmedAt == nil {
		t.Fatal("CheckoutConfirmedAt not set")
	}
	firstStamp := *done.CheckoutConfirmedAt

	// The confirmation timestamp never moves.
	if _, err := f.svc.ConfirmCheckout(ctx, booking.ID); !errors.Is(err, ErrCheckoutConfirmed) {
		t.Fatalf("second confirm: got %v, want ErrCheckoutConfirmed", err)
	}
	reloaded, err := f.svc.Get(ctx, booking.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if !reloaded.CheckoutConfirmedAt.Equal(firstStamp) {
		t.Fatalf("CheckoutConfirmedAt moved from %v to %v", firstStamp, reloaded.CheckoutConfirmedAt)
	}

	last := f.notifier.events[len(f.notifier.events)-1]
	if last.kind != KindCheckoutConfirmed {
		t.Fatalf("notification kind = %s, want %s", last.kind, KindCheckoutConfirmed)
	}
	if len(last.recipients) != 1 || last.recipients[0] != f.tenant.Email {
		t.Fatalf("checkout notice went to %v, want tenant only", last.recipients)
	}
}

func TestConfirmCheckoutOnCancelled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking := f.mustCreate(t, day(2025, 2, 1), day(2025, 2, 10))
	if _, err := f.svc.Cancel(ctx, booking.ID, models.CancelActorTenant); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if _, err := f.svc.ConfirmCheckout(ctx, booking.ID); !errors.Is(err, ErrAlreadyCancelled) {
		t.Fatalf("got %v, want ErrAlreadyCancelled", err)
	}
}

func TestEditBookingDates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking := f.mustCreate(t, day(2025, 2, 1), day(2025, 2, 10))

	// Moving within a range that overlaps only itself succeeds.
	edited, err := f.svc.Edit(ctx, booking.ID, f.tenant.ID, day(2025, 2, 5), day(2025, 2, 15))
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if !edited.StartDate.Equal(day(2025, 2, 5)) || !edited.EndDate.Equal(day(2025, 2, 15)) {
		t.Fatalf("dates not updated: [%v, %v)", edited.StartDate, edited.EndDate)
	}
	if edited.Status != models.BookingStatusConfirmed {
		t.Fatalf("status = %s, want confirmed", edited.Status)
	}

	last := f.notifier.events[len(f.notifier.events)-1]
	if last.kind != KindUpdated {
		t.Fatalf("notification kind = %s, want %s", last.kind, KindUpdated)
	}
}

func TestEditBookingIntoTodayActivates(t *testing.T) {
	f := newFixture(t)

	booking := f.mustCreate(t, day(2025, 2, 1), day(2025, 2, 10))
	edited, err := f.svc.Edit(context.Background(), booking.ID, f.tenant.ID, testToday, day(2025, 1, 20))
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if edited.Status != models.BookingStatusActive {
		t.Fatalf("status = %s, want active", edited.Status)
	}
}

func TestEditBookingRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := createUser(t, f.db, "tenant2@test.local", models.UserRoleTenant)

	booking := f.mustCreate(t, day(2025, 2, 1), day(2025, 2, 10))
	blocker, err := f.svc.Create(ctx, &f.property, other.ID, day(2025, 2, 20), day(2025, 2, 25))
	if err != nil {
		t.Fatalf("failed to create second booking: %v", err)
	}

	if _, err := f.svc.Edit(ctx, booking.ID, other.ID, day(2025, 3, 1), day(2025, 3, 5)); !errors.Is(err, ErrNotAllowed) {
		t.Fatalf("edit by non-tenant: got %v, want ErrNotAllowed", err)
	}
	if _, err := f.svc.Edit(ctx, booking.ID, f.tenant.ID, day(2025, 2, 18), day(2025, 2, 22)); !errors.Is(err, ErrOverlap) {
		t.Fatalf("edit onto another booking: got %v, want ErrOverlap", err)
	}
	if _, err := f.svc.Edit(ctx, booking.ID, f.tenant.ID, day(2025, 3, 5), day(2025, 3, 1)); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("edit to inverted range: got %v, want ErrInvalidRange", err)
	}

	if _, err := f.svc.Cancel(ctx, blocker.ID, models.CancelActorAdmin); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if _, err := f.svc.Edit(ctx, booking.ID, f.tenant.ID, day(2025, 2, 18), day(2025, 2, 22)); err != nil {
		t.Fatalf("edit onto cancelled booking rejected: %v", err)
	}
}

func TestMarkOverdue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking := f.mustCreate(t, testToday, day(2025, 1, 20))
	overdue, err := f.svc.MarkOverdue(ctx, booking.ID)
	if err != nil {
		t.Fatalf("mark overdue failed: %v", err)
	}
	if overdue.Status != models.BookingStatusOverdue {
		t.Fatalf("status = %s, want overdue", overdue.Status)
	}
	if overdue.OverdueNotifiedAt == nil {
		t.Fatal("OverdueNotifiedAt not set")
	}

	last := f.notifier.events[len(f.notifier.events)-1]
	if last.kind != KindOverdue {
		t.Fatalf("notification kind = %s, want %s", last.kind, KindOverdue)
	}

	// Owner-triggered reminders repeat on demand.
	if _, err := f.svc.MarkOverdue(ctx, booking.ID); err != nil {
		t.Fatalf("second mark overdue failed: %v", err)
	}
	if f.notifier.events[len(f.notifier.events)-1].kind != KindOverdue {
		t.Fatal("second mark overdue did not notify")
	}
}

func TestGetNotFound(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.Get(context.Background(), 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestListByTenantAndOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := createUser(t, f.db, "tenant2@test.local", models.UserRoleTenant)

	f.mustCreate(t, day(2025, 2, 1), day(2025, 2, 5))
	if _, err := f.svc.Create(ctx, &f.property, other.ID, day(2025, 2, 10), day(2025, 2, 15)); err != nil {
		t.Fatalf("failed to create second booking: %v", err)
	}

	mine, err := f.svc.ListByTenant(ctx, f.tenant.ID)
	if err != nil {
		t.Fatalf("ListByTenant failed: %v", err)
	}
	if len(mine) != 1 || mine[0].TenantID != f.tenant.ID {
		t.Fatalf("ListByTenant returned %d bookings, want 1 for the tenant", len(mine))
	}

	owned, err := f.svc.ListByOwner(ctx, f.owner.ID)
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}
	if len(owned) != 2 {
		t.Fatalf("ListByOwner returned %d bookings, want 2", len(owned))
	}

	none, err := f.svc.ListByOwner(ctx, other.ID)
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("ListByOwner for non-owner returned %d bookings, want 0", len(none))
	}
}

// Walks a full lifecycle: book, get blocked, cancel, rebook, check out.
func TestBookingLifecycleScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := createUser(t, f.db, "tenant2@test.local", models.UserRoleTenant)

	first := f.mustCreate(t, day(2025, 2, 1), day(2025, 2, 10))

	if _, err := f.svc.Create(ctx, &f.property, other.ID, day(2025, 2, 5), day(2025, 2, 12)); !errors.Is(err, ErrOverlap) {
		t.Fatalf("conflicting booking: got %v, want ErrOverlap", err)
	}

	if _, err := f.svc.Cancel(ctx, first.ID, models.CancelActorTenant); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	second, err := f.svc.Create(ctx, &f.property, other.ID, day(2025, 2, 5), day(2025, 2, 12))
	if err != nil {
		t.Fatalf("rebooking after cancel failed: %v", err)
	}

	done, err := f.svc.ConfirmCheckout(ctx, second.ID)
	if err != nil {
		t.Fatalf("confirm checkout failed: %v", err)
	}
	if done.Status != models.BookingStatusCompleted {
		t.Fatalf("final status = %s, want completed", done.Status)
	}
}

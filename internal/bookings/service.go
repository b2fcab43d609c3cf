package bookings

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/rentora/rentals-backend/internal/models"
)

// exclusionViolation is the postgres error code raised when the
// bookings_no_overlap constraint rejects the loser of two concurrent
// inserts for the same dates.
const exclusionViolation = "23P01"

func isExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == exclusionViolation
}

// Service implements the booking lifecycle: creation with conflict
// checking, cancellation, checkout confirmation and date edits. Every
// operation re-reads current state and runs its checks and the resulting
// write inside one transaction. "Today" comes from the injected clock so
// tests can pin the calendar.
type Service struct {
	db       *gorm.DB
	notifier Notifier
	now      func() time.Time
}

func NewService(db *gorm.DB, notifier Notifier, now func() time.Time) *Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if now == nil {
		now = time.Now
	}
	return &Service{db: db, notifier: notifier, now: now}
}

func (s *Service) today() time.Time {
	return DateOnly(s.now())
}

// RecomputeStatus derives the status a non-terminal booking should have on
// the given day. Terminal bookings keep their status. Idempotent: feeding
// the result back in with the same day changes nothing.
func RecomputeStatus(b *models.Booking, today time.Time) models.BookingStatus {
	if b.IsTerminal() {
		return b.Status
	}
	if b.CheckoutConfirmedAt != nil {
		return models.BookingStatusCompleted
	}
	if b.EndDate.Before(today) {
		return models.BookingStatusOverdue
	}
	if !today.Before(b.StartDate) && !today.After(b.EndDate) {
		return models.BookingStatusActive
	}
	return models.BookingStatusConfirmed
}

// initialStatus is the status a booking is created (or re-dated) with.
// Same date rules as RecomputeStatus minus the overdue branch, which the
// past-date check makes unreachable here.
func initialStatus(start, end, today time.Time) models.BookingStatus {
	if !today.Before(start) && !today.After(end) {
		return models.BookingStatusActive
	}
	return models.BookingStatusConfirmed
}

func (s *Service) validateRange(start, end, today time.Time) error {
	if !end.After(start) {
		return ErrInvalidRange
	}
	if start.Before(today) {
		return ErrInvalidRange
	}
	return nil
}

// hasBlockingOverlap runs the half-open overlap query against the
// property's live bookings. excludeID skips the booking being edited.
func hasBlockingOverlap(tx *gorm.DB, propertyID uint, start, end time.Time, excludeID uint) (bool, error) {
	var count int64
	q := tx.Model(&models.Booking{}).
		Where("property_id = ? AND status IN ?", propertyID, models.BlockingStatuses).
		Where("start_date < ? AND end_date > ?", end, start)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create books the property for the tenant over [start, end). The overlap
// check and the insert share a transaction; the database-level exclusion
// constraint catches the remaining race between concurrent transactions.
func (s *Service) Create(ctx context.Context, property *models.Property, tenantID uint, start, end time.Time) (*models.Booking, error) {
	start, end = DateOnly(start), DateOnly(end)
	today := s.today()

	if err := s.validateRange(start, end, today); err != nil {
		return nil, err
	}
	if property.OwnerID == tenantID {
		return nil, ErrSelfBooking
	}

	booking := &models.Booking{
		PropertyID: property.ID,
		TenantID:   tenantID,
		StartDate:  start,
		EndDate:    end,
		Status:     initialStatus(start, end, today),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conflict, err := hasBlockingOverlap(tx, property.ID, start, end, 0)
		if err != nil {
			return err
		}
		if conflict {
			return ErrOverlap
		}
		return tx.Create(booking).Error
	})
	if err != nil {
		if isExclusionViolation(err) {
			return nil, ErrOverlap
		}
		return nil, err
	}

	booking.Property = *property
	s.notifier.Notify(ctx, KindNewBooking, booking, ownerRecipients(booking))
	return booking, nil
}

// Cancel marks the booking cancelled on behalf of the actor. Tenants and
// owners may only cancel before check-in day; admins may cancel any
// non-terminal booking. Cancelling twice fails explicitly.
func (s *Service) Cancel(ctx context.Context, bookingID uint, actor models.CancelActor) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadBooking(tx, bookingID, &booking); err != nil {
			return err
		}
		switch booking.Status {
		case models.BookingStatusCancelled:
			return ErrAlreadyCancelled
		case models.BookingStatusCompleted:
			return ErrAlreadyCompleted
		}
		if actor != models.CancelActorAdmin && !s.today().Before(booking.StartDate) {
			return ErrNotAllowed
		}
		now := s.now()
		booking.Status = models.BookingStatusCancelled
		booking.CancelledAt = &now
		booking.CancelledBy = string(actor)
		return tx.Save(&booking).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, KindCancelled, &booking, allRecipients(&booking))
	return &booking, nil
}

// ConfirmCheckout records the owner's checkout confirmation and completes
// the booking. The confirmation timestamp is monotonic: once set it is
// never cleared or changed.
func (s *Service) ConfirmCheckout(ctx context.Context, bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadBooking(tx, bookingID, &booking); err != nil {
			return err
		}
		if booking.Status == models.BookingStatusCancelled {
			return ErrAlreadyCancelled
		}
		if booking.CheckoutConfirmedAt != nil {
			return ErrCheckoutConfirmed
		}
		now := s.now()
		booking.CheckoutConfirmedAt = &now
		booking.Status = models.BookingStatusCompleted
		return tx.Save(&booking).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, KindCheckoutConfirmed, &booking, tenantRecipients(&booking))
	return &booking, nil
}

// Edit moves the booking to new dates, re-running the range and overlap
// checks against all other bookings of the property.
func (s *Service) Edit(ctx context.Context, bookingID, tenantID uint, newStart, newEnd time.Time) (*models.Booking, error) {
	newStart, newEnd = DateOnly(newStart), DateOnly(newEnd)
	today := s.today()

	var booking models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadBooking(tx, bookingID, &booking); err != nil {
			return err
		}
		if booking.TenantID != tenantID {
			return ErrNotAllowed
		}
		switch booking.Status {
		case models.BookingStatusCancelled:
			return ErrAlreadyCancelled
		case models.BookingStatusCompleted:
			return ErrAlreadyCompleted
		}
		if err := s.validateRange(newStart, newEnd, today); err != nil {
			return err
		}
		conflict, err := hasBlockingOverlap(tx, booking.PropertyID, newStart, newEnd, booking.ID)
		if err != nil {
			return err
		}
		if conflict {
			return ErrOverlap
		}
		booking.StartDate = newStart
		booking.EndDate = newEnd
		booking.Status = RecomputeStatus(&booking, today)
		return tx.Save(&booking).Error
	})
	if err != nil {
		if isExclusionViolation(err) {
			return nil, ErrOverlap
		}
		return nil, err
	}

	s.notifier.Notify(ctx, KindUpdated, &booking, allRecipients(&booking))
	return &booking, nil
}

// MarkOverdue is the owner-triggered overdue reminder. It forces the
// status and re-sends the notice even if the sweep already sent one.
func (s *Service) MarkOverdue(ctx context.Context, bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadBooking(tx, bookingID, &booking); err != nil {
			return err
		}
		switch booking.Status {
		case models.BookingStatusCancelled:
			return ErrAlreadyCancelled
		case models.BookingStatusCompleted:
			return ErrAlreadyCompleted
		}
		now := s.now()
		booking.Status = models.BookingStatusOverdue
		booking.OverdueNotifiedAt = &now
		return tx.Save(&booking).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, KindOverdue, &booking, allRecipients(&booking))
	return &booking, nil
}

// Get loads a booking with its property, owner and tenant.
func (s *Service) Get(ctx context.Context, bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	if err := loadBooking(s.db.WithContext(ctx), bookingID, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// ListByTenant returns the tenant's bookings, newest first.
func (s *Service) ListByTenant(ctx context.Context, tenantID uint) ([]models.Booking, error) {
	var list []models.Booking
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Preload("Property").
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

// ListByOwner returns bookings across all of the owner's properties.
func (s *Service) ListByOwner(ctx context.Context, ownerID uint) ([]models.Booking, error) {
	var list []models.Booking
	err := s.db.WithContext(ctx).
		Joins("JOIN properties ON properties.id = bookings.property_id").
		Where("properties.owner_id = ?", ownerID).
		Preload("Property").
		Preload("Tenant").
		Order("bookings.created_at DESC").
		Find(&list).Error
	return list, err
}

func loadBooking(tx *gorm.DB, id uint, out *models.Booking) error {
	err := tx.Preload("Property").Preload("Property.Owner").Preload("Tenant").
		First(out, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func ownerRecipients(b *models.Booking) []string {
	if b.Property.Owner.Email == "" {
		return nil
	}
	return []string{b.Property.Owner.Email}
}

func tenantRecipients(b *models.Booking) []string {
	if b.Tenant.Email == "" {
		return nil
	}
	return []string{b.Tenant.Email}
}

func allRecipients(b *models.Booking) []string {
	var out []string
	seen := map[string]bool{}
	for _, email := range []string{b.Tenant.Email, b.Property.Owner.Email} {
		if email != "" && !seen[email] {
			seen[email] = true
			out = append(out, email)
		}
	}
	return out
}

package bookings

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/rentora/rentals-backend/internal/models"
)

// Sweeper is the periodic batch pass that re-derives booking statuses as
// calendar time advances. "end_date has passed" has no event to react to,
// so the sweep walks every non-terminal booking and applies
// RecomputeStatus.
type Sweeper struct {
	db       *gorm.DB
	notifier Notifier
	now      func() time.Time
}

func NewSweeper(db *gorm.DB, notifier Notifier, now func() time.Time) *Sweeper {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if now == nil {
		now = time.Now
	}
	return &Sweeper{db: db, notifier: notifier, now: now}
}

// RunOnce sweeps all non-terminal bookings and returns how many rows it
// changed. Each write carries an optimistic guard on the status that was
// read, so a cancellation landing between the read and the write wins and
// the sweep skips that booking until the next pass.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	today := DateOnly(s.now())

	var candidates []models.Booking
	err := s.db.WithContext(ctx).
		Where("status NOT IN ?", []models.BookingStatus{
			models.BookingStatusCancelled,
			models.BookingStatusCompleted,
		}).
		Preload("Property").Preload("Property.Owner").Preload("Tenant").
		Find(&candidates).Error
	if err != nil {
		return 0, err
	}

	changed := 0
	for i := range candidates {
		b := &candidates[i]
		newStatus := RecomputeStatus(b, today)
		notifyOverdue := newStatus == models.BookingStatusOverdue && b.OverdueNotifiedAt == nil
		if newStatus == b.Status && !notifyOverdue {
			continue
		}

		now := s.now()
		updates := map[string]interface{}{
			"status":            newStatus,
			"status_updated_at": now,
		}
		if notifyOverdue {
			updates["overdue_notified_at"] = now
		}

		res := s.db.WithContext(ctx).Model(&models.Booking{}).
			Where("id = ? AND status = ?", b.ID, b.Status).
			Updates(updates)
		if res.Error != nil {
			log.Printf("booking sweep: failed to update booking %d: %v", b.ID, res.Error)
			continue
		}
		if res.RowsAffected == 0 {
			// A concurrent cancel or checkout got there first.
			continue
		}

		changed++
		if notifyOverdue {
			b.Status = newStatus
			s.notifier.Notify(ctx, KindOverdue, b, allRecipients(b))
		}
	}
	return changed, nil
}

// Run sweeps immediately and then on every tick until the context is
// cancelled. Intended to run in its own goroutine from main.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if n, err := s.RunOnce(ctx); err != nil {
			log.Printf("booking sweep failed: %v", err)
		} else if n > 0 {
			log.Printf("booking sweep updated %d bookings", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

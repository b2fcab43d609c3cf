package bookings

import (
	"context"

	"github.com/rentora/rentals-backend/internal/models"
)

type NotificationKind string

const (
	KindNewBooking        NotificationKind = "new_booking"
	KindCancelled         NotificationKind = "cancelled"
	KindOverdue           NotificationKind = "overdue"
	KindUpdated           NotificationKind = "updated"
	KindCheckoutConfirmed NotificationKind = "checkout_confirmed"
)

// Notifier delivers booking notifications. Delivery is best-effort:
// implementations log failures and never report them back, so a booking
// state change is never rolled back because an email bounced.
type Notifier interface {
	Notify(ctx context.Context, kind NotificationKind, booking *models.Booking, recipients []string)
}

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) Notify(ctx context.Context, kind NotificationKind, booking *models.Booking, recipients []string) {
}

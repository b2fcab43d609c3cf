package services

import (
	"context"
	"log"
	"strconv"

	"github.com/rentora/rentals-backend/internal/bookings"
	"github.com/rentora/rentals-backend/internal/models"
	"github.com/rentora/rentals-backend/pkg/utils"
)

// BookingNotifier fans a booking event out to email, the websocket hub,
// FCM push and Redis pub/sub. Every channel is fire-and-forget: failures
// are logged and swallowed, never surfaced to the booking transaction.
type BookingNotifier struct {
	Hub *Hub
}

func NewBookingNotifier(hub *Hub) *BookingNotifier {
	return &BookingNotifier{Hub: hub}
}

func (n *BookingNotifier) Notify(ctx context.Context, kind bookings.NotificationKind, booking *models.Booking, recipients []string) {
	// Copy what the goroutines need; the caller may reuse the booking.
	b := *booking
	to := append([]string(nil), recipients...)

	go n.sendEmails(kind, &b, to)
	go n.sendPushes(kind, &b)

	if n.Hub != nil {
		event := BookingEvent{
			BookingID:  b.ID,
			PropertyID: b.PropertyID,
			Status:     string(b.Status),
			Kind:       string(kind),
		}
		go func() {
			n.Hub.SendBookingEvent(b.TenantID, event)
			if b.Property.OwnerID != 0 {
				n.Hub.SendBookingEvent(b.Property.OwnerID, event)
			}
		}()
	}

	go func() {
		err := PublishBookingUpdate(context.Background(), b.ID, string(b.Status), map[string]interface{}{
			"kind":       string(kind),
			"propertyId": b.PropertyID,
		})
		if err != nil {
			log.Printf("Failed to publish booking update for booking %d: %v", b.ID, err)
		}
	}()
}

func (n *BookingNotifier) sendEmails(kind bookings.NotificationKind, b *models.Booking, to []string) {
	if len(to) == 0 {
		return
	}

	start := b.StartDate.Format("2006-01-02")
	end := b.EndDate.Format("2006-01-02")
	title := b.Property.Title

	var err error
	switch kind {
	case bookings.KindNewBooking:
		err = utils.SendNewBookingEmail(to, title, b.Tenant.Username, start, end)
	case bookings.KindCancelled:
		err = utils.SendBookingCancelledEmail(to, b.ID, title, b.CancelledBy)
	case bookings.KindOverdue:
		err = utils.SendBookingOverdueEmail(to, b.ID, title, end)
	case bookings.KindUpdated:
		err = utils.SendBookingUpdatedEmail(to, b.ID, title, start, end)
	case bookings.KindCheckoutConfirmed:
		err = utils.SendCheckoutConfirmedEmail(to, b.ID, title)
	default:
		return
	}
	if err != nil {
		log.Printf("Failed to send %s email for booking %d: %v", kind, b.ID, err)
	}
}

// sendPushes mirrors the websocket fan-out on FCM: tenant and owner get
// the push on any device they registered a token for.
func (n *BookingNotifier) sendPushes(kind bookings.NotificationKind, b *models.Booking) {
	title, body := pushText(kind, b)
	if title == "" {
		return
	}

	payload := PushPayload{
		Title: title,
		Body:  body,
		Data: map[string]string{
			"type":       "booking_" + string(kind),
			"bookingId":  strconv.FormatUint(uint64(b.ID), 10),
			"propertyId": strconv.FormatUint(uint64(b.PropertyID), 10),
			"status":     string(b.Status),
		},
	}

	ctx := context.Background()
	for _, token := range []string{b.Tenant.FCMToken, b.Property.Owner.FCMToken} {
		if token == "" {
			continue
		}
		if err := SendPushToToken(ctx, token, payload); err != nil {
			log.Printf("Failed to send %s push for booking %d: %v", kind, b.ID, err)
		}
	}
}

func pushText(kind bookings.NotificationKind, b *models.Booking) (string, string) {
	title := b.Property.Title
	switch kind {
	case bookings.KindNewBooking:
		return "New Booking", "New booking request for " + title
	case bookings.KindCancelled:
		return "Booking Cancelled", "The booking for " + title + " was cancelled"
	case bookings.KindOverdue:
		return "Checkout Overdue", "The stay at " + title + " has ended without a confirmed checkout"
	case bookings.KindUpdated:
		return "Booking Updated", "The booking dates for " + title + " changed"
	case bookings.KindCheckoutConfirmed:
		return "Checkout Confirmed", "Your checkout from " + title + " was confirmed"
	default:
		return "", ""
	}
}

package models

import (
	"time"

	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusActive    BookingStatus = "active"
	BookingStatusOverdue   BookingStatus = "overdue"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// BlockingStatuses are the statuses that occupy the property's calendar.
// A new booking must not overlap any booking in one of these statuses.
var BlockingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusActive,
}

// Who performed a cancellation.
type CancelActor string

const (
	CancelActorTenant CancelActor = "TENANT"
	CancelActorOwner  CancelActor = "OWNER"
	CancelActorAdmin  CancelActor = "ADMIN"
)

// Booking is a reservation of a property for the half-open date interval
// [StartDate, EndDate). Touching intervals (one ends the day the other
// starts) do not conflict.
type Booking struct {
	gorm.Model
	PropertyID          uint          `json:"propertyId" gorm:"not null;index"`
	Property            Property      `json:"property"`
	TenantID            uint          `json:"tenantId" gorm:"not null;index"`
	Tenant              User          `json:"tenant"`
	StartDate           time.Time     `json:"startDate" gorm:"not null;index:idx_bookings_dates"`
	EndDate             time.Time     `json:"endDate" gorm:"not null;index:idx_bookings_dates"`
	Status              BookingStatus `json:"status" gorm:"not null;default:'pending';index"`
	CancelledAt         *time.Time    `json:"cancelledAt"`
	CancelledBy         string        `json:"cancelledBy" gorm:"not null;default:''"`
	CheckoutConfirmedAt *time.Time    `json:"checkoutConfirmedAt"`
	OverdueNotifiedAt   *time.Time    `json:"overdueNotifiedAt"`
	StatusUpdatedAt     time.Time     `json:"statusUpdatedAt" gorm:"autoUpdateTime"`
}

// IsTerminal reports whether the booking can no longer change state.
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingStatusCancelled || b.Status == BookingStatusCompleted
}

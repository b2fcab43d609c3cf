package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rentora/rentals-backend/internal/bookings"
	"github.com/rentora/rentals-backend/internal/models"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

func bookingErrorStatus(err error) int {
	switch {
	case errors.Is(err, bookings.ErrNotFound):
		return 404
	case errors.Is(err, bookings.ErrOverlap):
		return 409
	case errors.Is(err, bookings.ErrNotAllowed):
		return 403
	case errors.Is(err, bookings.ErrInvalidRange),
		errors.Is(err, bookings.ErrSelfBooking),
		errors.Is(err, bookings.ErrAlreadyCancelled),
		errors.Is(err, bookings.ErrAlreadyCompleted),
		errors.Is(err, bookings.ErrCheckoutConfirmed):
		return 400
	default:
		return 500
	}
}

func bookingResponse(b *models.Booking) gin.H {
	return gin.H{
		"id":                  b.ID,
		"propertyId":          b.PropertyID,
		"tenantId":            b.TenantID,
		"startDate":           b.StartDate.Format(dateLayout),
		"endDate":             b.EndDate.Format(dateLayout),
		"status":              b.Status,
		"cancelledAt":         b.CancelledAt,
		"cancelledBy":         b.CancelledBy,
		"checkoutConfirmedAt": b.CheckoutConfirmedAt,
	}
}

// CreateBooking books a property for the authenticated tenant
func CreateBooking(db *gorm.DB, svc *bookings.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			PropertyID uint   `json:"propertyId" binding:"required"`
			StartDate  string `json:"startDate" binding:"required"`
			EndDate    string `json:"endDate" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		start, err := time.Parse(dateLayout, input.StartDate)
		if err != nil {
			c.JSON(400, gin.H{"error": "startDate must be YYYY-MM-DD"})
			return
		}
		end, err := time.Parse(dateLayout, input.EndDate)
		if err != nil {
			c.JSON(400, gin.H{"error": "endDate must be YYYY-MM-DD"})
			return
		}

		var property models.Property
		if err := db.Preload("Owner").First(&property, input.PropertyID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Property not found"})
			return
		}
		if !property.IsActive {
			c.JSON(400, gin.H{"error": "Property is not available for booking"})
			return
		}

		booking, err := svc.Create(c.Request.Context(), &property, userId, start, end)
		if err != nil {
			c.JSON(bookingErrorStatus(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(201, bookingResponse(booking))
	}
}

// GetBooking retrieves one booking for its tenant, the property owner or
// an admin
func GetBooking(svc *bookings.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		booking, err := svc.Get(c.Request.Context(), paramID(c))
		if err != nil {
			c.JSON(bookingErrorStatus(err), gin.H{"error": err.Error()})
			return
		}

		if booking.TenantID != userId && booking.Property.OwnerID != userId && !c.GetBool("isAdmin") {
			c.JSON(403, gin.H{"error": "Unauthorized"})
			return
		}

		c.JSON(200, bookingResponse(booking))
	}
}

// GetMyBookings retrieves all bookings made by the authenticated tenant
func GetMyBookings(svc *bookings.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		list, err := svc.ListByTenant(c.Request.Context(), userId)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		c.JSON(200, list)
	}
}

// GetOwnerBookings retrieves bookings across all the caller's properties
func GetOwnerBookings(svc *bookings.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		list, err := svc.ListByOwner(c.Request.Context(), userId)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		c.JSON(200, list)
	}
}

// CancelBooking cancels a booking on behalf of the tenant, the property
// owner or an admin
func CancelBooking(svc *bookings.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		booking, err := svc.Get(c.Request.Context(), paramID(c))
		if err != nil {
			c.JSON(bookingErrorStatus(err), gin.H{"error": err.Error()})
			return
		}

		var actor models.CancelActor
		switch {
		case booking.TenantID == userId:
			actor = models.CancelActorTenant
		case booking.Property.OwnerID == userId:
			actor = models.CancelActorOwner
		case c.GetBool("isAdmin"):
			actor = models.CancelActorAdmin
		default:
			c.JSON(403, gin.H{"error": "Unauthorized"})
			return
		}

		booking, err = svc.Cancel(c.Request.Context(), booking.ID, actor)
		if err != nil {
			c.JSON(bookingErrorStatus(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(200, bookingResponse(booking))
	}
}

// ConfirmCheckout records the owner's checkout confirmation
func ConfirmCheckout(svc *bookings.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		booking, err := svc.Get(c.Request.Context(), paramID(c))
		if err != nil {
			c.JSON(bookingErrorStatus(err), gin.H{"error": err.Error()})
			return
		}

		if booking.Property.OwnerID != userId && !c.GetBool("isAdmin") {
			c.JSON(403, gin.H{"error": "Unauthorized"})
			return
		}

		booking, err = svc.ConfirmCheckout(c.Request.Context(), booking.ID)
		if err != nil {
			c.JSON(bookingErrorStatus(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(200, bookingResponse(booking))
	}
}

// MarkOverdue lets the property owner flag a past-due stay and re-send
// the overdue notice
func MarkOverdue(svc *bookings.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		booking, err := svc.Get(c.Request.Context(), paramID(c))
		if err != nil {
			c.JSON(bookingErrorStatus(err), gin.H{"error": err.Error()})
			return
		}

		if booking.Property.OwnerID != userId && !c.GetBool("isAdmin") {
			c.JSON(403, gin.H{"error": "Unauthorized"})
			return
		}

		booking, err = svc.MarkOverdue(c.Request.Context(), booking.ID)
		if err != nil {
			c.JSON(bookingErrorStatus(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(200, bookingResponse(booking))
	}
}

// EditBookingDates moves a booking to new dates
func EditBookingDates(svc *bookings.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			StartDate string `json:"startDate" binding:"required"`
			EndDate   string `json:"endDate" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		start, err := time.Parse(dateLayout, input.StartDate)
		if err != nil {
			c.JSON(400, gin.H{"error": "startDate must be YYYY-MM-DD"})
			return
		}
		end, err := time.Parse(dateLayout, input.EndDate)
		if err != nil {
			c.JSON(400, gin.H{"error": "endDate must be YYYY-MM-DD"})
			return
		}

		booking, err := svc.Edit(c.Request.Context(), paramID(c), userId, start, end)
		if err != nil {
			c.JSON(bookingErrorStatus(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(200, bookingResponse(booking))
	}
}

// RunBookingSweep triggers one pass of the status sweep (admin only)
func RunBookingSweep(sweeper *bookings.Sweeper) gin.HandlerFunc {
	return func(c *gin.Context) {
		changed, err := sweeper.RunOnce(c.Request.Context())
		if err != nil {
			c.JSON(500, gin.H{"error": "Sweep failed"})
			return
		}
		c.JSON(200, gin.H{"updated": changed})
	}
}

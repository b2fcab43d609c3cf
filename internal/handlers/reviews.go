package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rentora/rentals-backend/internal/bookings"
	"github.com/rentora/rentals-backend/internal/models"
	"gorm.io/gorm"
)

// CreateReview submits a review for a property. Reviews are gated by stay
// history: the author needs a non-cancelled booking on the property whose
// stay has already started.
func CreateReview(db *gorm.DB, now func() time.Time) gin.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			Rating int    `json:"rating" binding:"required,min=1,max=5"`
			Text   string `json:"text"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var property models.Property
		if err := db.First(&property, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Property not found"})
			return
		}

		today := bookings.DateOnly(now())
		var stays int64
		err := db.Model(&models.Booking{}).
			Where("property_id = ? AND tenant_id = ?", property.ID, userId).
			Where("status <> ?", models.BookingStatusCancelled).
			Where("start_date <= ?", today).
			Count(&stays).Error
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to check stay history"})
			return
		}
		if stays == 0 {
			c.JSON(403, gin.H{"error": "You can leave a review only after your stay has started"})
			return
		}

		var existing int64
		db.Model(&models.Review{}).
			Where("property_id = ? AND author_id = ?", property.ID, userId).
			Count(&existing)
		if existing > 0 {
			c.JSON(400, gin.H{"error": "You have already reviewed this property"})
			return
		}

		review := models.Review{
			PropertyID: property.ID,
			AuthorID:   userId,
			Rating:     input.Rating,
			Text:       input.Text,
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&review).Error; err != nil {
				return err
			}
			return recountReviews(tx, property.ID)
		})
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to save review"})
			return
		}

		c.JSON(201, review)
	}
}

// ListReviews returns all reviews of a property, newest first
func ListReviews(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var reviews []models.Review
		err := db.Where("property_id = ?", c.Param("id")).
			Preload("Author").
			Order("created_at DESC").
			Find(&reviews).Error
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch reviews"})
			return
		}

		c.JSON(200, reviews)
	}
}

// recountReviews refreshes the property's denormalized review counters.
func recountReviews(tx *gorm.DB, propertyID uint) error {
	var stats struct {
		Count  int64
		Rating float64
	}
	err := tx.Model(&models.Review{}).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS rating").
		Where("property_id = ?", propertyID).
		Scan(&stats).Error
	if err != nil {
		return err
	}

	return tx.Model(&models.Property{}).
		Where("id = ?", propertyID).
		Updates(map[string]interface{}{
			"reviews_count": stats.Count,
			"rating":        stats.Rating,
		}).Error
}

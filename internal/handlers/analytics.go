package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rentora/rentals-backend/internal/models"
	"gorm.io/gorm"
)

// GetTopSearchQueries returns the most frequent search queries over the
// last N days (admin only)
func GetTopSearchQueries(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
		if days < 1 {
			days = 30
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		if limit < 1 || limit > 100 {
			limit = 20
		}

		since := time.Now().AddDate(0, 0, -days)

		var rows []struct {
			Query string `json:"query"`
			Count int64  `json:"count"`
		}
		err := db.Model(&models.SearchQuery{}).
			Select("query, COUNT(*) AS count").
			Where("created_at >= ?", since).
			Group("query").
			Order("count DESC").
			Limit(limit).
			Scan(&rows).Error
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch search stats"})
			return
		}

		c.JSON(200, gin.H{"sinceDays": days, "queries": rows})
	}
}

// GetTopViewedProperties returns the most viewed properties over the last
// N days (admin only)
func GetTopViewedProperties(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
		if days < 1 {
			days = 30
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		if limit < 1 || limit > 100 {
			limit = 20
		}

		since := time.Now().AddDate(0, 0, -days)

		var rows []struct {
			PropertyID uint   `json:"propertyId"`
			Title      string `json:"title"`
			Views      int64  `json:"views"`
		}
		err := db.Model(&models.ViewEvent{}).
			Select("view_events.property_id, properties.title, COUNT(*) AS views").
			Joins("JOIN properties ON properties.id = view_events.property_id").
			Where("view_events.created_at >= ?", since).
			Group("view_events.property_id, properties.title").
			Order("views DESC").
			Limit(limit).
			Scan(&rows).Error
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch view stats"})
			return
		}

		c.JSON(200, gin.H{"sinceDays": days, "properties": rows})
	}
}

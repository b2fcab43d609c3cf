package handlers

import (
	"context"
	"log"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rentora/rentals-backend/internal/models"
	"github.com/rentora/rentals-backend/internal/services"
	"gorm.io/gorm"
)

// CreateProperty handles the creation of a new listing by a landlord
func CreateProperty(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		role := c.GetString("role")

		if role != string(models.UserRoleLandlord) {
			c.JSON(403, gin.H{"error": "Only landlords can create properties"})
			return
		}

		var input struct {
			Title        string  `json:"title" binding:"required"`
			Description  string  `json:"description"`
			City         string  `json:"city" binding:"required"`
			District     string  `json:"district"`
			Price        float64 `json:"price" binding:"required,gt=0"`
			Rooms        int     `json:"rooms" binding:"required,gt=0"`
			PropertyType string  `json:"propertyType" binding:"required,oneof=apartment house studio other"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		property := models.Property{
			OwnerID:      userId,
			Title:        input.Title,
			Description:  input.Description,
			City:         input.City,
			District:     input.District,
			Price:        input.Price,
			Rooms:        input.Rooms,
			PropertyType: models.PropertyType(input.PropertyType),
			IsActive:     true,
		}

		if err := db.Create(&property).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to create property"})
			return
		}

		c.JSON(201, property)
	}
}

// UpdateProperty updates a listing owned by the caller
func UpdateProperty(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		propertyId := c.Param("id")

		var property models.Property
		if err := db.First(&property, propertyId).Error; err != nil {
			c.JSON(404, gin.H{"error": "Property not found"})
			return
		}

		if property.OwnerID != userId && !c.GetBool("isAdmin") {
			c.JSON(403, gin.H{"error": "Unauthorized"})
			return
		}

		var input struct {
			Title        *string  `json:"title"`
			Description  *string  `json:"description"`
			City         *string  `json:"city"`
			District     *string  `json:"district"`
			Price        *float64 `json:"price"`
			Rooms        *int     `json:"rooms"`
			PropertyType *string  `json:"propertyType"`
			IsActive     *bool    `json:"isActive"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if input.Title != nil {
			property.Title = *input.Title
		}
		if input.Description != nil {
			property.Description = *input.Description
		}
		if input.City != nil {
			property.City = *input.City
		}
		if input.District != nil {
			property.District = *input.District
		}
		if input.Price != nil {
			property.Price = *input.Price
		}
		if input.Rooms != nil {
			property.Rooms = *input.Rooms
		}
		if input.PropertyType != nil {
			property.PropertyType = models.PropertyType(*input.PropertyType)
		}
		if input.IsActive != nil {
			property.IsActive = *input.IsActive
		}

		if err := db.Save(&property).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update property"})
			return
		}

		c.JSON(200, property)
	}
}

// DeleteProperty soft-deletes a listing owned by the caller
func DeleteProperty(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		propertyId := c.Param("id")

		var property models.Property
		if err := db.First(&property, propertyId).Error; err != nil {
			c.JSON(404, gin.H{"error": "Property not found"})
			return
		}

		if property.OwnerID != userId && !c.GetBool("isAdmin") {
			c.JSON(403, gin.H{"error": "Unauthorized"})
			return
		}

		var images []models.PropertyImage
		db.Where("property_id = ?", property.ID).Find(&images)

		if err := db.Delete(&property).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to delete property"})
			return
		}

		// Stored files are cleaned up best-effort after the row is gone.
		for _, image := range images {
			if err := services.DeleteImage(image.ImageURL); err != nil {
				log.Printf("Failed to delete image %s: %v", image.ImageURL, err)
			}
		}

		c.JSON(200, gin.H{"message": "Property deleted"})
	}
}

// ListProperties retrieves active listings with optional filters. A
// non-empty q is logged as a SearchQuery row, best-effort.
func ListProperties(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := c.Query("q")
		city := c.Query("city")
		ptype := c.Query("type")
		sort := c.DefaultQuery("sort", "newest")

		// The full query string keys the short-lived result cache.
		cacheKey := c.Request.URL.RawQuery
		var cached map[string]interface{}
		if hit, err := services.GetCachedSearchResults(c.Request.Context(), cacheKey, &cached); err == nil && hit {
			if q != "" {
				logSearchQuery(db, c, q)
			}
			c.JSON(200, cached)
			return
		}

		query := db.Model(&models.Property{}).
			Where("is_active = ?", true).
			Preload("Images").
			Preload("Owner")

		if q != "" {
			like := "%" + q + "%"
			query = query.Where("LOWER(title) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", like, like)
		}
		if city != "" {
			query = query.Where("city = ?", city)
		}
		if ptype != "" {
			query = query.Where("property_type = ?", ptype)
		}
		if v := c.Query("priceMin"); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				query = query.Where("price >= ?", f)
			}
		}
		if v := c.Query("priceMax"); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				query = query.Where("price <= ?", f)
			}
		}
		if v := c.Query("rooms"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				query = query.Where("rooms = ?", n)
			}
		}

		switch sort {
		case "price_asc":
			query = query.Order("price ASC")
		case "price_desc":
			query = query.Order("price DESC")
		case "popular":
			query = query.Order("views_count DESC")
		default:
			query = query.Order("created_at DESC")
		}

		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		if page < 1 {
			page = 1
		}
		pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
		if pageSize < 1 || pageSize > 100 {
			pageSize = 20
		}

		var total int64
		query.Count(&total)

		var properties []models.Property
		if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(&properties).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch properties"})
			return
		}

		if q != "" {
			logSearchQuery(db, c, q)
		}

		payload := gin.H{
			"results":  properties,
			"total":    total,
			"page":     page,
			"pageSize": pageSize,
		}
		if err := services.CacheSearchResults(c.Request.Context(), cacheKey, payload); err != nil {
			log.Printf("Failed to cache search results: %v", err)
		}

		c.JSON(200, payload)
	}
}

// GetProperty retrieves a single listing and records a view event,
// deduplicated per session through Redis.
func GetProperty(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		propertyId := c.Param("id")

		var property models.Property
		if err := db.Preload("Images").Preload("Owner").First(&property, propertyId).Error; err != nil {
			c.JSON(404, gin.H{"error": "Property not found"})
			return
		}

		recordPropertyView(db, c, &property)

		c.JSON(200, property)
	}
}

// UploadPropertyImage attaches an image to a listing via S3/local storage
func UploadPropertyImage(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		propertyId := c.Param("id")

		var property models.Property
		if err := db.First(&property, propertyId).Error; err != nil {
			c.JSON(404, gin.H{"error": "Property not found"})
			return
		}

		if property.OwnerID != userId && !c.GetBool("isAdmin") {
			c.JSON(403, gin.H{"error": "Unauthorized"})
			return
		}

		file, err := c.FormFile("image")
		if err != nil {
			c.JSON(400, gin.H{"error": "Image file is required"})
			return
		}

		path, err := services.UploadImage(file, "properties")
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to store image"})
			return
		}

		image := models.PropertyImage{
			PropertyID: property.ID,
			ImageURL:   services.GetImageURL(path),
			Alt:        c.PostForm("alt"),
		}
		if err := db.Create(&image).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to save image"})
			return
		}

		c.JSON(201, image)
	}
}

func sessionKey(c *gin.Context) string {
	if key := c.GetHeader("X-Session-Key"); key != "" {
		return key
	}
	return c.ClientIP()
}

func currentUserID(c *gin.Context) *uint {
	if id, exists := c.Get("userId"); exists {
		if uid, ok := id.(uint); ok && uid != 0 {
			return &uid
		}
	}
	return nil
}

// logSearchQuery writes an analytics row. Failures never fail the search.
func logSearchQuery(db *gorm.DB, c *gin.Context, q string) {
	if len(q) > 255 {
		q = q[:255]
	}
	entry := models.SearchQuery{
		UserID:     currentUserID(c),
		SessionKey: sessionKey(c),
		IP:         c.ClientIP(),
		Query:      q,
		Path:       c.Request.URL.Path,
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("Failed to log search query %q: %v", q, err)
	}
}

// recordPropertyView bumps views_count and writes a ViewEvent at most
// once per session per hour. Failures never fail the request.
func recordPropertyView(db *gorm.DB, c *gin.Context, property *models.Property) {
	ctx := context.Background()
	key := sessionKey(c)

	first, err := services.MarkPropertyViewed(ctx, property.ID, key)
	if err != nil {
		log.Printf("Failed to dedupe view for property %d: %v", property.ID, err)
		return
	}
	if !first {
		return
	}

	event := models.ViewEvent{
		PropertyID: property.ID,
		UserID:     currentUserID(c),
		SessionKey: key,
		IP:         c.ClientIP(),
		Path:       c.Request.URL.Path,
		UserAgent:  truncate(c.Request.UserAgent(), 500),
		Referer:    truncate(c.Request.Referer(), 1000),
	}
	if err := db.Create(&event).Error; err != nil {
		log.Printf("Failed to log view event for property %d: %v", property.ID, err)
	}

	if err := db.Model(property).
		UpdateColumn("views_count", gorm.Expr("views_count + ?", 1)).Error; err != nil {
		log.Printf("Failed to bump views for property %d: %v", property.ID, err)
	}
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rentora/rentals-backend/internal/database"
	"github.com/rentora/rentals-backend/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Handler tests pin the calendar to this day.
func fixedNow() time.Time {
	return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
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
	sqlDB.SetMaxOpenConns(1)
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, email string, role models.UserRole, isAdmin bool) models.User {
	t.Helper()
	user := models.User{
		Username:     email,
		Email:        email,
		PasswordHash: "x",
		Role:         string(role),
		IsAdmin:      isAdmin,
	}
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
		Price:        1200,
		Rooms:        2,
		PropertyType: models.PropertyTypeApartment,
		IsActive:     true,
	}
	if err := db.Create(&property).Error; err != nil {
		t.Fatalf("failed to create property: %v", err)
	}
	return property
}

// authAs stands in for the JWT middleware and injects the claims the
// handlers read from the context.
func authAs(user models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userId", user.ID)
		c.Set("role", user.Role)
		c.Set("isAdmin", user.IsAdmin)
		c.Next()
	}
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return out
}

package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rentora/rentals-backend/internal/bookings"
	"github.com/rentora/rentals-backend/internal/database"
	"github.com/rentora/rentals-backend/internal/handlers"
	"github.com/rentora/rentals-backend/internal/middleware"
	"github.com/rentora/rentals-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	// Initialize database with better error handling
	db, err := database.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Get underlying SQL DB instance
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Initialize Redis
	if err := services.InitRedis(); err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}

	// Initialize Storage (S3 or local fallback)
	if err := services.InitStorage(); err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// Initialize Firebase (optional - will log warning if not configured)
	if err := services.InitFirebase(); err != nil {
		log.Printf("Firebase initialization warning: %v", err)
	}

	// Initialize WebSocket hub
	hub := services.NewHub()
	go hub.Run()

	// Booking lifecycle: service + periodic status sweep
	notifier := services.NewBookingNotifier(hub)
	bookingSvc := bookings.NewService(db, notifier, nil)
	sweeper := bookings.NewSweeper(db, notifier, nil)
	go sweeper.Run(context.Background(), sweepInterval())

	// Initialize router
	r := gin.Default()

	// Configure CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Session-Key"}
	r.Use(cors.New(config))

	// Serve locally stored uploads
	r.Static("/uploads", "/app/uploads")

	// Routes
	api := r.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register(db))
			auth.POST("/login", handlers.Login(db))
			auth.POST("/forgot-password", handlers.RequestPasswordReset(db))
			auth.POST("/reset-password", handlers.ResetPassword(db))
		}

		// Public catalog
		api.GET("/properties", handlers.ListProperties(db))
		api.GET("/properties/:id", handlers.GetProperty(db))
		api.GET("/properties/:id/reviews", handlers.ListReviews(db))

		// WebSocket connection
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocketHandler(hub))

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			// User routes
			users := protected.Group("/users")
			{
				users.GET("/profile", handlers.GetProfile(db))
				users.PUT("/profile", handlers.UpdateProfile(db))
			}

			// Property management routes
			properties := protected.Group("/properties")
			{
				properties.POST("", handlers.CreateProperty(db))
				properties.PUT("/:id", handlers.UpdateProperty(db))
				properties.DELETE("/:id", handlers.DeleteProperty(db))
				properties.POST("/:id/images", handlers.UploadPropertyImage(db))
				properties.POST("/:id/reviews", handlers.CreateReview(db, nil))
			}

			// Push notification token management
			notifications := protected.Group("/notifications")
			{
				notifications.POST("/register-token", handlers.RegisterFCMToken(db))
				notifications.DELETE("/remove-token", handlers.RemoveFCMToken(db))
			}

			// Booking routes
			bookingRoutes := protected.Group("/bookings")
			{
				bookingRoutes.POST("", handlers.CreateBooking(db, bookingSvc))
				bookingRoutes.GET("/my", handlers.GetMyBookings(bookingSvc))
				bookingRoutes.GET("/owner", handlers.GetOwnerBookings(bookingSvc))
				bookingRoutes.GET("/:id", handlers.GetBooking(bookingSvc))
				bookingRoutes.POST("/:id/cancel", handlers.CancelBooking(bookingSvc))
				bookingRoutes.POST("/:id/confirm-checkout", handlers.ConfirmCheckout(bookingSvc))
				bookingRoutes.POST("/:id/mark-overdue", handlers.MarkOverdue(bookingSvc))
				bookingRoutes.PUT("/:id/dates", handlers.EditBookingDates(bookingSvc))
			}

			// Admin routes
			admin := protected.Group("/admin")
			admin.Use(middleware.AdminOnly())
			{
				admin.POST("/bookings/sweep", handlers.RunBookingSweep(sweeper))
				admin.GET("/analytics/search-queries", handlers.GetTopSearchQueries(db))
				admin.GET("/analytics/property-views", handlers.GetTopViewedProperties(db))
			}
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func sweepInterval() time.Duration {
	if v := os.Getenv("BOOKING_SWEEP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
		log.Printf("Invalid BOOKING_SWEEP_INTERVAL %q, using default", v)
	}
	return 24 * time.Hour
}

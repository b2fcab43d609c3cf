package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/rentora/rentals-backend/internal/database"
	"github.com/rentora/rentals-backend/internal/models"
	"github.com/rentora/rentals-backend/internal/services"
	"gorm.io/gorm"
)

var cities = []string{
	"Berlin", "Hamburg", "Munich", "Cologne", "Frankfurt", "Stuttgart",
	"Dusseldorf", "Leipzig", "Bremen", "Dresden", "Hannover", "Nuremberg",
}

var districts = []string{
	"Altstadt", "Mitte", "Nord", "Sued", "West", "Ost", "Hafen", "Gruenau",
}

var titleFormats = []string{
	"Sunny %d-room %s near the park",
	"Cozy %d-room %s in the center",
	"Renovated %d-room %s with balcony",
	"Quiet %d-room %s close to transit",
	"Bright %d-room %s with a view",
}

var propertyTypes = []models.PropertyType{
	models.PropertyTypeApartment,
	models.PropertyTypeHouse,
	models.PropertyTypeStudio,
	models.PropertyTypeOther,
}

var prices = []float64{650, 790, 920, 1100, 1350, 1600, 2000, 2400}

func main() {
	landlordCount := flag.Int("landlords", 5, "number of demo landlords")
	tenantCount := flag.Int("tenants", 10, "number of demo tenants")
	propertyCount := flag.Int("properties", 40, "number of demo properties")
	imagesPer := flag.Int("images", 3, "stock photo URLs per property")
	withBookings := flag.Bool("bookings", true, "create demo bookings and reviews")
	fetchImages := flag.Bool("fetch", false, "download photos and push them through storage instead of hotlinking")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	db, err := database.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if *fetchImages {
		if err := services.InitStorage(); err != nil {
			log.Fatalf("Failed to initialize storage: %v", err)
		}
	}

	rng := rand.New(rand.NewSource(*seed))

	landlords := seedUsers(db, rng, *landlordCount, models.UserRoleLandlord)
	tenants := seedUsers(db, rng, *tenantCount, models.UserRoleTenant)
	if len(landlords) == 0 {
		log.Fatal("No landlords could be created, aborting")
	}

	properties := seedProperties(db, rng, landlords, *propertyCount, *imagesPer, *fetchImages)
	log.Printf("Seeded %d landlords, %d tenants, %d properties", len(landlords), len(tenants), len(properties))

	if *withBookings && len(tenants) > 0 {
		seedBookingsAndReviews(db, rng, properties, tenants)
	}
}

// seedUsers creates demo accounts. Inserts are best-effort: a duplicate
// email from a previous run is logged and skipped.
func seedUsers(db *gorm.DB, rng *rand.Rand, count int, role models.UserRole) []models.User {
	var out []models.User
	for i := 0; i < count; i++ {
		user := models.User{
			Username: fmt.Sprintf("demo-%s-%d", role, i+1),
			Email:    fmt.Sprintf("demo.%s.%d@rentora.test", role, i+1),
			Password: "demo-password",
			Role:     string(role),
		}
		if err := user.HashPassword(); err != nil {
			log.Printf("Skipping user %s: %v", user.Email, err)
			continue
		}
		if err := db.Create(&user).Error; err != nil {
			log.Printf("Skipping user %s: %v", user.Email, err)
			continue
		}
		out = append(out, user)
	}
	return out
}

func seedProperties(db *gorm.DB, rng *rand.Rand, landlords []models.User, count, imagesPer int, fetch bool) []models.Property {
	var out []models.Property
	for i := 0; i < count; i++ {
		owner := landlords[rng.Intn(len(landlords))]
		city := cities[rng.Intn(len(cities))]
		rooms := 1 + rng.Intn(5)
		ptype := propertyTypes[rng.Intn(len(propertyTypes))]

		property := models.Property{
			OwnerID:      owner.ID,
			Title:        fmt.Sprintf(titleFormats[rng.Intn(len(titleFormats))], rooms, ptype),
			Description:  fmt.Sprintf("Demo listing in %s. %d rooms, available now.", city, rooms),
			City:         city,
			District:     districts[rng.Intn(len(districts))],
			Price:        prices[rng.Intn(len(prices))],
			Rooms:        rooms,
			PropertyType: ptype,
			IsActive:     true,
		}
		if err := db.Create(&property).Error; err != nil {
			log.Printf("Skipping property %q: %v", property.Title, err)
			continue
		}

		attachImages(db, rng, &property, imagesPer, fetch)
		out = append(out, property)
	}
	return out
}

// attachImages links stock photos to a property. Picsum is stable per
// seed and needs no API key. With -fetch the bytes go through the
// storage service; otherwise the URL is hotlinked.
func attachImages(db *gorm.DB, rng *rand.Rand, property *models.Property, count int, fetch bool) {
	for i := 0; i < count; i++ {
		photoSeed := fmt.Sprintf("rentora-%d-%d-%d", property.ID, i, rng.Intn(10000))
		url := fmt.Sprintf("https://picsum.photos/seed/%s/1280/853", photoSeed)

		if fetch {
			stored, err := fetchAndStore(url)
			if err != nil {
				log.Printf("Failed to fetch photo for property %d: %v", property.ID, err)
				continue
			}
			url = stored
		}

		image := models.PropertyImage{
			PropertyID: property.ID,
			ImageURL:   url,
			Alt:        fmt.Sprintf("%s, photo %d", property.Title, i+1),
		}
		if err := db.Create(&image).Error; err != nil {
			log.Printf("Skipping image for property %d: %v", property.ID, err)
		}
	}
}

func fetchAndStore(url string) (string, error) {
	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	path, err := services.UploadBytes(data, "seed", ".jpg")
	if err != nil {
		return "", err
	}
	return services.GetImageURL(path), nil
}

// seedBookingsAndReviews creates a plausible history: one past completed
// stay with a review and one upcoming confirmed stay per sampled
// property. Inserted directly so seeding can backdate stays the service
// API would reject.
func seedBookingsAndReviews(db *gorm.DB, rng *rand.Rand, properties []models.Property, tenants []models.User) {
	today := time.Now().UTC().Truncate(24 * time.Hour)

	created, reviewed := 0, 0
	for i := range properties {
		if rng.Intn(2) == 0 {
			continue
		}
		property := &properties[i]
		tenant := tenants[rng.Intn(len(tenants))]

		// Past stay, already checked out.
		pastEnd := today.AddDate(0, 0, -(1 + rng.Intn(60)))
		pastStart := pastEnd.AddDate(0, 0, -(2 + rng.Intn(12)))
		checkedOut := pastEnd.Add(10 * time.Hour)
		past := models.Booking{
			PropertyID:          property.ID,
			TenantID:            tenant.ID,
			StartDate:           pastStart,
			EndDate:             pastEnd,
			Status:              models.BookingStatusCompleted,
			CheckoutConfirmedAt: &checkedOut,
		}
		if err := db.Create(&past).Error; err != nil {
			log.Printf("Skipping past booking for property %d: %v", property.ID, err)
		} else {
			created++
			review := models.Review{
				PropertyID: property.ID,
				AuthorID:   tenant.ID,
				Rating:     3 + rng.Intn(3),
				Text:       "Great stay, would book again.",
			}
			if err := db.Create(&review).Error; err != nil {
				log.Printf("Skipping review for property %d: %v", property.ID, err)
			} else {
				reviewed++
			}
		}

		// Upcoming stay.
		futureStart := today.AddDate(0, 0, 3+rng.Intn(30))
		futureEnd := futureStart.AddDate(0, 0, 2+rng.Intn(10))
		upcoming := models.Booking{
			PropertyID: property.ID,
			TenantID:   tenants[rng.Intn(len(tenants))].ID,
			StartDate:  futureStart,
			EndDate:    futureEnd,
			Status:     models.BookingStatusConfirmed,
		}
		if err := db.Create(&upcoming).Error; err != nil {
			log.Printf("Skipping upcoming booking for property %d: %v", property.ID, err)
		} else {
			created++
		}
	}
	log.Printf("Seeded %d bookings and %d reviews", created, reviewed)
}

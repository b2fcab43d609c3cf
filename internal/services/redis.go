package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

// InitRedis initializes the Redis client
func InitRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	// Test the connection
	ctx := context.Background()
	_, err = RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

// MarkPropertyViewed records that a session viewed a property within the
// dedupe window. Returns true the first time, false on repeats, so the
// caller only logs one ViewEvent per session per hour.
func MarkPropertyViewed(ctx context.Context, propertyID uint, sessionKey string) (bool, error) {
	if RedisClient == nil {
		return true, nil
	}
	key := fmt.Sprintf("property:viewed:%d:%s", propertyID, sessionKey)
	return RedisClient.SetNX(ctx, key, "1", time.Hour).Result()
}

// CacheSearchResults stores serialized catalog results for a query string
func CacheSearchResults(ctx context.Context, cacheKey string, payload interface{}) error {
	if RedisClient == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("search:results:%s", cacheKey)
	return RedisClient.Set(ctx, key, data, 5*time.Minute).Err()
}

// GetCachedSearchResults retrieves cached catalog results
func GetCachedSearchResults(ctx context.Context, cacheKey string, out interface{}) (bool, error) {
	if RedisClient == nil {
		return false, nil
	}
	key := fmt.Sprintf("search:results:%s", cacheKey)
	data, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return false, err
	}
	return true, nil
}

// PublishBookingUpdate publishes a booking status update to Redis pub/sub
func PublishBookingUpdate(ctx context.Context, bookingID uint, status string, data map[string]interface{}) error {
	if RedisClient == nil {
		return nil
	}
	updateData := map[string]interface{}{
		"bookingId": bookingID,
		"status":    status,
		"data":      data,
		"timestamp": time.Now().Unix(),
	}

	jsonData, err := json.Marshal(updateData)
	if err != nil {
		return err
	}

	return RedisClient.Publish(ctx, "booking:updates", jsonData).Err()
}

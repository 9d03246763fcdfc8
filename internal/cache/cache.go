package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is nil when Redis is not configured; every helper treats that as a
// cache miss so the app works without Redis.
var Client *redis.Client

var summaryTTL = 10 * time.Minute

// Init connects to Redis. An empty addr leaves the cache disabled; a failed
// ping disables it too rather than stopping the app.
func Init(addr, password string, db int, ttl time.Duration) {
	if addr == "" {
		log.Println("redis not configured, rating summary cache disabled")
		return
	}
	if ttl > 0 {
		summaryTTL = ttl
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Printf("failed to ping redis, cache disabled: %v", err)
		client.Close()
		return
	}

	Client = client
	log.Printf("Connected to Redis (%s)", addr)
}

// RatingSummary is the cached aggregate for one seller.
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

func summaryKey(sellerID string) string {
	return fmt.Sprintf("rating_summary:%s", sellerID)
}

// GetRatingSummary returns the cached summary, or (nil, nil) on a miss.
func GetRatingSummary(ctx context.Context, sellerID string) (*RatingSummary, error) {
	if Client == nil {
		return nil, nil
	}
	val, err := Client.Get(ctx, summaryKey(sellerID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get rating summary from redis: %w", err)
	}

	var s RatingSummary
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rating summary: %w", err)
	}
	return &s, nil
}

// SetRatingSummary stores the aggregate with the configured TTL.
func SetRatingSummary(ctx context.Context, sellerID string, s RatingSummary) error {
	if Client == nil {
		return nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal rating summary: %w", err)
	}
	return Client.Set(ctx, summaryKey(sellerID), b, summaryTTL).Err()
}

// InvalidateRatingSummary drops the cached aggregate. Must be called on every
// rating insert or update for the seller.
func InvalidateRatingSummary(ctx context.Context, sellerID string) error {
	if Client == nil {
		return nil
	}
	err := Client.Del(ctx, summaryKey(sellerID)).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to invalidate rating summary: %w", err)
	}
	return nil
}

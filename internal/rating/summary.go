package rating

import (
	"context"
	"log"
	"math"

	"github.com/obioha-dev/campusmarket/internal/cache"
	"github.com/obioha-dev/campusmarket/internal/db"
)

// SummaryFor returns a seller's average rating and rating count, serving
// from Redis when the cache is warm and refilling it when not. Writers
// invalidate the key, so a stale summary never outlives the next rating.
func SummaryFor(ctx context.Context, sellerID string) (float64, int, error) {
	if s, err := cache.GetRatingSummary(ctx, sellerID); err == nil && s != nil {
		return s.Average, s.Count, nil
	}

	var (
		avg   float64
		count int
	)
	err := db.Conn.QueryRow(ctx, `
		SELECT COALESCE(AVG(rating), 0), COUNT(*)
		FROM ratings
		WHERE seller_id = $1
	`, sellerID).Scan(&avg, &count)
	if err != nil {
		return 0, 0, err
	}
	avg = math.Round(avg*100) / 100

	if err := cache.SetRatingSummary(ctx, sellerID, cache.RatingSummary{Average: avg, Count: count}); err != nil {
		log.Printf("rating summary cache write failed for %s: %v", sellerID, err)
	}
	return avg, count, nil
}

package rating

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/obioha-dev/campusmarket/internal/alerts"
	"github.com/obioha-dev/campusmarket/internal/cache"
	"github.com/obioha-dev/campusmarket/internal/db"
	"github.com/obioha-dev/campusmarket/internal/utils"
)

// ===== Seller ratings =====

type SubmitRatingRequest struct {
	Rating    int    `json:"rating" validate:"required,gte=1,lte=5"`
	Review    string `json:"review" validate:"omitempty,max=1000"`
	ProductID string `json:"product_id" validate:"omitempty,uuid"`
}

// Submit records or revises the caller's rating of a seller. A rating tied
// to a product and a profile-level one are distinct rows; submitting the
// same kind twice overwrites the earlier score instead of stacking a second
// vote.
func Submit(c echo.Context) error {
	buyerID := c.Get("user_id").(string)
	username := c.Param("username")

	var req SubmitRatingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "validation failed",
			"fields": utils.ValidationFields(err),
		})
	}

	ctx := context.Background()

	var (
		sellerID string
		role     string
	)
	err := db.Conn.QueryRow(ctx, `
		SELECT u.id, p.role
		FROM users u
		JOIN profiles p ON p.user_id = u.id
		WHERE u.username = $1
	`, username).Scan(&sellerID, &role)
	if errors.Is(err, pgx.ErrNoRows) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not look up seller"})
	}
	if role == "buyer" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "this user is not a seller"})
	}
	if sellerID == buyerID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "you cannot rate yourself"})
	}

	if req.ProductID != "" {
		var productSeller string
		err := db.Conn.QueryRow(ctx, `SELECT seller_id FROM products WHERE id = $1`, req.ProductID).Scan(&productSeller)
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not look up product"})
		}
		if productSeller != sellerID {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "product does not belong to this seller"})
		}
	}

	// Each uniqueness rule is a partial index, so the conflict target has to
	// name the matching predicate.
	var (
		inserted  bool
		upsertErr error
	)
	if req.ProductID != "" {
		upsertErr = db.Conn.QueryRow(ctx, `
			INSERT INTO ratings (id, seller_id, buyer_id, product_id, rating, review)
			VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
			ON CONFLICT (seller_id, buyer_id, product_id) WHERE product_id IS NOT NULL
			DO UPDATE SET rating = EXCLUDED.rating, review = EXCLUDED.review, updated_at = NOW()
			RETURNING (xmax = 0) AS inserted
		`, uuid.New().String(), sellerID, buyerID, req.ProductID, req.Rating, req.Review).Scan(&inserted)
	} else {
		upsertErr = db.Conn.QueryRow(ctx, `
			INSERT INTO ratings (id, seller_id, buyer_id, product_id, rating, review)
			VALUES ($1, $2, $3, NULL, $4, NULLIF($5, ''))
			ON CONFLICT (seller_id, buyer_id) WHERE product_id IS NULL
			DO UPDATE SET rating = EXCLUDED.rating, review = EXCLUDED.review, updated_at = NOW()
			RETURNING (xmax = 0) AS inserted
		`, uuid.New().String(), sellerID, buyerID, req.Rating, req.Review).Scan(&inserted)
	}
	if upsertErr != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not save rating"})
	}

	if err := cache.InvalidateRatingSummary(ctx, sellerID); err != nil {
		log.Printf("rating summary invalidation failed for %s: %v", sellerID, err)
	}

	if inserted {
		var buyerName string
		if err := db.Conn.QueryRow(ctx, `SELECT username FROM users WHERE id = $1`, buyerID).Scan(&buyerName); err == nil {
			title := fmt.Sprintf("%s rated you %d/5", buyerName, req.Rating)
			if err := alerts.CreateNotification(ctx, sellerID, "rating", title, req.Review, nil); err != nil {
				log.Printf("rating notification failed for %s: %v", sellerID, err)
			}
			if err := alerts.EnqueueRatingEmail(sellerID, buyerName, req.Rating); err != nil {
				log.Printf("rating email enqueue failed for %s: %v", sellerID, err)
			}
		}
		return c.JSON(http.StatusCreated, echo.Map{"message": "rating submitted"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "rating updated"})
}

type RatingEntry struct {
	ID            string    `json:"id"`
	BuyerUsername string    `json:"buyer_username"`
	Rating        int       `json:"rating"`
	Review        string    `json:"review,omitempty"`
	ProductID     string    `json:"product_id,omitempty"`
	ProductName   string    `json:"product_name,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ListForSeller returns a seller's ratings, newest first, with the
// aggregate the storefront headline shows.
func ListForSeller(c echo.Context) error {
	username := c.Param("username")
	ctx := context.Background()

	var sellerID string
	err := db.Conn.QueryRow(ctx, `SELECT id FROM users WHERE username = $1`, username).Scan(&sellerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not look up seller"})
	}

	avg, count, err := SummaryFor(ctx, sellerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load rating summary"})
	}

	rows, err := db.Conn.Query(ctx, `
		SELECT r.id, u.username, r.rating, COALESCE(r.review, ''),
		       COALESCE(r.product_id::text, ''), COALESCE(pr.name, ''), r.created_at
		FROM ratings r
		JOIN users u ON u.id = r.buyer_id
		LEFT JOIN products pr ON pr.id = r.product_id
		WHERE r.seller_id = $1
		ORDER BY r.created_at DESC
	`, sellerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load ratings"})
	}
	defer rows.Close()

	ratings := []RatingEntry{}
	for rows.Next() {
		var r RatingEntry
		if err := rows.Scan(&r.ID, &r.BuyerUsername, &r.Rating, &r.Review, &r.ProductID, &r.ProductName, &r.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not read ratings"})
		}
		ratings = append(ratings, r)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"summary": cache.RatingSummary{Average: avg, Count: count},
		"ratings": ratings,
	})
}

package market

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/obioha-dev/campusmarket/internal/db"
	"github.com/obioha-dev/campusmarket/internal/rating"
)

// ===== Product detail =====

type DetailResponse struct {
	Product
	SellerAvatarURL     string    `json:"seller_avatar_url,omitempty"`
	SellerRatingAverage float64   `json:"seller_rating_average"`
	SellerRatingCount   int       `json:"seller_rating_count"`
	Similar             []Product `json:"similar"`
}

// Detail returns one product with its seller summary and a shelf of similar
// listings. A signed-in visit by anyone but the seller counts as a view.
func Detail(c echo.Context) error {
	productID := c.Param("id")
	if _, err := uuid.Parse(productID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	ctx := context.Background()

	var res DetailResponse
	err := db.Conn.QueryRow(ctx, `
		SELECT pr.id, pr.seller_id, u.username, pr.name, pr.description, pr.price,
		       pr.category, pr.condition, COALESCE(pr.image_url, ''), pr.is_available,
		       pr.views_count, pr.created_at, pr.updated_at, COALESCE(p.avatar_url, '')
		FROM products pr
		JOIN users u ON u.id = pr.seller_id
		JOIN profiles p ON p.user_id = pr.seller_id
		WHERE pr.id = $1
	`, productID).Scan(&res.ID, &res.SellerID, &res.SellerUsername, &res.Name, &res.Description, &res.Price,
		&res.Category, &res.Condition, &res.ImageURL, &res.IsAvailable,
		&res.ViewsCount, &res.CreatedAt, &res.UpdatedAt, &res.SellerAvatarURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load product"})
	}

	viewerID, _ := c.Get("user_id").(string)
	if viewerID != "" && viewerID != res.SellerID {
		RecordView(ctx, productID, viewerID)
		res.ViewsCount++
	}

	if avg, count, err := rating.SummaryFor(ctx, res.SellerID); err == nil {
		res.SellerRatingAverage = avg
		res.SellerRatingCount = count
	}

	res.Similar = []Product{}
	rows, err := db.Conn.Query(ctx, `
		SELECT pr.id, pr.seller_id, u.username, pr.name, pr.description, pr.price,
		       pr.category, pr.condition, COALESCE(pr.image_url, ''), pr.is_available,
		       pr.views_count, pr.created_at, pr.updated_at
		FROM products pr
		JOIN users u ON u.id = pr.seller_id
		WHERE pr.category = $1 AND pr.id <> $2 AND pr.is_available = TRUE
		ORDER BY pr.views_count DESC, pr.created_at DESC
		LIMIT 4
	`, res.Category, productID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load similar products"})
	}
	similar, err := collectProducts(rows)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not read similar products"})
	}
	res.Similar = similar

	return c.JSON(http.StatusOK, res)
}

// RecordView counts one view by a signed-in shopper: an atomic counter bump
// so concurrent views never lose increments, plus a log row that feeds the
// recommender. Anonymous hits are not counted.
func RecordView(ctx context.Context, productID, viewerID string) {
	if viewerID == "" {
		return
	}
	if _, err := db.Conn.Exec(ctx, `
		UPDATE products SET views_count = views_count + 1 WHERE id = $1
	`, productID); err != nil {
		log.Printf("view count update failed for %s: %v", productID, err)
		return
	}
	if _, err := db.Conn.Exec(ctx, `
		INSERT INTO product_views (id, user_id, product_id)
		VALUES ($1, $2, $3)
	`, uuid.New().String(), viewerID, productID); err != nil {
		log.Printf("view log insert failed for %s: %v", productID, err)
	}
}

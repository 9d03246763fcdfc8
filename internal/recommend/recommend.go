package recommend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/obioha-dev/campusmarket/internal/db"
	"github.com/obioha-dev/campusmarket/internal/market"
)

// ===== Recommendations =====

const recommendLimit = 12

// ForUser suggests products from the categories the caller has shown
// interest in, where interest is anything they viewed or carted. Someone
// with no history yet gets the overall most-viewed listings instead. Own
// products are never suggested.
func ForUser(c echo.Context) error {
	userID := c.Get("user_id").(string)
	ctx := context.Background()

	categories, err := interestCategories(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load interests"})
	}

	query := `
		SELECT pr.id, pr.seller_id, u.username, pr.name, pr.description, pr.price,
		       pr.category, pr.condition, COALESCE(pr.image_url, ''), pr.is_available,
		       pr.views_count, pr.created_at, pr.updated_at
		FROM products pr
		JOIN users u ON u.id = pr.seller_id
		WHERE pr.is_available = TRUE AND pr.seller_id <> $1`
	args := []any{userID}
	if len(categories) > 0 {
		query += ` AND pr.category = ANY($2)`
		args = append(args, categories)
	}
	args = append(args, recommendLimit)
	query += fmt.Sprintf(`
		ORDER BY pr.views_count DESC, pr.created_at DESC
		LIMIT $%d`, len(args))

	rows, err := db.Conn.Query(ctx, query, args...)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load recommendations"})
	}
	defer rows.Close()

	products := []market.Product{}
	for rows.Next() {
		var p market.Product
		err := rows.Scan(&p.ID, &p.SellerID, &p.SellerUsername, &p.Name, &p.Description, &p.Price,
			&p.Category, &p.Condition, &p.ImageURL, &p.IsAvailable,
			&p.ViewsCount, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not read recommendations"})
		}
		products = append(products, p)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"products": products,
		"based_on": categories,
	})
}

// interestCategories is the union of categories from the view log and the
// cart, deduplicated in SQL.
func interestCategories(ctx context.Context, userID string) ([]string, error) {
	rows, err := db.Conn.Query(ctx, `
		SELECT pr.category
		FROM product_views pv
		JOIN products pr ON pr.id = pv.product_id
		WHERE pv.user_id = $1
		UNION
		SELECT pr.category
		FROM cart_items ci
		JOIN products pr ON pr.id = ci.product_id
		WHERE ci.buyer_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var cat string
		if err := rows.Scan(&cat); err != nil {
			return nil, err
		}
		categories = append(categories, cat)
	}
	return categories, rows.Err()
}

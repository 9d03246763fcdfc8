package admin

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/obioha-dev/campusmarket/internal/db"
	"github.com/obioha-dev/campusmarket/internal/market"
)

// ===== Admin product moderation =====

type ProductRow struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	SellerUsername string    `json:"seller_username"`
	Price          float64   `json:"price"`
	Category       string    `json:"category"`
	IsAvailable    bool      `json:"is_available"`
	ViewsCount     int       `json:"views_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// Products lists every product, hidden ones included. q searches name,
// description and seller; category and condition are exact; available takes
// "true" or "false". Unknown filter values are dropped, same as the
// storefront.
func Products(c echo.Context) error {
	where := "WHERE TRUE"
	args := []any{}

	if q := c.QueryParam("q"); q != "" {
		args = append(args, "%"+q+"%")
		n := len(args)
		where += fmt.Sprintf(" AND (pr.name ILIKE $%d OR pr.description ILIKE $%d OR u.username ILIKE $%d)", n, n, n)
	}
	if category := c.QueryParam("category"); market.ValidCategory(category) {
		args = append(args, category)
		where += fmt.Sprintf(" AND pr.category = $%d", len(args))
	}
	if condition := c.QueryParam("condition"); market.ValidCondition(condition) {
		args = append(args, condition)
		where += fmt.Sprintf(" AND pr.condition = $%d", len(args))
	}
	if available := c.QueryParam("available"); available == "true" || available == "false" {
		args = append(args, available == "true")
		where += fmt.Sprintf(" AND pr.is_available = $%d", len(args))
	}

	query := `
		SELECT pr.id, pr.name, u.username, pr.price, pr.category, pr.is_available, pr.views_count, pr.created_at
		FROM products pr
		JOIN users u ON u.id = pr.seller_id
		` + where + `
		ORDER BY pr.created_at DESC
		LIMIT 100`

	rows, err := db.Conn.Query(context.Background(), query, args...)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load products"})
	}
	defer rows.Close()

	products := []ProductRow{}
	for rows.Next() {
		var p ProductRow
		err := rows.Scan(&p.ID, &p.Name, &p.SellerUsername, &p.Price, &p.Category, &p.IsAvailable, &p.ViewsCount, &p.CreatedAt)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not read products"})
		}
		products = append(products, p)
	}

	return c.JSON(http.StatusOK, echo.Map{"products": products})
}

// HideProduct pulls a listing off the public site without deleting the
// seller's data. Unhide reverses it.
func HideProduct(c echo.Context) error {
	return setAvailability(c, false, "product hidden")
}

func UnhideProduct(c echo.Context) error {
	return setAvailability(c, true, "product visible")
}

func setAvailability(c echo.Context, available bool, message string) error {
	productID := c.Param("id")
	if _, err := uuid.Parse(productID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	tag, err := db.Conn.Exec(context.Background(), `
		UPDATE products SET is_available = $1, updated_at = NOW() WHERE id = $2
	`, available, productID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update product"})
	}
	if tag.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": message})
}

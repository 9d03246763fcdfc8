package admin

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/obioha-dev/campusmarket/internal/db"
)

// ===== Admin stats =====

type StatsResponse struct {
	Users             int `json:"users"`
	Sellers           int `json:"sellers"`
	Products          int `json:"products"`
	AvailableProducts int `json:"available_products"`
	TotalViews        int `json:"total_views"`
	Conversations     int `json:"conversations"`
	Messages          int `json:"messages"`
	Ratings           int `json:"ratings"`
	CartItems         int `json:"cart_items"`
}

// Stats is the dashboard headline: one count per table worth watching.
func Stats(c echo.Context) error {
	ctx := context.Background()
	var res StatsResponse

	queries := []struct {
		sql  string
		dest *int
	}{
		{`SELECT COUNT(*) FROM users`, &res.Users},
		{`SELECT COUNT(*) FROM profiles WHERE role IN ('seller','both')`, &res.Sellers},
		{`SELECT COUNT(*) FROM products`, &res.Products},
		{`SELECT COUNT(*) FROM products WHERE is_available`, &res.AvailableProducts},
		{`SELECT COALESCE(SUM(views_count), 0) FROM products`, &res.TotalViews},
		{`SELECT COUNT(*) FROM conversations`, &res.Conversations},
		{`SELECT COUNT(*) FROM messages`, &res.Messages},
		{`SELECT COUNT(*) FROM ratings`, &res.Ratings},
		{`SELECT COUNT(*) FROM cart_items`, &res.CartItems},
	}
	for _, q := range queries {
		if err := db.Conn.QueryRow(ctx, q.sql).Scan(q.dest); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load stats"})
		}
	}

	return c.JSON(http.StatusOK, res)
}

package cart

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/obioha-dev/campusmarket/internal/db"
	"github.com/obioha-dev/campusmarket/internal/utils"
)

// ===== Cart =====

// Add puts a product in the caller's cart. Adding something already there
// bumps its quantity by one in a single statement, so two rapid clicks end
// up as quantity two rather than a duplicate row or a lost update.
func Add(c echo.Context) error {
	buyerID := c.Get("user_id").(string)
	productID := c.Param("productID")
	if _, err := uuid.Parse(productID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	ctx := context.Background()

	var (
		sellerID    string
		isAvailable bool
	)
	err := db.Conn.QueryRow(ctx, `
		SELECT seller_id, is_available FROM products WHERE id = $1
	`, productID).Scan(&sellerID, &isAvailable)
	if errors.Is(err, pgx.ErrNoRows) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not look up product"})
	}
	if sellerID == buyerID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "you cannot add your own product to your cart"})
	}
	if !isAvailable {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "this product is no longer available"})
	}

	var quantity int
	err = db.Conn.QueryRow(ctx, `
		INSERT INTO cart_items (id, buyer_id, product_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (buyer_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + 1
		RETURNING quantity
	`, uuid.New().String(), buyerID, productID).Scan(&quantity)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not add to cart"})
	}

	var cartCount int
	if err := db.Conn.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0) FROM cart_items WHERE buyer_id = $1
	`, buyerID).Scan(&cartCount); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not count cart"})
	}

	status := http.StatusOK
	message := "quantity increased"
	if quantity == 1 {
		status = http.StatusCreated
		message = "added to cart"
	}
	return c.JSON(status, echo.Map{
		"message":    message,
		"quantity":   quantity,
		"cart_count": cartCount,
	})
}

type CartItem struct {
	ID             string    `json:"id"`
	ProductID      string    `json:"product_id"`
	ProductName    string    `json:"product_name"`
	SellerUsername string    `json:"seller_username"`
	Price          float64   `json:"price"`
	ImageURL       string    `json:"image_url,omitempty"`
	IsAvailable    bool      `json:"is_available"`
	Quantity       int       `json:"quantity"`
	LineTotal      float64   `json:"line_total"`
	AddedAt        time.Time `json:"added_at"`
}

type CartResponse struct {
	Items      []CartItem `json:"items"`
	TotalPrice float64    `json:"total_price"`
	TotalItems int        `json:"total_items"`
}

// View returns the cart with line totals. Products that went off sale since
// they were added stay visible, flagged, but are left out of the total.
func View(c echo.Context) error {
	buyerID := c.Get("user_id").(string)

	rows, err := db.Conn.Query(context.Background(), `
		SELECT ci.id, ci.product_id, pr.name, u.username, pr.price,
		       COALESCE(pr.image_url, ''), pr.is_available, ci.quantity, ci.added_at
		FROM cart_items ci
		JOIN products pr ON pr.id = ci.product_id
		JOIN users u ON u.id = pr.seller_id
		WHERE ci.buyer_id = $1
		ORDER BY ci.added_at DESC
	`, buyerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load cart"})
	}
	defer rows.Close()

	res := CartResponse{Items: []CartItem{}}
	for rows.Next() {
		var item CartItem
		err := rows.Scan(&item.ID, &item.ProductID, &item.ProductName, &item.SellerUsername,
			&item.Price, &item.ImageURL, &item.IsAvailable, &item.Quantity, &item.AddedAt)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not read cart"})
		}
		item.LineTotal = item.Price * float64(item.Quantity)
		res.Items = append(res.Items, item)
		res.TotalItems += item.Quantity
		if item.IsAvailable {
			res.TotalPrice += item.LineTotal
		}
	}

	return c.JSON(http.StatusOK, res)
}

type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// UpdateQuantity sets an item's quantity. Zero or less means take it out of
// the cart entirely.
func UpdateQuantity(c echo.Context) error {
	buyerID := c.Get("user_id").(string)
	itemID := c.Param("id")
	if _, err := uuid.Parse(itemID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cart item id"})
	}

	var req UpdateQuantityRequest
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
	if *req.Quantity <= 0 {
		tag, err := db.Conn.Exec(ctx, `
			DELETE FROM cart_items WHERE id = $1 AND buyer_id = $2
		`, itemID, buyerID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not remove item"})
		}
		if tag.RowsAffected() == 0 {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cart item not found"})
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "item removed"})
	}

	tag, err := db.Conn.Exec(ctx, `
		UPDATE cart_items SET quantity = $1 WHERE id = $2 AND buyer_id = $3
	`, *req.Quantity, itemID, buyerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update quantity"})
	}
	if tag.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "cart item not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "quantity updated", "quantity": *req.Quantity})
}

// Remove deletes one item from the caller's cart.
func Remove(c echo.Context) error {
	buyerID := c.Get("user_id").(string)
	itemID := c.Param("id")
	if _, err := uuid.Parse(itemID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cart item id"})
	}

	tag, err := db.Conn.Exec(context.Background(), `
		DELETE FROM cart_items WHERE id = $1 AND buyer_id = $2
	`, itemID, buyerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not remove item"})
	}
	if tag.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "cart item not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "item removed"})
}

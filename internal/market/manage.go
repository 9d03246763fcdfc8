package market

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/obioha-dev/campusmarket/internal/db"
	"github.com/obioha-dev/campusmarket/internal/utils"
)

// ===== Seller management =====

type CreateProductRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description string  `json:"description" validate:"required,max=2000"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Category    string  `json:"category" validate:"required,oneof=electronics books clothing furniture sports other"`
	Condition   string  `json:"condition" validate:"required,oneof=new like_new good fair"`
	ImageURL    string  `json:"image_url" validate:"omitempty,max=255"`
}

// Create lists a new product under the caller. Role checks happen in the
// route middleware, so anyone reaching this handler is allowed to sell.
func Create(c echo.Context) error {
	userID := c.Get("user_id").(string)

	var req CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "validation failed",
			"fields": utils.ValidationFields(err),
		})
	}

	productID := uuid.New().String()
	var createdAt, updatedAt time.Time
	err := db.Conn.QueryRow(context.Background(), `
		INSERT INTO products (id, seller_id, name, description, price, category, condition, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
		RETURNING created_at, updated_at
	`, productID, userID, req.Name, req.Description, req.Price, req.Category, req.Condition, req.ImageURL).
		Scan(&createdAt, &updatedAt)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create product"})
	}

	return c.JSON(http.StatusCreated, Product{
		ID:          productID,
		SellerID:    userID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Condition:   req.Condition,
		ImageURL:    req.ImageURL,
		IsAvailable: true,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	})
}

type UpdateProductRequest struct {
	Name        *string  `json:"name" validate:"omitempty,max=100"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	Category    *string  `json:"category" validate:"omitempty,oneof=electronics books clothing furniture sports other"`
	Condition   *string  `json:"condition" validate:"omitempty,oneof=new like_new good fair"`
	ImageURL    *string  `json:"image_url" validate:"omitempty,max=255"`
	IsAvailable *bool    `json:"is_available"`
}

// Update edits one of the caller's products. The WHERE clause is scoped to
// the owner, so editing someone else's product looks like a missing one.
func Update(c echo.Context) error {
	userID := c.Get("user_id").(string)
	productID := c.Param("id")
	if _, err := uuid.Parse(productID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	var req UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "validation failed",
			"fields": utils.ValidationFields(err),
		})
	}

	tag, err := db.Conn.Exec(context.Background(), `
		UPDATE products
		SET name         = COALESCE($1, name),
		    description  = COALESCE($2, description),
		    price        = COALESCE($3, price),
		    category     = COALESCE($4, category),
		    condition    = COALESCE($5, condition),
		    image_url    = COALESCE($6, image_url),
		    is_available = COALESCE($7, is_available),
		    updated_at   = NOW()
		WHERE id = $8 AND seller_id = $9
	`, req.Name, req.Description, req.Price, req.Category, req.Condition, req.ImageURL,
		req.IsAvailable, productID, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update product"})
	}
	if tag.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "product updated"})
}

// Delete removes one of the caller's products. Cart entries and
// conversations hanging off it go with it via the FK cascades.
func Delete(c echo.Context) error {
	userID := c.Get("user_id").(string)
	productID := c.Param("id")
	if _, err := uuid.Parse(productID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	tag, err := db.Conn.Exec(context.Background(), `
		DELETE FROM products WHERE id = $1 AND seller_id = $2
	`, productID, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete product"})
	}
	if tag.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted"})
}

package user

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/obioha-dev/campusmarket/internal/db"
)

// ===== Public profile =====

type ProfileProduct struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Price      float64   `json:"price"`
	Category   string    `json:"category"`
	Condition  string    `json:"condition"`
	ImageURL   string    `json:"image_url,omitempty"`
	ViewsCount int       `json:"views_count"`
	CreatedAt  time.Time `json:"created_at"`
}

type ProfileRating struct {
	Rating        int       `json:"rating"`
	Review        string    `json:"review,omitempty"`
	BuyerUsername string    `json:"buyer_username"`
	CreatedAt     time.Time `json:"created_at"`
}

type PublicProfileResponse struct {
	Username      string           `json:"username"`
	FirstName     string           `json:"first_name"`
	LastName      string           `json:"last_name"`
	Role          string           `json:"role"`
	Location      string           `json:"location,omitempty"`
	Bio           string           `json:"bio,omitempty"`
	AvatarURL     string           `json:"avatar_url,omitempty"`
	MemberSince   time.Time        `json:"member_since"`
	RatingAverage float64          `json:"rating_average"`
	RatingCount   int              `json:"rating_count"`
	Products      []ProfileProduct `json:"products"`
	Ratings       []ProfileRating  `json:"ratings"`
}

// PublicProfile shows another user's storefront: who they are, what they
// currently have listed, and how past buyers rated them.
func PublicProfile(c echo.Context) error {
	username := c.Param("username")
	ctx := context.Background()

	var (
		res    PublicProfileResponse
		userID string
	)
	err := db.Conn.QueryRow(ctx, `
		SELECT u.id, u.username, u.first_name, u.last_name, u.created_at,
		       p.role, COALESCE(p.location, ''), COALESCE(p.bio, ''), COALESCE(p.avatar_url, '')
		FROM users u
		JOIN profiles p ON p.user_id = u.id
		WHERE u.username = $1
	`, username).Scan(&userID, &res.Username, &res.FirstName, &res.LastName, &res.MemberSince,
		&res.Role, &res.Location, &res.Bio, &res.AvatarURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load profile"})
	}

	err = db.Conn.QueryRow(ctx, `
		SELECT COALESCE(AVG(rating), 0), COUNT(*)
		FROM ratings
		WHERE seller_id = $1
	`, userID).Scan(&res.RatingAverage, &res.RatingCount)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load ratings"})
	}

	res.Products = []ProfileProduct{}
	rows, err := db.Conn.Query(ctx, `
		SELECT id, name, price, category, condition, COALESCE(image_url, ''), views_count, created_at
		FROM products
		WHERE seller_id = $1 AND is_available = TRUE
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load products"})
	}
	defer rows.Close()
	for rows.Next() {
		var p ProfileProduct
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Category, &p.Condition, &p.ImageURL, &p.ViewsCount, &p.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not read products"})
		}
		res.Products = append(res.Products, p)
	}

	res.Ratings = []ProfileRating{}
	rrows, err := db.Conn.Query(ctx, `
		SELECT r.rating, COALESCE(r.review, ''), u.username, r.created_at
		FROM ratings r
		JOIN users u ON u.id = r.buyer_id
		WHERE r.seller_id = $1
		ORDER BY r.created_at DESC
		LIMIT 10
	`, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load ratings"})
	}
	defer rrows.Close()
	for rrows.Next() {
		var r ProfileRating
		if err := rrows.Scan(&r.Rating, &r.Review, &r.BuyerUsername, &r.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not read ratings"})
		}
		res.Ratings = append(res.Ratings, r)
	}

	return c.JSON(http.StatusOK, res)
}

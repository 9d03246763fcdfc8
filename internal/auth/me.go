package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/obioha-dev/campusmarket/internal/db"
)

// ===== Current user =====

type MeResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	IsAdmin   bool   `json:"is_admin"`
	Phone     string `json:"phone,omitempty"`
	Location  string `json:"location,omitempty"`
	Bio       string `json:"bio,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Me returns the account behind the token. Identity comes from the JWT
// middleware, so an unauthenticated request never reaches this handler.
func Me(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var res MeResponse
	err := db.Conn.QueryRow(context.Background(), `
		SELECT u.id, u.username, u.email, u.first_name, u.last_name, u.is_admin,
		       p.role, COALESCE(p.phone, ''), COALESCE(p.location, ''), COALESCE(p.bio, ''), COALESCE(p.avatar_url, '')
		FROM users u
		JOIN profiles p ON p.user_id = u.id
		WHERE u.id = $1
	`, userID).Scan(&res.ID, &res.Username, &res.Email, &res.FirstName, &res.LastName,
		&res.IsAdmin, &res.Role, &res.Phone, &res.Location, &res.Bio, &res.AvatarURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load user"})
	}

	return c.JSON(http.StatusOK, res)
}

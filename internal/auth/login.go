package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/obioha-dev/campusmarket/internal/db"
)

// ===== Login =====

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required"})
	}

	var (
		userID  string
		hashed  string
		role    string
		isAdmin bool
	)
	err := db.Conn.QueryRow(context.Background(), `
		SELECT u.id, u.password, p.role, u.is_admin
		FROM users u
		JOIN profiles p ON p.user_id = u.id
		WHERE u.username = $1
	`, req.Username).Scan(&userID, &hashed, &role, &isAdmin)
	if errors.Is(err, pgx.ErrNoRows) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not look up user"})
	}

	if bcrypt.CompareHashAndPassword([]byte(hashed), []byte(req.Password)) != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	token, err := issueToken(userID, role, isAdmin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not generate token"})
	}

	return c.JSON(http.StatusOK, TokenResponse{Token: token})
}

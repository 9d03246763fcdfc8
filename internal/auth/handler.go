package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/obioha-dev/campusmarket/internal/alerts"
	"github.com/obioha-dev/campusmarket/internal/db"
	"github.com/obioha-dev/campusmarket/internal/utils"
)

// ===== Registration =====

type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=30"`
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required,max=30"`
	LastName  string `json:"last_name" validate:"required,max=30"`
	Password  string `json:"password" validate:"required,min=6"`
	Role      string `json:"role" validate:"required,oneof=buyer seller both"`
	Phone     string `json:"phone" validate:"max=20"`
	Location  string `json:"location" validate:"max=100"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// Register creates the account and its profile in one transaction, then
// returns a signed token so the client is logged in immediately.
func Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "validation failed",
			"fields": utils.ValidationFields(err),
		})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not hash password"})
	}

	ctx := context.Background()
	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not start transaction"})
	}
	defer tx.Rollback(ctx)

	userID := uuid.New().String()
	_, err = tx.Exec(ctx, `
		INSERT INTO users (id, username, email, password, first_name, last_name)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, userID, req.Username, req.Email, string(hashed), req.FirstName, req.LastName)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "username or email already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create user"})
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO profiles (id, user_id, role, phone, location)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''))
	`, uuid.New().String(), userID, req.Role, req.Phone, req.Location)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create profile"})
	}

	if err := tx.Commit(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not complete registration"})
	}

	token, err := issueToken(userID, req.Role, false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not generate token"})
	}

	if err := alerts.EnqueueWelcomeEmail(userID, req.Email, req.FirstName); err != nil {
		log.Printf("welcome email enqueue failed for %s: %v", userID, err)
	}

	return c.JSON(http.StatusCreated, TokenResponse{Token: token})
}

var tokenExpiry = 72 * time.Hour

// SetTokenExpiry overrides how long issued tokens live. Called once from
// main with the configured value.
func SetTokenExpiry(d time.Duration) {
	if d > 0 {
		tokenExpiry = d
	}
}

// issueToken signs the claims every authenticated request is resolved from.
func issueToken(userID, role string, isAdmin bool) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  userID,
		"role":     role,
		"is_admin": isAdmin,
		"exp":      time.Now().Add(tokenExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

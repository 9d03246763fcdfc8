package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/obioha-dev/campusmarket/internal/db"
)

// ===== Admin user list =====

type UserRow struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// Users lists accounts for the dashboard, optionally filtered by a search
// term over username and email.
func Users(c echo.Context) error {
	q := c.QueryParam("q")

	query := `
		SELECT u.id, u.username, u.email, u.first_name, u.last_name, p.role, u.is_admin, u.created_at
		FROM users u
		JOIN profiles p ON p.user_id = u.id`
	args := []any{}
	if q != "" {
		query += ` WHERE u.username ILIKE $1 OR u.email ILIKE $1`
		args = append(args, "%"+q+"%")
	}
	query += `
		ORDER BY u.created_at DESC
		LIMIT 100`

	rows, err := db.Conn.Query(context.Background(), query, args...)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load users"})
	}
	defer rows.Close()

	users := []UserRow{}
	for rows.Next() {
		var u UserRow
		err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.Role, &u.IsAdmin, &u.CreatedAt)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not read users"})
		}
		users = append(users, u)
	}

	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

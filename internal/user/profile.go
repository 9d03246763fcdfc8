package user

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/obioha-dev/campusmarket/internal/db"
	"github.com/obioha-dev/campusmarket/internal/utils"
)

// ===== Profile update =====

// Pointer fields so an omitted key keeps the stored value while an explicit
// empty string clears it.
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=30"`
	LastName  *string `json:"last_name" validate:"omitempty,max=30"`
	Phone     *string `json:"phone" validate:"omitempty,max=20"`
	Location  *string `json:"location" validate:"omitempty,max=100"`
	Bio       *string `json:"bio" validate:"omitempty,max=500"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,max=255"`
}

func UpdateProfile(c echo.Context) error {
	userID := c.Get("user_id").(string)

	var req UpdateProfileRequest
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
	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not start transaction"})
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE users
		SET first_name = COALESCE($1, first_name),
		    last_name  = COALESCE($2, last_name)
		WHERE id = $3
	`, req.FirstName, req.LastName, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update user"})
	}

	_, err = tx.Exec(ctx, `
		UPDATE profiles
		SET phone      = COALESCE($1, phone),
		    location   = COALESCE($2, location),
		    bio        = COALESCE($3, bio),
		    avatar_url = COALESCE($4, avatar_url)
		WHERE user_id = $5
	`, req.Phone, req.Location, req.Bio, req.AvatarURL, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update profile"})
	}

	if err := tx.Commit(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not save profile"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "profile updated"})
}

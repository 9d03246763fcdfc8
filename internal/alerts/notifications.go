package alerts

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/obioha-dev/campusmarket/internal/db"
)

// ===== In-app notifications =====

// CreateNotification writes the notification row shown in the bell menu.
// Reference points at whatever the notification is about, usually a
// conversation or a rating.
func CreateNotification(ctx context.Context, userID, ntype, title, body string, reference *string) error {
	_, err := db.Conn.Exec(ctx, `
		INSERT INTO notifications (id, user_id, type, title, body, reference)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
	`, uuid.New().String(), userID, ntype, title, body, reference)
	return err
}

type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Reference string    `json:"reference,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// List returns the caller's latest notifications plus the unread total for
// the badge.
func List(c echo.Context) error {
	userID := c.Get("user_id").(string)
	ctx := context.Background()

	rows, err := db.Conn.Query(ctx, `
		SELECT id, type, title, COALESCE(body, ''), COALESCE(reference::text, ''),
		       read_at IS NOT NULL, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 50
	`, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load notifications"})
	}
	defer rows.Close()

	notifications := []Notification{}
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.Type, &n.Title, &n.Body, &n.Reference, &n.Read, &n.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not read notifications"})
		}
		notifications = append(notifications, n)
	}

	var unread int
	if err := db.Conn.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read_at IS NULL
	`, userID).Scan(&unread); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not count notifications"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

// MarkRead stamps one notification as read. Re-marking keeps the original
// read time, so the call is safe to repeat.
func MarkRead(c echo.Context) error {
	userID := c.Get("user_id").(string)
	notificationID := c.Param("id")
	if _, err := uuid.Parse(notificationID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid notification id"})
	}

	tag, err := db.Conn.Exec(context.Background(), `
		UPDATE notifications SET read_at = COALESCE(read_at, NOW())
		WHERE id = $1 AND user_id = $2
	`, notificationID, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update notification"})
	}
	if tag.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "notification not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "notification read"})
}

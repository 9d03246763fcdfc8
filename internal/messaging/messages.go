package messaging

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/obioha-dev/campusmarket/internal/db"
)

// ===== Messages =====

type conversation struct {
	ID        string
	ProductID string
	BuyerID   string
	SellerID  string
}

// loadConversation fetches the conversation and checks the caller is one of
// its two parties. Outsiders get a 403, not a 404: the row exists, they
// just may not read it. When ok is false the error response has already
// been written and the handler must return err as-is.
func loadConversation(ctx context.Context, c echo.Context, userID string) (conversation, bool, error) {
	var cv conversation
	conversationID := c.Param("id")
	if _, err := uuid.Parse(conversationID); err != nil {
		return cv, false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid conversation id"})
	}

	err := db.Conn.QueryRow(ctx, `
		SELECT id, product_id, buyer_id, seller_id FROM conversations WHERE id = $1
	`, conversationID).Scan(&cv.ID, &cv.ProductID, &cv.BuyerID, &cv.SellerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return cv, false, c.JSON(http.StatusNotFound, echo.Map{"error": "conversation not found"})
	}
	if err != nil {
		return cv, false, c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load conversation"})
	}
	if cv.BuyerID != userID && cv.SellerID != userID {
		return cv, false, c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}
	return cv, true, nil
}

func (cv conversation) otherParty(userID string) string {
	if cv.BuyerID == userID {
		return cv.SellerID
	}
	return cv.BuyerID
}

type Message struct {
	ID             string    `json:"id"`
	SenderID       string    `json:"sender_id"`
	SenderUsername string    `json:"sender_username"`
	Content        string    `json:"content"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"created_at"`
}

// Detail returns the full thread oldest-first and marks everything
// addressed to the caller as read in one UPDATE.
func Detail(c echo.Context) error {
	userID := c.Get("user_id").(string)
	ctx := context.Background()

	cv, ok, err := loadConversation(ctx, c, userID)
	if !ok {
		return err
	}

	var (
		productName   string
		otherUsername string
	)
	if err := db.Conn.QueryRow(ctx, `SELECT name FROM products WHERE id = $1`, cv.ProductID).Scan(&productName); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load product"})
	}
	if err := db.Conn.QueryRow(ctx, `SELECT username FROM users WHERE id = $1`, cv.otherParty(userID)).Scan(&otherUsername); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load participant"})
	}

	rows, err := db.Conn.Query(ctx, `
		SELECT m.id, m.sender_id, u.username, m.content, m.read, m.created_at
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.conversation_id = $1
		ORDER BY m.created_at ASC
	`, cv.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load messages"})
	}
	defer rows.Close()

	messages := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.SenderUsername, &m.Content, &m.Read, &m.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not read messages"})
		}
		messages = append(messages, m)
	}

	_, err = db.Conn.Exec(ctx, `
		UPDATE messages SET read = TRUE
		WHERE conversation_id = $1 AND receiver_id = $2 AND NOT read
	`, cv.ID, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not mark messages read"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":             cv.ID,
		"product_id":     cv.ProductID,
		"product_name":   productName,
		"other_username": otherUsername,
		"messages":       messages,
	})
}

type PostMessageRequest struct {
	Content string `json:"content"`
}

// Post appends a message to the thread. A whitespace-only body is silently
// dropped so an accidental empty submit neither errors nor creates noise.
func Post(c echo.Context) error {
	userID := c.Get("user_id").(string)
	ctx := context.Background()

	cv, ok, err := loadConversation(ctx, c, userID)
	if !ok {
		return err
	}

	var req PostMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return c.NoContent(http.StatusNoContent)
	}

	receiverID := cv.otherParty(userID)
	messageID := uuid.New().String()
	var createdAt time.Time
	err = db.Conn.QueryRow(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, receiver_id, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, messageID, cv.ID, userID, receiverID, content).Scan(&createdAt)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not send message"})
	}

	// Keep the inbox ordering honest: activity bumps the conversation.
	_, err = db.Conn.Exec(ctx, `
		UPDATE conversations SET updated_at = NOW() WHERE id = $1
	`, cv.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update conversation"})
	}

	var productName string
	if err := db.Conn.QueryRow(ctx, `SELECT name FROM products WHERE id = $1`, cv.ProductID).Scan(&productName); err == nil {
		notifyNewMessage(ctx, userID, receiverID, productName, cv.ID, content)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"id":         messageID,
		"content":    content,
		"created_at": createdAt,
	})
}

// UnreadCount powers the navbar badge: every unread message addressed to
// the caller, across all conversations.
func UnreadCount(c echo.Context) error {
	userID := c.Get("user_id").(string)

	var count int
	err := db.Conn.QueryRow(context.Background(), `
		SELECT COUNT(*) FROM messages WHERE receiver_id = $1 AND NOT read
	`, userID).Scan(&count)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not count unread messages"})
	}

	return c.JSON(http.StatusOK, echo.Map{"unread_count": count})
}

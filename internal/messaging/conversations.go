package messaging

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/obioha-dev/campusmarket/internal/alerts"
	"github.com/obioha-dev/campusmarket/internal/db"
)

// ===== Conversations =====

type StartConversationRequest struct {
	Content string `json:"content"`
}

// Start opens (or reuses) the buyer's conversation about a product and
// posts the first message. With a blank message it degrades to a lookup:
// an existing conversation is returned as-is, and there is nothing to
// create, so a blank opener is rejected.
func Start(c echo.Context) error {
	buyerID := c.Get("user_id").(string)
	productID := c.Param("id")
	if _, err := uuid.Parse(productID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	var req StartConversationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	content := strings.TrimSpace(req.Content)
	ctx := context.Background()

	var (
		sellerID    string
		productName string
	)
	err := db.Conn.QueryRow(ctx, `
		SELECT seller_id, name FROM products WHERE id = $1
	`, productID).Scan(&sellerID, &productName)
	if errors.Is(err, pgx.ErrNoRows) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not look up product"})
	}
	if sellerID == buyerID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "you cannot message yourself about your own product"})
	}

	if content == "" {
		var conversationID string
		err := db.Conn.QueryRow(ctx, `
			SELECT id FROM conversations
			WHERE product_id = $1 AND buyer_id = $2 AND seller_id = $3
		`, productID, buyerID, sellerID).Scan(&conversationID)
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "please write a message"})
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not look up conversation"})
		}
		return c.JSON(http.StatusOK, echo.Map{"conversation_id": conversationID})
	}

	// Get-or-create in one statement so two first messages racing each other
	// land in the same conversation.
	var (
		conversationID string
		inserted       bool
	)
	err = db.Conn.QueryRow(ctx, `
		INSERT INTO conversations (id, product_id, buyer_id, seller_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_id, buyer_id, seller_id)
		DO UPDATE SET updated_at = NOW()
		RETURNING id, (xmax = 0) AS inserted
	`, uuid.New().String(), productID, buyerID, sellerID).Scan(&conversationID, &inserted)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not open conversation"})
	}

	_, err = db.Conn.Exec(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, receiver_id, content)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.New().String(), conversationID, buyerID, sellerID, content)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not send message"})
	}

	notifyNewMessage(ctx, buyerID, sellerID, productName, conversationID, content)

	status := http.StatusOK
	if inserted {
		status = http.StatusCreated
	}
	return c.JSON(status, echo.Map{"conversation_id": conversationID, "message": "message sent"})
}

type ConversationSummary struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id"`
	ProductName   string    `json:"product_name"`
	ProductImage  string    `json:"product_image,omitempty"`
	OtherUsername string    `json:"other_username"`
	LastMessage   string    `json:"last_message,omitempty"`
	UnreadCount   int       `json:"unread_count"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// List shows the caller's inbox, most recently active first, with the
// unread badge computed per conversation.
func List(c echo.Context) error {
	userID := c.Get("user_id").(string)

	rows, err := db.Conn.Query(context.Background(), `
		SELECT cv.id, cv.product_id, pr.name, COALESCE(pr.image_url, ''),
		       CASE WHEN cv.buyer_id = $1 THEN su.username ELSE bu.username END,
		       COALESCE((SELECT m.content FROM messages m
		                 WHERE m.conversation_id = cv.id
		                 ORDER BY m.created_at DESC LIMIT 1), ''),
		       (SELECT COUNT(*) FROM messages m
		        WHERE m.conversation_id = cv.id AND m.receiver_id = $1 AND NOT m.read),
		       cv.updated_at
		FROM conversations cv
		JOIN products pr ON pr.id = cv.product_id
		JOIN users bu ON bu.id = cv.buyer_id
		JOIN users su ON su.id = cv.seller_id
		WHERE cv.buyer_id = $1 OR cv.seller_id = $1
		ORDER BY cv.updated_at DESC
	`, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load conversations"})
	}
	defer rows.Close()

	conversations := []ConversationSummary{}
	for rows.Next() {
		var cv ConversationSummary
		err := rows.Scan(&cv.ID, &cv.ProductID, &cv.ProductName, &cv.ProductImage,
			&cv.OtherUsername, &cv.LastMessage, &cv.UnreadCount, &cv.UpdatedAt)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not read conversations"})
		}
		conversations = append(conversations, cv)
	}

	return c.JSON(http.StatusOK, echo.Map{"conversations": conversations})
}

// notifyNewMessage fans out the new-message alert: an in-app notification
// row plus a best-effort email task. Neither failure blocks the send.
func notifyNewMessage(ctx context.Context, senderID, receiverID, productName, conversationID, content string) {
	var senderName string
	if err := db.Conn.QueryRow(ctx, `SELECT username FROM users WHERE id = $1`, senderID).Scan(&senderName); err != nil {
		log.Printf("sender lookup failed for %s: %v", senderID, err)
		return
	}

	preview := content
	if len(preview) > 120 {
		preview = preview[:120] + "..."
	}
	title := senderName + " sent you a message about " + productName
	if err := alerts.CreateNotification(ctx, receiverID, "message", title, preview, &conversationID); err != nil {
		log.Printf("notification insert failed for %s: %v", receiverID, err)
	}
	if err := alerts.EnqueueMessageEmail(receiverID, senderName, productName, conversationID); err != nil {
		log.Printf("message email enqueue failed for %s: %v", receiverID, err)
	}
}

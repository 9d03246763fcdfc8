package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"github.com/obioha-dev/campusmarket/internal/db"
)

// startWorker runs the task server alongside the API process. Receiver
// addresses are resolved at send time, not enqueue time, so a user who
// changes their email still gets the mail.
func startWorker(opt asynq.RedisClientOpt) {
	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			"emails": 10,
			"alerts": 5,
		},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeWelcomeEmail, handleWelcomeEmail)
	mux.HandleFunc(TypeMessageEmail, handleMessageEmail)
	mux.HandleFunc(TypeRatingEmail, handleRatingEmail)

	go func() {
		if err := server.Run(mux); err != nil {
			log.Fatalf("alert worker failed: %v", err)
		}
	}()
}

func handleWelcomeEmail(ctx context.Context, t *asynq.Task) error {
	var p WelcomeEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("welcome payload: %w", err)
	}
	body := fmt.Sprintf(
		"Hi %s,\n\nWelcome to Campus Market! Browse what other students are selling, or list something of your own.\n",
		p.FirstName)
	return sendEmail(p.Email, "Welcome to Campus Market", body)
}

func handleMessageEmail(ctx context.Context, t *asynq.Task) error {
	var p MessageEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("message payload: %w", err)
	}

	var email, firstName string
	err := db.Conn.QueryRow(ctx, `SELECT email, first_name FROM users WHERE id = $1`, p.ReceiverID).Scan(&email, &firstName)
	if err != nil {
		return fmt.Errorf("receiver lookup: %w", err)
	}

	subject := fmt.Sprintf("New message about %s", p.ProductName)
	body := fmt.Sprintf(
		"Hi %s,\n\n%s sent you a message about %q. Log in to Campus Market to reply.\n",
		firstName, p.SenderUsername, p.ProductName)
	return sendEmail(email, subject, body)
}

func handleRatingEmail(ctx context.Context, t *asynq.Task) error {
	var p RatingEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("rating payload: %w", err)
	}

	var email, firstName string
	err := db.Conn.QueryRow(ctx, `SELECT email, first_name FROM users WHERE id = $1`, p.SellerID).Scan(&email, &firstName)
	if err != nil {
		return fmt.Errorf("seller lookup: %w", err)
	}

	body := fmt.Sprintf(
		"Hi %s,\n\n%s rated you %d out of 5 on Campus Market.\n",
		firstName, p.BuyerUsername, p.Rating)
	return sendEmail(email, "You received a new rating", body)
}

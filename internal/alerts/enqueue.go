package alerts

import (
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
)

var client *asynq.Client

// Init wires up the task queue and starts the worker. An empty addr leaves
// the whole pipeline disabled; every enqueue becomes a no-op so the rest of
// the app does not care whether Redis is around.
func Init(redisAddr, redisPassword string, redisDB int) {
	if redisAddr == "" {
		log.Println("redis not configured, email alerts disabled")
		return
	}
	opt := asynq.RedisClientOpt{Addr: redisAddr, Password: redisPassword, DB: redisDB}
	client = asynq.NewClient(opt)
	startWorker(opt)
}

func enqueue(taskType string, payload any, queue string) error {
	if client == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	task := asynq.NewTask(taskType, data)
	_, err = client.Enqueue(task, asynq.Queue(queue), asynq.MaxRetry(3))
	return err
}

func EnqueueWelcomeEmail(userID, email, firstName string) error {
	return enqueue(TypeWelcomeEmail, WelcomeEmailPayload{
		UserID:    userID,
		Email:     email,
		FirstName: firstName,
	}, "emails")
}

func EnqueueMessageEmail(receiverID, senderUsername, productName, conversationID string) error {
	return enqueue(TypeMessageEmail, MessageEmailPayload{
		ReceiverID:     receiverID,
		SenderUsername: senderUsername,
		ProductName:    productName,
		ConversationID: conversationID,
	}, "alerts")
}

func EnqueueRatingEmail(sellerID, buyerUsername string, rating int) error {
	return enqueue(TypeRatingEmail, RatingEmailPayload{
		SellerID:      sellerID,
		BuyerUsername: buyerUsername,
		Rating:        rating,
	}, "alerts")
}

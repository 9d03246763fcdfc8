package alerts

// Task types routed through asynq. Email delivery runs on the workers so a
// slow SMTP server never holds up a request.
const (
	TypeWelcomeEmail = "email:welcome"
	TypeMessageEmail = "email:message_new"
	TypeRatingEmail  = "email:rating_new"
)

type WelcomeEmailPayload struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
}

type MessageEmailPayload struct {
	ReceiverID     string `json:"receiver_id"`
	SenderUsername string `json:"sender_username"`
	ProductName    string `json:"product_name"`
	ConversationID string `json:"conversation_id"`
}

type RatingEmailPayload struct {
	SellerID      string `json:"seller_id"`
	BuyerUsername string `json:"buyer_username"`
	Rating        int    `json:"rating"`
}

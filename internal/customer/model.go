package customer

import "time"

// Customer is one visitor identified by email, scoped to a domain. Customers
// are created lazily on the first message containing a recognizable email and
// are never deleted from the conversation path.
type Customer struct {
	ID        string    `json:"id"`
	DomainID  string    `json:"domain_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatRoom is the single conversation thread owned by one customer.
// Live marks a human agent as engaged; Mailed records that the owner was
// already notified for the current live activation.
type ChatRoom struct {
	ID        string    `json:"id"`
	Live      bool      `json:"live"`
	Mailed    bool      `json:"mailed"`
	CreatedAt time.Time `json:"created_at"`
}

// QuestionAnswer is one qualifying question copied onto a customer at creation
// time. Answered stays nil until the question is answered, then never reverts.
type QuestionAnswer struct {
	ID       string  `json:"id"`
	Question string  `json:"question"`
	Answered *string `json:"answered"`
}

// Record bundles a customer with its chat room, the shape every conversation
// turn needs.
type Record struct {
	Customer Customer `json:"customer"`
	ChatRoom ChatRoom `json:"chat_room"`
}

package customer

import "errors"

var (
	// ErrCustomerNotFound is returned when no customer matches the lookup
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrChatRoomNotFound is returned when a chat room id is unknown
	ErrChatRoomNotFound = errors.New("chat room not found")

	// ErrNoUnansweredQuestions is returned when every qualifying question is answered
	ErrNoUnansweredQuestions = errors.New("no unanswered questions")
)

package chat

import "errors"

var (
	// ErrNoEmailFound signals that the inbound message carried no
	// recognizable email address, routing the turn to the email-collection
	// path.
	ErrNoEmailFound = errors.New("no email found in message")
)

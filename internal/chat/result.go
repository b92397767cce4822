package chat

// Turn is one prior message in the running conversation, as supplied by the
// widget with each request.
type Turn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Response is an assistant reply returned to the widget.
type Response struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Link    string `json:"link,omitempty"`
}

// ResultKind names the mutually exclusive conversation paths.
type ResultKind string

const (
	// ResultWelcome is returned when a new customer was just created; the
	// reply is canned and the model is not called.
	ResultWelcome ResultKind = "welcome"
	// ResultLive is returned when a human agent owns the room; the turn is
	// logged and no automated reply is produced.
	ResultLive ResultKind = "live"
	// ResultEscalated is returned when the model asked for a human takeover.
	ResultEscalated ResultKind = "escalated"
	// ResultLink is returned when the model reply embedded a URL.
	ResultLink ResultKind = "link"
	// ResultReply is the default verbatim model reply.
	ResultReply ResultKind = "reply"
)

// Result is the outcome of processing one inbound message. Exactly one path
// produces it; Response is nil only for ResultLive.
type Result struct {
	Kind       ResultKind `json:"kind"`
	Response   *Response  `json:"response,omitempty"`
	Live       bool       `json:"live,omitempty"`
	ChatRoomID string     `json:"chat_room,omitempty"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

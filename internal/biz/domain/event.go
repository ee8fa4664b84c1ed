package domain

// EventKind discriminates inbound events
type EventKind int

const (
	EventMessage EventKind = iota + 1
	EventCallback
	EventInlineQuery
)

func (k EventKind) String() string {
	switch k {
	case EventMessage:
		return "message"
	case EventCallback:
		return "callback"
	case EventInlineQuery:
		return "inline_query"
	default:
		return "unknown"
	}
}

// CallbackQuery is a keyboard button press
type CallbackQuery struct {
	ID      string
	From    User
	Message *Message // message carrying the keyboard, nil when inaccessible
	Data    string
}

// InlineQuery is an inline-mode query typed by a user
type InlineQuery struct {
	ID    string
	From  User
	Query string
}

// Event is an inbound transport event. Exactly one payload matches Kind.
type Event struct {
	Kind     EventKind
	UpdateID int
	Message  *Message
	Callback *CallbackQuery
	Inline   *InlineQuery
}

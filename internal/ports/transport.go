package ports

import "context"

// EventKind discriminates inbound chat events.
type EventKind string

const (
	EventPhoto  EventKind = "photo"
	EventText   EventKind = "text"
	EventAction EventKind = "action"
)

// Event is one inbound unit of work for the conversation engine. The
// transport resolves button presses and menu commands into tagged Actions;
// the engine never matches raw text against menu labels.
type Event struct {
	ID         string
	UserChatID int64
	UserName   string
	MessageRef int64
	Kind       EventKind

	// EventPhoto
	PhotoRef string
	Caption  string

	// EventText
	Text string

	// EventAction
	Action Action
}

// Recipient addresses an outbound message. ThreadID is non-zero only for
// topic-scoped group destinations (the round-summary channel).
type Recipient struct {
	ChatID   int64
	ThreadID int64
}

// Button is an inline control rendered under an outbound message. Pressing
// it comes back as an EventAction carrying the same Action.
type Button struct {
	Label  string
	Action Action
}

// Messenger executes outbound requests. Implementations must treat a send
// or delete failure as their caller's problem to swallow: the engine logs
// and moves on, it never aborts a batch on delivery errors.
type Messenger interface {
	SendText(ctx context.Context, to Recipient, body string, buttons ...Button) (int64, error)
	SendPhoto(ctx context.Context, to Recipient, photoRef string, caption string, buttons ...Button) (int64, error)
	DeleteMessage(ctx context.Context, to Recipient, messageRef int64) error
}

// EventSource delivers inbound events until ctx is cancelled. The channel
// is closed when the source shuts down.
type EventSource interface {
	Events(ctx context.Context) (<-chan Event, error)
}

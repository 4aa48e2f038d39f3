package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventBroadcast carries a chat message fanned out to every logged-in session.
	EventBroadcast EventKind = iota
	// EventPrivateMessage carries a chat message addressed to a single identity.
	EventPrivateMessage
	// EventError reports a rejection back to the sender.
	EventError
	// EventLoginSuccess acknowledges a completed login.
	EventLoginSuccess
)

// Event is the outbound payload delivered through a session's sink.
// Events are immutable once constructed; the hub clones one per recipient
// and never retains them after send.
type Event struct {
	Kind EventKind

	// AuthorID is the connection id of the message author.
	AuthorID string
	// AuthorName is the author's display name, empty if the author had no
	// authenticated identity when the event was built.
	AuthorName string
	Content    string

	Error *ClientError
}

func newBroadcast(author *Session, content string) *Event {
	return &Event{
		Kind:       EventBroadcast,
		AuthorID:   author.ID,
		AuthorName: author.DisplayName(),
		Content:    content,
	}
}

func newPrivateMessage(author *Session, content string) *Event {
	return &Event{
		Kind:       EventPrivateMessage,
		AuthorID:   author.ID,
		AuthorName: author.DisplayName(),
		Content:    content,
	}
}

func newErrorEvent(err *ClientError) *Event {
	return &Event{Kind: EventError, Error: err}
}

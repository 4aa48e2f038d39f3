package core

// Client is a connection as seen by the hub: a command channel the
// transport writes to and the sink events are delivered through.
type Client struct {
	ID       string
	Commands chan *Command
	Sink     Sink
}

// NewClient constructs a client for the given connection id and sink.
func NewClient(id string, sink Sink) *Client {
	return &Client{
		ID:       id,
		Commands: make(chan *Command, 8),
		Sink:     sink,
	}
}

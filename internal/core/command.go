package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandLogin binds an authenticated identity to the connection.
	CommandLogin CommandKind = iota
	// CommandSendMessage fans a chat message out to all logged-in sessions.
	CommandSendMessage
	// CommandSendPrivateMessage delivers a chat message to one identity.
	CommandSendPrivateMessage
)

// Command represents an action requested by a client.
type Command struct {
	Kind CommandKind

	// Token is the auth token for CommandLogin.
	Token string
	// Receiver is the recipient display name for CommandSendPrivateMessage.
	Receiver string
	Content  string
}

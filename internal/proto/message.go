// Package proto defines the JSON frames exchanged with chat clients.
// Field names and type tags are stable; external clients discriminate
// frames on them.
package proto

import "encoding/json"

// Inbound is the envelope for frames coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeLogin      = "login"
	InboundTypeMsg        = "msg"
	InboundTypePrivateMsg = "private_msg"

	OutboundTypeMessage        = "message"
	OutboundTypePrivateMessage = "private_message"
	OutboundTypeSuccess        = "success"
	OutboundTypeError          = "error"
)

// LoginData carries the auth token that binds an identity to the connection.
type LoginData struct {
	Token string `json:"token"`
}

// MsgData is a broadcast chat message from the client.
type MsgData struct {
	Content string `json:"content"`
}

// PrivateMsgData is a chat message addressed to one user.
type PrivateMsgData struct {
	Receiver string `json:"receiver"`
	Content  string `json:"content"`
}

// Outbound is the envelope for frames sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// ChatMessage is emitted for both broadcast and private messages.
type ChatMessage struct {
	AuthorID string `json:"author_id"`
	// AuthorName is omitted when the author had no identity.
	AuthorName string `json:"author_name,omitempty"`
	Content    string `json:"content"`
}

// Error describes a rejection. Reason is one of the core.ErrorCode tags;
// Char carries the offending character for invalid_character.
type Error struct {
	Reason string `json:"reason"`
	Char   string `json:"char,omitempty"`
}

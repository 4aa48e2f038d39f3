package core

import "fmt"

// ErrorCode identifies a client-facing rejection reason.
type ErrorCode string

const (
	// ErrCodeNotSupported is sent for frames the server does not understand.
	ErrCodeNotSupported ErrorCode = "not_supported"
	// ErrCodeLoginFailed is sent when a login token cannot be verified.
	ErrCodeLoginFailed ErrorCode = "login_failed"
	// ErrCodeNotLoggedIn is sent when an operation requires an authenticated identity.
	ErrCodeNotLoggedIn ErrorCode = "not_logged_in"
	// ErrCodeAlreadyLoggedIn is sent when a connection tries to log in twice.
	ErrCodeAlreadyLoggedIn ErrorCode = "already_logged_in"
	// ErrCodeAuthRequestMissing is sent when a login frame carries no token.
	ErrCodeAuthRequestMissing ErrorCode = "auth_request_missing"
	// ErrCodeRateLimited is sent when a sender is over its message budget.
	ErrCodeRateLimited ErrorCode = "rate_limited"
	// ErrCodePrivateMessageNotAccepted is sent when no session of the recipient accepted delivery.
	ErrCodePrivateMessageNotAccepted ErrorCode = "private_message_not_accepted"
	// ErrCodeEmptyMessage is sent for messages with no content.
	ErrCodeEmptyMessage ErrorCode = "empty_message"
	// ErrCodeMessageTooLong is sent for messages over the configured length limit.
	ErrCodeMessageTooLong ErrorCode = "message_too_long"
	// ErrCodeInvalidCharacter is sent for messages containing a disallowed character.
	ErrCodeInvalidCharacter ErrorCode = "invalid_character"
	// ErrCodeBanned is sent when the sender's account is banned.
	ErrCodeBanned ErrorCode = "banned"
	// ErrCodeInternal is sent when the server failed for reasons not caused by the client.
	ErrCodeInternal ErrorCode = "internal"
)

// ClientError is a rejection reported back to the client. The set of codes is
// closed; Char is set only for ErrCodeInvalidCharacter.
type ClientError struct {
	Code ErrorCode
	Char rune
}

func (e *ClientError) Error() string {
	if e.Code == ErrCodeInvalidCharacter {
		return fmt.Sprintf("%s: %q", e.Code, e.Char)
	}
	return string(e.Code)
}

// NewClientError builds a ClientError for the given code.
func NewClientError(code ErrorCode) *ClientError {
	return &ClientError{Code: code}
}

// NewInvalidCharacterError builds the invalid_character rejection carrying
// the offending rune.
func NewInvalidCharacterError(ch rune) *ClientError {
	return &ClientError{Code: ErrCodeInvalidCharacter, Char: ch}
}

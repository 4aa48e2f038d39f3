// Package validate holds the content ruleset applied to chat messages
// before they are routed.
package validate

import (
	"strings"
	"unicode"

	"github.com/relaychat/relaychat-server/internal/core"
)

// DefaultMaxLength bounds message content when no limit is configured.
const DefaultMaxLength = 256

// Validator checks chat message content. The zero value is not usable;
// construct with New.
type Validator struct {
	maxLength int
}

// New builds a validator with the given maximum content length in runes.
// A non-positive limit falls back to DefaultMaxLength.
func New(maxLength int) *Validator {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return &Validator{maxLength: maxLength}
}

// Validate reports nil for acceptable content, or the rejection to send to
// the client. Checks run in order: emptiness, character set, length.
func (v *Validator) Validate(content string) *core.ClientError {
	if strings.TrimSpace(content) == "" {
		return core.NewClientError(core.ErrCodeEmptyMessage)
	}

	length := 0
	for _, ch := range content {
		// Graphic characters only; this keeps control characters and
		// zero-width junk out of other clients' terminals.
		if unicode.IsControl(ch) || !unicode.IsGraphic(ch) {
			return core.NewInvalidCharacterError(ch)
		}
		length++
	}
	if length > v.maxLength {
		return core.NewClientError(core.ErrCodeMessageTooLong)
	}

	return nil
}

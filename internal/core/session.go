package core

// Identity is the durable authenticated account a connection may bind to.
type Identity struct {
	// Name is the user-chosen display name, used for "@name" addressing.
	Name string
	// AccountID is stable across reconnects and name changes; moderation
	// decisions key on it, never on Name.
	AccountID int64
	// AllowMessages controls whether sessions of this identity accept
	// private messages.
	AllowMessages bool
}

// Session is the registry's state for one live connection. The sink and
// limiter exist from connection creation; identity is bound at most once,
// by the registry, and never mutated afterwards.
type Session struct {
	ID string

	sink     Sink
	limiter  *MessageLimiter
	identity *Identity
}

// Identity returns the bound identity, nil until login completes.
func (s *Session) Identity() *Identity {
	return s.identity
}

// LoggedIn reports whether an identity is bound to this connection.
func (s *Session) LoggedIn() bool {
	return s.identity != nil
}

// DisplayName returns the bound identity's name, or "" when anonymous.
func (s *Session) DisplayName() string {
	if s.identity == nil {
		return ""
	}
	return s.identity.Name
}

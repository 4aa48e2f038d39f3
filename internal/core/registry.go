package core

import "errors"

// ErrIdentityBound is returned when binding an identity to a connection
// that already has one.
var ErrIdentityBound = errors.New("identity already bound")

// Registry owns all live sessions. It keeps two structures in step: the
// primary connection-id map and a display-name index mapping each identity
// to the connections currently logged in as it, in login order. All
// mutation happens on the hub loop; the registry itself takes no locks.
type Registry struct {
	sessions map[string]*Session
	byName   map[string][]string
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		byName:   make(map[string][]string),
	}
}

// Add creates the session for a new connection. The limiter exists from
// this moment, before any login.
func (r *Registry) Add(id string, sink Sink, limiter *MessageLimiter) *Session {
	s := &Session{ID: id, sink: sink, limiter: limiter}
	r.sessions[id] = s
	return s
}

// Get returns the session for a connection id, nil if unknown.
func (r *Registry) Get(id string) *Session {
	return r.sessions[id]
}

// Bind attaches an identity to a connection and indexes it under the
// identity's display name. A connection's identity is set at most once.
func (r *Registry) Bind(id string, identity *Identity) error {
	s := r.sessions[id]
	if s == nil {
		return errors.New("unknown connection")
	}
	if s.identity != nil {
		return ErrIdentityBound
	}
	s.identity = identity
	r.byName[identity.Name] = append(r.byName[identity.Name], id)
	return nil
}

// Remove drops a connection and, if it was logged in, unindexes it.
func (r *Registry) Remove(id string) {
	s := r.sessions[id]
	if s == nil {
		return
	}
	delete(r.sessions, id)
	if s.identity == nil {
		return
	}
	name := s.identity.Name
	conns := r.byName[name]
	for i, c := range conns {
		if c == id {
			conns = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(conns) == 0 {
		delete(r.byName, name)
	} else {
		r.byName[name] = conns
	}
}

// IdentityConnections returns the connection ids currently logged in under
// the given display name, oldest login first. The returned slice is the
// index itself; callers must not mutate it.
func (r *Registry) IdentityConnections(name string) []string {
	return r.byName[name]
}

// Each calls fn for every live session. Iteration order is unspecified.
func (r *Registry) Each(fn func(*Session)) {
	for _, s := range r.sessions {
		fn(s)
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return len(r.sessions)
}

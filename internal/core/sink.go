package core

import (
	"errors"
	"sync"
)

var (
	// ErrSinkClosed is returned when sending to a sink whose connection is gone.
	ErrSinkClosed = errors.New("sink closed")
	// ErrSinkFull is returned when the recipient's outbound queue is full.
	ErrSinkFull = errors.New("sink full")
)

// Sink is the capability through which an outbound event reaches one
// connection. Send never blocks; a failure is informational only and the
// caller decides whether it matters.
type Sink interface {
	Send(*Event) error
}

// ChanSink is a Sink backed by a bounded channel. The connection's writer
// loop drains Events; a full or closed channel fails the send.
type ChanSink struct {
	mu     sync.Mutex
	events chan *Event
	closed bool
}

// NewChanSink builds a sink with the given outbound queue size.
func NewChanSink(buffer int) *ChanSink {
	return &ChanSink{events: make(chan *Event, buffer)}
}

// Send enqueues the event without blocking.
func (s *ChanSink) Send(ev *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}
	select {
	case s.events <- ev:
		return nil
	default:
		return ErrSinkFull
	}
}

// Events returns the channel the connection's writer loop reads from.
// The channel is closed by Close.
func (s *ChanSink) Events() <-chan *Event {
	return s.events
}

// Close marks the sink closed and closes the event channel. Safe to call
// more than once.
func (s *ChanSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.events)
}

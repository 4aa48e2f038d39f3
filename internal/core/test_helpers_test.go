package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func mustNoEvent(t *testing.T, ch <-chan *Event) {
	t.Helper()

	select {
	case ev := <-ch:
		t.Fatalf("expected no event, got %+v", ev)
	default:
	}
}

// acceptAllValidator admits everything and counts how often it was asked.
type acceptAllValidator struct {
	calls atomic.Int32
}

func (v *acceptAllValidator) Validate(string) *ClientError {
	v.calls.Add(1)
	return nil
}

// rejectingValidator rejects every message with a fixed error.
type rejectingValidator struct {
	err *ClientError
}

func (v *rejectingValidator) Validate(string) *ClientError {
	return v.err
}

// fakeModeration bans a fixed set of account ids.
type fakeModeration struct {
	mu     sync.Mutex
	banned map[int64]bool
	calls  atomic.Int32
}

func (m *fakeModeration) IsBanned(_ context.Context, accountID int64) (bool, error) {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.banned[accountID], nil
}

func (m *fakeModeration) ban(accountID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.banned[accountID] = true
}

// fakeVerifier resolves tokens from a fixed table.
type fakeVerifier struct {
	mu         sync.Mutex
	identities map[string]*Identity
}

func (v *fakeVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	identity, ok := v.identities[token]
	if !ok {
		return nil, errors.New("unknown token")
	}
	return identity, nil
}

func (v *fakeVerifier) add(token string, identity *Identity) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.identities[token] = identity
}

// failingSink rejects every send and counts the attempts.
type failingSink struct {
	attempts atomic.Int32
}

func (s *failingSink) Send(*Event) error {
	s.attempts.Add(1)
	return ErrSinkClosed
}

// waitAttempts blocks until the sink has seen at least n sends.
func waitAttempts(t *testing.T, s *failingSink, n int32) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.attempts.Load() >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("sink saw %d sends, want at least %d", s.attempts.Load(), n)
}

type hubFixture struct {
	hub        *Hub
	validator  *acceptAllValidator
	moderation *fakeModeration
	verifier   *fakeVerifier
}

func newHubFixture(t *testing.T, limits RateLimit) *hubFixture {
	t.Helper()

	if limits.Messages == 0 {
		limits = RateLimit{Messages: 100, Interval: time.Minute}
	}
	f := &hubFixture{
		validator:  &acceptAllValidator{},
		moderation: &fakeModeration{banned: make(map[int64]bool)},
		verifier:   &fakeVerifier{identities: make(map[string]*Identity)},
	}
	f.hub = NewHub(f.validator, f.moderation, f.verifier, limits, nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go f.hub.Run(ctx)

	return f
}

// connect registers a client backed by a channel sink.
func (f *hubFixture) connect(id string) (*Client, *ChanSink) {
	sink := NewChanSink(16)
	client := NewClient(id, sink)
	f.hub.RegisterClient(client)
	return client, sink
}

// login registers an identity with the fake verifier and logs the client in.
func (f *hubFixture) login(t *testing.T, client *Client, sink *ChanSink, identity *Identity) {
	t.Helper()

	token := fmt.Sprintf("token-%s", client.ID)
	f.verifier.add(token, identity)
	client.Commands <- &Command{Kind: CommandLogin, Token: token}
	mustEvent(t, sink.Events(), EventLoginSuccess)
}

// connectBroken registers a logged-in client whose sink fails every send,
// and waits for the login ack attempt so the login is known to be applied.
func (f *hubFixture) connectBroken(t *testing.T, id string, identity *Identity) (*Client, *failingSink) {
	t.Helper()

	sink := &failingSink{}
	client := NewClient(id, sink)
	f.hub.RegisterClient(client)
	token := fmt.Sprintf("token-%s", id)
	f.verifier.add(token, identity)
	client.Commands <- &Command{Kind: CommandLogin, Token: token}
	waitAttempts(t, sink, 1)
	return client, sink
}

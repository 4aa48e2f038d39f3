package core

import (
	"context"

	"github.com/rs/zerolog"
)

// Validator decides whether message content is acceptable. It is a pure
// function of the content; a non-nil result is forwarded to the sender
// verbatim.
type Validator interface {
	Validate(content string) *ClientError
}

// ModerationStore answers whether an account is currently banned.
type ModerationStore interface {
	IsBanned(ctx context.Context, accountID int64) (bool, error)
}

// IdentityVerifier resolves a login token to an identity.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

type opKind int

const (
	opRegister opKind = iota
	opUnregister
	opCommand
)

type envelope struct {
	op     opKind
	client *Client
	cmd    *Command
}

// Hub routes chat traffic between connections. All registry and limiter
// mutation happens on the single Run goroutine, so one command is fully
// gated and dispatched before the next is taken.
type Hub struct {
	registry   *Registry
	validator  Validator
	moderation ModerationStore
	verifier   IdentityVerifier
	limits     RateLimit

	commands chan envelope
	log      zerolog.Logger
}

// NewHub builds a hub with its collaborators.
func NewHub(validator Validator, moderation ModerationStore, verifier IdentityVerifier, limits RateLimit, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		registry:   NewRegistry(),
		validator:  validator,
		moderation: moderation,
		verifier:   verifier,
		limits:     limits,
		commands:   make(chan envelope, 64),
		log:        logger.With().Str("component", "hub").Logger(),
	}
}

// RegisterClient adds a connection to the hub. The hub consumes the
// client's Commands channel until the transport closes it.
func (h *Hub) RegisterClient(c *Client) {
	h.commands <- envelope{op: opRegister, client: c}
}

// UnregisterClient removes a connection from the hub. The transport must
// have stopped writing to Commands.
func (h *Hub) UnregisterClient(c *Client) {
	h.commands <- envelope{op: opUnregister, client: c}
}

// Run processes commands until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-h.commands:
			switch env.op {
			case opRegister:
				h.handleRegister(ctx, env.client)
			case opUnregister:
				h.handleUnregister(env.client)
			case opCommand:
				h.handleCommand(ctx, env.client, env.cmd)
			}
		}
	}
}

func (h *Hub) handleRegister(ctx context.Context, c *Client) {
	h.registry.Add(c.ID, c.Sink, NewMessageLimiter(h.limits))
	h.log.Debug().Str("conn_id", c.ID).Msg("connection registered")

	// Pump the client's commands into the hub loop so all processing
	// stays on the single owner goroutine.
	go func() {
		for cmd := range c.Commands {
			select {
			case h.commands <- envelope{op: opCommand, client: c, cmd: cmd}:
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (h *Hub) handleUnregister(c *Client) {
	h.registry.Remove(c.ID)
	h.log.Debug().Str("conn_id", c.ID).Msg("connection removed")
}

func (h *Hub) handleCommand(ctx context.Context, c *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandLogin:
		h.handleLogin(ctx, c, cmd.Token)
	case CommandSendMessage:
		h.handleMessage(ctx, c, cmd.Content)
	case CommandSendPrivateMessage:
		h.handlePrivateMessage(ctx, c, cmd.Receiver, cmd.Content)
	default:
		if sess := h.registry.Get(c.ID); sess != nil {
			h.sendError(sess, NewClientError(ErrCodeNotSupported))
		}
	}
}

func (h *Hub) handleLogin(ctx context.Context, c *Client, token string) {
	sess := h.registry.Get(c.ID)
	if sess == nil {
		h.log.Error().Str("conn_id", c.ID).Msg("login for unknown connection")
		return
	}
	if sess.LoggedIn() {
		h.log.Info().Str("conn_id", c.ID).Msg("connection tried to log in twice")
		h.sendError(sess, NewClientError(ErrCodeAlreadyLoggedIn))
		return
	}
	if token == "" {
		h.sendError(sess, NewClientError(ErrCodeAuthRequestMissing))
		return
	}

	identity, err := h.verifier.Verify(ctx, token)
	if err != nil {
		h.log.Info().Err(err).Str("conn_id", c.ID).Msg("login failed")
		h.sendError(sess, NewClientError(ErrCodeLoginFailed))
		return
	}

	if err := h.registry.Bind(c.ID, identity); err != nil {
		h.log.Error().Err(err).Str("conn_id", c.ID).Msg("bind identity")
		h.sendError(sess, NewClientError(ErrCodeInternal))
		return
	}

	h.log.Info().Str("conn_id", c.ID).Str("user", identity.Name).Msg("user logged in")
	if err := sess.sink.Send(&Event{Kind: EventLoginSuccess}); err != nil {
		h.log.Warn().Err(err).Str("conn_id", c.ID).Msg("send login ack")
	}
}

// handleMessage fans a chat message out to every logged-in session,
// including the sender. Sessions that never logged in do not receive
// chat broadcasts.
func (h *Hub) handleMessage(ctx context.Context, c *Client, content string) {
	sess := h.registry.Get(c.ID)
	if sess == nil {
		h.log.Error().Str("conn_id", c.ID).Msg("message from unknown connection")
		return
	}

	if h.checkRatelimit(sess) {
		return
	}
	if sess = h.basicCheck(ctx, sess, content); sess == nil {
		return
	}

	h.log.Info().Str("conn_id", c.ID).Str("user", sess.DisplayName()).Msg("broadcast message")
	ev := newBroadcast(sess, content)
	h.registry.Each(func(recipient *Session) {
		if !recipient.LoggedIn() {
			return
		}
		clone := *ev
		if err := recipient.sink.Send(&clone); err != nil {
			h.log.Warn().Err(err).Str("conn_id", recipient.ID).Msg("broadcast delivery failed")
		}
	})
}

// handlePrivateMessage resolves the receiver's display name to its live
// connections and delivers to the first one that accepts. The receptive
// filter and the delivery attempt stay two separate passes.
func (h *Hub) handlePrivateMessage(ctx context.Context, c *Client, receiver, content string) {
	sess := h.registry.Get(c.ID)
	if sess == nil {
		h.log.Error().Str("conn_id", c.ID).Msg("private message from unknown connection")
		return
	}

	if h.checkRatelimit(sess) {
		return
	}
	if sess = h.basicCheck(ctx, sess, content); sess == nil {
		return
	}

	conns := h.registry.IdentityConnections(receiver)
	if len(conns) == 0 {
		// No such identity online. Stay silent so senders cannot probe
		// which names exist.
		h.log.Debug().Str("conn_id", c.ID).Str("receiver", receiver).Msg("private message to unknown user")
		return
	}

	var eligible []*Session
	for _, id := range conns {
		candidate := h.registry.Get(id)
		if candidate != nil && candidate.Identity().AllowMessages {
			eligible = append(eligible, candidate)
		}
	}

	ev := newPrivateMessage(sess, content)
	for _, candidate := range eligible {
		clone := *ev
		if err := candidate.sink.Send(&clone); err != nil {
			h.log.Warn().Err(err).Str("conn_id", candidate.ID).Msg("private delivery failed")
			continue
		}
		h.log.Info().Str("conn_id", c.ID).Str("receiver", receiver).Msg("private message delivered")
		return
	}

	h.sendError(sess, NewClientError(ErrCodePrivateMessageNotAccepted))
}

// basicCheck runs the admission pipeline: login state, content validity,
// ban state, in that order, first failure wins. The sender is always told
// why it was rejected. On success the checked session is returned so the
// caller acts on the same state the checks saw.
func (h *Hub) basicCheck(ctx context.Context, sess *Session, content string) *Session {
	identity := sess.Identity()
	if identity == nil {
		h.log.Info().Str("conn_id", sess.ID).Msg("message from connection that is not logged in")
		h.sendError(sess, NewClientError(ErrCodeNotLoggedIn))
		return nil
	}

	if cerr := h.validator.Validate(content); cerr != nil {
		h.log.Info().Str("conn_id", sess.ID).Str("reason", string(cerr.Code)).Msg("message rejected by validator")
		h.sendError(sess, cerr)
		return nil
	}

	banned, err := h.moderation.IsBanned(ctx, identity.AccountID)
	if err != nil {
		h.log.Error().Err(err).Int64("account_id", identity.AccountID).Msg("ban lookup failed")
		h.sendError(sess, NewClientError(ErrCodeInternal))
		return nil
	}
	if banned {
		h.log.Info().Str("conn_id", sess.ID).Str("user", identity.Name).Msg("banned user tried to send message")
		h.sendError(sess, NewClientError(ErrCodeBanned))
		return nil
	}

	return sess
}

// checkRatelimit records a send attempt and reports whether it was over
// budget. It runs before any other gate so spamming clients are rejected
// without validator or moderation lookups.
func (h *Hub) checkRatelimit(sess *Session) bool {
	if sess.limiter.Allow() {
		return false
	}
	h.log.Info().Str("conn_id", sess.ID).Msg("message rate limited")
	h.sendError(sess, NewClientError(ErrCodeRateLimited))
	return true
}

// sendError reports a rejection to the sender. Best effort: a failed
// notification is logged, never propagated.
func (h *Hub) sendError(sess *Session, cerr *ClientError) {
	if err := sess.sink.Send(newErrorEvent(cerr)); err != nil {
		h.log.Warn().Err(err).Str("conn_id", sess.ID).Msg("send error event")
	}
}

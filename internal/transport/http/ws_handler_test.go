package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/relaychat/relaychat-server/internal/core"
	"github.com/relaychat/relaychat-server/internal/proto"
)

type wsFixture struct {
	ts *httptest.Server
	f  *serverFixture
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()

	f := newServerFixture(t)
	ts := httptest.NewServer(f.handler)
	t.Cleanup(ts.Close)
	return &wsFixture{ts: ts, f: f}
}

func (w *wsFixture) dial(t *testing.T, ctx context.Context) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(w.ts.URL, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "test done") })
	return conn
}

func send(t *testing.T, ctx context.Context, conn *websocket.Conn, typ string, data any) {
	t.Helper()

	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal %s: %v", typ, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: raw}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func recv(t *testing.T, ctx context.Context, conn *websocket.Conn) map[string]json.RawMessage {
	t.Helper()

	var out map[string]json.RawMessage
	if err := wsjson.Read(ctx, conn, &out); err != nil {
		t.Fatalf("read: %v", err)
	}
	return out
}

func frameType(t *testing.T, frame map[string]json.RawMessage) string {
	t.Helper()

	var typ string
	if err := json.Unmarshal(frame["type"], &typ); err != nil {
		t.Fatalf("frame without type: %v", err)
	}
	return typ
}

func TestWSLoginAndBroadcastRoundTrip(t *testing.T) {
	w := newWSFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	token := w.f.register(t, "alice", "password123")
	conn := w.dial(t, ctx)

	send(t, ctx, conn, proto.InboundTypeLogin, proto.LoginData{Token: token})
	if typ := frameType(t, recv(t, ctx, conn)); typ != proto.OutboundTypeSuccess {
		t.Fatalf("expected success frame, got %s", typ)
	}

	send(t, ctx, conn, proto.InboundTypeMsg, proto.MsgData{Content: "hello"})
	frame := recv(t, ctx, conn)
	if typ := frameType(t, frame); typ != proto.OutboundTypeMessage {
		t.Fatalf("expected message frame, got %s", typ)
	}
	var msg proto.ChatMessage
	if err := json.Unmarshal(frame["data"], &msg); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if msg.AuthorName != "alice" || msg.Content != "hello" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestWSMessageWithoutLogin(t *testing.T) {
	w := newWSFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := w.dial(t, ctx)

	send(t, ctx, conn, proto.InboundTypeMsg, proto.MsgData{Content: "hello"})
	frame := recv(t, ctx, conn)
	if typ := frameType(t, frame); typ != proto.OutboundTypeError {
		t.Fatalf("expected error frame, got %s", typ)
	}
	var perr proto.Error
	if err := json.Unmarshal(frame["error"], &perr); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if perr.Reason != string(core.ErrCodeNotLoggedIn) {
		t.Fatalf("expected not_logged_in, got %+v", perr)
	}
}

func TestWSPrivateMessageBetweenConnections(t *testing.T) {
	w := newWSFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	aliceToken := w.f.register(t, "alice", "password123")
	bobToken := w.f.register(t, "bob", "password123")

	alice := w.dial(t, ctx)
	bob := w.dial(t, ctx)

	send(t, ctx, alice, proto.InboundTypeLogin, proto.LoginData{Token: aliceToken})
	if typ := frameType(t, recv(t, ctx, alice)); typ != proto.OutboundTypeSuccess {
		t.Fatalf("alice login failed")
	}
	send(t, ctx, bob, proto.InboundTypeLogin, proto.LoginData{Token: bobToken})
	if typ := frameType(t, recv(t, ctx, bob)); typ != proto.OutboundTypeSuccess {
		t.Fatalf("bob login failed")
	}

	send(t, ctx, alice, proto.InboundTypePrivateMsg, proto.PrivateMsgData{Receiver: "bob", Content: "psst"})

	frame := recv(t, ctx, bob)
	if typ := frameType(t, frame); typ != proto.OutboundTypePrivateMessage {
		t.Fatalf("expected private_message frame, got %s", typ)
	}
	var msg proto.ChatMessage
	if err := json.Unmarshal(frame["data"], &msg); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if msg.AuthorName != "alice" || msg.Content != "psst" {
		t.Fatalf("unexpected private message: %+v", msg)
	}
}

func TestWSUnknownFrameType(t *testing.T) {
	w := newWSFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := w.dial(t, ctx)

	send(t, ctx, conn, "teleport", struct{}{})
	frame := recv(t, ctx, conn)
	var perr proto.Error
	if err := json.Unmarshal(frame["error"], &perr); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if perr.Reason != string(core.ErrCodeNotSupported) {
		t.Fatalf("expected not_supported, got %+v", perr)
	}
}

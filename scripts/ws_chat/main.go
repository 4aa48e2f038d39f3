// Command ws_chat is an interactive terminal client for a running
// server. Plain lines broadcast; "/w <user> <text>" sends a private
// message.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/relaychat/relaychat-server/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	base := flag.String("base", "http://localhost:8080", "server base URL")
	user := flag.String("user", "cli-user", "username")
	password := flag.String("password", "cli-password", "password")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	token, err := obtainToken(ctx, *base, *user, *password)
	if err != nil {
		return err
	}

	wsURL := strings.Replace(*base, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	loginPayload, err := json.Marshal(proto.LoginData{Token: token})
	if err != nil {
		return fmt.Errorf("marshal login: %w", err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeLogin, Data: loginPayload}); err != nil {
		return fmt.Errorf("send login: %w", err)
	}

	fmt.Printf("Connected to %s as %s\n", *base, *user)
	fmt.Println("Type to broadcast, \"/w <user> <text>\" to whisper. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		switch outbound.Type {
		case proto.OutboundTypeMessage, proto.OutboundTypePrivateMessage:
			msg, err := decodeChatMessage(outbound.Data)
			if err != nil {
				log.Printf("decode %s: %v", outbound.Type, err)
				continue
			}
			author := msg.AuthorName
			if author == "" {
				author = msg.AuthorID
			}
			if outbound.Type == proto.OutboundTypePrivateMessage {
				fmt.Printf("[whisper] %s: %s\n", author, msg.Content)
			} else {
				fmt.Printf("%s: %s\n", author, msg.Content)
			}
		case proto.OutboundTypeSuccess:
			fmt.Println("logged in")
		case proto.OutboundTypeError:
			if outbound.Error != nil {
				fmt.Printf("server rejected: %s\n", outbound.Error.Reason)
			}
		default:
			fmt.Printf("type=%s data=%v\n", outbound.Type, outbound.Data)
		}
	}
}

func decodeChatMessage(data any) (proto.ChatMessage, error) {
	var msg proto.ChatMessage
	raw, err := json.Marshal(data)
	if err != nil {
		return msg, err
	}
	err = json.Unmarshal(raw, &msg)
	return msg, err
}

func writeLoop(ctx context.Context, conn *websocket.Conn) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}

			typ, payload, err := frameForLine(text)
			if err != nil {
				fmt.Println(err)
				continue
			}
			if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}

func frameForLine(text string) (string, json.RawMessage, error) {
	if rest, isWhisper := strings.CutPrefix(text, "/w "); isWhisper {
		receiver, body, ok := strings.Cut(rest, " ")
		if !ok || receiver == "" || body == "" {
			return "", nil, errors.New("usage: /w <user> <text>")
		}
		payload, err := json.Marshal(proto.PrivateMsgData{Receiver: receiver, Content: body})
		if err != nil {
			return "", nil, fmt.Errorf("marshal private_msg: %w", err)
		}
		return proto.InboundTypePrivateMsg, payload, nil
	}

	payload, err := json.Marshal(proto.MsgData{Content: text})
	if err != nil {
		return "", nil, fmt.Errorf("marshal msg: %w", err)
	}
	return proto.InboundTypeMsg, payload, nil
}

// obtainToken registers the user, falling back to login when the name
// is already taken.
func obtainToken(ctx context.Context, base, username, password string) (string, error) {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return "", err
	}

	token, status, err := postAuth(ctx, base+"/api/auth/register", body)
	if err != nil {
		return "", err
	}
	if status == http.StatusConflict {
		token, status, err = postAuth(ctx, base+"/api/auth/login", body)
		if err != nil {
			return "", err
		}
	}
	if token == "" {
		return "", fmt.Errorf("auth failed with status %d", status)
	}
	return token, nil
}

func postAuth(ctx context.Context, url string, body []byte) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("post %s: %w", url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", resp.StatusCode, nil
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", resp.StatusCode, fmt.Errorf("decode auth response: %w", err)
	}
	return out.Token, resp.StatusCode, nil
}

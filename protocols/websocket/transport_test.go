package websocket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/xaviermilgo/solana-akinator/pkg/interfaces"
)

// mockWSServer creates a test WebSocket server.
func mockWSServer(t *testing.T, handler func(*http.Request, *websocket.Conn)) *httptest.Server {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer conn.Close()
		handler(r, conn)
	}))
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.PingInterval = 0
	return cfg
}

func TestDialer_Headers(t *testing.T) {
	headers := make(chan http.Header, 1)
	server := mockWSServer(t, func(r *http.Request, conn *websocket.Conn) {
		headers <- r.Header.Clone()
		_, _, _ = conn.ReadMessage()
	})
	defer server.Close()

	cfg := testConfig()
	cfg.ClientID = "client-123"
	cfg.ProtocolVersion = 2

	conn, err := NewDialer(cfg).Dial(context.Background(), wsURL(server))
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	select {
	case h := <-headers:
		if got := h.Get("Client-Id"); got != "client-123" {
			t.Errorf("Client-Id = %q, want %q", got, "client-123")
		}
		if got := h.Get("Protocol-Version"); got != "2" {
			t.Errorf("Protocol-Version = %q, want %q", got, "2")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for handshake")
	}
}

func TestConn_WriteAndRead(t *testing.T) {
	server := mockWSServer(t, func(_ *http.Request, conn *websocket.Conn) {
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(mt, data); err != nil {
				return
			}
		}
	})
	defer server.Close()

	conn, err := NewDialer(testConfig()).Dial(context.Background(), wsURL(server))
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	want := `{"type":"START_GAME","payload":{}}`
	if err := conn.WriteMessage([]byte(want), interfaces.MsgText); err != nil {
		t.Fatalf("WriteMessage failed: %v", err)
	}

	msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}
	if msg.Type != interfaces.MsgText {
		t.Errorf("message type = %s, want text", msg.Type)
	}
	if string(msg.Payload) != want {
		t.Errorf("payload = %q, want %q", msg.Payload, want)
	}
}

func TestDialer_Refused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := wsURL(server)
	server.Close()

	_, err := NewDialer(testConfig()).Dial(context.Background(), url)
	if !errors.Is(err, interfaces.ErrConnectionFailed) {
		t.Errorf("expected ErrConnectionFailed, got %v", err)
	}
}

func TestDialer_NotWebsocket(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := NewDialer(testConfig()).Dial(context.Background(), wsURL(server))
	if !errors.Is(err, interfaces.ErrConnectionFailed) {
		t.Errorf("expected ErrConnectionFailed, got %v", err)
	}
}

func TestConn_Close(t *testing.T) {
	server := mockWSServer(t, func(_ *http.Request, conn *websocket.Conn) {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer server.Close()

	conn, err := NewDialer(testConfig()).Dial(context.Background(), wsURL(server))
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}

	if err := conn.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	if _, err := conn.ReadMessage(); !errors.Is(err, interfaces.ErrConnectionClosed) {
		t.Errorf("ReadMessage after Close: expected ErrConnectionClosed, got %v", err)
	}
	if err := conn.WriteMessage([]byte("x"), interfaces.MsgText); !errors.Is(err, interfaces.ErrConnectionClosed) {
		t.Errorf("WriteMessage after Close: expected ErrConnectionClosed, got %v", err)
	}
}

func TestConn_PongTimeout(t *testing.T) {
	release := make(chan struct{})
	server := mockWSServer(t, func(_ *http.Request, conn *websocket.Conn) {
		// Never read, so pings are never answered.
		<-release
	})
	defer server.Close()
	defer close(release)

	cfg := DefaultConfig()
	cfg.PingInterval = 20 * time.Millisecond
	cfg.PongTimeout = 100 * time.Millisecond

	conn, err := NewDialer(cfg).Dial(context.Background(), wsURL(server))
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	errCh := make(chan error, 1)
	go func() {
		_, err := conn.ReadMessage()
		errCh <- err
	}()

	select {
	case err := <-errCh:
		if err == nil {
			t.Error("expected read error after pong timeout")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("read did not fail after pong timeout")
	}
}

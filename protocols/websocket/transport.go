// protocols/websocket/transport.go
package websocket

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/xaviermilgo/solana-akinator/pkg/interfaces"
)

var (
	_ interfaces.Dialer = (*Dialer)(nil)
	_ interfaces.Conn   = (*Conn)(nil)
)

// Config 定义websocket特有的配置
type Config struct {
	ProtocolVersion  int
	ClientID         string
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	// PingInterval of zero disables keepalive pings.
	PingInterval time.Duration
	PongTimeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		ProtocolVersion:  1,
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
		PingInterval:     30 * time.Second,
		PongTimeout:      60 * time.Second,
	}
}

type Dialer struct {
	config Config
	dialer *websocket.Dialer
}

func NewDialer(config Config) *Dialer {
	return &Dialer{
		config: config,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: config.HandshakeTimeout,
		},
	}
}

func (d *Dialer) ProtocolType() string { return "websocket" }

func (d *Dialer) Dial(ctx context.Context, url string) (interfaces.Conn, error) {
	headers := http.Header{}
	headers.Set("Protocol-Version", strconv.Itoa(d.config.ProtocolVersion))
	if d.config.ClientID != "" {
		headers.Set("Client-Id", d.config.ClientID)
	}

	conn, resp, err := d.dialer.DialContext(ctx, url, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("%w: %v (status %d)", interfaces.ErrConnectionFailed, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %v", interfaces.ErrConnectionFailed, err)
	}

	return newConn(conn, d.config), nil
}

// Conn wraps a gorilla connection with write deadlines and keepalive.
type Conn struct {
	conn   *websocket.Conn
	config Config

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

func newConn(conn *websocket.Conn, config Config) *Conn {
	c := &Conn{
		conn:   conn,
		config: config,
		done:   make(chan struct{}),
	}

	if config.PingInterval > 0 && config.PongTimeout > 0 {
		c.extendReadDeadline()
		conn.SetPongHandler(func(string) error {
			c.extendReadDeadline()
			return nil
		})
		go c.pingLoop()
	}

	return c
}

func (c *Conn) extendReadDeadline() {
	if c.config.PongTimeout > 0 && c.config.PingInterval > 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(c.config.PongTimeout))
	}
}

func (c *Conn) ReadMessage() (interfaces.Message, error) {
	wsType, data, err := c.conn.ReadMessage()
	if err != nil {
		select {
		case <-c.done:
			return interfaces.Message{}, interfaces.ErrConnectionClosed
		default:
		}
		return interfaces.Message{}, err
	}

	c.extendReadDeadline()
	return interfaces.Message{
		Payload: data,
		Type:    convertMsgType(wsType),
	}, nil
}

func convertMsgType(wsType int) interfaces.MessageType {
	switch wsType {
	case websocket.TextMessage:
		return interfaces.MsgText
	case websocket.BinaryMessage:
		return interfaces.MsgBinary
	default:
		return interfaces.MsgControl
	}
}

func (c *Conn) WriteMessage(data []byte, msgType interfaces.MessageType) error {
	select {
	case <-c.done:
		return interfaces.ErrConnectionClosed
	default:
	}

	wsType := websocket.TextMessage
	if msgType == interfaces.MsgBinary {
		wsType = websocket.BinaryMessage
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.config.WriteTimeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	}
	return c.conn.WriteMessage(wsType, data)
}

// pingLoop keeps the connection alive. A failed ping closes the underlying
// socket so the pending ReadMessage returns an error.
func (c *Conn) pingLoop() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	writeWait := c.config.WriteTimeout
	if writeWait <= 0 {
		writeWait = time.Second
	}

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(writeWait)
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				_ = c.conn.Close()
				return
			}
		}
	}
}

func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		if cerr := c.conn.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = cerr
		}
	})
	return err
}

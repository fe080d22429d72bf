// pkg/interfaces/transport.go
package interfaces

import (
	"context"
	"errors"
)

var (
	ErrConnectionFailed    = errors.New("connection failed")
	ErrConnectionClosed    = errors.New("connection closed")
	ErrUnsupportedProtocol = errors.New("unsupported protocol")
)

// Dialer opens transport connections to a server address.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
	ProtocolType() string
}

// Conn is one live bidirectional channel. ReadMessage must only be called
// from a single goroutine; WriteMessage and Close are safe to call from any.
type Conn interface {
	ReadMessage() (Message, error)
	WriteMessage(data []byte, msgType MessageType) error
	Close() error
}

type Message struct {
	Payload []byte
	Type    MessageType
}

type MessageType int

const (
	MsgText    MessageType = iota // JSON text
	MsgBinary                     // raw bytes
	MsgControl                    // ping/pong/close
)

func (t MessageType) String() string {
	switch t {
	case MsgText:
		return "text"
	case MsgBinary:
		return "binary"
	default:
		return "control"
	}
}

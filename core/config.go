package core

import (
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/xaviermilgo/solana-akinator/pkg/interfaces"
	"github.com/xaviermilgo/solana-akinator/protocols/websocket"
	"github.com/xaviermilgo/solana-akinator/utils"
)

// DefaultURL is the local development game server.
const DefaultURL = "ws://localhost:8080/ws"

// Config configures a Manager.
type Config struct {
	URL       string `mapstructure:"url"`
	Transport string `mapstructure:"transport"`
	ClientID  string `mapstructure:"client_id"`

	ProtocolVersion  int           `mapstructure:"protocol_version"`
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`
	PingInterval     time.Duration `mapstructure:"ping_interval"`
	PongTimeout      time.Duration `mapstructure:"pong_timeout"`

	// MaxQueue caps the pending queue; the oldest entry is dropped when full.
	// Zero or negative means unbounded.
	MaxQueue int `mapstructure:"max_queue"`

	Reconnect ReconnectConfig `mapstructure:"reconnect"`
}

type ReconnectConfig struct {
	Mode        string        `mapstructure:"mode"` // exponential or fixed
	BaseDelay   time.Duration `mapstructure:"base_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
	MaxAttempts int           `mapstructure:"max_attempts"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	ws := websocket.DefaultConfig()
	return Config{
		URL:              DefaultURL,
		Transport:        "websocket",
		ProtocolVersion:  ws.ProtocolVersion,
		HandshakeTimeout: ws.HandshakeTimeout,
		WriteTimeout:     ws.WriteTimeout,
		PingInterval:     ws.PingInterval,
		PongTimeout:      ws.PongTimeout,
		MaxQueue:         256,
		Reconnect: ReconnectConfig{
			Mode:        utils.ModeExponential,
			BaseDelay:   1 * time.Second,
			MaxDelay:    10 * time.Second,
			MaxAttempts: 5,
		},
	}
}

// Validate checks the config for values the manager cannot run with.
func (c Config) Validate() error {
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("%w: url: %v", ErrInvalidConfig, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("%w: url scheme must be ws or wss, got %q", ErrInvalidConfig, u.Scheme)
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("%w: write_timeout must be positive, got %s", ErrInvalidConfig, c.WriteTimeout)
	}
	if c.PingInterval > 0 && c.PongTimeout <= c.PingInterval {
		return fmt.Errorf("%w: pong_timeout (%s) must exceed ping_interval (%s)", ErrInvalidConfig, c.PongTimeout, c.PingInterval)
	}
	if _, err := c.Reconnect.Strategy(); err != nil {
		return fmt.Errorf("%w: reconnect: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Strategy builds the reconnect strategy this config describes.
func (r ReconnectConfig) Strategy() (utils.ReconnectStrategy, error) {
	return utils.NewStrategy(r.Mode, r.BaseDelay, r.MaxDelay, r.MaxAttempts)
}

// NewProtocol 根据配置创建对应的协议实例
func NewProtocol(config Config) (interfaces.Dialer, error) {
	switch config.Transport {
	case "", "websocket":
		clientID := config.ClientID
		if clientID == "" {
			clientID = uuid.NewString()
		}
		return websocket.NewDialer(websocket.Config{
			ProtocolVersion:  config.ProtocolVersion,
			ClientID:         clientID,
			HandshakeTimeout: config.HandshakeTimeout,
			WriteTimeout:     config.WriteTimeout,
			PingInterval:     config.PingInterval,
			PongTimeout:      config.PongTimeout,
		}), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProtocol, config.Transport)
	}
}

package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xaviermilgo/solana-akinator/pkg/interfaces"
	"github.com/xaviermilgo/solana-akinator/utils"
)

// Handlers are the manager's event callbacks. All of them are optional.
// They run one at a time in event order, and a panic in any of them is
// recovered and logged.
type Handlers struct {
	OnMessage func(Envelope)
	OnOpen    func()
	// OnClose fires on every transport loss, including failed dials. It does
	// not fire for an explicit Close.
	OnClose func()
	// OnExhausted fires once when the reconnect strategy gives up. The
	// manager stays disconnected for good afterwards.
	OnExhausted func()
}

type Option func(*Manager)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithDialer(dialer interfaces.Dialer) Option {
	return func(m *Manager) { m.dialer = dialer }
}

func WithStrategy(strategy utils.ReconnectStrategy) Option {
	return func(m *Manager) { m.strategy = strategy }
}

type timer interface {
	Stop() bool
}

// Manager keeps one transport to the server alive. Envelopes sent while the
// transport is not open are queued and flushed in order once it opens.
type Manager struct {
	config    Config
	handlers  Handlers
	dialer    interfaces.Dialer
	strategy  utils.ReconnectStrategy
	logger    *slog.Logger
	afterFunc func(time.Duration, func()) timer

	mu         sync.Mutex
	state      ConnState
	conn       interfaces.Conn
	out        *outbox
	gen        uint64 // bumped per dial; events from older generations are ignored
	attempt    int
	queue      *pendingQueue
	retryTimer timer
	cancelDial context.CancelFunc
	exhausted  bool
	closed     bool
}

// NewManager validates cfg and starts connecting right away.
func NewManager(cfg Config, handlers Handlers, opts ...Option) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Manager{
		config:   cfg,
		handlers: handlers,
		logger:   slog.Default(),
		state:    StateDisconnected,
		queue:    newPendingQueue(cfg.MaxQueue),
		afterFunc: func(d time.Duration, f func()) timer {
			return time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.dialer == nil {
		dialer, err := NewProtocol(cfg)
		if err != nil {
			return nil, err
		}
		m.dialer = dialer
	}
	if m.strategy == nil {
		strategy, err := cfg.Reconnect.Strategy()
		if err != nil {
			return nil, fmt.Errorf("%w: reconnect: %v", ErrInvalidConfig, err)
		}
		m.strategy = strategy
	}
	m.logger = m.logger.With("component", "connection", "url", cfg.URL)

	m.mu.Lock()
	m.connect()
	m.mu.Unlock()

	return m, nil
}

// Send hands env to the transport's writer when open and queues it
// otherwise. It never waits on the network. Transport failures are not
// returned; they surface through OnClose.
func (m *Manager) Send(env Envelope) error {
	data, err := env.encode()
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if m.state == StateOpen && m.out != nil {
		if m.out.push(frame{data: data, retry: true}) {
			m.logger.Warn("Outbound buffer full, dropped oldest message",
				"max_queue", m.config.MaxQueue)
		}
		return nil
	}

	if m.queue.push(data) {
		m.logger.Warn("Pending queue full, dropped oldest message",
			"max_queue", m.config.MaxQueue)
	}
	m.logger.Debug("Queued message until connected",
		"type", env.Type,
		"queued", m.queue.len(),
		"state", m.state)
	return nil
}

// Close shuts the manager down for good. Pending reconnects are cancelled
// before Close returns and queued messages are discarded.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.setState(StateClosing)

	m.stopRetryTimer()
	dropped := len(m.queue.drain())
	if m.out != nil {
		dropped += m.out.len()
	}
	conn := m.detachTransport()

	m.setState(StateDisconnected)
	m.mu.Unlock()

	var err error
	if conn != nil {
		err = conn.Close()
	}

	m.logger.Info("Connection manager closed", "discarded", dropped)
	if err != nil {
		return fmt.Errorf("close transport: %w", err)
	}
	return nil
}

// Status returns a snapshot of the manager's state.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	queued := m.queue.len()
	if m.out != nil {
		queued += m.out.len()
	}
	return Status{
		State:     m.state,
		Attempt:   m.attempt,
		Queued:    queued,
		Exhausted: m.exhausted,
		Closed:    m.closed,
	}
}

// connect starts a new dial. Must be called with mu held.
func (m *Manager) connect() {
	m.gen++
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelDial = cancel
	m.setState(StateConnecting)

	go m.session(ctx, m.gen, m.attempt)
}

// session owns one transport from dial until it is lost.
func (m *Manager) session(ctx context.Context, gen uint64, attempt int) {
	log := m.logger.With("conn_id", uuid.NewString())
	log.Info("Connecting to server",
		"transport", m.dialer.ProtocolType(),
		"attempt", attempt)

	conn, err := m.dialer.Dial(ctx, m.config.URL)
	if err != nil {
		log.Warn("Failed to connect to server", "error", err)
		m.handleClosed(log, gen)
		return
	}

	if !m.handleOpen(log, gen, conn) {
		_ = conn.Close()
		return
	}
	m.readLoop(log, gen, conn)
}

func (m *Manager) handleOpen(log *slog.Logger, gen uint64, conn interfaces.Conn) bool {
	m.mu.Lock()
	if !m.current(gen) {
		m.mu.Unlock()
		return false
	}

	m.stopRetryTimer()
	m.conn = conn
	m.out = newOutbox(conn, m.config.MaxQueue)
	m.attempt = 0
	m.exhausted = false
	m.setState(StateOpen)

	// Flushed frames are not retried if their write fails.
	pending := m.queue.drain()
	for _, data := range pending {
		m.out.push(frame{data: data})
	}
	out := m.out
	m.mu.Unlock()

	go out.run(func(err error, unsent []frame) {
		m.writeFailed(log, gen, err, unsent)
	})

	log.Info("Connected to server successfully", "flushing", len(pending))

	m.safeCall(log, "on_open", m.handlers.OnOpen)
	return true
}

func (m *Manager) readLoop(log *slog.Logger, gen uint64, conn interfaces.Conn) {
	for {
		msg, err := conn.ReadMessage()
		if err != nil {
			if !errors.Is(err, interfaces.ErrConnectionClosed) {
				log.Warn("Connection lost", "error", err)
			}
			m.handleClosed(log, gen)
			return
		}

		if msg.Type != interfaces.MsgText {
			log.Warn("Dropping non-text frame",
				"type", msg.Type,
				"size", len(msg.Payload))
			continue
		}

		env, err := decodeEnvelope(msg.Payload)
		if err != nil {
			log.Error("Dropping malformed frame",
				"error", err,
				"raw_data", string(msg.Payload))
			continue
		}

		if !m.isCurrent(gen) {
			return
		}
		if m.handlers.OnMessage != nil {
			m.safeCall(log, "on_message", func() { m.handlers.OnMessage(env) })
		}
	}
}

func (m *Manager) handleClosed(log *slog.Logger, gen uint64) {
	m.mu.Lock()
	if !m.current(gen) {
		m.mu.Unlock()
		return
	}
	conn := m.detachTransport()
	m.setState(StateDisconnected)
	m.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	m.safeCall(log, "on_close", m.handlers.OnClose)

	m.mu.Lock()
	if !m.current(gen) {
		m.mu.Unlock()
		return
	}

	delay, ok := m.strategy.NextDelay(m.attempt)
	if !ok {
		m.exhausted = true
		attempts := m.attempt
		m.mu.Unlock()

		log.Error("Reconnect attempts exhausted, giving up", "attempts", attempts)
		m.safeCall(log, "on_exhausted", m.handlers.OnExhausted)
		return
	}

	m.attempt++
	log.Info("Scheduling reconnect", "attempt", m.attempt, "delay", delay)
	m.retryTimer = m.afterFunc(delay, func() { m.reconnect(gen) })
	m.mu.Unlock()
}

// writeFailed drops the transport after a failed write. Unsent frames go back
// to the front of the pending queue, except a failed flush frame which is
// dropped. The read side then sees the closed conn and reconnects.
func (m *Manager) writeFailed(log *slog.Logger, gen uint64, err error, unsent []frame) {
	m.mu.Lock()
	if !m.current(gen) {
		m.mu.Unlock()
		return
	}

	later := m.queue.drain()
	requeued, dropped := 0, 0
	for i, f := range unsent {
		if i == 0 && !f.retry {
			dropped++
			continue
		}
		m.queue.push(f.data)
		requeued++
	}
	for _, data := range later {
		m.queue.push(data)
	}

	conn := m.detachTransport()
	m.setState(StateDisconnected)
	m.mu.Unlock()

	log.Warn("Failed to send message, dropping transport",
		"error", err,
		"requeued", requeued,
		"dropped", dropped)
	if conn != nil {
		_ = conn.Close()
	}
}

func (m *Manager) reconnect(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.current(gen) || m.state != StateDisconnected {
		return
	}
	m.retryTimer = nil
	m.connect()
}

// current reports whether events from gen may still act. Must be called
// with mu held.
func (m *Manager) current(gen uint64) bool {
	return !m.closed && gen == m.gen
}

func (m *Manager) isCurrent(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current(gen)
}

func (m *Manager) stopRetryTimer() {
	if m.retryTimer != nil {
		m.retryTimer.Stop()
		m.retryTimer = nil
	}
}

// detachTransport cancels any in-flight dial, stops the writer and returns
// the live conn, if any, for the caller to close once mu is released.
// Must be called with mu held.
func (m *Manager) detachTransport() interfaces.Conn {
	if m.cancelDial != nil {
		m.cancelDial()
		m.cancelDial = nil
	}
	if m.out != nil {
		m.out.stop()
		m.out = nil
	}
	conn := m.conn
	m.conn = nil
	return conn
}

// setState must be called with mu held.
func (m *Manager) setState(newState ConnState) {
	oldState := m.state
	if oldState == newState {
		return
	}
	m.state = newState
	m.logger.Debug("State changed",
		"from", oldState,
		"to", newState)
}

func (m *Manager) safeCall(log *slog.Logger, name string, fn func()) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error("Callback panicked", "callback", name, "panic", r)
		}
	}()
	fn()
}

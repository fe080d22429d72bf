package game

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/xaviermilgo/solana-akinator/core"
)

var (
	ErrEmptyHandle = errors.New("twitter handle is empty")
	ErrNotAttached = errors.New("session is not attached to a connection")
)

const (
	maxProgress     = 5
	defaultGreeting = "I can guess your wallet address from your Twitter handle!"
)

// Sender is the outbound half of a server connection.
type Sender interface {
	Send(env core.Envelope) error
}

// Snapshot is everything a front end needs to render the game.
type Snapshot struct {
	Connected bool
	Exhausted bool
	Mood      Mood
	Message   string
	Handle    string
	Progress  []string
	Result    *WalletResult
}

// Session tracks game state from server envelopes and turns player actions
// into outbound envelopes.
type Session struct {
	logger   *slog.Logger
	onChange func(Snapshot)

	mu     sync.Mutex
	sender Sender
	state  Snapshot
}

// NewSession creates a session. onChange, if set, receives a snapshot after
// every state change.
func NewSession(logger *slog.Logger, onChange func(Snapshot)) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		logger:   logger.With("component", "game"),
		onChange: onChange,
		state: Snapshot{
			Mood:    MoodIdle,
			Message: defaultGreeting,
		},
	}
}

// Attach sets the connection used by Start and Submit.
func (s *Session) Attach(sender Sender) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sender = sender
}

// Handlers returns connection callbacks that feed this session.
func (s *Session) Handlers() core.Handlers {
	return core.Handlers{
		OnMessage: s.HandleEnvelope,
		OnOpen: func() {
			s.update(func(st *Snapshot) {
				st.Connected = true
				st.Exhausted = false
			})
		},
		OnClose: func() {
			s.update(func(st *Snapshot) { st.Connected = false })
		},
		OnExhausted: func() {
			s.update(func(st *Snapshot) {
				st.Connected = false
				st.Exhausted = true
			})
		},
	}
}

// Start asks the server for a new game.
func (s *Session) Start() error {
	env, err := core.NewEnvelope(TypeStartGame, struct{}{})
	if err != nil {
		return err
	}
	if err := s.send(env); err != nil {
		return err
	}
	s.update(func(st *Snapshot) {
		st.Progress = nil
		st.Result = nil
	})
	return nil
}

// Submit sends the player's Twitter handle for guessing.
func (s *Session) Submit(handle string) error {
	handle = NormalizeHandle(handle)
	if handle == "" {
		return ErrEmptyHandle
	}

	env, err := core.NewEnvelope(TypeUserInput, UserInputPayload{Twitter: handle})
	if err != nil {
		return err
	}
	if err := s.send(env); err != nil {
		return err
	}
	s.update(func(st *Snapshot) {
		st.Handle = handle
		st.Progress = nil
		st.Result = nil
	})
	return nil
}

// NormalizeHandle strips '@' and surrounding whitespace.
func NormalizeHandle(handle string) string {
	return strings.TrimSpace(strings.ReplaceAll(handle, "@", ""))
}

// HandleEnvelope applies one server message to the session.
func (s *Session) HandleEnvelope(env core.Envelope) {
	switch env.Type {
	case TypeJinnState:
		var p JinnStatePayload
		if !s.decode(env, &p) {
			return
		}
		s.update(func(st *Snapshot) {
			st.Mood = ParseMood(p.State)
			if p.Message != "" {
				st.Message = p.Message
			}
		})
	case TypeGameState:
		var p GameStatePayload
		if !s.decode(env, &p) {
			return
		}
		s.update(func(st *Snapshot) {
			st.Mood = ParseMood(p.JinnState)
			if p.Twitter != "" {
				st.Handle = p.Twitter
			}
		})
	case TypeProgressUpdate:
		var p ProgressPayload
		if !s.decode(env, &p) {
			return
		}
		s.update(func(st *Snapshot) {
			st.Progress = append(st.Progress, p.Message)
			if len(st.Progress) > maxProgress {
				st.Progress = st.Progress[len(st.Progress)-maxProgress:]
			}
		})
	case TypeWalletResult:
		var r WalletResult
		if !s.decode(env, &r) {
			return
		}
		s.update(func(st *Snapshot) { st.Result = &r })
	default:
		s.logger.Debug("Unknown message type received", "type", env.Type)
	}
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) decode(env core.Envelope, v any) bool {
	if err := env.Decode(v); err != nil {
		s.logger.Warn("Ignoring message with bad payload",
			"type", env.Type,
			"error", err)
		return false
	}
	return true
}

func (s *Session) send(env core.Envelope) error {
	s.mu.Lock()
	sender := s.sender
	s.mu.Unlock()

	if sender == nil {
		return ErrNotAttached
	}
	if err := sender.Send(env); err != nil {
		return fmt.Errorf("send %s: %w", env.Type, err)
	}
	return nil
}

func (s *Session) update(fn func(*Snapshot)) {
	s.mu.Lock()
	fn(&s.state)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if s.onChange != nil {
		s.onChange(snap)
	}
}

func (s *Session) snapshotLocked() Snapshot {
	snap := s.state
	snap.Progress = append([]string(nil), s.state.Progress...)
	if s.state.Result != nil {
		r := *s.state.Result
		r.Addresses = append([]string(nil), r.Addresses...)
		r.Sources = append([]string(nil), r.Sources...)
		snap.Result = &r
	}
	return snap
}

package utils

import (
	"fmt"
	"time"
)

// ReconnectStrategy decides how long to wait before the next reconnect.
// attempt is zero-based: 0 is the first retry after a failure.
type ReconnectStrategy interface {
	NextDelay(attempt int) (time.Duration, bool)
}

const (
	ModeExponential = "exponential"
	ModeFixed       = "fixed"
)

// ExponentialBackoff doubles the delay per attempt up to MaxDelay and gives
// up after MaxAttempts retries. MaxAttempts <= 0 retries forever.
type ExponentialBackoff struct {
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	MaxAttempts int
}

func NewExponentialBackoff() *ExponentialBackoff {
	return &ExponentialBackoff{
		BaseDelay:   1 * time.Second,
		MaxDelay:    10 * time.Second,
		MaxAttempts: 5,
	}
}

func (e *ExponentialBackoff) NextDelay(attempt int) (time.Duration, bool) {
	if e.MaxAttempts > 0 && attempt >= e.MaxAttempts {
		return 0, false
	}

	delay := e.BaseDelay
	for i := 0; i < attempt; i++ {
		if delay >= e.MaxDelay {
			break
		}
		delay *= 2
	}
	if delay > e.MaxDelay {
		delay = e.MaxDelay
	}
	return delay, true
}

// FixedDelay waits the same amount of time before every retry and never
// gives up.
type FixedDelay struct {
	Delay time.Duration
}

func NewFixedDelay() *FixedDelay {
	return &FixedDelay{Delay: 3 * time.Second}
}

func (f *FixedDelay) NextDelay(int) (time.Duration, bool) {
	return f.Delay, true
}

// NewStrategy builds a strategy from its configured mode name.
func NewStrategy(mode string, base, max time.Duration, attempts int) (ReconnectStrategy, error) {
	switch mode {
	case "", ModeExponential:
		if base <= 0 || max < base {
			return nil, fmt.Errorf("invalid backoff delays: base %s, max %s", base, max)
		}
		return &ExponentialBackoff{BaseDelay: base, MaxDelay: max, MaxAttempts: attempts}, nil
	case ModeFixed:
		if base <= 0 {
			return nil, fmt.Errorf("invalid fixed delay: %s", base)
		}
		return &FixedDelay{Delay: base}, nil
	default:
		return nil, fmt.Errorf("unknown reconnect mode: %q", mode)
	}
}

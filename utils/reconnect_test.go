package utils

import (
	"testing"
	"time"
)

func TestExponentialBackoff_NextDelay(t *testing.T) {
	b := NewExponentialBackoff()

	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		10 * time.Second,
	}
	for attempt, w := range want {
		got, ok := b.NextDelay(attempt)
		if !ok {
			t.Fatalf("attempt %d: expected retry to be allowed", attempt)
		}
		if got != w {
			t.Errorf("attempt %d: got %s, want %s", attempt, got, w)
		}
	}

	if _, ok := b.NextDelay(5); ok {
		t.Error("expected no retry after MaxAttempts")
	}
}

func TestExponentialBackoff_Unlimited(t *testing.T) {
	b := &ExponentialBackoff{BaseDelay: time.Second, MaxDelay: 5 * time.Second}

	got, ok := b.NextDelay(1000)
	if !ok {
		t.Fatal("expected unlimited retries")
	}
	if got != 5*time.Second {
		t.Errorf("got %s, want cap of 5s", got)
	}
}

func TestFixedDelay_NextDelay(t *testing.T) {
	f := NewFixedDelay()
	for _, attempt := range []int{0, 1, 50, 10000} {
		got, ok := f.NextDelay(attempt)
		if !ok || got != 3*time.Second {
			t.Errorf("attempt %d: got (%s, %v), want (3s, true)", attempt, got, ok)
		}
	}
}

func TestNewStrategy(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		base    time.Duration
		max     time.Duration
		wantErr bool
	}{
		{"default mode", "", time.Second, 10 * time.Second, false},
		{"exponential", ModeExponential, time.Second, 10 * time.Second, false},
		{"fixed", ModeFixed, 3 * time.Second, 0, false},
		{"max below base", ModeExponential, 10 * time.Second, time.Second, true},
		{"zero fixed delay", ModeFixed, 0, 0, true},
		{"unknown mode", "linear", time.Second, time.Second, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStrategy(tt.mode, tt.base, tt.max, 5)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s == nil {
				t.Fatal("expected strategy")
			}
		})
	}
}

package core

import (
	"errors"
	"testing"
)

func TestDecodeEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"object payload", `{"type":"JINN_STATE","payload":{"state":"idle"}}`, "JINN_STATE", false},
		{"missing payload", `{"type":"PING"}`, "PING", false},
		{"extra fields", `{"type":"GAME_STATE","payload":{},"id":7}`, "GAME_STATE", false},
		{"missing type", `{"payload":{}}`, "", true},
		{"type not a string", `{"type":5,"payload":{}}`, "", true},
		{"not json", `hello`, "", true},
		{"json array", `[{"type":"X"}]`, "", true},
		{"json null", `null`, "", true},
		{"empty", ``, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := decodeEnvelope([]byte(tt.input))
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedFrame) {
					t.Errorf("expected ErrMalformedFrame, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if env.Type != tt.want {
				t.Errorf("type = %q, want %q", env.Type, tt.want)
			}
		})
	}
}

func TestEnvelope_PayloadIsOpaque(t *testing.T) {
	raw := `{"type":"WALLET_RESULT","payload":{"addresses":["a","b"],"confidence":80,"nested":{"x":[1,2]}}}`

	env, err := decodeEnvelope([]byte(raw))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	data, err := env.encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if string(data) != raw {
		t.Errorf("re-encoded = %s, want %s", data, raw)
	}
}

func TestNewEnvelope(t *testing.T) {
	env, err := NewEnvelope("USER_INPUT", map[string]string{"twitter": "abc"})
	if err != nil {
		t.Fatalf("NewEnvelope failed: %v", err)
	}

	var payload struct {
		Twitter string `json:"twitter"`
	}
	if err := env.Decode(&payload); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if payload.Twitter != "abc" {
		t.Errorf("twitter = %q, want abc", payload.Twitter)
	}

	if _, err := NewEnvelope("BAD", make(chan int)); err == nil {
		t.Error("expected marshal error for unsupported payload")
	}
}

func TestEnvelope_DecodeEmptyPayload(t *testing.T) {
	env := Envelope{Type: "START_GAME"}
	var v map[string]any
	if err := env.Decode(&v); err == nil {
		t.Error("expected error decoding empty payload")
	}
}

package core

// ConnState is the connection manager's lifecycle state.
type ConnState string

const (
	StateDisconnected ConnState = "disconnected"
	StateConnecting   ConnState = "connecting"
	StateOpen         ConnState = "open"
	StateClosing      ConnState = "closing"
)

func (s ConnState) String() string { return string(s) }

// Status is a point-in-time view of the manager.
type Status struct {
	State     ConnState
	Attempt   int
	Queued    int
	Exhausted bool
	Closed    bool
}

package session

// SessionState is the connection lifecycle state of a controller. Exactly one
// value is active at a time; transitions are the only mutation path.
type SessionState string

const (
	StateDisconnected SessionState = "disconnected"
	StateConnecting   SessionState = "connecting"
	StateConnected    SessionState = "connected"
	StateError        SessionState = "error"
)

func (s SessionState) String() string { return string(s) }

// IsIdle reports whether the state is one of the externally equivalent idle
// states. Error keeps its own value so consumers can distinguish it visually.
func (s SessionState) IsIdle() bool {
	return s == StateDisconnected || s == StateError
}

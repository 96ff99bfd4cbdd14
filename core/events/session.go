package events

const (
	// KindSessionStateChanged identifies connection state transitions.
	KindSessionStateChanged Kind = "session.state_changed"
)

// SessionStateChanged marks a connection state transition.
type SessionStateChanged struct {
	Base
	State string
}

// NewSessionStateChanged creates a session state change event.
func NewSessionStateChanged(state string) SessionStateChanged {
	return SessionStateChanged{Base: NewBase(KindSessionStateChanged), State: state}
}

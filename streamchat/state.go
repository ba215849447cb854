package streamchat

// ConnectionState represents the current state of the connection manager.
type ConnectionState int32

const (
	// StateIdle means Start has not been called yet.
	StateIdle ConnectionState = iota

	// StateConnecting means a transport is being dialed.
	StateConnecting

	// StateAuthHandshake means the transport is open and the token frame is being queued.
	StateAuthHandshake

	// StateOpen means the connection is usable for sending.
	StateOpen

	// StateReconnecting means the transport closed and a reconnect is scheduled.
	StateReconnecting

	// StateClosed means the client has been explicitly torn down.
	StateClosed
)

// String returns the string representation of a ConnectionState.
func (s ConnectionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateAuthHandshake:
		return "auth_handshake"
	case StateOpen:
		return "open"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// pending reports whether the transport may still reach StateOpen without a reconnect.
func (s ConnectionState) pending() bool {
	return s == StateIdle || s == StateConnecting || s == StateAuthHandshake
}

// StateEvent represents a state change event.
type StateEvent struct {
	OldState ConnectionState
	NewState ConnectionState
	Error    error // Optional error that caused the state change
}

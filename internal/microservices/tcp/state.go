package tcp

import "sync/atomic"

// State is a step in the server or client lifecycle. Both only ever move forward.
type State int32

const (
	StateIdle State = iota
	// server
	StateListening
	StateAccepting
	StateServing
	// client
	StateConnecting
	StateSending
	StateReceiving
	// both
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateAccepting:
		return "accepting"
	case StateServing:
		return "serving"
	case StateConnecting:
		return "connecting"
	case StateSending:
		return "sending"
	case StateReceiving:
		return "receiving"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// lifecycle is embedded by TCPServer and TCPClient so tests can watch the state
// from another goroutine
type lifecycle struct {
	state atomic.Int32
}

func (l *lifecycle) State() State {
	return State(l.state.Load())
}

func (l *lifecycle) setState(s State) {
	l.state.Store(int32(s))
}

package lspeasy

// State is the lifecycle state of a Server session. States only move
// forward: Init, Running, ShuttingDown, Terminated.
type State int32

const (
	// StateInit covers construction and the initialize handshake.
	StateInit State = iota
	// StateRunning means inbound messages are being dispatched.
	StateRunning
	// StateShuttingDown is entered on the shutdown request; nothing else is
	// dispatched afterwards.
	StateShuttingDown
	// StateTerminated means the connection has been torn down.
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting-down"
	case StateTerminated:
		return "terminated"
	}
	return "unknown"
}

// Package transport provides the byte-stream transports an lspeasy server can
// run on: stdio, TCP, Unix domain sockets, named pipes, WebSocket, Node.js IPC
// and an in-memory pipe for tests. Framing happens one layer up, in jsonrpc.
package transport

import "io"

// Transport is a bidirectional byte stream. Close must unblock a pending Read.
type Transport interface {
	io.ReadWriteCloser
}

// Func lazily creates a Transport, e.g. after accepting a connection.
type Func func() (Transport, error)

package transport

import (
	"fmt"
	"net"
	"os"
)

type netTransport struct {
	net.Conn
	// path is removed on Close for listener-created Unix sockets.
	path string
}

func (t *netTransport) Close() error {
	err := t.Conn.Close()
	if t.path != "" {
		os.Remove(t.path)
	}
	return err
}

// Conn wraps an established network connection.
func Conn(c net.Conn) Transport {
	return &netTransport{Conn: c}
}

// ListenTCP listens on addr and returns the first accepted connection. An LSP
// server serves a single client, so the listener is closed afterwards.
func ListenTCP(addr string) (Transport, error) {
	return acceptOne("tcp", addr, "")
}

// ListenSocket listens on a Unix domain socket at path and returns the first
// accepted connection. A stale socket file at path is removed first.
func ListenSocket(path string) (Transport, error) {
	os.Remove(path)
	return acceptOne("unix", path, path)
}

// ListenPipe listens on a named pipe. On non-Windows platforms named pipes
// are Unix domain sockets.
func ListenPipe(name string) (Transport, error) {
	return ListenSocket(name)
}

// DialPipe connects to an existing named pipe or Unix domain socket.
func DialPipe(name string) (Transport, error) {
	c, err := net.Dial("unix", name)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", name, err)
	}
	return Conn(c), nil
}

func acceptOne(network, addr, cleanup string) (Transport, error) {
	ln, err := net.Listen(network, addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s %s: %w", network, addr, err)
	}
	defer ln.Close()
	c, err := ln.Accept()
	if err != nil {
		return nil, fmt.Errorf("accepting on %s %s: %w", network, addr, err)
	}
	return &netTransport{Conn: c, path: cleanup}, nil
}

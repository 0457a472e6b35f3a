package transport

import (
	"io"
	"os"
)

type stdioTransport struct {
	in  io.ReadCloser
	out io.WriteCloser
}

// Stdio returns a Transport backed by os.Stdin and os.Stdout. Where the
// platform allows, stdin is switched to non-blocking mode so that Close
// interrupts a pending Read even while the client keeps its end open.
func Stdio() Transport {
	return &stdioTransport{in: pollable(os.Stdin.Fd(), "/dev/stdin"), out: os.Stdout}
}

// NodeIPC returns the transport used when a Node.js parent (e.g. the VS Code
// extension host) spawns the server with IPC: the parent writes to the
// child's fd 3 and reads the child's stdout.
func NodeIPC() Transport {
	return &stdioTransport{in: pollable(3, "node-ipc-in"), out: os.Stdout}
}

func (s *stdioTransport) Read(p []byte) (int, error)  { return s.in.Read(p) }
func (s *stdioTransport) Write(p []byte) (int, error) { return s.out.Write(p) }

// Close closes only the input side; stdout stays open so that anything
// flushed during teardown still reaches the client.
func (s *stdioTransport) Close() error {
	return s.in.Close()
}

//go:build unix

package transport

import (
	"os"
	"syscall"
	"testing"
	"time"
)

func TestPollableCloseInterruptsRead(t *testing.T) {
	// A pipe created without O_NONBLOCK, the way a parent hands stdin to a
	// child process.
	var fds [2]int
	if err := syscall.Pipe(fds[:]); err != nil {
		t.Fatalf("pipe: %v", err)
	}
	writer := os.NewFile(uintptr(fds[1]), "stdin-writer")
	t.Cleanup(func() { writer.Close() })

	tr := &stdioTransport{in: pollable(uintptr(fds[0]), "stdin"), out: writer}
	if _, err := writer.Write([]byte("x")); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 8)
	if n, err := tr.Read(buf); err != nil || string(buf[:n]) != "x" {
		t.Fatalf("Read = %q, %v", buf[:n], err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := tr.Read(buf)
		done <- err
	}()
	time.Sleep(20 * time.Millisecond)
	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	select {
	case err := <-done:
		if err == nil {
			t.Error("Read after Close returned no error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not interrupt a Read while the writer stayed open")
	}
}

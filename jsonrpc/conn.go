// Package jsonrpc implements JSON-RPC 2.0 messaging over Content-Length
// framed streams, as specified by the LSP base protocol.
//
// A Conn owns two background goroutines: a reader that decodes inbound frames
// into an ordered queue consumed with Next, and a writer that drains an
// outbound queue filled by Send. Close joins both.
package jsonrpc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// ErrClosed is returned by Send and Next once the connection is closed.
var ErrClosed = errors.New("jsonrpc: connection closed")

const queueSize = 64

// readerGrace bounds how long Close waits for the reader after closing the
// stream. A reader stuck in a Read the closer cannot interrupt is left to
// exit when that Read returns.
var readerGrace = time.Second

// Conn is a message-level JSON-RPC connection. Inbound messages are delivered
// strictly in arrival order; Send is safe for concurrent use.
type Conn struct {
	codec  *Codec
	closer io.Closer

	in      chan Message
	out     chan Message
	readErr error // set by the reader before in is closed

	writeMu  sync.Mutex
	writeErr error

	started    atomic.Bool
	startOnce  sync.Once
	closeOnce  sync.Once
	closeErr   error
	done       chan struct{}
	readerDone chan struct{}
	writerDone chan struct{}
}

// NewConn creates a connection over codec. closer, if non-nil, is closed
// during Close to unblock the background reader.
func NewConn(codec *Codec, closer io.Closer) *Conn {
	return &Conn{
		codec:      codec,
		closer:     closer,
		in:         make(chan Message, queueSize),
		out:        make(chan Message, queueSize),
		done:       make(chan struct{}),
		readerDone: make(chan struct{}),
		writerDone: make(chan struct{}),
	}
}

// Start launches the background reader and writer. It is idempotent.
func (c *Conn) Start() {
	c.startOnce.Do(func() {
		c.started.Store(true)
		go c.readLoop()
		go c.writeLoop()
	})
}

func (c *Conn) readLoop() {
	defer close(c.readerDone)
	defer close(c.in)
	for {
		data, err := c.codec.Read()
		if err != nil {
			select {
			case <-c.done:
				c.readErr = ErrClosed
			default:
				c.readErr = err
			}
			return
		}
		msg, err := DecodeMessage(data)
		if err != nil {
			continue
		}
		select {
		case c.in <- msg:
		case <-c.done:
			c.readErr = ErrClosed
			return
		}
	}
}

func (c *Conn) writeLoop() {
	defer close(c.writerDone)
	for {
		select {
		case msg := <-c.out:
			c.write(msg)
		case <-c.done:
			// Flush whatever was queued before Close.
			for {
				select {
				case msg := <-c.out:
					c.write(msg)
				default:
					return
				}
			}
		}
	}
}

func (c *Conn) write(msg Message) {
	if c.writeError() != nil {
		return
	}
	data, err := json.Marshal(msg)
	if err == nil {
		err = c.codec.Write(data)
	}
	if err != nil {
		c.writeMu.Lock()
		c.writeErr = err
		c.writeMu.Unlock()
	}
}

func (c *Conn) writeError() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.writeErr
}

// Next blocks until the next inbound message arrives. It returns io.EOF when
// the peer closed the stream, ErrClosed after Close, ctx.Err() when ctx ends,
// and any other read failure as is.
func (c *Conn) Next(ctx context.Context) (Message, error) {
	select {
	case msg, ok := <-c.in:
		if !ok {
			return nil, c.readErr
		}
		return msg, nil
	case <-c.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Send enqueues msg for the writer goroutine. Writes happen asynchronously,
// so a write failure surfaces on the Send calls that follow it.
func (c *Conn) Send(msg Message) error {
	if err := c.writeError(); err != nil {
		return err
	}
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.out <- msg:
		return nil
	case <-c.done:
		return ErrClosed
	}
}

// Notify sends a notification.
func (c *Conn) Notify(method string, params interface{}) error {
	n, err := NewNotification(method, params)
	if err != nil {
		return err
	}
	return c.Send(n)
}

// Reply sends the response to the request with the given id.
func (c *Conn) Reply(id ID, result interface{}, err error) error {
	return c.Send(NewResponse(id, result, err))
}

// Close stops the connection: queued outbound messages are flushed, the
// underlying stream is closed, and both background goroutines are joined.
// The reader is joined for at most readerGrace. Calling Close more than once
// is safe.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		started := c.started.Load()
		if started {
			<-c.writerDone
		}
		if c.closer != nil {
			c.closeErr = c.closer.Close()
		}
		if started {
			timer := time.NewTimer(readerGrace)
			select {
			case <-c.readerDone:
			case <-timer.C:
			}
			timer.Stop()
		}
	})
	return c.closeErr
}

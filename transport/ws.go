package transport

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"golang.org/x/net/websocket"
)

// ListenWebSocket starts an HTTP server with WebSocket upgrade on addr and
// returns the first WebSocket connection as a transport. Used by Monaco,
// Theia, and other web-based editors.
func ListenWebSocket(addr string) (Transport, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}
	return serveWebSocket(ln), nil
}

func serveWebSocket(ln net.Listener) Transport {
	connCh := make(chan *websocket.Conn, 1)
	closed := make(chan struct{})

	handler := websocket.Handler(func(ws *websocket.Conn) {
		select {
		case connCh <- ws:
		default:
			// Only one client per server.
			ws.Close()
			return
		}
		// The connection is closed when the handler returns.
		<-closed
	})

	srv := &http.Server{Handler: handler}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("websocket server stopped", "addr", ln.Addr().String(), "error", err)
		}
	}()

	return &wsTransport{conn: <-connCh, srv: srv, closed: closed}
}

type wsTransport struct {
	conn   *websocket.Conn
	srv    *http.Server
	closed chan struct{}

	// pending holds the unread tail of the last received frame.
	pending []byte

	closeOnce sync.Once
}

func (w *wsTransport) Read(p []byte) (int, error) {
	if len(w.pending) == 0 {
		var msg []byte
		if err := websocket.Message.Receive(w.conn, &msg); err != nil {
			return 0, err
		}
		w.pending = msg
	}
	n := copy(p, w.pending)
	w.pending = w.pending[n:]
	return n, nil
}

func (w *wsTransport) Write(p []byte) (int, error) {
	if err := websocket.Message.Send(w.conn, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *wsTransport) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.closed)
		err = w.conn.Close()
		w.srv.Close()
	})
	return err
}

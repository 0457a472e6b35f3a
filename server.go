package lspeasy

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/gossip-lsp/lspeasy/document"
	"github.com/gossip-lsp/lspeasy/jsonrpc"
	"github.com/gossip-lsp/lspeasy/middleware"
	"github.com/gossip-lsp/lspeasy/protocol"
	"github.com/gossip-lsp/lspeasy/treesitter"
)

const defaultExitTimeout = 30 * time.Second

// Conn is the message-level connection a Server runs on. *jsonrpc.Conn
// implements it.
type Conn interface {
	// Next blocks until the next inbound message. Any error ends the session.
	Next(ctx context.Context) (jsonrpc.Message, error)
	// Send enqueues an outbound message; it must be safe for concurrent use.
	Send(msg jsonrpc.Message) error
	// Close stops the connection and joins its background goroutines.
	Close() error
}

// Server is one LSP session. Create it with NewServer and run it with Serve;
// a Server can be served only once.
type Server struct {
	id      string
	logger  *slog.Logger
	caps    protocol.ServerCapabilities
	info    *protocol.ServerInfo
	handler Handler

	middlewares []middleware.Middleware
	exitTimeout time.Duration

	docs         *document.Store
	ts           *treesitter.Manager
	configHolder configHolder

	state  atomic.Int32
	served atomic.Bool

	mu       sync.RWMutex
	conn     Conn
	params   json.RawMessage
	folders  []protocol.WorkspaceFolder
	teardown sync.Once
}

// NewServer creates a Server that advertises caps during the handshake and
// routes messages to h. caps is passed to the client as is; it is not
// checked against the slots h implements.
func NewServer(caps protocol.ServerCapabilities, h Handler, opts ...Option) *Server {
	if h == nil {
		h = NopHandler{}
	}
	s := &Server{
		id:          uuid.NewString(),
		logger:      slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})),
		caps:        caps,
		handler:     h,
		exitTimeout: defaultExitTimeout,
		docs:        document.NewStore(),
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.With("session", s.id)
	return s
}

// ID returns the session id attached to every log record of this server.
func (s *Server) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Server) State() State { return State(s.state.Load()) }

func (s *Server) setState(st State) {
	old := State(s.state.Swap(int32(st)))
	if old != st {
		s.logger.Debug("state changed", "from", old, "to", st)
	}
}

// Logger returns the server's logger.
func (s *Server) Logger() *slog.Logger { return s.logger }

// Documents returns the store of open documents.
func (s *Server) Documents() *document.Store { return s.docs }

// TreeSitter returns the tree-sitter manager, or nil if WithTreeSitter was
// not used.
func (s *Server) TreeSitter() *treesitter.Manager { return s.ts }

// InitializeParams returns the raw params of the client's initialize
// request, or nil before the handshake.
func (s *Server) InitializeParams() json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// WorkspaceFolders returns the folders negotiated during initialize. When
// the client sent only a rootUri, it is reported as the single folder.
func (s *Server) WorkspaceFolders() []protocol.WorkspaceFolder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]protocol.WorkspaceFolder, len(s.folders))
	copy(out, s.folders)
	return out
}

// FolderFor returns the innermost workspace folder containing uri, or nil.
// A folder contains uri when uri equals the folder URI or continues it past a
// path separator, so file:///w/ab is not inside file:///w/a.
func (s *Server) FolderFor(uri protocol.DocumentURI) *protocol.WorkspaceFolder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best *protocol.WorkspaceFolder
	for i := range s.folders {
		prefix := string(s.folders[i].URI)
		if inFolder(string(uri), prefix) && (best == nil || len(prefix) > len(best.URI)) {
			f := s.folders[i]
			best = &f
		}
	}
	return best
}

func inFolder(uri, folder string) bool {
	if uri == folder {
		return true
	}
	if !strings.HasSuffix(folder, "/") {
		folder += "/"
	}
	return strings.HasPrefix(uri, folder)
}

func (s *Server) connection() Conn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn
}

// send hands msg to the connection. It is safe for concurrent use.
func (s *Server) send(msg jsonrpc.Message) error {
	conn := s.connection()
	if conn == nil {
		return fmt.Errorf("%w: server is not connected", ErrTransportSend)
	}
	if err := conn.Send(msg); err != nil {
		return fmt.Errorf("%w: %w", ErrTransportSend, err)
	}
	return nil
}

// run drives one session over conn: handshake, Init, the dispatch loop and
// teardown. Teardown happens exactly once whatever the outcome.
func (s *Server) run(ctx context.Context, conn Conn) error {
	if !s.served.CompareAndSwap(false, true) {
		return fmt.Errorf("lspeasy: server %s was already served", s.id)
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	defer s.close()

	if err := s.handshake(ctx); err != nil {
		return err
	}
	s.startConfig()

	if err := s.handler.Init(s.newContext(ctx)); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	s.setState(StateRunning)
	s.logger.Info("server running")

	return s.loop(ctx)
}

func (s *Server) close() {
	s.teardown.Do(func() {
		if s.configHolder != nil {
			s.configHolder.close()
		}
		if err := s.connection().Close(); err != nil {
			s.logger.Debug("closing connection", "error", err)
		}
		if s.ts != nil {
			s.ts.Close()
		}
		s.setState(StateTerminated)
		s.logger.Info("server terminated")
	})
}

package lspeasy

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gossip-lsp/lspeasy/middleware"
	"github.com/gossip-lsp/lspeasy/protocol"
	"github.com/gossip-lsp/lspeasy/transport"
	"github.com/gossip-lsp/lspeasy/treesitter"
)

// Option configures a Server during construction.
type Option func(*Server)

// WithLogger sets the process-side logger. Records go to stderr by default;
// never point a logger at stdout when serving over stdio.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMiddleware wraps the per-message dispatch step. The first middleware
// is the outermost.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(s *Server) {
		s.middlewares = append(s.middlewares, mws...)
	}
}

// WithTreeSitter parses every open document whose language is registered in
// cfg and re-parses it incrementally on each change. Trees are available
// through TreeFor and Context.Tree.
func WithTreeSitter(cfg treesitter.Config) Option {
	return func(s *Server) {
		s.ts = treesitter.NewManager(cfg, s.docs)
	}
}

// WithServerInfo sets the serverInfo sent in the initialize result.
func WithServerInfo(name, version string) Option {
	return func(s *Server) {
		s.info = &protocol.ServerInfo{Name: name, Version: version}
	}
}

// WithExitTimeout bounds how long the server waits for exit after
// answering shutdown. The default is 30 seconds.
func WithExitTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.exitTimeout = d
		}
	}
}

// ServeOption configures how a Server is connected.
type ServeOption func(*serveConfig)

type serveConfig struct {
	conn      Conn
	transport transport.Transport
	factory   transport.Func
	err       error
}

// WithStdio serves over stdin and stdout. This is the default.
func WithStdio() ServeOption {
	return func(cfg *serveConfig) {
		cfg.transport = transport.Stdio()
	}
}

// WithTransport serves over an existing byte stream.
func WithTransport(t transport.Transport) ServeOption {
	return func(cfg *serveConfig) {
		cfg.transport = t
	}
}

// WithConn serves over an already framed message connection, bypassing the
// transport layer entirely.
func WithConn(c Conn) ServeOption {
	return func(cfg *serveConfig) {
		cfg.conn = c
	}
}

// WithTCP listens on addr (e.g. ":9257") and serves the first client.
func WithTCP(addr string) ServeOption {
	return lazy(func() (transport.Transport, error) { return transport.ListenTCP(addr) })
}

// WithSocket listens on a Unix domain socket.
func WithSocket(path string) ServeOption {
	return lazy(func() (transport.Transport, error) { return transport.ListenSocket(path) })
}

// WithPipe listens on a named pipe (a Unix socket outside Windows).
func WithPipe(name string) ServeOption {
	return lazy(func() (transport.Transport, error) { return transport.ListenPipe(name) })
}

// WithWebSocket listens for a single WebSocket client on addr.
func WithWebSocket(addr string) ServeOption {
	return lazy(func() (transport.Transport, error) { return transport.ListenWebSocket(addr) })
}

// WithNodeIPC serves over the channel a Node.js parent sets up.
func WithNodeIPC() ServeOption {
	return func(cfg *serveConfig) {
		cfg.transport = transport.NodeIPC()
	}
}

func lazy(f transport.Func) ServeOption {
	return func(cfg *serveConfig) {
		cfg.factory = f
	}
}

// FromArgs picks the transport from os.Args. Supported flags:
//
//	--stdio               (default)
//	--tcp :PORT
//	--socket PATH
//	--pipe NAME
//	--ws :PORT
//	--node-ipc
//
// Each flag taking a value also accepts --flag=value. Unknown arguments are
// ignored; a flag missing its value makes Serve fail.
func FromArgs() ServeOption {
	return argsOption(os.Args[1:])
}

func argsOption(args []string) ServeOption {
	return func(cfg *serveConfig) {
		for i := 0; i < len(args); i++ {
			name, value, hasValue := strings.Cut(args[i], "=")
			var open func(string) ServeOption
			switch name {
			case "--stdio":
				WithStdio()(cfg)
				return
			case "--node-ipc":
				WithNodeIPC()(cfg)
				return
			case "--tcp":
				open = WithTCP
			case "--socket":
				open = WithSocket
			case "--pipe":
				open = WithPipe
			case "--ws":
				open = WithWebSocket
			default:
				continue
			}
			if !hasValue && i+1 < len(args) {
				i++
				value = args[i]
			}
			if value == "" {
				cfg.err = fmt.Errorf("lspeasy: %s requires a value", name)
				return
			}
			open(value)(cfg)
			return
		}
		WithStdio()(cfg)
	}
}

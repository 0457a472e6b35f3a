package lspeasy

import (
	"context"
	"fmt"

	"github.com/gossip-lsp/lspeasy/jsonrpc"
	"github.com/gossip-lsp/lspeasy/transport"
)

// Serve connects s and runs the session until the client exits, the stream
// closes or ctx ends. It returns nil after an orderly shutdown or when the
// peer closes the stream; errors match ErrHandshake, ErrShutdown or the
// context error. With no ServeOption, stdio is used.
func Serve(ctx context.Context, s *Server, opts ...ServeOption) error {
	cfg := &serveConfig{}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.err != nil {
		return cfg.err
	}

	conn := cfg.conn
	if conn == nil {
		t := cfg.transport
		if t == nil && cfg.factory != nil {
			var err error
			if t, err = cfg.factory(); err != nil {
				return fmt.Errorf("creating transport: %w", err)
			}
		}
		if t == nil {
			t = transport.Stdio()
		}
		c := jsonrpc.NewConn(jsonrpc.NewCodec(t, t), t)
		c.Start()
		conn = c
	}

	s.logger.Info("lspeasy server starting")
	return s.run(ctx, conn)
}

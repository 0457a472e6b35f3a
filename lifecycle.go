package lspeasy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/gossip-lsp/lspeasy/jsonrpc"
	"github.com/gossip-lsp/lspeasy/protocol"
)

// handshake waits for the initialize request, answers it with the
// capabilities and then requires the initialized notification.
func (s *Server) handshake(ctx context.Context) error {
	conn := s.connection()

	var init *jsonrpc.Request
	for init == nil {
		msg, err := conn.Next(ctx)
		if err != nil {
			return fmt.Errorf("%w: waiting for initialize: %w", ErrHandshake, err)
		}
		switch m := msg.(type) {
		case *jsonrpc.Request:
			if m.Method == protocol.MethodInitialize {
				init = m
				continue
			}
			s.logger.Warn("request before initialize", "method", m.Method, "id", m.ID.String())
			rerr := &jsonrpc.Error{
				Code:    jsonrpc.CodeServerNotInitialized,
				Message: fmt.Sprintf("expected initialize request, got %s", m.Method),
			}
			if err := s.send(jsonrpc.NewResponse(m.ID, nil, rerr)); err != nil {
				return fmt.Errorf("%w: %w", ErrHandshake, err)
			}
		case *jsonrpc.Notification:
			if m.Method == protocol.MethodExit {
				return fmt.Errorf("%w: exit before initialize", ErrHandshake)
			}
			s.logger.Debug("dropping notification before initialize", "method", m.Method)
		default:
			s.logger.Debug("dropping response before initialize")
		}
	}

	var params protocol.InitializeParams
	if len(init.Params) > 0 {
		if err := json.Unmarshal(init.Params, &params); err != nil {
			perr := &PayloadError{Method: init.Method, Err: err}
			_ = s.send(jsonrpc.NewResponse(init.ID, nil, &jsonrpc.Error{Code: jsonrpc.CodeInvalidParams, Message: perr.Error()}))
			return fmt.Errorf("%w: %w", ErrHandshake, perr)
		}
	}
	s.mu.Lock()
	s.params = init.Params
	s.folders = workspaceFolders(params)
	s.mu.Unlock()

	result := protocol.InitializeResult{Capabilities: s.caps, ServerInfo: s.info}
	if err := s.send(jsonrpc.NewResponse(init.ID, result, nil)); err != nil {
		return fmt.Errorf("%w: %w", ErrHandshake, err)
	}

	msg, err := conn.Next(ctx)
	if err != nil {
		return fmt.Errorf("%w: waiting for initialized: %w", ErrHandshake, err)
	}
	if n, ok := msg.(*jsonrpc.Notification); !ok || n.Method != protocol.MethodInitialized {
		return fmt.Errorf("%w: expected initialized notification, got %s", ErrHandshake, describe(msg))
	}

	attrs := []any{"folders", len(s.folders)}
	if params.ClientInfo != nil {
		attrs = append(attrs, "client", params.ClientInfo.Name, "clientVersion", params.ClientInfo.Version)
	}
	s.logger.Info("handshake complete", attrs...)
	return nil
}

func workspaceFolders(p protocol.InitializeParams) []protocol.WorkspaceFolder {
	if len(p.WorkspaceFolders) > 0 {
		return p.WorkspaceFolders
	}
	if p.RootURI != nil && *p.RootURI != "" {
		name := path.Base(strings.TrimRight(string(*p.RootURI), "/"))
		return []protocol.WorkspaceFolder{{URI: *p.RootURI, Name: name}}
	}
	return nil
}

// acknowledgeShutdown answers the shutdown request and waits for exit.
// Nothing read here is dispatched. A closed stream counts as exit.
func (s *Server) acknowledgeShutdown(ctx context.Context, id jsonrpc.ID) error {
	s.logger.Info("shutdown requested")
	if err := s.send(jsonrpc.NewResponse(id, nil, nil)); err != nil {
		return err
	}

	wctx, cancel := context.WithTimeout(ctx, s.exitTimeout)
	defer cancel()
	msg, err := s.connection().Next(wctx)
	switch {
	case err == nil:
		if n, ok := msg.(*jsonrpc.Notification); ok && n.Method == protocol.MethodExit {
			s.logger.Debug("exit received")
			return nil
		}
		return fmt.Errorf("%w: expected exit notification, got %s", ErrShutdown, describe(msg))
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: no exit notification within %s", ErrShutdown, s.exitTimeout)
	default:
		s.logger.Debug("stream closed after shutdown", "error", err)
		return nil
	}
}

func describe(msg jsonrpc.Message) string {
	switch m := msg.(type) {
	case *jsonrpc.Request:
		return fmt.Sprintf("request %s", m.Method)
	case *jsonrpc.Notification:
		return fmt.Sprintf("notification %s", m.Method)
	}
	return "response"
}

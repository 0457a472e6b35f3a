// Package middleware provides composable wrappers around the lspeasy
// dispatch step. A Handler sees every message dispatched after the
// handshake, one at a time; an error it returns for a request that has not
// been answered yet becomes an error response.
package middleware

import (
	"context"

	"github.com/gossip-lsp/lspeasy/jsonrpc"
)

// Handler dispatches one inbound message.
type Handler func(ctx context.Context, msg jsonrpc.Message) error

// Middleware wraps a Handler to add cross-cutting behavior.
type Middleware func(Handler) Handler

// Chain composes multiple middleware into a single middleware.
// Middleware is applied in the order given: the first middleware in the slice
// is the outermost wrapper (executes first).
func Chain(mws ...Middleware) Middleware {
	return func(next Handler) Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}

// kind names the message class for logs and metrics.
func kind(msg jsonrpc.Message) string {
	switch msg.(type) {
	case *jsonrpc.Request:
		return "request"
	case *jsonrpc.Notification:
		return "notification"
	case *jsonrpc.Response:
		return "response"
	}
	return "unknown"
}

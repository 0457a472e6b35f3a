package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/gossip-lsp/lspeasy/jsonrpc"
)

// ErrPanic is matched by errors returned for a recovered panic.
var ErrPanic = errors.New("handler panicked")

// Recovery returns middleware that turns a panic in a callback into an
// error wrapping ErrPanic, after logging the stack. The session survives.
func Recovery(logger ...*slog.Logger) Middleware {
	var log *slog.Logger
	if len(logger) > 0 && logger[0] != nil {
		log = logger[0]
	} else {
		log = slog.Default()
	}

	return func(next Handler) Handler {
		return func(ctx context.Context, msg jsonrpc.Message) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("panic recovered in handler",
						"method", jsonrpc.Method(msg),
						"panic", fmt.Sprint(r),
						"stack", string(debug.Stack()),
					)
					err = fmt.Errorf("%w: %v", ErrPanic, r)
				}
			}()
			return next(ctx, msg)
		}
	}
}

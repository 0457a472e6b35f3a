package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/gossip-lsp/lspeasy/jsonrpc"
)

// Logging returns middleware that logs each message's method, kind,
// duration and error.
func Logging(logger *slog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, msg jsonrpc.Message) error {
			start := time.Now()
			err := next(ctx, msg)

			attrs := []slog.Attr{
				slog.String("method", jsonrpc.Method(msg)),
				slog.String("kind", kind(msg)),
				slog.Duration("duration", time.Since(start)),
			}
			if req, ok := msg.(*jsonrpc.Request); ok {
				attrs = append(attrs, slog.String("id", req.ID.String()))
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
				logger.LogAttrs(ctx, slog.LevelError, "message failed", attrs...)
			} else {
				logger.LogAttrs(ctx, slog.LevelDebug, "message handled", attrs...)
			}
			return err
		}
	}
}

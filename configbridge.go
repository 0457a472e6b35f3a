package lspeasy

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gossip-lsp/lspeasy/config"
)

// configHolder lets the untyped Server own a typed config.
type configHolder interface {
	start(logger *slog.Logger, dirs []string)
	close()
}

type typedConfigHolder[T any] struct {
	store    *config.Store[T]
	filename string
	defaults *T
	watchers []*config.Watcher
}

// WithConfig enables a typed config loaded from filename in each workspace
// folder (or the working directory when the client opened none). TOML is
// assumed unless the name ends in .yaml or .yml. Every folder's file feeds
// the same value: each one is applied over defaults, and the most recent
// load or reload wins. The files are watched and reloaded on change; defaults
// apply while none exists.
func WithConfig[T any](filename string, defaults T) Option {
	return func(s *Server) {
		initial := defaults
		s.configHolder = &typedConfigHolder[T]{
			store:    config.NewStore(&initial),
			filename: filename,
			defaults: &defaults,
		}
	}
}

// Config returns the current typed config, or nil if the server was built
// without WithConfig[T] for this T.
func Config[T any](ctx *Context) *T {
	if h, ok := ctx.server.configHolder.(*typedConfigHolder[T]); ok {
		return h.store.Get()
	}
	return nil
}

// OnConfigChange registers fn to run after each reload. fn runs on the
// watcher goroutine, concurrently with dispatch; use only the thread-safe
// parts of the session (outbound helpers, Documents) from it.
func OnConfigChange[T any](s *Server, fn func(ctx *Context, old, next *T)) {
	h, ok := s.configHolder.(*typedConfigHolder[T])
	if !ok {
		return
	}
	h.store.OnChange(func(old, next *T) {
		fn(s.newContext(context.Background()), old, next)
	})
}

// startConfig loads and watches the config file once the workspace folders
// are known.
func (s *Server) startConfig() {
	if s.configHolder == nil {
		return
	}
	var dirs []string
	for _, f := range s.WorkspaceFolders() {
		if dir := f.URI.Path(); dir != "" {
			dirs = append(dirs, dir)
		}
	}
	if len(dirs) == 0 {
		dirs = []string{"."}
	}
	s.configHolder.start(s.logger, dirs)
}

func (h *typedConfigHolder[T]) start(logger *slog.Logger, dirs []string) {
	for _, dir := range dirs {
		r := config.NewReloader(h.store, filepath.Join(dir, h.filename), h.defaults)
		if _, err := os.Stat(r.Path()); err == nil {
			if err := r.Reload(); err != nil {
				logger.Warn("failed to load config", "path", r.Path(), "error", err)
			}
		}
		w, err := config.NewWatcher(r.Path(), func() {
			if err := r.Reload(); err != nil {
				logger.Warn("failed to reload config", "path", r.Path(), "error", err)
				return
			}
			logger.Info("config reloaded", "path", r.Path())
		}, config.WithWatcherLogger(logger))
		if err != nil {
			logger.Warn("config watching disabled", "path", r.Path(), "error", err)
			continue
		}
		h.watchers = append(h.watchers, w)
	}
}

func (h *typedConfigHolder[T]) close() {
	for _, w := range h.watchers {
		w.Close()
	}
	h.watchers = nil
}

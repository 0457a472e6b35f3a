package config

// Reloader re-reads one config file into a Store. The file watcher calls
// Reload on every change; it can also be called directly.
type Reloader[T any] struct {
	store    *Store[T]
	path     string
	defaults *T
}

// NewReloader creates a reloader for the file at path. defaults is used when
// the file does not exist.
func NewReloader[T any](store *Store[T], path string, defaults *T) *Reloader[T] {
	return &Reloader[T]{store: store, path: path, defaults: defaults}
}

// Path returns the file the reloader reads.
func (r *Reloader[T]) Path() string { return r.path }

// Reload loads the file and swaps the result into the store. On error the
// store keeps its current value.
func (r *Reloader[T]) Reload() error {
	cfg, err := Load(r.path, r.defaults)
	if err != nil {
		return err
	}
	r.store.Swap(cfg)
	return nil
}

package gifts

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for the feed file to settle
// before reloading it.
const DefaultDebounce = 500 * time.Millisecond

// FeedWatcher watches an order feed file and re-delivers the parsed orders
// whenever the file changes. Exporters typically rewrite the whole file, so
// changes are debounced to avoid reloading half-written feeds.
type FeedWatcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger
}

// WatcherOption configures a FeedWatcher.
type WatcherOption func(*FeedWatcher)

// WithDebounce overrides the settle delay.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *FeedWatcher) { w.debounce = d }
}

// WithWatchLogger sets the watcher's logger.
func WithWatchLogger(logger *slog.Logger) WatcherOption {
	return func(w *FeedWatcher) { w.logger = logger }
}

// NewFeedWatcher creates a watcher for the order feed at path.
func NewFeedWatcher(path string, opts ...WatcherOption) *FeedWatcher {
	w := &FeedWatcher{
		path:     path,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch delivers the current feed once, then again after every settled
// change, until ctx is canceled. A feed that fails to load is logged and
// skipped; the previous delivery stands.
func (w *FeedWatcher) Watch(ctx context.Context, deliver func([]Order)) error {
	abs, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("resolve feed path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory, not the file: editors and exporters replace
	// the file, which would drop a direct watch.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	w.reload(deliver)

	var timer *time.Timer
	pending := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})

		case <-pending:
			w.reload(deliver)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("feed watch error", slog.String("error", err.Error()))
		}
	}
}

func (w *FeedWatcher) reload(deliver func([]Order)) {
	orders, err := LoadOrders(w.path)
	if err != nil {
		w.logger.Warn("order feed reload failed",
			slog.String("path", w.path),
			slog.String("error", err.Error()))
		return
	}
	w.logger.Info("order feed loaded",
		slog.String("path", w.path),
		slog.Int("orders", len(orders)))
	deliver(orders)
}

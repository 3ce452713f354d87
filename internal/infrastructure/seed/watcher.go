package seed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 500 * time.Millisecond

// ReloadFunc receives a module whose seed file changed, with the new seed as a
// JSON array.
type ReloadFunc func(ctx context.Context, module string, payload []byte) error

// Watcher reloads seeds when files in the override directory change.
type Watcher struct {
	source   *Source
	reload   ReloadFunc
	logger   *zap.Logger
	debounce time.Duration
	watcher  *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]bool
	hashes  map[string]string
	done    chan struct{}
}

// NewWatcher watches source's override directory. It fails when the source has
// none.
func NewWatcher(source *Source, reload ReloadFunc, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(source.Dir()); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return &Watcher{
		source:   source,
		reload:   reload,
		logger:   logger.With(zap.String("component", "seed_watcher"), zap.String("dir", source.Dir())),
		debounce: debounce,
		watcher:  fsw,
		pending:  make(map[string]bool),
		hashes:   make(map[string]string),
		done:     make(chan struct{}),
	}, nil
}

// Run processes file events until ctx is cancelled or Close is called.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.done)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	w.logger.Info("Seed watcher started", zap.Duration("debounce", w.debounce))
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Seed watcher error", zap.Error(err))
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

// Close stops watching and waits for Run to return when it was started.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Done is closed when Run returns
func (w *Watcher) Done() <-chan struct{} { return w.done }

func (w *Watcher) handle(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return
	}
	name := filepath.Base(ev.Name)
	if ok, _ := doublestar.Match(Pattern, name); !ok {
		return
	}
	w.mu.Lock()
	w.pending[ModuleOf(name)] = true
	w.mu.Unlock()
}

func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	modules := make([]string, 0, len(w.pending))
	for m := range w.pending {
		modules = append(modules, m)
	}
	w.pending = make(map[string]bool)
	w.mu.Unlock()

	for _, module := range modules {
		if ctx.Err() != nil {
			return
		}
		w.reloadModule(ctx, module)
	}
}

// reloadModule re-reads a seed. A removed override falls back to the embedded
// copy; unchanged content is skipped.
func (w *Watcher) reloadModule(ctx context.Context, module string) {
	payload, err := w.source.JSON(module)
	if err != nil {
		w.logger.Warn("Seed reload skipped", zap.String("module", module), zap.Error(err))
		return
	}
	sum := sha256.Sum256(payload)
	hash := hex.EncodeToString(sum[:])

	w.mu.Lock()
	unchanged := w.hashes[module] == hash
	w.hashes[module] = hash
	w.mu.Unlock()
	if unchanged {
		return
	}

	if err := w.reload(ctx, module, payload); err != nil {
		w.logger.Error("Seed reload failed", zap.String("module", module), zap.Error(err))
		return
	}
	w.logger.Info("Seed reloaded", zap.String("module", module))
}

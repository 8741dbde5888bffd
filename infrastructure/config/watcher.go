package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// OverlayWatcher reloads the overlay file when it changes and notifies
// listeners with the new version. An invalid file is logged and ignored;
// the previous overlay stays in effect.
type OverlayWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	current  *Overlay
	mu       sync.RWMutex
	onChange []func(*Overlay)
	logger   *zap.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
	debounce time.Duration
}

// NewOverlayWatcher loads the overlay and prepares to watch it.
func NewOverlayWatcher(path string, logger *zap.Logger) (*OverlayWatcher, error) {
	overlay, err := LoadOverlay(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial overlay: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory so editors that save by rename are seen too
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch overlay directory: %w", err)
	}

	return &OverlayWatcher{
		path:     path,
		watcher:  watcher,
		current:  overlay,
		logger:   logger,
		stopCh:   make(chan struct{}),
		debounce: 100 * time.Millisecond,
	}, nil
}

// Start begins watching for changes
func (w *OverlayWatcher) Start() {
	go w.watchLoop()
	w.logger.Info("Overlay watcher started", zap.String("path", w.path))
}

// Stop stops watching
func (w *OverlayWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.watcher.Close()
		w.logger.Info("Overlay watcher stopped")
	})
}

// OnChange registers a callback for overlay changes
func (w *OverlayWatcher) OnChange(handler func(*Overlay)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, handler)
}

// Current returns the overlay in effect
func (w *OverlayWatcher) Current() *Overlay {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

func (w *OverlayWatcher) watchLoop() {
	var debounceTimer *time.Timer

	for {
		select {
		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))
		}
	}
}

func (w *OverlayWatcher) reload() {
	overlay, err := LoadOverlay(w.path)
	if err != nil {
		w.logger.Error("Invalid overlay, keeping current", zap.String("path", w.path), zap.Error(err))
		return
	}

	w.mu.Lock()
	w.current = overlay
	handlers := append([]func(*Overlay){}, w.onChange...)
	w.mu.Unlock()

	for _, handler := range handlers {
		handler(overlay)
	}

	w.logger.Info("Overlay reloaded",
		zap.String("version", overlay.Meta.Version),
		zap.Int("models", len(overlay.Models)),
	)
}

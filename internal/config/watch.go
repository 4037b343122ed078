package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"tradebot/internal/logger"

	"github.com/fsnotify/fsnotify"
)

// Manager holds the active config and swaps it atomically when the file on
// disk changes. Snapshot returns a copy, so a cycle works against one
// consistent view while later cycles pick up edits without a restart.
type Manager struct {
	mu   sync.RWMutex
	path string
	cfg  Config
}

func NewManager(path string) (*Manager, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return &Manager{path: abs, cfg: *cfg}, nil
}

func (m *Manager) Snapshot() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

func (m *Manager) reload() {
	cfg, err := Load(m.path)
	if err != nil {
		logger.Warnf("config reload failed, keeping previous config: %v", err)
		return
	}
	m.mu.Lock()
	m.cfg = *cfg
	m.mu.Unlock()
	logger.Infof("config reloaded from %s", m.path)
}

// Watch re-loads the config whenever the file is written. Editors often
// replace the file via rename, so the parent directory is watched and events
// are debounced briefly.
func (m *Manager) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		watcher.Close()
		return err
	}
	go func() {
		defer watcher.Close()
		var pending *time.Timer
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != m.path {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if pending != nil {
					pending.Stop()
				}
				pending = time.AfterFunc(200*time.Millisecond, m.reload)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warnf("config watcher error: %v", err)
			}
		}
	}()
	return nil
}

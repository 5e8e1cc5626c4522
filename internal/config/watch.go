// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jeranaias/helix-tui/internal/debounce"
)

// ReloadDelay collapses the burst of events an editor save produces.
const ReloadDelay = 200 * time.Millisecond

// Watcher reloads a config file when it changes on disk.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	reload  *debounce.Debouncer[struct{}]
	logger  *slog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

// Watch starts watching path and calls onChange with each successfully
// reloaded config. Invalid edits are logged and skipped. The parent
// directory is watched so editors that replace the file by rename are seen.
func Watch(path string, logger *slog.Logger, onChange func(*Config)) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		path:    absPath,
		watcher: fsw,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	w.reload = debounce.New(ReloadDelay, func(struct{}) {
		if ctx.Err() != nil {
			return
		}
		cfg, err := LoadFromPath(absPath)
		if err != nil {
			logger.Warn("config reload failed", "path", absPath, "error", err)
			return
		}
		logger.Info("config reloaded", "path", absPath)
		onChange(cfg)
	})

	go w.processEvents()
	return w, nil
}

func (w *Watcher) processEvents() {
	defer close(w.done)
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.reload.Call(struct{}{})
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.cancel()
	w.reload.Cancel()
	err := w.watcher.Close()
	<-w.done
	return err
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of events editors produce on save.
const watchDebounce = 100 * time.Millisecond

// Watch reloads path whenever it is written or recreated and calls fn
// with the new configuration or the load error. It watches the parent
// directory so that atomic renames are seen. Watch returns once the
// watcher is installed; the watch stops when ctx is canceled.
func Watch(ctx context.Context, path string, fn func(*Config, error)) error {
	watch, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: watch: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		watch.Close()
		return fmt.Errorf("config: watch: %w", err)
	}
	if err := watch.Add(filepath.Dir(abs)); err != nil {
		watch.Close()
		return fmt.Errorf("config: watch %s: %w", path, err)
	}

	go func() {
		defer watch.Close()
		var pending <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watch.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					pending = time.After(watchDebounce)
				}
			case <-pending:
				pending = nil
				fn(Load(abs))
			case err, ok := <-watch.Errors:
				if !ok {
					return
				}
				fn(nil, fmt.Errorf("config: watch: %w", err))
			}
		}
	}()
	return nil
}

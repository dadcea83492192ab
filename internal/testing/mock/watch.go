package mock

import (
	"context"
	"fmt"
	"path/filepath"

	"mcpnode/pkg/logging"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the tools of s whenever the file at configPath is written,
// until ctx is done. Editors that replace the file are handled by watching
// the containing directory. A file that fails to parse is logged and ignored.
func Watch(ctx context.Context, configPath string, s *Server) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", configPath, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			cfg, err := LoadConfig(absPath)
			if err != nil {
				logging.Warn("MockServer", "Ignoring invalid config change: %v", err)
				continue
			}
			if err := s.ReloadTools(cfg); err != nil {
				logging.Warn("MockServer", "Failed to reload tools: %v", err)
				continue
			}
			logging.Info("MockServer", "Reloaded %d tools from %s", len(cfg.Tools), configPath)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("MockServer", "Watcher error: %v", err)
		}
	}
}

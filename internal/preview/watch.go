package preview

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// skipDirs are never watched.
var skipDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
}

func shouldSkipDir(name string) bool {
	if _, ok := skipDirs[name]; ok {
		return true
	}
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// isWatchEvent reports whether op can change the build output.
func isWatchEvent(op fsnotify.Op) bool {
	return op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}

// isScratchFile matches editor swap and backup files.
func isScratchFile(name string) bool {
	base := filepath.Base(name)
	return strings.HasPrefix(base, ".") ||
		strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".tmp")
}

// watchTree adds root and every directory below it.
func (s *Server) watchTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Debug("skipping unreadable path", "path", p, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && shouldSkipDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
}

// watchRoots lists the directory trees whose changes trigger a rebuild.
func (s *Server) watchRoots() []string {
	s.mu.Lock()
	cfg := s.builder.Config()
	s.mu.Unlock()

	roots := []string{cfg.Content.Dir}
	if cfg.Assets.BasePath != "" {
		roots = append(roots, cfg.Assets.BasePath)
	}
	return roots
}

// Watch rebuilds after changes to content, the theme directory and the
// config file settle for the debounce interval. It returns when ctx is done.
func (s *Server) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	var roots []string
	for _, root := range s.watchRoots() {
		abs, err := filepath.Abs(root)
		if err != nil {
			return err
		}
		if err := s.watchTree(watcher, abs); err != nil {
			return err
		}
		roots = append(roots, abs)
	}

	var configFile string
	if s.configPath != "" {
		abs, err := filepath.Abs(s.configPath)
		if err != nil {
			return err
		}
		configFile = abs
		// Editors replace files on save, so watch the directory.
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return err
		}
	}

	timer := time.NewTimer(s.debounce)
	timer.Stop()
	reload := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isWatchEvent(ev.Op) || isScratchFile(ev.Name) {
				continue
			}
			switch {
			case ev.Name == configFile:
				reload = true
			case underAny(ev.Name, roots):
				if ev.Op&fsnotify.Create != 0 {
					if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && !shouldSkipDir(info.Name()) {
						if err := s.watchTree(watcher, ev.Name); err != nil {
							s.logger.Warn("cannot watch new directory", "path", ev.Name, "error", err)
						}
					}
				}
			default:
				continue
			}
			s.logger.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(s.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watcher error", "error", err)

		case <-timer.C:
			if reload {
				reload = false
				s.reloadConfig()
			}
			go func() {
				if err := s.Rebuild(ctx); err != nil && !errors.Is(err, ErrStale) && ctx.Err() == nil {
					s.logger.Error("preview rebuild failed", "error", err)
				}
			}()
		}
	}
}

// reloadConfig swaps in a builder for the changed config file. A broken
// config keeps the previous builder.
func (s *Server) reloadConfig() {
	if s.reload == nil {
		return
	}
	builder, err := s.reload()
	if err != nil {
		s.logger.Error("config reload failed, keeping previous settings", "error", err)
		return
	}
	s.mu.Lock()
	s.builder = builder
	s.mu.Unlock()
	s.logger.Info("config reloaded", "path", s.configPath)
}

// underAny reports whether name lies inside one of the roots.
func underAny(name string, roots []string) bool {
	for _, root := range roots {
		if name == root || strings.HasPrefix(name, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

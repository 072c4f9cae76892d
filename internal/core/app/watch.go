package app

import (
	"context"
	"log/slog"
	"slices"

	"utoipauto/internal/core/config"
	"utoipauto/internal/core/watcher"
	"utoipauto/internal/shared/observability"
	"utoipauto/internal/shared/util"
)

// Watch runs discovery once and then again whenever a source file below a
// root changes, until ctx is cancelled. When configPath is set the
// configuration is reloaded on change. Failed runs are logged and the loop
// keeps going.
func (a *App) Watch(ctx context.Context, configPath string) error {
	if _, err := a.Run(ctx); err != nil {
		slog.Error("initial discovery failed, waiting for changes", "error", err)
	}

	trigger := make(chan struct{}, 1)
	notify := func() {
		select {
		case trigger <- struct{}{}:
		default:
		}
	}

	reloaded := make(chan *config.Config, 1)
	if configPath != "" {
		cw := config.NewWatcher(configPath, func(cfg *config.Config) {
			select {
			case reloaded <- cfg:
			case <-ctx.Done():
			}
		})
		if err := cw.Start(ctx); err != nil {
			slog.Warn("config watcher disabled", "path", configPath, "error", err)
		} else {
			defer cw.Stop()
		}
	}

	cfg := a.Config()
	limiter := util.NewLimiter(cfg.Watch.RateLimit, cfg.Watch.Burst)
	paths, err := a.watchPaths()
	if err != nil {
		return err
	}
	fw, err := a.startWatcher(paths, notify)
	if err != nil {
		return err
	}
	defer func() { _ = fw.Close() }()

	for {
		select {
		case <-ctx.Done():
			return nil

		case next := <-reloaded:
			if err := a.Reload(next); err != nil {
				slog.Error("failed to apply reloaded configuration", "error", err)
				continue
			}
			limiter = util.NewLimiter(next.Watch.RateLimit, next.Watch.Burst)
			nextPaths, err := a.watchPaths()
			if err != nil {
				slog.Error("failed to resolve roots after reload", "error", err)
				continue
			}
			if !slices.Equal(paths, nextPaths) {
				nfw, err := a.startWatcher(nextPaths, notify)
				if err != nil {
					slog.Error("failed to restart watcher", "error", err)
					continue
				}
				_ = fw.Close()
				fw, paths = nfw, nextPaths
			}
			notify()

		case <-trigger:
			throttled, err := limiter.Throttle(ctx)
			if err != nil {
				return nil
			}
			if throttled {
				observability.RediscoveryThrottledTotal.Inc()
			}
			if _, err := a.Run(ctx); err != nil {
				slog.Error("rediscovery failed", "error", err)
			}
		}
	}
}

func (a *App) watchPaths() ([]string, error) {
	roots, err := a.Roots()
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(roots))
	for _, root := range roots {
		paths = append(paths, root.Path)
	}
	return paths, nil
}

func (a *App) startWatcher(paths []string, notify func()) (*watcher.Watcher, error) {
	a.mu.RLock()
	cfg, loc := a.cfg, a.locator
	a.mu.RUnlock()

	w, err := watcher.NewWatcher(cfg.Watch.Debounce, loc, func(changed []string) {
		slog.Info("source changes detected", "files", len(changed))
		slog.Debug("changed files", "paths", changed)
		notify()
	})
	if err != nil {
		return nil, err
	}
	if err := w.Watch(paths); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}

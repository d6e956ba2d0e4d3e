package app

import (
	"context"
	"log/slog"
	"time"

	"cppbind/internal/core/config"
	"cppbind/internal/core/ports"
	"cppbind/internal/core/watcher"
	"cppbind/internal/shared/observability"
	"cppbind/internal/shared/util"
)

// Watch generates once, then regenerates whenever an input changes until ctx
// is cancelled. Regenerations are rate limited by watch.max_rate. A failed
// regeneration is logged and watching continues; only a failure of the first
// run is returned.
func (a *App) Watch(ctx context.Context, args []string) error {
	if _, err := a.Generate(ctx, ports.GenerateRequest{Inputs: args}); err != nil {
		return err
	}

	if addr := a.Config.Observability.MetricsAddr; addr != "" {
		srv := observability.NewServer(addr, a.Health)
		if err := srv.Start(ctx); err != nil {
			slog.Warn("metrics server not started", "addr", addr, "error", err)
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = srv.Stop(shutdownCtx)
			}()
		}
	}

	limiter := util.NewLimiter(a.Config.Watch.MaxRate, 1)
	changes := make(chan []string, 1)

	w, err := a.startWatcher(args, changes)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	if a.opts.ConfigPath != "" {
		cw := config.NewWatcher(a.opts.ConfigPath, func(cfg *config.Config) {
			if a.opts.Overrides != nil {
				a.opts.Overrides(cfg)
				if err := config.Validate(cfg); err != nil {
					slog.Warn("config reload rejected", "error", err)
					return
				}
			}
			if err := a.Reconfigure(cfg); err != nil {
				slog.Warn("config reload rejected", "error", err)
				return
			}
			limiter.SetRate(cfg.Watch.MaxRate)
			w.SetDebounce(cfg.Watch.Debounce)
			select {
			case changes <- []string{a.opts.ConfigPath}:
			default:
			}
		})
		if err := cw.Start(ctx); err != nil {
			slog.Warn("config watcher not started", "error", err)
		} else {
			defer cw.Stop()
		}
	}

	slog.Info("watching for changes", "root", a.paths.InputRoot)
	for {
		select {
		case <-ctx.Done():
			return nil
		case paths := <-changes:
			if err := limiter.Wait(ctx, 1); err != nil {
				return nil
			}
			slog.Debug("inputs changed", "paths", paths)
			if _, err := a.Generate(ctx, ports.GenerateRequest{Inputs: args}); err != nil {
				slog.Error("regeneration failed", "error", err)
			}
		}
	}
}

// startWatcher watches the input root plus every selected input file, so
// inputs outside the root and dumps with non-header extensions are covered.
func (a *App) startWatcher(args []string, changes chan<- []string) (*watcher.Watcher, error) {
	w, err := watcher.NewWatcher(a.Config.Watch.Debounce, a.Config.Exclude.Dirs, a.Config.Exclude.Files, func(paths []string) {
		// A pending batch already triggers a run that reads every input.
		select {
		case changes <- paths:
		default:
		}
	})
	if err != nil {
		return nil, err
	}
	w.SetExtensions(a.frontend.SupportedExtensions())

	inputs, err := a.SelectInputs(args)
	if err != nil {
		_ = w.Close()
		return nil, err
	}
	files := make([]string, 0, len(inputs))
	for _, in := range inputs {
		files = append(files, in.Path)
	}
	var roots []string
	if len(a.Config.Inputs.Files) > 0 {
		roots = append(roots, a.paths.InputRoot)
	}
	if err := w.Watch(roots, files); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/x/term"

	coreapp "cppbind/internal/core/app"
	"cppbind/internal/core/config"
	"cppbind/internal/core/errors"
	"cppbind/internal/core/ports"
	"cppbind/internal/shared/observability"
	"cppbind/internal/ui/report"
)

// Run is the cppbind entry point. It returns the process exit code.
func Run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, args, os.Stdout, os.Stderr, term.IsTerminal(os.Stderr.Fd()))
}

// run keeps stdout for the generated source; logs and the summary go to
// stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, interactive bool) int {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		return errors.ExitUsage
	}
	if opts.version {
		fmt.Fprintf(stdout, "cppbind v%s\n", versionString)
		return errors.ExitOK
	}

	configureLogging(stderr, opts.verbose)

	cwd, err := os.Getwd()
	if err != nil {
		slog.Error("failed to detect working directory", "error", err)
		return errors.ExitUsage
	}

	cfg, cfgPath, err := loadConfig(opts, cwd)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return errors.ExitCode(err)
	}
	applyOverrides(opts, cfg, cwd)
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintln(stderr, err.Error())
		return errors.ExitCode(err)
	}

	shutdown, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint, versionString)
	if err != nil {
		slog.Warn("tracing disabled", "error", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				slog.Warn("tracing shutdown failed", "error", err)
			}
		}()
	}

	app, err := coreapp.New(cfg, coreapp.Options{
		ConfigPath: cfgPath,
		CWD:        cwd,
		Stdout:     stdout,
		Overrides:  func(c *config.Config) { applyOverrides(opts, c, cwd) },
	})
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return errors.ExitCode(err)
	}

	if opts.watch {
		if err := app.Watch(ctx, opts.args); err != nil {
			fmt.Fprintln(stderr, err.Error())
			return errors.ExitCode(err)
		}
		return errors.ExitOK
	}

	res, err := app.GenerationService().Generate(ctx, ports.GenerateRequest{Inputs: opts.args})
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return errors.ExitCode(err)
	}
	if interactive {
		fmt.Fprint(stderr, report.Summary(res, true))
	}
	return errors.ExitOK
}

// loadConfig reads the config named by -config. Without -config a missing
// cppbind.toml in the working directory means defaults, and the returned path
// is empty so relative paths resolve against cwd.
func loadConfig(opts cliOptions, cwd string) (*config.Config, string, error) {
	explicit := opts.set["config"]
	path := config.ResolveRelative(cwd, opts.configPath)

	cfg, err := config.LoadOrDefault(path, explicit)
	if err != nil {
		return nil, "", err
	}
	if !explicit {
		if _, statErr := os.Stat(path); statErr != nil {
			return cfg, "", nil
		}
	}
	return cfg, path, nil
}

func configureLogging(w io.Writer, verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
}

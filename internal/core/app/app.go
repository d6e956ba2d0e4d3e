package app

import (
	"io"
	"os"
	"strings"
	"sync"

	"cppbind/internal/core/config"
	"cppbind/internal/core/errors"
	"cppbind/internal/core/ports"
	"cppbind/internal/engine/ast"
	"cppbind/internal/shared/util"
)

// parseCacheSize bounds the parsed files kept between watch-mode runs.
const parseCacheSize = 256

// parseKey identifies one parse: the same bytes under the same name always
// yield the same tree.
type parseKey struct {
	name string
	hash uint64
}

type parsedFile struct {
	file  *ast.File
	index *ast.Index
}

// Options carries what the CLI knows beyond the config file.
type Options struct {
	// ConfigPath is the config file the config came from, empty if none.
	ConfigPath string
	// CWD resolves relative paths when ConfigPath is empty.
	CWD string
	// Stdout receives the generated source when no output path is set.
	Stdout io.Writer
	// Overrides is reapplied to every config reloaded in watch mode, so
	// command-line flags keep precedence over the file.
	Overrides func(*config.Config)
}

type App struct {
	Config *config.Config

	opts     Options
	paths    config.ResolvedPaths
	frontend ports.Frontend
	parsed   *util.LRU[parseKey, parsedFile]

	// runMu serializes generation runs.
	runMu sync.Mutex

	stateMu sync.RWMutex
	last    *ports.GenerateResult
	lastErr error
}

func New(cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		return nil, errors.New(errors.CodeValidationError, "config is required")
	}
	if strings.TrimSpace(opts.CWD) == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "resolve working directory")
		}
		opts.CWD = cwd
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	paths, err := config.ResolvePaths(cfg, opts.ConfigPath, opts.CWD)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "resolve paths")
	}
	frontend, err := NewFrontend(cfg)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:   cfg,
		opts:     opts,
		paths:    paths,
		frontend: frontend,
		parsed:   util.NewLRU[parseKey, parsedFile](parseCacheSize),
	}, nil
}

// Reconfigure swaps in a reloaded config. It waits for a running generation
// to finish.
func (a *App) Reconfigure(cfg *config.Config) error {
	paths, err := config.ResolvePaths(cfg, a.opts.ConfigPath, a.opts.CWD)
	if err != nil {
		return errors.Wrap(err, errors.CodeValidationError, "resolve paths")
	}
	frontend, err := NewFrontend(cfg)
	if err != nil {
		return err
	}

	a.runMu.Lock()
	defer a.runMu.Unlock()
	a.Config = cfg
	a.paths = paths
	a.frontend = frontend
	// Frontend options such as fatal_errors change what a parse yields.
	a.parsed.Clear()
	return nil
}

func (a *App) GenerationService() ports.GenerationService {
	return a
}

// LastResult returns the most recent run's result and error.
func (a *App) LastResult() (*ports.GenerateResult, error) {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()
	return a.last, a.lastErr
}

func (a *App) record(res *ports.GenerateResult, err error) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	if err == nil {
		a.last = res
	}
	a.lastErr = err
}

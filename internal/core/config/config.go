package config

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"cppbind/internal/core/errors"
)

// DefaultFile is the config file looked up when -config is not given.
const DefaultFile = "cppbind.toml"

type Config struct {
	Module        Module        `toml:"module"`
	Inputs        Inputs        `toml:"inputs"`
	Compile       Compile       `toml:"compile"`
	Exclude       Exclude       `toml:"exclude"`
	Watch         Watch         `toml:"watch"`
	Observability Observability `toml:"observability"`
}

type Module struct {
	// Name is the library name passed to PYBIND11_MODULE.
	Name string `toml:"name"`
	// Output is the generated source path. Empty writes to stdout.
	Output string `toml:"output"`
}

type Inputs struct {
	Root       string   `toml:"root"`
	Files      []string `toml:"files"`
	Frontend   string   `toml:"frontend"`
	Extensions []string `toml:"extensions"`
}

// Compile holds the flags a compiler-backed frontend would receive. The
// tree-sitter frontend only honours FatalErrors.
type Compile struct {
	Std               string   `toml:"std"`
	IncludeDirs       []string `toml:"include_dirs"`
	Defines           []string `toml:"defines"`
	Undefines         []string `toml:"undefines"`
	Features          []string `toml:"features"`
	GNUExtensions     bool     `toml:"gnu_extensions"`
	MSVCExtensions    bool     `toml:"msvc_extensions"`
	MSVCCompatibility bool     `toml:"msvc_compatibility"`
	FatalErrors       bool     `toml:"fatal_errors"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
	// MaxRate caps regenerations per second.
	MaxRate float64 `toml:"max_rate"`
}

type Observability struct {
	MetricsAddr  string `toml:"metrics_addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
}

const (
	FrontendTreeSitter = "treesitter"
	FrontendDump       = "dump"
)

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		code := errors.CodeInternal
		if os.IsNotExist(err) {
			code = errors.CodeNotFound
		}
		return nil, errors.AddContext(errors.Wrap(err, code, "read config"), errors.CtxPath, path)
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeValidationError, "decode config"), errors.CtxPath, path)
	}

	ApplyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	return &cfg, nil
}

// LoadOrDefault loads path, falling back to Default when path is the implicit
// default file and it does not exist.
func LoadOrDefault(path string, explicit bool) (*Config, error) {
	cfg, err := Load(path)
	if err != nil && !explicit && errors.IsCode(err, errors.CodeNotFound) {
		cfg = Default()
		ApplyEnvOverrides(cfg)
		applyDefaults(cfg)
		return cfg, nil
	}
	return cfg, err
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Module.Name) == "" {
		cfg.Module.Name = "example"
	}
	if strings.TrimSpace(cfg.Inputs.Root) == "" {
		cfg.Inputs.Root = "."
	}
	if strings.TrimSpace(cfg.Inputs.Frontend) == "" {
		cfg.Inputs.Frontend = FrontendTreeSitter
	}
	cfg.Inputs.Frontend = strings.ToLower(strings.TrimSpace(cfg.Inputs.Frontend))
	if len(cfg.Inputs.Extensions) == 0 {
		cfg.Inputs.Extensions = []string{".h", ".hh", ".hpp", ".hxx"}
	}
	if strings.TrimSpace(cfg.Compile.Std) == "" {
		cfg.Compile.Std = LatestStd
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.MaxRate == 0 {
		cfg.Watch.MaxRate = 2
	}
	if len(cfg.Exclude.Dirs) == 0 {
		cfg.Exclude.Dirs = []string{".git", "build"}
	}
}

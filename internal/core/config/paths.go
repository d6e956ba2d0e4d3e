package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ResolvedPaths holds the config's paths made absolute.
type ResolvedPaths struct {
	// ConfigDir is the directory relative paths in the config file are
	// resolved against.
	ConfigDir   string
	InputRoot   string
	Output      string
	IncludeDirs []string
}

// ResolvePaths resolves cfg's paths against the directory of the config file,
// or against cwd when the config did not come from a file.
func ResolvePaths(cfg *Config, configPath, cwd string) (ResolvedPaths, error) {
	if strings.TrimSpace(cwd) == "" {
		return ResolvedPaths{}, fmt.Errorf("cwd must not be empty")
	}
	base := cwd
	if strings.TrimSpace(configPath) != "" {
		base = filepath.Dir(ResolveRelative(cwd, configPath))
	}

	resolved := ResolvedPaths{
		ConfigDir: filepath.Clean(base),
		InputRoot: ResolveRelative(base, cfg.Inputs.Root),
	}
	if out := strings.TrimSpace(cfg.Module.Output); out != "" && out != "-" {
		resolved.Output = ResolveRelative(base, out)
	}
	for _, dir := range cfg.Compile.IncludeDirs {
		resolved.IncludeDirs = append(resolved.IncludeDirs, ResolveRelative(base, dir))
	}
	return resolved, nil
}

func ResolveRelative(base, value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Clean(filepath.Join(base, raw))
}

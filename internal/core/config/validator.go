package config

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"cppbind/internal/core/errors"
)

// Validate checks cfg after defaults were applied. The first failing section
// is reported as a validation error naming the offending field.
func Validate(cfg *Config) error {
	checks := []struct {
		field string
		fn    func(*Config) error
	}{
		{"module", validateModule},
		{"inputs", validateInputs},
		{"compile", validateCompile},
		{"exclude", validateExclude},
		{"watch", validateWatch},
	}
	for _, check := range checks {
		if err := check.fn(cfg); err != nil {
			return errors.AddContext(errors.Wrap(err, errors.CodeValidationError, "invalid config"), errors.CtxField, check.field)
		}
	}
	return nil
}

func validateModule(cfg *Config) error {
	name := strings.TrimSpace(cfg.Module.Name)
	if name == "" {
		return fmt.Errorf("module.name must not be empty")
	}
	for i, r := range name {
		ok := r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || i > 0 && r >= '0' && r <= '9'
		if !ok {
			return fmt.Errorf("module.name %q is not a valid identifier", name)
		}
	}
	return nil
}

func validateInputs(cfg *Config) error {
	switch cfg.Inputs.Frontend {
	case FrontendTreeSitter, FrontendDump:
	default:
		return fmt.Errorf("inputs.frontend must be one of: %s, %s", FrontendTreeSitter, FrontendDump)
	}
	for i, ext := range cfg.Inputs.Extensions {
		ext = strings.TrimSpace(ext)
		if len(ext) < 2 || !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("inputs.extensions[%d] %q must start with '.'", i, ext)
		}
	}
	for i, f := range cfg.Inputs.Files {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("inputs.files[%d] must not be empty", i)
		}
		if _, err := glob.Compile(f, '/'); err != nil {
			return fmt.Errorf("inputs.files[%d] %q: %w", i, f, err)
		}
	}
	return nil
}

func validateCompile(cfg *Config) error {
	if _, err := ParseStd(cfg.Compile.Std); err != nil {
		return err
	}
	for i, d := range cfg.Compile.Defines {
		if _, err := ParseDefine(d); err != nil {
			return fmt.Errorf("compile.defines[%d]: %w", i, err)
		}
	}
	for i, u := range cfg.Compile.Undefines {
		if strings.TrimSpace(u) == "" {
			return fmt.Errorf("compile.undefines[%d] must not be empty", i)
		}
	}
	for i, dir := range cfg.Compile.IncludeDirs {
		if strings.TrimSpace(dir) == "" {
			return fmt.Errorf("compile.include_dirs[%d] must not be empty", i)
		}
	}
	return nil
}

func validateExclude(cfg *Config) error {
	for _, list := range []struct {
		name     string
		patterns []string
	}{
		{"exclude.dirs", cfg.Exclude.Dirs},
		{"exclude.files", cfg.Exclude.Files},
	} {
		for i, p := range list.patterns {
			if _, err := glob.Compile(p); err != nil {
				return fmt.Errorf("%s[%d] %q: %w", list.name, i, p, err)
			}
		}
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", cfg.Watch.Debounce)
	}
	if cfg.Watch.MaxRate < 0 {
		return fmt.Errorf("watch.max_rate must not be negative, got %v", cfg.Watch.MaxRate)
	}
	return nil
}

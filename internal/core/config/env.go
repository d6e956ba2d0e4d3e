package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: CPPBIND_[SECTION]_[KEY] (e.g., CPPBIND_MODULE_NAME).
func ApplyEnvOverrides(cfg *Config) {
	setEnvString(&cfg.Module.Name, "CPPBIND_MODULE_NAME")
	setEnvString(&cfg.Module.Output, "CPPBIND_MODULE_OUTPUT")

	setEnvString(&cfg.Inputs.Root, "CPPBIND_INPUTS_ROOT")
	setEnvString(&cfg.Inputs.Frontend, "CPPBIND_INPUTS_FRONTEND")
	setEnvList(&cfg.Inputs.Extensions, "CPPBIND_INPUTS_EXTENSIONS")

	setEnvString(&cfg.Compile.Std, "CPPBIND_COMPILE_STD")
	setEnvList(&cfg.Compile.IncludeDirs, "CPPBIND_COMPILE_INCLUDE_DIRS")
	setEnvBool(&cfg.Compile.FatalErrors, "CPPBIND_COMPILE_FATAL_ERRORS")

	setEnvDuration(&cfg.Watch.Debounce, "CPPBIND_WATCH_DEBOUNCE")
	setEnvFloat64(&cfg.Watch.MaxRate, "CPPBIND_WATCH_MAX_RATE")

	setEnvString(&cfg.Observability.MetricsAddr, "CPPBIND_OBSERVABILITY_METRICS_ADDR")
	setEnvString(&cfg.Observability.OTLPEndpoint, "CPPBIND_OBSERVABILITY_OTLP_ENDPOINT")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

// setEnvList splits a comma-separated value.
func setEnvList(target *[]string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		var out []string
		for _, part := range strings.Split(val, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		slog.Debug("applying env override", "key", key, "value", val)
		*target = out
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}

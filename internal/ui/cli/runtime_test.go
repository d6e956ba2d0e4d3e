package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cppbind/internal/core/config"
	"cppbind/internal/core/errors"
)

func TestParseOptions(t *testing.T) {
	var stderr bytes.Buffer
	opts, err := parseOptions([]string{
		"-lib", "geo", "-I", "inc", "-I", "third_party", "-D", "NDEBUG", "-D", "LEVEL=3",
		"-U", "OLD", "-fatal-errors", "a.hpp", "b.hpp",
	}, &stderr)
	require.NoError(t, err)

	assert.Equal(t, "geo", opts.lib)
	assert.Equal(t, stringList{"inc", "third_party"}, opts.includeDirs)
	assert.Equal(t, stringList{"NDEBUG", "LEVEL=3"}, opts.defines)
	assert.Equal(t, stringList{"OLD"}, opts.undefines)
	assert.True(t, opts.fatalErrors)
	assert.Equal(t, []string{"a.hpp", "b.hpp"}, opts.args)
	assert.Equal(t, config.DefaultFile, opts.configPath)
	assert.False(t, opts.set["config"])
	assert.True(t, opts.set["lib"])
}

func TestParseOptions_UnknownFlag(t *testing.T) {
	var stderr bytes.Buffer
	_, err := parseOptions([]string{"-bogus"}, &stderr)
	require.Error(t, err)
	assert.Contains(t, stderr.String(), "bogus")
}

func TestApplyOverrides(t *testing.T) {
	cwd := t.TempDir()

	t.Run("explicit flags replace config values", func(t *testing.T) {
		cfg := config.Default()
		cfg.Compile.FatalErrors = true
		cfg.Compile.IncludeDirs = []string{"/usr/include"}
		opts, err := parseOptions([]string{"-o", "out/b.cpp", "-fatal-errors=false", "-frontend", "DUMP", "-I", "inc", "-std", "c++14"}, &bytes.Buffer{})
		require.NoError(t, err)

		applyOverrides(opts, cfg, cwd)
		assert.Equal(t, filepath.Join(cwd, "out", "b.cpp"), cfg.Module.Output)
		assert.False(t, cfg.Compile.FatalErrors)
		assert.Equal(t, config.FrontendDump, cfg.Inputs.Frontend)
		assert.Equal(t, []string{"/usr/include", filepath.Join(cwd, "inc")}, cfg.Compile.IncludeDirs)
		assert.Equal(t, "c++14", cfg.Compile.Std)
	})

	t.Run("unset flags keep config values", func(t *testing.T) {
		cfg := config.Default()
		cfg.Module.Name = "shapes"
		cfg.Compile.FatalErrors = true
		opts, err := parseOptions(nil, &bytes.Buffer{})
		require.NoError(t, err)

		applyOverrides(opts, cfg, cwd)
		assert.Equal(t, "shapes", cfg.Module.Name)
		assert.True(t, cfg.Compile.FatalErrors)
	})

	t.Run("dash keeps stdout", func(t *testing.T) {
		cfg := config.Default()
		cfg.Module.Output = "bindings.cpp"
		opts, err := parseOptions([]string{"-o", "-"}, &bytes.Buffer{})
		require.NoError(t, err)

		applyOverrides(opts, cfg, cwd)
		assert.Equal(t, "-", cfg.Module.Output)
	})
}

const pointHeader = `
struct Point {
    int x;
    int y;
    double norm() const;
};
`

func runIn(t *testing.T, dir string, interactive bool, args ...string) (int, string, string) {
	t.Helper()
	t.Chdir(dir)
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr, interactive)
	return code, stdout.String(), stderr.String()
}

func TestRun(t *testing.T) {
	t.Run("version", func(t *testing.T) {
		code, stdout, _ := runIn(t, t.TempDir(), false, "-version")
		assert.Equal(t, errors.ExitOK, code)
		assert.Equal(t, "cppbind v"+versionString+"\n", stdout)
	})

	t.Run("bad flag", func(t *testing.T) {
		code, _, _ := runIn(t, t.TempDir(), false, "-nope")
		assert.Equal(t, errors.ExitUsage, code)
	})

	t.Run("missing file argument", func(t *testing.T) {
		code, stdout, stderr := runIn(t, t.TempDir(), false)
		assert.Equal(t, errors.ExitUsage, code)
		assert.Empty(t, stdout)
		assert.Contains(t, stderr, "missing file argument")
	})

	t.Run("invalid std", func(t *testing.T) {
		code, _, stderr := runIn(t, t.TempDir(), false, "-std", "c++99", "a.hpp")
		assert.Equal(t, errors.ExitUsage, code)
		assert.Contains(t, stderr, "invalid value 'c++99' for std flag")
	})

	t.Run("explicit config missing", func(t *testing.T) {
		code, _, _ := runIn(t, t.TempDir(), false, "-config", "nope.toml", "a.hpp")
		assert.Equal(t, errors.ExitUsage, code)
	})

	t.Run("generates to stdout", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "point.hpp"), []byte(pointHeader), 0o644))

		code, stdout, stderr := runIn(t, dir, false, "-lib", "geom", "point.hpp")
		require.Equal(t, errors.ExitOK, code, stderr)
		assert.Contains(t, stdout, `#include "point.hpp"`)
		assert.Contains(t, stdout, "PYBIND11_MODULE(geom, PB_m) {")
		assert.Contains(t, stdout, `PB_Point.def_readwrite("x", &Point::x);`)
		assert.NotContains(t, stderr, "no warnings", "summary is only printed to a terminal")
	})

	t.Run("generates to file with summary", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "point.hpp"), []byte(pointHeader), 0o644))

		code, stdout, stderr := runIn(t, dir, true, "-o", "gen/point.cpp", "point.hpp")
		require.Equal(t, errors.ExitOK, code, stderr)
		assert.Empty(t, stdout)
		assert.FileExists(t, filepath.Join(dir, "gen", "point.cpp"))
		assert.Contains(t, stderr, "1 inputs, 1 classes")
	})

	t.Run("config file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "include"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "include", "point.hpp"), []byte(pointHeader), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultFile), []byte(`
[module]
name = "points"
output = "out/bindings.cpp"

[inputs]
root = "include"
files = ["*.hpp"]
`), 0o644))

		code, _, stderr := runIn(t, dir, false)
		require.Equal(t, errors.ExitOK, code, stderr)
		data, err := os.ReadFile(filepath.Join(dir, "out", "bindings.cpp"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "PYBIND11_MODULE(points, PB_m) {")
	})

	t.Run("fatal syntax errors", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.hpp"), []byte("struct Bad { int x\n"), 0o644))

		code, stdout, _ := runIn(t, dir, false, "-fatal-errors", "bad.hpp")
		assert.Equal(t, errors.ExitParseFailure, code)
		assert.Empty(t, stdout)
	})
}

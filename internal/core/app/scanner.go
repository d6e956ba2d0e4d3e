package app

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"cppbind/internal/core/config"
	"cppbind/internal/core/errors"
	"cppbind/internal/shared/util"
)

// Input is one file of a run. Name is what the generated include line and the
// diagnostics call it; Path is where it is read from.
type Input struct {
	Name string
	Path string
}

// SelectInputs resolves the files of one run. Command-line arguments come
// first, in the order given. Config entries follow: literal paths are taken
// relative to inputs.root, and entries with glob metacharacters select the
// supported files under it, minus the exclude patterns, in lexical order.
func (a *App) SelectInputs(args []string) ([]Input, error) {
	var (
		out  []Input
		seen = make(map[string]bool)
	)
	add := func(in Input) {
		if seen[in.Path] {
			return
		}
		seen[in.Path] = true
		out = append(out, in)
	}

	for _, arg := range args {
		if strings.TrimSpace(arg) == "" {
			continue
		}
		add(Input{Name: arg, Path: config.ResolveRelative(a.opts.CWD, arg)})
	}

	var patterns []string
	for _, entry := range a.Config.Inputs.Files {
		if isGlob(entry) {
			patterns = append(patterns, entry)
			continue
		}
		add(Input{Name: entry, Path: config.ResolveRelative(a.paths.InputRoot, entry)})
	}
	if len(patterns) > 0 {
		matched, err := a.scanRoot(patterns)
		if err != nil {
			return nil, err
		}
		for _, in := range matched {
			add(in)
		}
	}

	if len(out) == 0 {
		return nil, errors.New(errors.CodeNotFound, "missing file argument")
	}
	return out, nil
}

func isGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[]{}")
}

// scanRoot walks inputs.root and returns the files matching any pattern. A
// pattern without a separator matches file names at any depth; otherwise it
// matches the slash-separated path relative to the root.
func (a *App) scanRoot(patterns []string) ([]Input, error) {
	type matcher struct {
		g        glob.Glob
		baseOnly bool
	}
	matchers := make([]matcher, 0, len(patterns))
	for _, p := range patterns {
		normalized := util.NormalizePatternPath(p)
		g, err := glob.Compile(normalized, '/')
		if err != nil {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeValidationError, "invalid input pattern"), errors.CtxField, p)
		}
		matchers = append(matchers, matcher{g: g, baseOnly: !util.ContainsPathSeparator(normalized)})
	}
	dirGlobs, err := compileGlobs(a.Config.Exclude.Dirs, "exclude dir")
	if err != nil {
		return nil, err
	}
	fileGlobs, err := compileGlobs(a.Config.Exclude.Files, "exclude file")
	if err != nil {
		return nil, err
	}

	root := a.paths.InputRoot
	var out []Input
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		base := d.Name()
		if d.IsDir() {
			if path != root && matchAny(dirGlobs, base) {
				return filepath.SkipDir
			}
			return nil
		}
		if !a.frontend.IsSupportedPath(path) || matchAny(fileGlobs, base) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		for _, m := range matchers {
			subject := rel
			if m.baseOnly {
				subject = base
			}
			if m.g.Match(subject) {
				out = append(out, Input{Name: rel, Path: path})
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "scan input root"), errors.CtxPath, root)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func compileGlobs(patterns []string, label string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeValidationError, fmt.Sprintf("invalid %s pattern %q", label, p))
		}
		out = append(out, g)
	}
	return out, nil
}

func matchAny(globs []glob.Glob, s string) bool {
	for _, g := range globs {
		if g.Match(s) {
			return true
		}
	}
	return false
}

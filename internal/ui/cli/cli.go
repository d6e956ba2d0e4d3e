package cli

import (
	"flag"
	"io"
	"strings"

	"cppbind/internal/core/config"
)

const versionString = "0.3.0"

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

type cliOptions struct {
	configPath  string
	lib         string
	output      string
	std         string
	includeDirs stringList
	defines     stringList
	undefines   stringList
	fatalErrors bool
	frontend    string
	watch       bool
	verbose     bool
	version     bool
	args        []string

	// set records the flags given explicitly, so zero values still override.
	set map[string]bool
}

func parseOptions(args []string, stderr io.Writer) (cliOptions, error) {
	opts := cliOptions{set: make(map[string]bool)}
	fs := flag.NewFlagSet("cppbind", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.configPath, "config", config.DefaultFile, "Path to config file")
	fs.StringVar(&opts.lib, "lib", "", "Python module name passed to PYBIND11_MODULE")
	fs.StringVar(&opts.output, "o", "", "Output file (- for stdout)")
	fs.StringVar(&opts.std, "std", "", "C++ language standard (c++98 ... c++20)")
	fs.Var(&opts.includeDirs, "I", "Add an include directory (repeatable)")
	fs.Var(&opts.defines, "D", "Define a macro as name or name=value (repeatable)")
	fs.Var(&opts.undefines, "U", "Undefine a macro (repeatable)")
	fs.BoolVar(&opts.fatalErrors, "fatal-errors", false, "Treat syntax errors in a header as a parse failure")
	fs.StringVar(&opts.frontend, "frontend", "", "Input frontend: treesitter or dump")
	fs.BoolVar(&opts.watch, "watch", false, "Regenerate whenever an input changes")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	opts.args = fs.Args()
	return opts, nil
}

// applyOverrides folds the command-line flags into cfg. Repeatable flags
// append to the config lists. Paths given on the command line are relative to
// cwd, not to the config file, so they are made absolute here.
func applyOverrides(opts cliOptions, cfg *config.Config, cwd string) {
	if opts.set["lib"] {
		cfg.Module.Name = opts.lib
	}
	if opts.set["o"] {
		cfg.Module.Output = opts.output
		if out := strings.TrimSpace(opts.output); out != "" && out != "-" {
			cfg.Module.Output = config.ResolveRelative(cwd, out)
		}
	}
	if opts.set["std"] {
		cfg.Compile.Std = opts.std
	}
	if opts.set["fatal-errors"] {
		cfg.Compile.FatalErrors = opts.fatalErrors
	}
	if opts.set["frontend"] {
		cfg.Inputs.Frontend = strings.ToLower(strings.TrimSpace(opts.frontend))
	}
	for _, dir := range opts.includeDirs {
		cfg.Compile.IncludeDirs = append(cfg.Compile.IncludeDirs, config.ResolveRelative(cwd, dir))
	}
	cfg.Compile.Defines = append(cfg.Compile.Defines, opts.defines...)
	cfg.Compile.Undefines = append(cfg.Compile.Undefines, opts.undefines...)
}

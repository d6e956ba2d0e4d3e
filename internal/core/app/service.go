package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"cppbind/internal/core/errors"
	"cppbind/internal/core/ports"
	"cppbind/internal/engine/ast"
	"cppbind/internal/engine/binding"
	"cppbind/internal/shared/observability"
	"cppbind/internal/shared/util"
)

var _ ports.GenerationService = (*App)(nil)

// Generate runs one generation: select inputs, parse each, build a module per
// file, merge them, emit, and write the result. Runs are serialized.
func (a *App) Generate(ctx context.Context, req ports.GenerateRequest) (ports.GenerateResult, error) {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	runID := uuid.NewString()
	ctx, span := observability.Tracer.Start(ctx, "app.Generate", trace.WithAttributes(
		attribute.String("run_id", runID),
		attribute.String("frontend", a.frontend.Name()),
	))
	defer span.End()

	start := time.Now()
	logger := slog.With("run_id", runID)
	res, err := a.generate(ctx, logger, req)
	res.RunID = runID
	observability.GenerateDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observability.RunsTotal.WithLabelValues("error").Inc()
	} else {
		observability.RunsTotal.WithLabelValues("ok").Inc()
	}
	a.record(&res, err)
	return res, err
}

func (a *App) generate(ctx context.Context, logger *slog.Logger, req ports.GenerateRequest) (ports.GenerateResult, error) {
	var res ports.GenerateResult

	inputs, err := a.SelectInputs(req.Inputs)
	if err != nil {
		return res, err
	}

	arena := binding.NewArena()
	roots := make([]*binding.RootModule, 0, len(inputs))
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		file, idx, err := a.load(ctx, in)
		if err != nil {
			return res, err
		}
		root, diags := binding.BuildFile(arena, file, idx, a.Config.Module.Name)
		roots = append(roots, root)
		res.Inputs = append(res.Inputs, in.Name)
		res.Diagnostics = append(res.Diagnostics, diags...)
	}

	_, emitSpan := observability.Tracer.Start(ctx, "app.emit")
	merged := binding.MergeRoots(roots...)
	source, emitDiags, err := merged.Generate()
	emitSpan.End()
	if err != nil {
		return res, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "emit bindings"), errors.CtxOperation, "emit")
	}
	res.Diagnostics = append(res.Diagnostics, emitDiags...)
	res.Source = source
	res.Classes = countClasses(&merged.Module)

	logDiagnostics(ctx, logger, res.Diagnostics)
	observability.ClassesBoundTotal.Add(float64(res.Classes))

	if err := a.write(&res); err != nil {
		return res, err
	}
	logger.Info("generated bindings",
		"inputs", len(res.Inputs),
		"classes", res.Classes,
		"warnings", binding.CountWarnings(res.Diagnostics),
		"output", outputLabel(res.Output),
		"unchanged", res.Unchanged,
	)
	return res, nil
}

func (a *App) load(ctx context.Context, in Input) (*ast.File, *ast.Index, error) {
	_, span := observability.Tracer.Start(ctx, "app.parse", trace.WithAttributes(attribute.String("path", in.Name)))
	defer span.End()

	content, err := os.ReadFile(in.Path)
	if err != nil {
		code := errors.CodeInternal
		if os.IsNotExist(err) {
			code = errors.CodeNotFound
		}
		return nil, nil, errors.AddContext(errors.Wrap(err, code, "read input"), errors.CtxPath, in.Path)
	}

	key := parseKey{name: in.Name, hash: xxhash.Sum64(content)}
	if cached, ok := a.parsed.Get(key); ok {
		span.SetAttributes(attribute.Bool("cached", true))
		return cached.file, cached.index, nil
	}

	start := time.Now()
	file, idx, err := a.frontend.Load(in.Name, content)
	observability.ParseDuration.WithLabelValues(a.frontend.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, errors.AddContext(err, errors.CtxFrontend, a.frontend.Name())
	}
	a.parsed.Put(key, parsedFile{file: file, index: idx})
	return file, idx, nil
}

// write sends the source to the output path, or to stdout when none is set.
// An output file that already holds the same source is left untouched so that
// watch mode does not trigger needless rebuilds.
func (a *App) write(res *ports.GenerateResult) error {
	path := a.paths.Output
	if path == "" {
		if _, err := io.WriteString(a.opts.Stdout, res.Source); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "write stdout")
		}
		return nil
	}

	res.Output = path
	if util.FileHasContent(path, []byte(res.Source)) {
		res.Unchanged = true
		return nil
	}
	if err := util.WriteStringWithDirs(path, res.Source, 0o644); err != nil {
		return errors.AddContext(errors.Wrap(err, errors.CodeInternal, "write output"), errors.CtxPath, path)
	}
	return nil
}

func outputLabel(path string) string {
	if path == "" {
		return "stdout"
	}
	return path
}

func logDiagnostics(ctx context.Context, logger *slog.Logger, diags []binding.Diagnostic) {
	for _, d := range diags {
		level := slog.LevelInfo
		if d.Severity == binding.SeverityWarning {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "diagnostic",
			"kind", string(d.Kind),
			"location", FormatLocation(d.Location),
			"message", d.Message,
		)
		observability.DiagnosticsTotal.WithLabelValues(string(d.Kind)).Inc()
	}
}

// FormatLocation renders file:line:column, dropping unknown parts.
func FormatLocation(loc ast.Location) string {
	switch {
	case loc.File == "":
		return ""
	case loc.Line == 0:
		return loc.File
	case loc.Column == 0:
		return fmt.Sprintf("%s:%d", loc.File, loc.Line)
	}
	return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Column)
}

// countClasses counts registered classes, nested ones included.
func countClasses(m *binding.Module) int {
	n := 0
	var walk func(classes []*binding.Class)
	walk = func(classes []*binding.Class) {
		for _, c := range classes {
			n++
			walk(c.Nested.Classes())
		}
	}
	walk(m.Classes.Classes())
	for _, s := range m.Submodules.List() {
		n += countClasses(&s.Module)
	}
	return n
}

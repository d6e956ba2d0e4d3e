package ports

import (
	"context"

	"cppbind/internal/engine/ast"
	"cppbind/internal/engine/binding"
)

// Frontend turns one input file into an entity tree and its index.
type Frontend interface {
	Name() string
	Load(path string, content []byte) (*ast.File, *ast.Index, error)
	IsSupportedPath(path string) bool
	SupportedExtensions() []string
}

// GenerateRequest names the inputs of one generation run. Inputs are used as
// given; an empty list falls back to the configured input selection.
type GenerateRequest struct {
	Inputs []string
}

// GenerateResult summarizes a completed generation run.
type GenerateResult struct {
	RunID       string
	Inputs      []string
	Classes     int
	Diagnostics []binding.Diagnostic
	Source      string
	// Output is the written path, empty when the source went to stdout.
	Output string
	// Unchanged reports that Output already held identical source.
	Unchanged bool
}

// GenerationService drives generation runs for the CLI and watch mode.
type GenerationService interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
}

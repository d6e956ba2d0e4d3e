package binding

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"cppbind/internal/engine/ast"
)

// generate builds and emits one dump given as YAML.
func generate(t *testing.T, src string) (string, []Diagnostic) {
	t.Helper()
	root, diags := build(t, "test.h", src)
	out, emitDiags, err := root.Generate()
	require.NoError(t, err)
	return out, append(diags, emitDiags...)
}

func build(t *testing.T, path, src string) (*RootModule, []Diagnostic) {
	t.Helper()
	file, idx, err := ast.DecodeDump(strings.NewReader(src), path)
	require.NoError(t, err)
	return BuildFile(NewArena(), file, idx, "example")
}

// activeLines returns the trimmed, uncommented lines of out that contain sub.
func activeLines(out, sub string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "//") || !strings.Contains(line, sub) {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func kinds(diags []Diagnostic) []DiagnosticKind {
	out := make([]DiagnosticKind, len(diags))
	for i, d := range diags {
		out[i] = d.Kind
	}
	return out
}

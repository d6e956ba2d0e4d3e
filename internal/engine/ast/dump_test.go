package ast

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDump = `
file: shapes.h
entities:
  - kind: namespace
    name: geo
    children:
      - kind: class
        name: Circle
        line: 12
        bases: [{name: Shape}, {name: Tracked, access: protected}]
        children:
          - {kind: access, access: public}
          - kind: method
            name: area
            return: double
            const: true
            override: true
          - {kind: constructor, name: Circle, params: [{name: r, type: double}]}
          - kind: field
            name: grid
            type: {spelling: "const int[3]", array: {spelling: const int, const: true}}
      - kind: struct
        name: Shape
        children:
          - {kind: method, name: area, return: double, pure: true, const: true}
      - {kind: struct, name: Tracked}
  - kind: class_template
    name: Box
    template_params: [T]
    children:
      - {kind: field, name: item, type: T}
  - {kind: specialization, primary: Box, args: int}
  - {kind: typedef, name: Alias}
`

func TestDecodeDump(t *testing.T) {
	file, idx, err := DecodeDump(strings.NewReader(sampleDump), "fallback.h")
	require.NoError(t, err)

	assert.Equal(t, "shapes.h", file.Name)
	require.Len(t, file.Children, 4)

	ns, ok := file.Children[0].(*Namespace)
	require.True(t, ok)
	require.Len(t, ns.Children, 3)

	circle, ok := ns.Children[0].(*Class)
	require.True(t, ok)
	assert.Equal(t, ClassKindClass, circle.ClassKind)
	assert.True(t, circle.Definition)
	assert.Equal(t, Location{File: "shapes.h", Line: 12}, circle.Loc())
	assert.Equal(t, EntityID("shapes.h#geo::Circle"), circle.ID)

	require.Len(t, circle.Bases, 2)
	assert.Equal(t, EntityID("shapes.h#geo::Shape"), circle.Bases[0].ID, "bases declared later still resolve")
	assert.Equal(t, AccessProtected, circle.Bases[1].Access)

	area, ok := circle.Children[1].(*MemberFunction)
	require.True(t, ok)
	assert.Equal(t, "double", area.Return.Spelling)
	assert.True(t, area.Const)
	assert.True(t, area.Override)

	grid, ok := circle.Children[3].(*MemberVariable)
	require.True(t, ok)
	assert.True(t, grid.Type.DeepConst())
	assert.False(t, grid.Type.Const)

	shape, ok := ns.Children[1].(*Class)
	require.True(t, ok)
	assert.Equal(t, ClassKindStruct, shape.ClassKind)
	pure := shape.Children[0].(*MemberFunction)
	assert.True(t, pure.Virtual, "pure implies virtual")

	tmpl, ok := file.Children[1].(*ClassTemplate)
	require.True(t, ok)
	assert.Equal(t, []string{"T"}, tmpl.Params)

	spec, ok := file.Children[2].(*ClassTemplateSpecialization)
	require.True(t, ok)
	assert.Equal(t, tmpl.ID, spec.Primary)
	assert.Equal(t, "Box<int>", spec.EntityName())

	unexposed, ok := file.Children[3].(*Unexposed)
	require.True(t, ok)
	assert.Equal(t, "typedef", unexposed.What)
	assert.Equal(t, KindUnexposed, unexposed.Kind())

	got, ok := idx.LookupTemplate(tmpl.ID)
	require.True(t, ok)
	assert.Same(t, tmpl, got)
}

func TestDecodeDumpJSON(t *testing.T) {
	src := `{"entities": [{"kind": "function", "name": "run", "return": "int", "params": [{"name": "argc", "type": "int"}]}]}`
	file, _, err := DecodeDump(strings.NewReader(src), "main.h")
	require.NoError(t, err)

	assert.Equal(t, "main.h", file.Name)
	fn, ok := file.Children[0].(*Function)
	require.True(t, ok)
	assert.Equal(t, "run", fn.EntityName())
	assert.Equal(t, []Param{{Name: "argc", Type: Type{Spelling: "int"}}}, fn.Params)
}

func TestDecodeDumpErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing kind", "entities:\n  - {name: x}\n"},
		{"malformed", "entities: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeDump(strings.NewReader(tt.src), "bad.h")
			assert.Error(t, err)
		})
	}
}

func TestForwardDeclarationYieldsToDefinition(t *testing.T) {
	src := `
entities:
  - {kind: class, name: Node, forward: true}
  - {kind: struct, name: Leaf, bases: [{name: Node}]}
  - kind: class
    name: Node
    children:
      - {kind: field, name: next, type: Node*}
`
	_, idx, err := DecodeDump(strings.NewReader(src), "tree.h")
	require.NoError(t, err)

	node, ok := idx.LookupClass("tree.h#Node")
	require.True(t, ok)
	assert.True(t, node.Definition)
	assert.Len(t, node.Children, 1)
}

func TestLoadDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.yaml")
	require.NoError(t, os.WriteFile(path, []byte("entities:\n  - {kind: function, name: f, return: void}\n"), 0o644))

	file, idx, err := LoadDump(path)
	require.NoError(t, err)
	assert.Equal(t, path, file.Name)
	assert.Equal(t, 0, idx.Len())

	_, _, err = LoadDump(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

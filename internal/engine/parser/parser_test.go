package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cppbind/internal/core/errors"
	"cppbind/internal/engine/ast"
	"cppbind/internal/engine/binding"
)

func newTestParser(t *testing.T, opts Options) *Parser {
	t.Helper()
	loader, err := NewGrammarLoader(nil)
	require.NoError(t, err)
	return NewParser(loader, opts)
}

func parseHeader(t *testing.T, src string) (*ast.File, *ast.Index) {
	t.Helper()
	p := newTestParser(t, Options{})
	file, idx, err := p.ParseFile("shapes.hpp", []byte(src))
	require.NoError(t, err)
	return file, idx
}

// find returns the first entity named name at any depth.
func find(entities []ast.Entity, name string) ast.Entity {
	for _, e := range entities {
		if e.EntityName() == name {
			return e
		}
		if found := find(ast.Children(e), name); found != nil {
			return found
		}
	}
	return nil
}

func findClass(t *testing.T, file *ast.File, name string) *ast.Class {
	t.Helper()
	e := find(file.Children, name)
	c, ok := e.(*ast.Class)
	require.Truef(t, ok, "expected class %s, got %T", name, e)
	return c
}

func childKinds(entities []ast.Entity) map[string]ast.Kind {
	out := make(map[string]ast.Kind)
	for _, e := range entities {
		out[e.EntityName()] = e.Kind()
	}
	return out
}

func TestGrammarLoader_Extensions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		gl, err := NewGrammarLoader(nil)
		require.NoError(t, err)
		assert.Equal(t, []string{".h", ".hh", ".hpp", ".hxx"}, gl.SupportedExtensions())
	})

	t.Run("custom normalized", func(t *testing.T) {
		gl, err := NewGrammarLoader([]string{".HPP", " .inl "})
		require.NoError(t, err)
		assert.Equal(t, []string{".hpp", ".inl"}, gl.SupportedExtensions())
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := NewGrammarLoader([]string{"hpp"})
		assert.Error(t, err)
	})
}

func TestParser_IsSupportedPath(t *testing.T) {
	p := newTestParser(t, Options{})
	cases := map[string]bool{
		"include/shape.hpp": true,
		"include/shape.H":   true,
		"src/shape.cpp":     false,
		"README.md":         false,
	}
	for path, want := range cases {
		if got := p.IsSupportedPath(path); got != want {
			t.Errorf("IsSupportedPath(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestCppExtraction_ClassMembers(t *testing.T) {
	file, _ := parseHeader(t, `
class Point {
public:
    Point();
    Point(int x, int y);
    ~Point();
    int norm() const;
    static Point origin();
    int x;
    const int id = 0;
    double grid[2][3];
private:
    int secret;
};
`)
	c := findClass(t, file, "Point")
	assert.True(t, c.Definition)
	assert.Equal(t, ast.ClassKindClass, c.ClassKind)

	var ctors []*ast.Constructor
	for _, e := range c.Children {
		if k, ok := e.(*ast.Constructor); ok {
			ctors = append(ctors, k)
		}
	}
	require.Len(t, ctors, 2)
	assert.Empty(t, ctors[0].Params)
	require.Len(t, ctors[1].Params, 2)
	assert.Equal(t, "int", ctors[1].Params[0].Type.Spelling)
	assert.Equal(t, "y", ctors[1].Params[1].Name)

	kinds := childKinds(c.Children)
	assert.Equal(t, ast.KindDestructor, kinds["~Point"])
	assert.Equal(t, ast.KindMemberFunction, kinds["norm"])
	assert.Equal(t, ast.KindFunction, kinds["origin"])
	assert.Equal(t, ast.KindMemberVariable, kinds["x"])
	assert.Equal(t, ast.KindMemberVariable, kinds["secret"])

	norm := find(c.Children, "norm").(*ast.MemberFunction)
	assert.True(t, norm.Const)
	assert.False(t, norm.Virtual)

	origin := find(c.Children, "origin").(*ast.Function)
	assert.True(t, origin.Static)

	id := find(c.Children, "id").(*ast.MemberVariable)
	assert.True(t, id.Type.Const)

	grid := find(c.Children, "grid").(*ast.MemberVariable)
	require.NotNil(t, grid.Type.Array)
	assert.Equal(t, "double[2][3]", grid.Type.Spelling)

	var access []ast.Access
	for _, e := range c.Children {
		if a, ok := e.(*ast.AccessSpecifier); ok {
			access = append(access, a.Access)
		}
	}
	assert.Equal(t, []ast.Access{ast.AccessPublic, ast.AccessPrivate}, access)
}

func TestCppExtraction_VirtualsAndBases(t *testing.T) {
	file, idx := parseHeader(t, `
namespace geo {
struct Shape {
    virtual ~Shape();
    virtual double area() const = 0;
    virtual void scale(double f);
};

class Circle final : public Shape {
public:
    double area() const override;
    void scale(double f) final;
    Circle(const Circle&) = delete;
};

class Hidden : private Shape {};
}
`)
	shape := findClass(t, file, "Shape")
	assert.Equal(t, ast.ClassKindStruct, shape.ClassKind)

	area := find(shape.Children, "area").(*ast.MemberFunction)
	assert.True(t, area.Virtual)
	assert.True(t, area.Pure)
	assert.True(t, area.Const)

	scale := find(shape.Children, "scale").(*ast.MemberFunction)
	assert.True(t, scale.Virtual)
	assert.False(t, scale.Pure)
	require.Len(t, scale.Params, 1)
	assert.Equal(t, "double", scale.Params[0].Type.Spelling)

	circle := findClass(t, file, "Circle")
	assert.True(t, circle.Final)
	require.Len(t, circle.Bases, 1)
	assert.Equal(t, "Shape", circle.Bases[0].Name)
	assert.Equal(t, ast.AccessPublic, circle.Bases[0].Access)
	base, ok := idx.LookupClass(circle.Bases[0].ID)
	require.True(t, ok, "base should resolve within the namespace")
	assert.Same(t, shape, base)

	override := find(circle.Children, "area").(*ast.MemberFunction)
	assert.True(t, override.Override)
	final := find(circle.Children, "scale").(*ast.MemberFunction)
	assert.True(t, final.Final)

	var deleted bool
	for _, e := range circle.Children {
		if k, ok := e.(*ast.Constructor); ok && k.Deleted {
			deleted = true
		}
	}
	assert.True(t, deleted, "copy constructor should be marked deleted")

	hidden := findClass(t, file, "Hidden")
	require.Len(t, hidden.Bases, 1)
	assert.Equal(t, ast.AccessPrivate, hidden.Bases[0].Access)
}

func TestCppExtraction_Namespaces(t *testing.T) {
	file, _ := parseHeader(t, `
namespace a::b {
void f();
}
namespace {
int hidden;
}
int top(int);
`)
	a, ok := find(file.Children, "a").(*ast.Namespace)
	require.True(t, ok)
	b, ok := find(a.Children, "b").(*ast.Namespace)
	require.True(t, ok)
	assert.Equal(t, ast.KindFunction, find(b.Children, "f").Kind())

	anon, ok := find(file.Children, "").(*ast.Namespace)
	require.True(t, ok)
	assert.Equal(t, ast.KindVariable, find(anon.Children, "hidden").Kind())

	top := find(file.Children, "top").(*ast.Function)
	require.Len(t, top.Params, 1)
	assert.Empty(t, top.Params[0].Name)
}

func TestCppExtraction_Templates(t *testing.T) {
	file, idx := parseHeader(t, `
template <typename T, int N>
struct Vec {
    T data[N];
    T at(int i) const;
};

template class Vec<float, 3>;

template <typename T>
struct Vec<T*, 1> {};

template <typename T>
T identity(T v);
`)
	tmpl, ok := find(file.Children, "Vec").(*ast.ClassTemplate)
	require.True(t, ok)
	assert.Equal(t, []string{"T", "N"}, tmpl.Params)
	require.NotNil(t, tmpl.Body)
	assert.Equal(t, ast.KindMemberFunction, find(tmpl.Body.Children, "at").Kind())

	var spec *ast.ClassTemplateSpecialization
	var unexposed []string
	for _, e := range file.Children {
		switch v := e.(type) {
		case *ast.ClassTemplateSpecialization:
			spec = v
		case *ast.Unexposed:
			unexposed = append(unexposed, v.What)
		}
	}
	require.NotNil(t, spec)
	assert.Equal(t, "Vec", spec.PrimaryName)
	assert.Equal(t, "float, 3", spec.Args)
	primary, ok := idx.LookupTemplate(spec.Primary)
	require.True(t, ok)
	assert.Same(t, tmpl, primary)

	assert.Contains(t, unexposed, "partial specialization")
	assert.Contains(t, unexposed, "template")
}

func TestCppExtraction_Unexposed(t *testing.T) {
	file, _ := parseHeader(t, `
enum Color { Red, Green };
typedef int Handle;
using Size = unsigned long;
struct V { V operator+(const V&) const; };
`)
	var whats []string
	for _, e := range ast.Children(file) {
		if u, ok := e.(*ast.Unexposed); ok {
			whats = append(whats, u.What)
		}
	}
	assert.Contains(t, whats, "enum")
	assert.Contains(t, whats, "typedef")
	assert.Contains(t, whats, "alias")

	v := findClass(t, file, "V")
	op, ok := v.Children[0].(*ast.Unexposed)
	require.True(t, ok)
	assert.Equal(t, "operator", op.What)
}

func TestCppExtraction_InlineDefinitionsSkipBodies(t *testing.T) {
	file, _ := parseHeader(t, `
struct Counter {
    int value() const { int local = 1; return local; }
    void bump() { struct Tmp {}; }
};
inline int helper() { int x = 0; return x; }
`)
	c := findClass(t, file, "Counter")
	kinds := childKinds(c.Children)
	assert.Len(t, kinds, 2)
	assert.Equal(t, ast.KindMemberFunction, kinds["value"])
	assert.Equal(t, ast.KindMemberFunction, kinds["bump"])
	assert.Nil(t, find(file.Children, "local"))
	assert.Nil(t, find(file.Children, "Tmp"))
	assert.Equal(t, ast.KindFunction, find(file.Children, "helper").Kind())
}

func TestCppExtraction_Locations(t *testing.T) {
	file, _ := parseHeader(t, "\n\nstruct Late {};\n")
	c := findClass(t, file, "Late")
	assert.Equal(t, "shapes.hpp", c.Location.File)
	assert.Equal(t, 3, c.Location.Line)
	assert.Equal(t, 1, c.Location.Column)
}

func TestParser_SyntaxErrors(t *testing.T) {
	src := []byte("struct Ok { int a; };\nstruct Broken { int b\n")

	t.Run("recovered", func(t *testing.T) {
		p := newTestParser(t, Options{})
		res, err := p.Parse("broken.hpp", src)
		require.NoError(t, err)
		assert.Positive(t, res.SyntaxErrors)
		assert.NotNil(t, find(res.File.Children, "Ok"))
	})

	t.Run("fatal", func(t *testing.T) {
		p := newTestParser(t, Options{FatalErrors: true})
		_, err := p.Parse("broken.hpp", src)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.CodeParseFailure))
		assert.Equal(t, errors.ExitParseFailure, errors.ExitCode(err))
		assert.Contains(t, err.Error(), "broken.hpp")
	})
}

func TestParser_HeaderToBindings(t *testing.T) {
	file, idx := parseHeader(t, `
namespace geo {
class Shape {
public:
    virtual double area() const = 0;
};
class Square : public Shape {
public:
    explicit Square(double side);
    double area() const override;
};
}
`)
	root, diags := binding.BuildFile(binding.NewArena(), file, idx, "shapes")
	out, emitDiags, err := root.Generate()
	require.NoError(t, err)
	diags = append(diags, emitDiags...)
	assert.Zero(t, binding.CountWarnings(diags), "diagnostics: %v", diags)

	assert.Contains(t, out, `#include "shapes.hpp"`)
	assert.Contains(t, out, `def_submodule("geo")`)
	assert.Contains(t, out, "PYBIND11_OVERRIDE_PURE")
	assert.True(t, strings.Index(out, `"Shape"`) < strings.Index(out, `"Square"`),
		"base must be registered before derived class")
	assert.Contains(t, out, "py::init<double>()")
}

func TestParser_NamespacedTrampolineAndConstTemplates(t *testing.T) {
	file, idx := parseHeader(t, `
namespace ns {
struct Bar {};
struct Foo {
    virtual Bar f(Bar b);
    const std::vector<int*> table;
    const std::map<int, const int*> lookup;
    std::vector<const int*> refs;
};
}
`)
	root, diags := binding.BuildFile(binding.NewArena(), file, idx, "shapes")
	out, emitDiags, err := root.Generate()
	require.NoError(t, err)
	diags = append(diags, emitDiags...)
	assert.Zero(t, binding.CountWarnings(diags), "diagnostics: %v", diags)

	using := strings.Index(out, "using namespace ns;")
	tramp := strings.Index(out, "struct TrPB_ns__Foo : ns::Foo {")
	require.GreaterOrEqual(t, tramp, 0)
	assert.Contains(t, out, "namespace PB_ns {\nusing namespace ns;\n")
	assert.Less(t, using, tramp, "trampoline must see namespace-scope types")
	assert.Contains(t, out, "Bar f(Bar b) override {")

	assert.Contains(t, out, `PB_ns__Foo.def_readonly("table", &ns::Foo::table);`)
	assert.Contains(t, out, `PB_ns__Foo.def_readonly("lookup", &ns::Foo::lookup);`)
	assert.Contains(t, out, `PB_ns__Foo.def_readwrite("refs", &ns::Foo::refs);`)
}

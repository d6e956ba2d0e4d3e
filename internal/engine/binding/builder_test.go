package binding

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImplicitDefaultConstructor(t *testing.T) {
	out, diags := generate(t, `
entities:
  - kind: struct
    name: Point
    children:
      - {kind: field, name: x, type: int}
      - {kind: field, name: origin, type: const int}
`)
	assert.Empty(t, diags)
	assert.Len(t, activeLines(out, "py::init<"), 1)
	assert.Contains(t, out, "PB_Point.def(py::init<>());")
	assert.Contains(t, out, `PB_Point.def_readwrite("x", &Point::x);`)
	assert.Contains(t, out, `PB_Point.def_readonly("origin", &Point::origin);`)
}

func TestSuppressedConstructorsFallBackToDefault(t *testing.T) {
	out, _ := generate(t, `
entities:
  - kind: struct
    name: Handle
    children:
      - {kind: constructor, name: Handle, params: [{name: h, type: Handle&&}]}
      - {kind: constructor, name: Handle, params: [{type: const Handle&}], deleted: true}
`)
	assert.Equal(t, []string{"PB_Handle.def(py::init<>());"}, activeLines(out, "py::init<"))
	assert.Contains(t, out, "// PB_Handle.def(py::init<Handle&&>());")
	assert.NotContains(t, out, "const Handle&")
}

func TestExplicitConstructors(t *testing.T) {
	out, _ := generate(t, `
entities:
  - kind: struct
    name: Color
    children:
      - {kind: constructor, name: Color, params: [{name: r, type: int}, {name: g, type: int}, {name: b, type: int}]}
      - {kind: constructor, name: Color}
`)
	assert.Equal(t, []string{
		"PB_Color.def(py::init<int, int, int>());",
		"PB_Color.def(py::init<>());",
	}, activeLines(out, "py::init<"))
}

func TestOverloadMarking(t *testing.T) {
	out, _ := generate(t, `
entities:
  - kind: struct
    name: Calc
    children:
      - {kind: method, name: add, return: int, params: [{type: int}]}
      - {kind: method, name: add, return: double, params: [{type: double}]}
      - {kind: method, name: get, return: int, const: true}
      - {kind: method, name: get, return: int, const: true, params: [{type: int}]}
      - {kind: method, name: reset, return: void}
      - {kind: method, name: reset, return: void}
`)
	assert.Contains(t, out, `PB_Calc.def("add", py::overload_cast<int>(&Calc::add));`)
	assert.Contains(t, out, `PB_Calc.def("add", py::overload_cast<double>(&Calc::add));`)
	assert.Contains(t, out, `PB_Calc.def("get", py::overload_cast<>(&Calc::get, py::const_));`)
	assert.Contains(t, out, `PB_Calc.def("get", py::overload_cast<int>(&Calc::get, py::const_));`)
	assert.Equal(t, []string{`PB_Calc.def("reset", &Calc::reset);`}, activeLines(out, `"reset"`))
}

func TestStaticMembers(t *testing.T) {
	out, _ := generate(t, `
entities:
  - kind: struct
    name: Registry
    children:
      - {kind: function, name: instance, return: Registry&, static: true}
      - {kind: variable, name: count, type: int, static: true}
      - {kind: variable, name: limit, type: const int, static: true}
      - {kind: function, name: make, return: Registry, static: true}
      - {kind: method, name: make, return: Registry, params: [{type: int}]}
`)
	assert.Contains(t, out, `PB_Registry.def_static("instance", &Registry::instance);`)
	assert.Contains(t, out, `PB_Registry.def_readwrite_static("count", &Registry::count);`)
	assert.Contains(t, out, `PB_Registry.def_readonly_static("limit", &Registry::limit);`)
	assert.Contains(t, out, `PB_Registry.def_static("make_static", py::overload_cast<>(&Registry::make));`)
	assert.Contains(t, out, `PB_Registry.def("make", py::overload_cast<int>(&Registry::make));`)
}

func TestRvalueMethodIsCommented(t *testing.T) {
	out, diags := generate(t, `
entities:
  - kind: struct
    name: Sink
    children:
      - {kind: method, name: take, return: void, params: [{name: s, type: "std::string&&"}]}
      - {kind: method, name: keep, return: void, params: [{name: s, type: "const std::string&"}]}
`)
	assert.Empty(t, activeLines(out, `"take"`))
	assert.Contains(t, out, `// PB_Sink.def("take", &Sink::take);`)
	assert.Contains(t, out, `PB_Sink.def("keep", &Sink::keep);`)
	assert.Contains(t, kinds(diags), DiagRvalueReference)
}

func TestAccessControl(t *testing.T) {
	out, _ := generate(t, `
entities:
  - kind: class
    name: Account
    children:
      - {kind: field, name: secret, type: int}
      - {kind: access, access: public}
      - {kind: method, name: balance, return: double, const: true}
      - {kind: method, name: close, return: void, deleted: true}
      - {kind: access, access: protected}
      - {kind: field, name: audit, type: int}
      - {kind: method, name: log, return: void}
      - {kind: destructor, name: ~Account}
`)
	assert.Contains(t, out, `PB_Account.def("balance", &Account::balance);`)
	assert.NotContains(t, out, "secret")
	assert.NotContains(t, out, "audit")
	assert.NotContains(t, out, `"log"`)
	assert.NotContains(t, out, `"close"`)
	assert.NotContains(t, out, "~Account")
}

func TestTrampoline(t *testing.T) {
	out, _ := generate(t, `
entities:
  - kind: struct
    name: Shape
    children:
      - {kind: method, name: area, return: double, const: true, virtual: true, pure: true}
      - {kind: method, name: scale, return: void, virtual: true, params: [{name: factor, type: double}, {type: int}]}
      - {kind: method, name: name, return: "std::string"}
`)
	assert.Contains(t, out, "struct TrPB_Shape : Shape {\n  using Shape::Shape;\n")
	assert.Contains(t, out, strings.Join([]string{
		"  double area() const override {",
		"    PYBIND11_OVERRIDE_PURE(",
		"      double, /* return type */",
		"      Shape, /* parent class */",
		"      area, /* function name */",
		"    );",
		"  }",
	}, "\n"))
	assert.Contains(t, out, strings.Join([]string{
		"  void scale(double factor, int arg_1) override {",
		"    PYBIND11_OVERRIDE(",
		"      void, /* return type */",
		"      Shape, /* parent class */",
		"      scale, /* function name */",
		"      factor, arg_1",
		"    );",
		"  }",
	}, "\n"))
	assert.NotContains(t, out, "name() override")
	assert.Contains(t, out, `py::class_<Shape, TrPB_Shape> PB_Shape(PB_m, "Shape"); {`)
}

func TestTrampolineInNamespaceSeesNamespaceTypes(t *testing.T) {
	out, _ := generate(t, `
entities:
  - kind: namespace
    name: outer
    children:
      - kind: namespace
        name: inner
        children:
          - {kind: struct, name: Bar}
          - kind: struct
            name: Foo
            children:
              - {kind: method, name: f, return: Bar, virtual: true, params: [{name: b, type: Bar}]}
`)
	ns := strings.Index(out, "namespace PB_outer__inner {\n")
	using := strings.Index(out, "using namespace outer::inner;\n")
	tramp := strings.Index(out, "struct TrPB_outer__inner__Foo : outer::inner::Foo {")
	require.GreaterOrEqual(t, ns, 0)
	require.GreaterOrEqual(t, tramp, 0)
	assert.Less(t, ns, using)
	assert.Less(t, using, tramp, "using-directive must precede the trampoline")
	assert.Contains(t, out, "  Bar f(Bar b) override {")
}

func TestFinalClassHasNoTrampoline(t *testing.T) {
	out, _ := generate(t, `
entities:
  - kind: struct
    name: Leaf
    final: true
    children:
      - {kind: method, name: visit, return: void, virtual: true}
`)
	assert.NotContains(t, out, "TrPB_Leaf")
	assert.Contains(t, out, `py::class_<Leaf> PB_Leaf(PB_m, "Leaf"); {`)
}

func TestFinalMethodHasNoForwarder(t *testing.T) {
	out, _ := generate(t, `
entities:
  - kind: struct
    name: Node
    children:
      - {kind: method, name: visit, return: void, virtual: true}
      - {kind: method, name: seal, return: void, override: true, final: true}
`)
	assert.Contains(t, out, "void visit() override {")
	assert.NotContains(t, out, "void seal() override {")
}

func TestInheritedMethodIsReparented(t *testing.T) {
	out, diags := generate(t, `
entities:
  - kind: struct
    name: Derived
    bases: [{name: Base}]
  - kind: struct
    name: Base
    children:
      - {kind: method, name: f, return: void, virtual: true, pure: true}
`)
	assert.Empty(t, diags)
	assert.Contains(t, out, `PB_Derived.def("f", &Derived::f);`)
	assert.NotContains(t, out, `PB_Derived.def("f", &Base::f);`)
	assert.Contains(t, out, `PB_Base.def("f", &Base::f);`)
	assert.Contains(t, out, `py::class_<Derived, Base, TrPB_Derived> PB_Derived(PB_m, "Derived"); {`)
	assert.Contains(t, out, "      Derived, /* parent class */")

	base := strings.Index(out, "py::class_<Base")
	derived := strings.Index(out, "py::class_<Derived")
	require.NotEqual(t, -1, base)
	assert.Less(t, base, derived, "bases are registered first")
}

func TestInheritedOverrideReplacesBaseMethod(t *testing.T) {
	out, _ := generate(t, `
entities:
  - kind: struct
    name: Animal
    children:
      - {kind: method, name: speak, return: "std::string", const: true, virtual: true}
      - {kind: field, name: legs, type: int}
  - kind: struct
    name: Dog
    bases: [{name: Animal}]
    children:
      - {kind: method, name: speak, return: "std::string", const: true, override: true}
`)
	assert.Equal(t, []string{`PB_Dog.def("speak", &Dog::speak);`}, activeLines(out, `PB_Dog.def("speak"`))
	assert.Contains(t, out, `PB_Dog.def_readwrite("legs", &Dog::legs);`)
}

func TestUnresolvedAndNonPublicBases(t *testing.T) {
	out, diags := generate(t, `
entities:
  - kind: class
    name: Widget
    bases:
      - {name: Missing}
      - {name: Impl, access: private}
    children:
      - {kind: access, access: public}
      - {kind: method, name: draw, return: void}
  - kind: struct
    name: Impl
    children:
      - {kind: method, name: hidden, return: void}
`)
	assert.Contains(t, out, `py::class_<Widget, Missing> PB_Widget(PB_m, "Widget"); {`)
	assert.NotContains(t, out, "Widget::hidden")
	assert.Contains(t, kinds(diags), DiagUnresolvedBase)
	assert.Contains(t, kinds(diags), DiagNonPublicBase)
}

func TestInheritanceCycleTerminates(t *testing.T) {
	_, diags := generate(t, `
entities:
  - kind: struct
    name: A
    bases: [{name: B}]
  - kind: struct
    name: B
    bases: [{name: A}]
`)
	assert.Contains(t, kinds(diags), DiagUnresolvedBase)
	assert.Contains(t, kinds(diags), DiagUnorderedClass)
}

func TestProtectedPureVirtualCommentsClass(t *testing.T) {
	out, diags := generate(t, `
entities:
  - kind: class
    name: Engine
    children:
      - {kind: access, access: public}
      - {kind: method, name: run, return: void}
      - {kind: access, access: protected}
      - {kind: method, name: step, return: void, virtual: true, pure: true}
`)
	assert.Empty(t, activeLines(out, "Engine"))
	assert.Contains(t, out, "// py::class_<Engine")
	assert.NotContains(t, out, "struct TrPB_Engine")
	assert.Contains(t, kinds(diags), DiagProtectedPureVirtual)
}

func TestNamespacesBecomeSubmodules(t *testing.T) {
	out, _ := generate(t, `
entities:
  - kind: namespace
    name: geo
    children:
      - kind: struct
        name: Shape
        children:
          - {kind: method, name: area, return: double, const: true, virtual: true, pure: true}
      - kind: namespace
        name: detail
        children:
          - {kind: function, name: helper, return: void}
      - {kind: function, name: distance, return: double}
  - kind: namespace
    children:
      - {kind: function, name: hidden, return: void}
  - {kind: function, name: version, return: int}
  - {kind: function, name: removed, return: void, deleted: true}
`)
	assert.Contains(t, out, "namespace PB_geo {\n")
	assert.Contains(t, out, "struct TrPB_geo__Shape : geo::Shape {\n  using geo::Shape::Shape;\n")
	assert.Contains(t, out, "} // namespace PB_geo")
	assert.NotContains(t, out, "namespace PB_geo__detail {")

	assert.Contains(t, out, `py::module_ PB_geo = PB_m.def_submodule("geo"); {`)
	assert.Contains(t, out, "using namespace geo;")
	assert.Contains(t, out, `py::module_ PB_geo__detail = PB_geo.def_submodule("detail"); {`)
	assert.Contains(t, out, "using namespace geo::detail;")
	assert.Contains(t, out, `PB_geo__detail.def("helper", &geo::detail::helper);`)
	assert.Contains(t, out, `PB_geo.def("distance", &geo::distance);`)
	assert.Contains(t, out, `py::class_<geo::Shape, PB_geo::TrPB_geo__Shape> PB_geo__Shape(PB_geo, "Shape"); {`)

	assert.Contains(t, out, `PB_m.def("hidden", &hidden);`)
	assert.Contains(t, out, `PB_m.def("version", &version);`)
	assert.NotContains(t, out, "removed")
}

func TestReopenedNamespaceMerges(t *testing.T) {
	out, _ := generate(t, `
entities:
  - kind: namespace
    name: io
    children:
      - {kind: function, name: read, return: int}
  - kind: namespace
    name: io
    children:
      - {kind: function, name: write, return: int}
`)
	assert.Equal(t, 1, strings.Count(out, `def_submodule("io")`))
	assert.Contains(t, out, `PB_io.def("read", &io::read);`)
	assert.Contains(t, out, `PB_io.def("write", &io::write);`)
}

func TestNestedClasses(t *testing.T) {
	out, _ := generate(t, `
entities:
  - kind: struct
    name: Outer
    children:
      - kind: struct
        name: Inner
        children:
          - {kind: field, name: value, type: int}
          - {kind: method, name: tick, return: void, virtual: true}
      - {kind: struct, name: Later, forward: true}
`)
	assert.Contains(t, out, `py::class_<Outer::Inner, TrPB_Outer__Inner> PB_Outer__Inner(PB_Outer, "Inner"); {`)
	assert.Contains(t, out, `PB_Outer__Inner.def_readwrite("value", &Outer::Inner::value);`)
	assert.Contains(t, out, "struct TrPB_Outer__Inner : Outer::Inner {\n  using Outer::Inner::Inner;\n")
	assert.NotContains(t, out, "Later")

	outer := strings.Index(out, "py::class_<Outer>")
	inner := strings.Index(out, "py::class_<Outer::Inner")
	assert.Less(t, outer, inner)
}

func TestTemplateSpecialization(t *testing.T) {
	out, diags := generate(t, `
entities:
  - kind: class_template
    name: Vec
    class_kind: struct
    template_params: [T]
    children:
      - {kind: field, name: x, type: T}
      - {kind: constructor, name: Vec, params: [{name: x, type: T}]}
      - {kind: method, name: norm, return: T, const: true, virtual: true}
  - {kind: specialization, primary: Vec, args: float}
`)
	assert.Contains(t, kinds(diags), DiagIgnoredEntity, "the primary template itself is not bound")
	assert.Contains(t, out, `py::class_<Vec<float>, TrPB_Vec_float_> PB_Vec_float_(PB_m, "Vec_float_"); {`)
	assert.Contains(t, out, "PB_Vec_float_.def(py::init<float>());")
	assert.Contains(t, out, `PB_Vec_float_.def_readwrite("x", &Vec<float>::x);`)
	assert.Contains(t, out, "struct TrPB_Vec_float_ : Vec<float> {\n  using Vec<float>::Vec;\n")
	assert.Contains(t, out, "  float norm() const override {")
}

func TestTemplateArityMismatch(t *testing.T) {
	_, diags := generate(t, `
entities:
  - kind: class_template
    name: Pair
    class_kind: struct
    template_params: [K, V]
    children:
      - {kind: field, name: first, type: K}
  - {kind: specialization, primary: Pair, args: "std::map<int, int>, int"}
`)
	assert.Contains(t, kinds(diags), DiagTemplateArity)
}

func TestUnresolvedTemplate(t *testing.T) {
	out, diags := generate(t, `
entities:
  - {kind: specialization, primary: Nowhere, args: int}
`)
	assert.Contains(t, kinds(diags), DiagUnresolvedTemplate)
	assert.NotContains(t, out, "py::class_")
}

func TestUnsupportedEntitiesWarn(t *testing.T) {
	out, diags := generate(t, `
entities:
  - {kind: variable, name: global_count, type: int}
  - {kind: enum, name: Color}
  - {kind: function, name: ok, return: void}
`)
	require.Len(t, diags, 2)
	for _, d := range diags {
		assert.Equal(t, DiagIgnoredEntity, d.Kind)
		assert.Equal(t, SeverityWarning, d.Severity)
	}
	assert.Contains(t, diags[1].Message, "ignored: Color (unexposed)")
	assert.Contains(t, out, `PB_m.def("ok", &ok);`)
}

func TestBaseDiagnosticsAreReportedOnce(t *testing.T) {
	_, diags := generate(t, `
entities:
  - kind: struct
    name: Base
    children:
      - {kind: method, name: take, return: void, params: [{type: int&&}]}
  - kind: struct
    name: One
    bases: [{name: Base}]
  - kind: struct
    name: Two
    bases: [{name: Base}]
`)
	var rvalue []Diagnostic
	for _, d := range diags {
		if d.Kind == DiagRvalueReference && strings.Contains(d.Message, "Base::take") {
			rvalue = append(rvalue, d)
		}
	}
	assert.Len(t, rvalue, 1)
}

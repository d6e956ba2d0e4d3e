package binding

import (
	"strconv"
	"strings"

	"cppbind/internal/engine/ast"
)

type Param struct {
	Type string
	Name string
}

type Method struct {
	Def
	Return   string
	Params   []Param
	Virtual  bool
	Pure     bool
	Override bool
	Final    bool
	Const    bool
	Deleted  bool
	Overload bool
	Static   bool
	Location ast.Location
}

func renderParams(in []ast.Param, subst Substitution) []Param {
	out := make([]Param, 0, len(in))
	for _, p := range in {
		out = append(out, Param{Type: subst.Render(p.Type.Spelling), Name: p.Name})
	}
	return out
}

// NewMethod binds a member function. Param and return types are rendered under
// subst.
func NewMethod(fn *ast.MemberFunction, owner Name, protected bool, subst Substitution) Method {
	return Method{
		Def:      Def{Name: owner.Child(fn.Name), Owner: owner, Kind: DefFunction, Protected: protected},
		Return:   subst.Render(fn.Return.Spelling),
		Params:   renderParams(fn.Params, subst),
		Virtual:  fn.Virtual,
		Pure:     fn.Pure,
		Override: fn.Override,
		Final:    fn.Final,
		Const:    fn.Const,
		Deleted:  fn.Deleted,
		Location: fn.Location,
	}
}

// NewStaticMethod binds a static member function.
func NewStaticMethod(fn *ast.Function, owner Name, protected bool, subst Substitution) Method {
	return Method{
		Def:      Def{Name: owner.Child(fn.Name), Owner: owner, Kind: DefFunction, Protected: protected},
		Return:   subst.Render(fn.Return.Spelling),
		Params:   renderParams(fn.Params, subst),
		Deleted:  fn.Deleted,
		Static:   true,
		Location: fn.Location,
	}
}

func (m Method) NeedsTrampoline() bool {
	return (m.Virtual || m.Override) && !m.Final && !m.Deleted
}

// Panic reports whether the method cannot be bound through a member pointer.
// Rvalue-reference parameters are the only such case.
func (m Method) Panic() bool {
	return hasRvalueParam(m.Params)
}

func hasRvalueParam(params []Param) bool {
	for _, p := range params {
		if strings.Contains(p.Type, "&&") {
			return true
		}
	}
	return false
}

func (m Method) SameSignature(o Method) bool {
	if m.Name.Simple() != o.Name.Simple() || m.Return != o.Return || len(m.Params) != len(o.Params) {
		return false
	}
	for i := range m.Params {
		if m.Params[i].Type != o.Params[i].Type {
			return false
		}
	}
	return true
}

func (m Method) Reparent(owner Name) Method {
	m.Def = m.Def.Reparent(owner)
	return m
}

// ExposedName is the Python name. Overloaded static methods get a suffix since
// Python cannot overload across static and instance methods of one name.
func (m Method) ExposedName() string {
	if m.Overload && m.Static {
		return m.Name.PyName() + "_static"
	}
	return m.Name.PyName()
}

func joinParamTypes(params []Param) string {
	types := make([]string, len(params))
	for i, p := range params {
		types[i] = p.Type
	}
	return strings.Join(types, ", ")
}

func (m Method) print(p Printer) {
	if m.Deleted || m.Protected {
		return
	}

	def := "def"
	if m.Static {
		def = "def_static"
	}

	ref := "&" + m.Name.CppName()
	if m.Overload {
		ref = "py::overload_cast<" + joinParamTypes(m.Params) + ">(" + ref
		if m.Const {
			ref += ", py::const_"
		}
		ref += ")"
	}

	line := m.Owner.BindName() + "." + def + "(\"" + m.ExposedName() + "\", " + ref + ");"
	if m.Panic() {
		line = "// " + line
	}
	p.Line(line)
}

func argName(p Param, k int) string {
	if p.Name != "" {
		return p.Name
	}
	return "arg_" + strconv.Itoa(k)
}

// printTrampoline writes the override that forwards to Python.
func (m Method) printTrampoline(p Printer) {
	if !m.NeedsTrampoline() || m.Protected {
		return
	}

	args := make([]string, len(m.Params))
	decl := make([]string, len(m.Params))
	for k, param := range m.Params {
		args[k] = argName(param, k)
		decl[k] = param.Type + " " + args[k]
	}

	sig := m.Return + " " + m.Name.Simple() + "(" + strings.Join(decl, ", ") + ")"
	if m.Const {
		sig += " const"
	}
	sig += " override {"

	macro := "PYBIND11_OVERRIDE("
	if m.Pure {
		macro = "PYBIND11_OVERRIDE_PURE("
	}

	p.Line(sig)
	body := p.Indent("  ")
	body.Line(macro)
	inner := body.Indent("  ")
	inner.Line(m.Return + ", /* return type */")
	inner.Line(m.Owner.CppName() + ", /* parent class */")
	inner.Line(m.Name.Simple() + ", /* function name */")
	if len(args) > 0 {
		inner.Line(strings.Join(args, ", "))
	}
	body.Line(");")
	p.Line("}")
	p.Blank()
}

package binding

import (
	"io"
	"strings"
)

// Emit writes the complete registration source for r: the prelude (includes
// and trampoline structs) followed by the PYBIND11_MODULE body. The returned
// diagnostics come from class ordering; the error is the first write error.
func (r *RootModule) Emit(w io.Writer) ([]Diagnostic, error) {
	p := NewPrinter(w)

	p.Line("#include <pybind11/pybind11.h>")
	p.Line("namespace py = pybind11;")
	p.Blank()
	if len(r.Includes) > 0 {
		for _, inc := range r.Includes {
			p.Line("#include \"" + inc + "\"")
		}
		p.Blank()
	}
	r.printPrelude(p)

	p.Line("PYBIND11_MODULE(" + r.LibName + ", " + r.Name.BindName() + ") {")
	diags := r.printBody(p.Indent("  "), "")
	p.Line("}")

	return diags, p.Err()
}

// Generate emits r into a string.
func (r *RootModule) Generate() (string, []Diagnostic, error) {
	var b strings.Builder
	diags, err := r.Emit(&b)
	return b.String(), diags, err
}

func (m *Module) printPrelude(p Printer) {
	for _, c := range m.Classes.Classes() {
		c.printTrampoline(p)
	}
	for _, s := range m.Submodules.List() {
		s.printPrelude(p)
	}
}

// printPrelude wraps the submodule's trampolines in a namespace named after its
// handle, so same-named classes in different namespaces do not collide. The
// using-directive lets unqualified type spellings in overrides resolve the way
// they do inside the C++ namespace.
func (s *Submodule) printPrelude(p Printer) {
	if !s.hasTrampolines() {
		return
	}
	p.Line("namespace " + s.Name.BindName() + " {")
	p.Line("using namespace " + s.Name.CppName() + ";")
	p.Blank()
	s.Module.printPrelude(p)
	p.Line("} // namespace " + s.Name.BindName())
	p.Blank()
}

// printBody emits registrations. ns is the namespace path of this module's
// trampolines as seen from the global scope.
func (m *Module) printBody(p Printer, ns string) []Diagnostic {
	var diags []Diagnostic
	for _, s := range m.Submodules.List() {
		p.Line("py::module_ " + s.Name.BindName() + " = " + s.Parent.BindName() + ".def_submodule(\"" + s.Name.PyName() + "\"); {")
		body := p.Indent("  ")
		body.Line("using namespace " + s.Name.CppName() + ";")
		body.Blank()
		inner := ns
		if s.hasTrampolines() {
			inner += s.Name.BindName() + "::"
		}
		diags = append(diags, s.printBody(body, inner)...)
		p.Line("}")
		p.Blank()
	}

	ordered, orderDiags := m.Classes.Order()
	diags = append(diags, orderDiags...)
	for _, c := range ordered {
		diags = append(diags, c.print(p, ns)...)
	}

	for _, d := range m.Defs {
		d.print(p)
	}
	return diags
}

// Package binding turns an ast entity tree into pybind11 registration code.
//
// A build produces a RootModule per file; roots merge into one aggregate which
// is then emitted as a prelude (includes, trampolines) and a PYBIND11_MODULE
// body. Problems never abort a build: they are returned as Diagnostics and the
// offending registration is skipped or commented out.
package binding

import "strings"

// Name is a C++ identifier together with the scope it lives in. The zero value
// is not meaningful; use NewName, RootName or Child.
type Name struct {
	simple    string
	scope     string
	autoScope bool
}

func NewName(simple, scope string) Name {
	return Name{simple: simple, scope: scope}
}

// RootName builds a name whose children do not get it as a scope prefix. The
// root module handle uses it so top-level entities keep their plain names.
func RootName(simple string) Name {
	return Name{simple: simple, autoScope: true}
}

// anchor is the empty scope base classes are built under.
var anchor = Name{autoScope: true}

func (n Name) Simple() string { return n.simple }
func (n Name) Scope() string  { return n.scope }

// CppName is the qualified name used in &name references.
func (n Name) CppName() string { return n.scope + n.simple }

func (n Name) AsScope() string {
	if n.autoScope {
		return n.scope
	}
	return n.scope + n.simple + "::"
}

// BindName is the registration handle variable for this name.
func (n Name) BindName() string { return "PB_" + Sanitize(n.CppName()) }

// PyName is the name exposed to Python.
func (n Name) PyName() string { return Sanitize(n.simple) }

func (n Name) Child(simple string) Name {
	return Name{simple: simple, scope: n.AsScope()}
}

// Reparent moves the name under parent, keeping the simple name.
func (n Name) Reparent(parent Name) Name {
	return parent.Child(n.simple)
}

func (n Name) String() string { return n.CppName() }

// Sanitize replaces every byte that cannot appear in a C++ identifier with '_'.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('_')
	}
	return b.String()
}

// unqualified returns the last scope component: "ns::Base" -> "Base".
func unqualified(name string) string {
	name = strings.TrimSpace(name)
	depth := 0
	for i := len(name) - 1; i > 0; i-- {
		switch name[i] {
		case '>':
			depth++
		case '<':
			depth--
		case ':':
			if depth == 0 && name[i-1] == ':' {
				return name[i+1:]
			}
		}
	}
	return strings.TrimPrefix(name, "::")
}

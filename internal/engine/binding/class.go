package binding

import "cppbind/internal/engine/ast"

// ClassID addresses a Class inside its Arena.
type ClassID int

type Class struct {
	ID     ClassID
	Name   Name
	Parent Name
	// Primary is the injected class name: "Vec" for the specialization
	// "Vec<float>", otherwise the simple name.
	Primary      string
	Bases        []string
	Final        bool
	Members      []Def
	Methods      []Method
	Constructors []Constructor
	Nested       ClassCollection
	Location     ast.Location
}

func (c *Class) AddMember(d Def) {
	c.Members = append(c.Members, d)
}

// AddMethod appends m, first dropping any method with the same signature. The
// same declaration reached twice (repeated parses, several inheritance paths)
// thus appears once, at the position of its last addition.
func (c *Class) AddMethod(m Method) {
	kept := c.Methods[:0]
	for _, existing := range c.Methods {
		if !existing.SameSignature(m) {
			kept = append(kept, existing)
		}
	}
	c.Methods = append(kept, m)
}

func (c *Class) AddConstructor(k Constructor) {
	c.Constructors = append(c.Constructors, k)
}

// Finalize computes overload groups. A method is an overload when another
// method of the same simple name has a different signature. It runs after the
// class is built and again after every merge.
func (c *Class) Finalize() {
	groups := make(map[string][]int)
	for i, m := range c.Methods {
		groups[m.Name.Simple()] = append(groups[m.Name.Simple()], i)
	}
	for _, idxs := range groups {
		overload := false
		for _, i := range idxs[1:] {
			if !c.Methods[idxs[0]].SameSignature(c.Methods[i]) {
				overload = true
				break
			}
		}
		for _, i := range idxs {
			c.Methods[i].Overload = overload
		}
	}
}

// inherit copies the base's data members and methods into c, re-parented to
// c. Nested classes of the base are not copied.
func (c *Class) inherit(base *Class) {
	for _, d := range base.Members {
		c.AddMember(d.Reparent(c.Name))
	}
	for _, m := range base.Methods {
		c.AddMethod(m.Reparent(c.Name))
	}
}

// Panic reports whether the class cannot be exposed: a protected pure virtual
// method is never bound, so a Python subclass could not satisfy the contract.
func (c *Class) Panic() bool {
	for _, m := range c.Methods {
		if m.Protected && m.Pure {
			return true
		}
	}
	return false
}

func (c *Class) NeedsTrampoline() bool {
	if c.Final {
		return false
	}
	for _, m := range c.Methods {
		if m.NeedsTrampoline() {
			return true
		}
	}
	return false
}

func (c *Class) TrampolineName() string {
	return "Tr" + c.Name.BindName()
}

func (c *Class) activeConstructors() int {
	n := 0
	for _, k := range c.Constructors {
		if !k.suppressed() {
			n++
		}
	}
	return n
}

// merge folds o into c: the longer base list wins, member lists concatenate,
// nested collections merge by name.
func (c *Class) merge(o *Class) {
	if len(o.Bases) > len(c.Bases) {
		c.Bases = append([]string(nil), o.Bases...)
	}
	c.Final = c.Final || o.Final
	c.Members = append(c.Members, o.Members...)
	c.Methods = append(c.Methods, o.Methods...)
	c.Constructors = append(c.Constructors, o.Constructors...)
	c.Nested.Merge(o.Nested)
	c.Finalize()
}

func (c *Class) printTrampoline(p Printer) {
	for _, nested := range c.Nested.Classes() {
		nested.printTrampoline(p)
	}
	if !c.NeedsTrampoline() || c.Panic() {
		return
	}

	qualified := c.Name.CppName()
	p.Line("struct " + c.TrampolineName() + " : " + qualified + " {")
	body := p.Indent("  ")
	body.Line("using " + qualified + "::" + c.Primary + ";")
	body.Blank()
	for _, m := range c.Methods {
		m.printTrampoline(body)
	}
	p.Line("};")
	p.Blank()
}

// print emits the class registration. ns is the namespace path the prelude put
// this class's trampoline in.
func (c *Class) print(p Printer, ns string) []Diagnostic {
	if c.Panic() {
		p = p.Commented()
	}

	decl := "py::class_<" + c.Name.CppName()
	for _, base := range c.Bases {
		decl += ", " + base
	}
	if c.NeedsTrampoline() {
		decl += ", " + ns + c.TrampolineName()
	}
	decl += "> " + c.Name.BindName() + "(" + c.Parent.BindName() + ", \"" + c.Name.PyName() + "\");"
	p.Line(decl + " {")

	body := p.Indent("  ")
	if c.activeConstructors() == 0 {
		body.Line(c.Name.BindName() + ".def(py::init<>());")
	}
	for _, k := range c.Constructors {
		k.print(body)
	}
	for _, d := range c.Members {
		d.print(body)
	}
	for _, m := range c.Methods {
		m.print(body)
	}

	ordered, diags := c.Nested.Order()
	for _, nested := range ordered {
		diags = append(diags, nested.print(body, ns)...)
	}

	p.Line("}")
	p.Blank()
	return diags
}

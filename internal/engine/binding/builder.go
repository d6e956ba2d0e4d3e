package binding

import (
	"cppbind/internal/engine/ast"
)

// Builder converts one file's entity tree into a RootModule. It reads the
// index and never mutates it.
type Builder struct {
	arena *Arena
	index *ast.Index
	diags diagnostics

	// bases caches base classes built under the empty anchor scope.
	bases    map[ast.EntityID]*Class
	building map[ast.EntityID]bool
}

func NewBuilder(arena *Arena, index *ast.Index) *Builder {
	if arena == nil {
		arena = NewArena()
	}
	return &Builder{
		arena:    arena,
		index:    index,
		bases:    make(map[ast.EntityID]*Class),
		building: make(map[ast.EntityID]bool),
	}
}

// Build processes every top-level entity of file.
func (b *Builder) Build(file *ast.File, libName string) (*RootModule, []Diagnostic) {
	root := NewRootModule(libName, b.arena)
	if file.Name != "" {
		root.Includes = append(root.Includes, file.Name)
	}
	for _, e := range file.Children {
		b.processModule(&root.Module, e)
	}
	return root, b.diags.take()
}

// BuildFile is a one-shot Build with a fresh builder.
func BuildFile(arena *Arena, file *ast.File, index *ast.Index, libName string) (*RootModule, []Diagnostic) {
	return NewBuilder(arena, index).Build(file, libName)
}

func (b *Builder) processModule(m *Module, e ast.Entity) {
	switch v := e.(type) {
	case *ast.Function:
		if v.Deleted {
			return
		}
		m.Defs = append(m.Defs, NewFunctionDef(v.Name, m.Name))
	case *ast.Namespace:
		if v.Name == "" {
			// Members of an unnamed namespace are reachable through the
			// enclosing scope.
			for _, child := range v.Children {
				b.processModule(m, child)
			}
			return
		}
		sub := NewSubmodule(v.Name, m.Name, b.arena)
		for _, child := range v.Children {
			b.processModule(&sub.Module, child)
		}
		m.Submodules.Add(sub)
	case *ast.Class:
		if !v.Definition {
			return
		}
		m.Classes.Add(b.buildClass(v, v.Name, m.Name, nil))
	case *ast.ClassTemplateSpecialization:
		if c := b.instantiate(v, m.Name, nil); c != nil {
			m.Classes.Add(c)
		}
	case *ast.AccessSpecifier, *ast.Destructor:
	default:
		b.ignored(e)
	}
}

func (b *Builder) ignored(e ast.Entity) {
	b.diags.warn(DiagIgnoredEntity, e.Loc(), "ignored: %s (%s)", e.EntityName(), e.Kind())
}

// buildClass builds cl under parent with the given simple name. subst is the
// substitution context of an enclosing template instantiation, or nil.
func (b *Builder) buildClass(cl *ast.Class, simple string, parent Name, subst Substitution) *Class {
	c := b.arena.New(parent.Child(simple), parent)
	c.Primary = ast.StripTemplateArgs(cl.Name)
	c.Final = cl.Final
	c.Location = cl.Location

	for _, ref := range cl.Bases {
		if ref.Access != ast.AccessPublic {
			b.diags.info(DiagNonPublicBase, cl.Location, "%s: %s base %s is not exposed", c.Name.CppName(), ref.Access, ref.Name)
			continue
		}
		c.Bases = append(c.Bases, subst.Render(ref.Name))
		base := b.baseClass(ref)
		if base == nil {
			b.diags.warn(DiagUnresolvedBase, cl.Location, "%s: base class %s not found", c.Name.CppName(), ref.Name)
			continue
		}
		c.inherit(base)
	}

	access := cl.ClassKind.DefaultAccess()
	for _, child := range cl.Children {
		if spec, ok := child.(*ast.AccessSpecifier); ok {
			access = spec.Access
			continue
		}
		if access == ast.AccessPrivate {
			continue
		}
		b.processClassChild(c, child, access == ast.AccessProtected, subst)
	}

	c.Finalize()
	b.report(c)
	return c
}

func (b *Builder) processClassChild(c *Class, e ast.Entity, protected bool, subst Substitution) {
	switch v := e.(type) {
	case *ast.MemberFunction:
		c.AddMethod(NewMethod(v, c.Name, protected, subst))
	case *ast.Function:
		c.AddMethod(NewStaticMethod(v, c.Name, protected, subst))
	case *ast.Constructor:
		c.AddConstructor(NewConstructor(v, c.Name, protected, subst))
	case *ast.MemberVariable:
		c.AddMember(NewFieldDef(v.Name, c.Name, v.Type, false, protected))
	case *ast.Variable:
		c.AddMember(NewFieldDef(v.Name, c.Name, v.Type, v.Static, protected))
	case *ast.Class:
		if !v.Definition {
			return
		}
		c.Nested.Add(b.buildClass(v, v.Name, c.Name, subst))
	case *ast.ClassTemplateSpecialization:
		if nested := b.instantiate(v, c.Name, subst); nested != nil {
			c.Nested.Add(nested)
		}
	case *ast.Destructor:
	default:
		b.ignored(e)
	}
}

// report records the per-entity suppressions made while emitting c.
func (b *Builder) report(c *Class) {
	if c.Panic() {
		b.diags.warn(DiagProtectedPureVirtual, c.Location,
			"%s has a protected pure virtual method; registration commented out", c.Name.CppName())
	}
	for _, m := range c.Methods {
		if m.Panic() && !m.Deleted && !m.Protected {
			b.diags.info(DiagRvalueReference, m.Location,
				"%s takes an rvalue reference; registration commented out", m.Name.CppName())
		}
	}
	for _, k := range c.Constructors {
		if k.Panic() && !k.Deleted && !k.Protected {
			b.diags.info(DiagRvalueReference, k.Location,
				"constructor of %s takes an rvalue reference; registration commented out", c.Name.CppName())
		}
	}
}

// baseClass builds the class behind ref under the empty anchor scope. Results
// are cached per entity; a base reached while it is still being built (an
// inheritance cycle) counts as unresolved.
func (b *Builder) baseClass(ref ast.BaseRef) *Class {
	if ref.ID == "" {
		return nil
	}
	if c, ok := b.bases[ref.ID]; ok {
		return c
	}
	if b.building[ref.ID] {
		return nil
	}
	cl, ok := b.index.LookupClass(ref.ID)
	if !ok {
		return nil
	}
	b.building[ref.ID] = true
	c := b.buildClass(cl, cl.Name, anchor, nil)
	delete(b.building, ref.ID)
	b.bases[ref.ID] = c
	return c
}

// instantiate materializes Primary<Args> from the primary template's body.
func (b *Builder) instantiate(spec *ast.ClassTemplateSpecialization, parent Name, outer Substitution) *Class {
	tmpl, ok := b.index.LookupTemplate(spec.Primary)
	if !ok || tmpl.Body == nil {
		b.diags.warn(DiagUnresolvedTemplate, spec.Location, "primary template of %s not found", spec.EntityName())
		return nil
	}

	args := outer.Render(spec.Args)
	subst, exact := NewSubstitution(tmpl.Params, args)
	if !exact {
		b.diags.warn(DiagTemplateArity, spec.Location,
			"%s: %d template parameters but arguments %q split into a different count",
			tmpl.Name, len(tmpl.Params), args)
	}

	return b.buildClass(tmpl.Body, tmpl.Name+"<"+args+">", parent, outer.Extend(subst))
}

package binding

import "cppbind/internal/engine/ast"

// DefKind is the pybind11 registration method a Def emits.
type DefKind string

const (
	DefFunction        DefKind = "def"
	DefReadWrite       DefKind = "def_readwrite"
	DefReadOnly        DefKind = "def_readonly"
	DefReadWriteStatic DefKind = "def_readwrite_static"
	DefReadOnlyStatic  DefKind = "def_readonly_static"
)

// Def binds a free function or a data member.
type Def struct {
	Name      Name
	Owner     Name
	Kind      DefKind
	Protected bool
}

func NewFunctionDef(simple string, owner Name) Def {
	return Def{Name: owner.Child(simple), Owner: owner, Kind: DefFunction}
}

// NewFieldDef binds a data member. Types that are const at any array depth are
// read-only.
func NewFieldDef(simple string, owner Name, t ast.Type, static, protected bool) Def {
	kind := DefReadWrite
	if t.DeepConst() {
		kind = DefReadOnly
	}
	if static {
		kind += "_static"
	}
	return Def{Name: owner.Child(simple), Owner: owner, Kind: kind, Protected: protected}
}

// Reparent returns a copy bound to owner, used when a derived class takes over
// a base's members.
func (d Def) Reparent(owner Name) Def {
	d.Name = d.Name.Reparent(owner)
	d.Owner = owner
	return d
}

func (d Def) print(p Printer) {
	if d.Protected {
		return
	}
	p.Line(d.Owner.BindName() + "." + string(d.Kind) + "(\"" + d.Name.PyName() + "\", &" + d.Name.CppName() + ");")
}

package binding

// Module holds what one namespace (or the file itself) registers.
type Module struct {
	Name       Name
	Submodules SubmoduleCollection
	Defs       []Def
	Classes    ClassCollection
}

func newModule(name Name, arena *Arena) Module {
	return Module{
		Name:    name,
		Classes: NewClassCollection(arena),
	}
}

// Submodule is a namespace, registered with def_submodule on its parent.
type Submodule struct {
	Module
	Parent Name
}

func NewSubmodule(simple string, parent Name, arena *Arena) *Submodule {
	return &Submodule{Module: newModule(parent.Child(simple), arena), Parent: parent}
}

// RootModule is the module of one file, or of several after merging.
type RootModule struct {
	Module
	LibName  string
	Includes []string
}

// RootModuleName is the handle PYBIND11_MODULE receives.
const RootModuleName = "m"

func NewRootModule(libName string, arena *Arena) *RootModule {
	return &RootModule{Module: newModule(RootName(RootModuleName), arena), LibName: libName}
}

// SubmoduleCollection keys submodules by simple name in first-insertion order.
// Reopened namespaces land in the same submodule.
type SubmoduleCollection struct {
	keys []string
	mods map[string]*Submodule
}

func (sc *SubmoduleCollection) Add(s *Submodule) {
	if sc.mods == nil {
		sc.mods = make(map[string]*Submodule)
	}
	key := s.Name.Simple()
	if existing, ok := sc.mods[key]; ok {
		if existing != s {
			existing.merge(&s.Module)
		}
		return
	}
	sc.mods[key] = s
	sc.keys = append(sc.keys, key)
}

func (sc *SubmoduleCollection) Merge(o SubmoduleCollection) {
	for _, key := range o.keys {
		sc.Add(o.mods[key])
	}
}

func (sc SubmoduleCollection) Get(simple string) (*Submodule, bool) {
	s, ok := sc.mods[simple]
	return s, ok
}

func (sc SubmoduleCollection) Len() int { return len(sc.keys) }

func (sc SubmoduleCollection) List() []*Submodule {
	out := make([]*Submodule, 0, len(sc.keys))
	for _, key := range sc.keys {
		out = append(out, sc.mods[key])
	}
	return out
}

func (m *Module) merge(o *Module) {
	m.Submodules.Merge(o.Submodules)
	m.Classes.Merge(o.Classes)
	m.Defs = append(m.Defs, o.Defs...)
}

// Merge folds o into r. Includes concatenate; everything else merges by name.
func (r *RootModule) Merge(o *RootModule) {
	r.Includes = append(r.Includes, o.Includes...)
	r.merge(&o.Module)
}

// MergeRoots accumulates roots left to right into the first one. It returns
// nil for no roots.
func MergeRoots(roots ...*RootModule) *RootModule {
	if len(roots) == 0 {
		return nil
	}
	acc := roots[0]
	for _, r := range roots[1:] {
		acc.Merge(r)
	}
	return acc
}

// hasTrampolines reports whether the module's prelude has anything to emit.
func (m *Module) hasTrampolines() bool {
	for _, c := range m.Classes.Classes() {
		if classHasTrampolines(c) {
			return true
		}
	}
	for _, s := range m.Submodules.List() {
		if s.hasTrampolines() {
			return true
		}
	}
	return false
}

func classHasTrampolines(c *Class) bool {
	if c.NeedsTrampoline() && !c.Panic() {
		return true
	}
	for _, n := range c.Nested.Classes() {
		if classHasTrampolines(n) {
			return true
		}
	}
	return false
}

package binding

// Arena owns every Class of a run. Collections refer to classes by ClassID, so
// merging never deep-copies a class tree that already lives in the arena.
type Arena struct {
	classes []*Class
}

func NewArena() *Arena {
	return &Arena{}
}

// New allocates an empty class.
func (a *Arena) New(name, parent Name) *Class {
	c := &Class{
		ID:      ClassID(len(a.classes)),
		Name:    name,
		Parent:  parent,
		Primary: name.Simple(),
		Nested:  NewClassCollection(a),
	}
	a.classes = append(a.classes, c)
	return c
}

func (a *Arena) Get(id ClassID) *Class {
	if a == nil || int(id) < 0 || int(id) >= len(a.classes) {
		return nil
	}
	return a.classes[id]
}

func (a *Arena) Len() int {
	if a == nil {
		return 0
	}
	return len(a.classes)
}

// adopt returns the id of c inside a. Classes from another arena are copied,
// nested classes included.
func (a *Arena) adopt(from *Arena, id ClassID) ClassID {
	if from == a {
		return id
	}
	src := from.Get(id)
	dst := a.New(src.Name, src.Parent)
	dst.Primary = src.Primary
	dst.Bases = append([]string(nil), src.Bases...)
	dst.Final = src.Final
	dst.Members = append([]Def(nil), src.Members...)
	dst.Methods = append([]Method(nil), src.Methods...)
	dst.Constructors = append([]Constructor(nil), src.Constructors...)
	dst.Location = src.Location
	dst.Nested.Merge(src.Nested)
	return dst.ID
}

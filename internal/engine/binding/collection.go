package binding

// ClassCollection maps simple class names to classes, keeping first-insertion
// order. Adding a class under an existing name merges the two.
type ClassCollection struct {
	arena *Arena
	keys  []string
	ids   map[string]ClassID
}

func NewClassCollection(arena *Arena) ClassCollection {
	return ClassCollection{arena: arena, ids: make(map[string]ClassID)}
}

func (cc *ClassCollection) Add(c *Class) {
	cc.put(cc.arena, c.Name.Simple(), c.ID)
}

func (cc *ClassCollection) put(from *Arena, key string, id ClassID) {
	if cc.ids == nil {
		cc.ids = make(map[string]ClassID)
	}
	if cc.arena == nil {
		cc.arena = from
	}
	if existing, ok := cc.ids[key]; ok {
		dst := cc.arena.Get(existing)
		src := from.Get(id)
		if dst != src {
			dst.merge(src)
		}
		return
	}
	cc.ids[key] = cc.arena.adopt(from, id)
	cc.keys = append(cc.keys, key)
}

// Merge unions o into cc. Same-named classes merge.
func (cc *ClassCollection) Merge(o ClassCollection) {
	for _, key := range o.keys {
		cc.put(o.arena, key, o.ids[key])
	}
}

func (cc ClassCollection) Len() int { return len(cc.keys) }

func (cc ClassCollection) Get(simple string) (*Class, bool) {
	id, ok := cc.ids[simple]
	if !ok {
		return nil, false
	}
	return cc.arena.Get(id), true
}

// Classes returns the classes in insertion order.
func (cc ClassCollection) Classes() []*Class {
	out := make([]*Class, 0, len(cc.keys))
	for _, key := range cc.keys {
		out = append(out, cc.arena.Get(cc.ids[key]))
	}
	return out
}

// Order sorts the classes so every base defined in this collection comes
// before the classes deriving from it. Bases match on their unqualified name.
// When a pass makes no progress (a cycle, or a class naming itself) the
// remaining classes are appended in their current order, with one warning each.
func (cc ClassCollection) Order() ([]*Class, []Diagnostic) {
	remaining := cc.Classes()
	waiting := make(map[string]bool, len(remaining))
	for _, key := range cc.keys {
		waiting[key] = true
	}

	blocker := func(c *Class) string {
		for _, base := range c.Bases {
			if waiting[unqualified(base)] {
				return base
			}
		}
		return ""
	}

	var diags diagnostics
	out := make([]*Class, 0, len(remaining))
	for len(remaining) > 0 {
		var next []*Class
		progress := false
		for _, c := range remaining {
			if blocker(c) != "" {
				next = append(next, c)
				continue
			}
			out = append(out, c)
			delete(waiting, c.Name.Simple())
			progress = true
		}
		if !progress {
			for _, c := range next {
				diags.warn(DiagUnorderedClass, c.Location,
					"class %s emitted before its base %s could be ordered", c.Name.CppName(), blocker(c))
			}
			out = append(out, next...)
			break
		}
		remaining = next
	}
	return out, diags.take()
}

package ast

import (
	"sort"
	"strings"
)

// Index resolves entity ids to declarations. It is filled by a frontend while
// building one file and is read-only afterwards.
type Index struct {
	entities map[EntityID]Entity
	byName   map[string][]EntityID
}

func NewIndex() *Index {
	return &Index{
		entities: make(map[EntityID]Entity),
		byName:   make(map[string][]EntityID),
	}
}

// Register records e under id and under its qualified name. Redeclarations keep
// the first definition unless a later one is a class definition replacing a
// forward declaration.
func (idx *Index) Register(id EntityID, qualified string, e Entity) {
	if prev, ok := idx.entities[id]; ok {
		if c, isClass := prev.(*Class); !isClass || c.Definition {
			return
		}
	}
	idx.entities[id] = e
	for _, existing := range idx.byName[qualified] {
		if existing == id {
			return
		}
	}
	idx.byName[qualified] = append(idx.byName[qualified], id)
}

func (idx *Index) Lookup(id EntityID) (Entity, bool) {
	if idx == nil || id == "" {
		return nil, false
	}
	e, ok := idx.entities[id]
	return e, ok
}

// LookupClass resolves id to a class definition. Class templates resolve to
// their body.
func (idx *Index) LookupClass(id EntityID) (*Class, bool) {
	e, ok := idx.Lookup(id)
	if !ok {
		return nil, false
	}
	switch v := e.(type) {
	case *Class:
		return v, v.Definition
	case *ClassTemplate:
		if v.Body != nil && v.Body.Definition {
			return v.Body, true
		}
	}
	return nil, false
}

func (idx *Index) LookupTemplate(id EntityID) (*ClassTemplate, bool) {
	e, ok := idx.Lookup(id)
	if !ok {
		return nil, false
	}
	t, ok := e.(*ClassTemplate)
	return t, ok
}

// Resolve finds the id of a declaration by name as seen from scope. Scopes are
// searched innermost first, the way unqualified lookup proceeds outward
// through enclosing namespaces.
func (idx *Index) Resolve(scope []string, name string) (EntityID, bool) {
	if idx == nil || name == "" {
		return "", false
	}
	if strings.HasPrefix(name, "::") {
		ids := idx.byName[name[2:]]
		return firstID(ids)
	}
	for i := len(scope); i >= 0; i-- {
		if id, ok := firstID(idx.byName[Qualify(scope[:i], name)]); ok {
			return id, true
		}
	}
	return "", false
}

func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entities)
}

// IDs returns every registered id in sorted order.
func (idx *Index) IDs() []EntityID {
	ids := make([]EntityID, 0, len(idx.entities))
	for id := range idx.entities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func firstID(ids []EntityID) (EntityID, bool) {
	if len(ids) == 0 {
		return "", false
	}
	return ids[0], true
}

// Deferred collects name references that can only be resolved once every
// declaration of a file is indexed, such as a base declared after its use.
type Deferred struct {
	refs []deferredRef
}

type deferredRef struct {
	scope []string
	name  string
	set   func(EntityID)
}

func (d *Deferred) Add(scope []string, name string, set func(EntityID)) {
	d.refs = append(d.refs, deferredRef{scope: append([]string(nil), scope...), name: name, set: set})
}

// Resolve looks every reference up in idx, ignoring template arguments, and
// calls its setter on success. Unresolved references keep an empty id.
func (d *Deferred) Resolve(idx *Index) {
	for _, r := range d.refs {
		if id, ok := idx.Resolve(r.scope, StripTemplateArgs(r.name)); ok {
			r.set(id)
		}
	}
	d.refs = nil
}

// Qualify joins a scope path and a name with "::".
func Qualify(scope []string, name string) string {
	if len(scope) == 0 {
		return name
	}
	return strings.Join(scope, "::") + "::" + name
}

// StripTemplateArgs drops a trailing template argument list: "Vec<int>" -> "Vec".
func StripTemplateArgs(name string) string {
	if i := strings.IndexByte(name, '<'); i > 0 {
		return strings.TrimSpace(name[:i])
	}
	return name
}

package ast

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dump is the on-disk form of one parsed file. JSON dumps decode through the
// same path since the YAML decoder accepts JSON documents.
type Dump struct {
	File     string       `yaml:"file"`
	Entities []dumpEntity `yaml:"entities"`
}

type dumpEntity struct {
	Kind      string       `yaml:"kind"`
	ID        string       `yaml:"id"`
	Name      string       `yaml:"name"`
	Line      int          `yaml:"line"`
	Column    int          `yaml:"column"`
	ClassKind string       `yaml:"class_kind"`
	Bases     []dumpBase   `yaml:"bases"`
	Final     bool         `yaml:"final"`
	Forward   bool         `yaml:"forward"`
	Access    string       `yaml:"access"`
	Return    *dumpType    `yaml:"return"`
	Type      *dumpType    `yaml:"type"`
	Params    []dumpParam  `yaml:"params"`
	Virtual   bool         `yaml:"virtual"`
	Pure      bool         `yaml:"pure"`
	Override  bool         `yaml:"override"`
	Const     bool         `yaml:"const"`
	Deleted   bool         `yaml:"deleted"`
	Static    bool         `yaml:"static"`
	TParams   []string     `yaml:"template_params"`
	Primary   string       `yaml:"primary"`
	Args      string       `yaml:"args"`
	Children  []dumpEntity `yaml:"children"`
}

type dumpBase struct {
	Name   string `yaml:"name"`
	ID     string `yaml:"id"`
	Access string `yaml:"access"`
}

type dumpParam struct {
	Name string   `yaml:"name"`
	Type dumpType `yaml:"type"`
}

type dumpType struct {
	Spelling string    `yaml:"spelling"`
	Const    bool      `yaml:"const"`
	Array    *dumpType `yaml:"array"`
}

// UnmarshalYAML accepts either a bare spelling or a mapping.
func (t *dumpType) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		t.Spelling = value.Value
		t.Const = isConstSpelling(value.Value)
		return nil
	}
	type plain dumpType
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*t = dumpType(p)
	return nil
}

func (t *dumpType) toType() Type {
	if t == nil {
		return Type{}
	}
	out := Type{Spelling: t.Spelling, Const: t.Const}
	if t.Array != nil {
		elem := t.Array.toType()
		out.Array = &elem
	}
	return out
}

// LoadDump reads an entity-tree dump from disk.
func LoadDump(path string) (*File, *Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return DecodeDump(bytes.NewReader(data), path)
}

// DecodeDump decodes a dump. fallbackPath names the file when the dump itself
// does not.
func DecodeDump(r io.Reader, fallbackPath string) (*File, *Index, error) {
	var d Dump
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&d); err != nil {
		return nil, nil, fmt.Errorf("decoding entity dump: %w", err)
	}
	if strings.TrimSpace(d.File) == "" {
		d.File = fallbackPath
	}

	b := &dumpBuilder{path: d.File, idx: NewIndex()}
	file := &File{Base: Base{Name: d.File, Location: Location{File: d.File}}}
	for _, de := range d.Entities {
		e, err := b.entity(de, nil)
		if err != nil {
			return nil, nil, err
		}
		file.Children = append(file.Children, e)
	}
	b.refs.Resolve(b.idx)
	return file, b.idx, nil
}

type dumpBuilder struct {
	path string
	idx  *Index
	refs Deferred
}

func (b *dumpBuilder) id(explicit string, scope []string, name string) EntityID {
	if explicit != "" {
		return EntityID(b.path + "#" + explicit)
	}
	return EntityID(b.path + "#" + Qualify(scope, name))
}

func (b *dumpBuilder) loc(de dumpEntity) Location {
	return Location{File: b.path, Line: de.Line, Column: de.Column}
}

func (b *dumpBuilder) entity(de dumpEntity, scope []string) (Entity, error) {
	base := Base{Name: de.Name, Location: b.loc(de)}
	switch strings.ToLower(strings.ReplaceAll(de.Kind, " ", "_")) {
	case "namespace":
		ns := &Namespace{Base: base}
		inner := appendScope(scope, de.Name)
		for _, c := range de.Children {
			e, err := b.entity(c, inner)
			if err != nil {
				return nil, err
			}
			ns.Children = append(ns.Children, e)
		}
		return ns, nil
	case "class", "struct", "union":
		return b.class(de, scope)
	case "access", "access_specifier":
		return &AccessSpecifier{Base: base, Access: parseAccess(de.Access, AccessPublic)}, nil
	case "function":
		return &Function{Base: base, Return: de.Return.toType(), Params: params(de.Params), Static: de.Static, Deleted: de.Deleted}, nil
	case "member_function", "method":
		return &MemberFunction{
			Base:     base,
			Return:   de.Return.toType(),
			Params:   params(de.Params),
			Virtual:  de.Virtual || de.Pure,
			Pure:     de.Pure,
			Override: de.Override,
			Final:    de.Final,
			Const:    de.Const,
			Deleted:  de.Deleted,
		}, nil
	case "constructor":
		return &Constructor{Base: base, Params: params(de.Params), Deleted: de.Deleted}, nil
	case "destructor":
		return &Destructor{Base: base, Virtual: de.Virtual}, nil
	case "member_variable", "field":
		return &MemberVariable{Base: base, Type: de.Type.toType()}, nil
	case "variable":
		return &Variable{Base: base, Type: de.Type.toType(), Static: de.Static}, nil
	case "class_template":
		body, err := b.classBody(de, scope)
		if err != nil {
			return nil, err
		}
		t := &ClassTemplate{Base: base, ID: body.ID, Params: de.TParams, Body: body}
		b.idx.Register(t.ID, Qualify(scope, de.Name), t)
		return t, nil
	case "class_template_specialization", "specialization":
		spec := &ClassTemplateSpecialization{Base: base, PrimaryName: de.Primary, Args: de.Args}
		if spec.Name == "" {
			spec.Name = de.Primary + "<" + de.Args + ">"
		}
		if de.ID != "" {
			spec.Primary = EntityID(b.path + "#" + de.ID)
		} else {
			b.later(scope, de.Primary, func(id EntityID) { spec.Primary = id })
		}
		return spec, nil
	case "":
		return nil, fmt.Errorf("%s:%d: entity %q has no kind", b.path, de.Line, de.Name)
	default:
		return &Unexposed{Base: base, What: de.Kind}, nil
	}
}

func (b *dumpBuilder) class(de dumpEntity, scope []string) (*Class, error) {
	c, err := b.classBody(de, scope)
	if err != nil {
		return nil, err
	}
	b.idx.Register(c.ID, Qualify(scope, de.Name), c)
	return c, nil
}

func (b *dumpBuilder) classBody(de dumpEntity, scope []string) (*Class, error) {
	c := &Class{
		Base:       Base{Name: de.Name, Location: b.loc(de)},
		ID:         b.id(de.ID, scope, de.Name),
		ClassKind:  parseClassKind(de.Kind, de.ClassKind),
		Final:      de.Final,
		Definition: !de.Forward,
	}
	for _, db := range de.Bases {
		ref := BaseRef{Name: db.Name, Access: parseAccess(db.Access, AccessPublic)}
		c.Bases = append(c.Bases, ref)
		i := len(c.Bases) - 1
		if db.ID != "" {
			c.Bases[i].ID = EntityID(b.path + "#" + db.ID)
			continue
		}
		b.later(scope, db.Name, func(id EntityID) { c.Bases[i].ID = id })
	}
	inner := appendScope(scope, de.Name)
	for _, child := range de.Children {
		e, err := b.entity(child, inner)
		if err != nil {
			return nil, err
		}
		c.Children = append(c.Children, e)
	}
	return c, nil
}

func (b *dumpBuilder) later(scope []string, name string, set func(EntityID)) {
	b.refs.Add(scope, name, set)
}

func params(in []dumpParam) []Param {
	out := make([]Param, 0, len(in))
	for _, p := range in {
		t := p.Type
		out = append(out, Param{Name: p.Name, Type: t.toType()})
	}
	return out
}

func parseAccess(s string, def Access) Access {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "public":
		return AccessPublic
	case "protected":
		return AccessProtected
	case "private":
		return AccessPrivate
	}
	return def
}

func parseClassKind(kind, explicit string) ClassKind {
	k := strings.ToLower(strings.TrimSpace(explicit))
	if k == "" {
		k = strings.ToLower(kind)
	}
	switch k {
	case "struct":
		return ClassKindStruct
	case "union":
		return ClassKindUnion
	}
	return ClassKindClass
}

func appendScope(scope []string, name string) []string {
	out := make([]string, 0, len(scope)+1)
	out = append(out, scope...)
	return append(out, name)
}

// Package ast is the entity tree handed to the binding engine by a frontend.
//
// The variant set is closed: every entity implements Entity through an
// unexported marker, so consumers can switch over the concrete types and treat
// the default branch as "unrecognized".
package ast

// EntityID identifies a declaration inside one Index. Frontends prefix ids with
// the file path so ids from different translation units never collide.
type EntityID string

type Entity interface {
	EntityName() string
	Kind() Kind
	Loc() Location
	entity()
}

type Kind string

const (
	KindFile                        Kind = "file"
	KindNamespace                   Kind = "namespace"
	KindClass                       Kind = "class"
	KindAccessSpecifier             Kind = "access specifier"
	KindFunction                    Kind = "function"
	KindMemberFunction              Kind = "member function"
	KindConstructor                 Kind = "constructor"
	KindDestructor                  Kind = "destructor"
	KindMemberVariable              Kind = "member variable"
	KindVariable                    Kind = "variable"
	KindClassTemplate               Kind = "class template"
	KindClassTemplateSpecialization Kind = "class template specialization"
	KindUnexposed                   Kind = "unexposed"
)

type Location struct {
	File   string
	Line   int
	Column int
}

type Access int

const (
	AccessPublic Access = iota
	AccessProtected
	AccessPrivate
)

func (a Access) String() string {
	switch a {
	case AccessProtected:
		return "protected"
	case AccessPrivate:
		return "private"
	default:
		return "public"
	}
}

type ClassKind int

const (
	ClassKindClass ClassKind = iota
	ClassKindStruct
	ClassKindUnion
)

// DefaultAccess is the access level in effect before the first specifier.
func (k ClassKind) DefaultAccess() Access {
	if k == ClassKindClass {
		return AccessPrivate
	}
	return AccessPublic
}

type Base struct {
	Name     string
	Location Location
}

func (b Base) EntityName() string { return b.Name }
func (b Base) Loc() Location      { return b.Location }

type File struct {
	Base
	Children []Entity
}

type Namespace struct {
	Base
	Children []Entity
}

// BaseRef is a declared base class. ID is empty when the frontend could not
// resolve the base to a declaration.
type BaseRef struct {
	Name   string
	ID     EntityID
	Access Access
}

type Class struct {
	Base
	ID         EntityID
	ClassKind  ClassKind
	Bases      []BaseRef
	Final      bool
	Definition bool
	Children   []Entity
}

// AccessSpecifier marks the access level of the siblings that follow it.
type AccessSpecifier struct {
	Base
	Access Access
}

type Param struct {
	Name string
	Type Type
}

type Function struct {
	Base
	Return  Type
	Params  []Param
	Static  bool
	Deleted bool
}

type MemberFunction struct {
	Base
	Return   Type
	Params   []Param
	Virtual  bool
	Pure     bool
	Override bool
	Final    bool
	Const    bool
	Deleted  bool
}

type Constructor struct {
	Base
	Params  []Param
	Deleted bool
}

type Destructor struct {
	Base
	Virtual bool
}

type MemberVariable struct {
	Base
	Type Type
}

type Variable struct {
	Base
	Type   Type
	Static bool
}

// ClassTemplate is a primary template. Body holds the templated class.
type ClassTemplate struct {
	Base
	ID     EntityID
	Params []string
	Body   *Class
}

// ClassTemplateSpecialization names a primary template and carries the
// argument text exactly as written between the angle brackets.
type ClassTemplateSpecialization struct {
	Base
	Primary     EntityID
	PrimaryName string
	Args        string
}

// Unexposed is any declaration the frontend saw but does not model.
type Unexposed struct {
	Base
	What string
}

func (*File) Kind() Kind                        { return KindFile }
func (*Namespace) Kind() Kind                   { return KindNamespace }
func (*Class) Kind() Kind                       { return KindClass }
func (*AccessSpecifier) Kind() Kind             { return KindAccessSpecifier }
func (*Function) Kind() Kind                    { return KindFunction }
func (*MemberFunction) Kind() Kind              { return KindMemberFunction }
func (*Constructor) Kind() Kind                 { return KindConstructor }
func (*Destructor) Kind() Kind                  { return KindDestructor }
func (*MemberVariable) Kind() Kind              { return KindMemberVariable }
func (*Variable) Kind() Kind                    { return KindVariable }
func (*ClassTemplate) Kind() Kind               { return KindClassTemplate }
func (*ClassTemplateSpecialization) Kind() Kind { return KindClassTemplateSpecialization }
func (*Unexposed) Kind() Kind                   { return KindUnexposed }

func (*File) entity()                        {}
func (*Namespace) entity()                   {}
func (*Class) entity()                       {}
func (*AccessSpecifier) entity()             {}
func (*Function) entity()                    {}
func (*MemberFunction) entity()              {}
func (*Constructor) entity()                 {}
func (*Destructor) entity()                  {}
func (*MemberVariable) entity()              {}
func (*Variable) entity()                    {}
func (*ClassTemplate) entity()               {}
func (*ClassTemplateSpecialization) entity() {}
func (*Unexposed) entity()                   {}

// Children returns the ordered children of container entities and nil for
// leaves.
func Children(e Entity) []Entity {
	switch v := e.(type) {
	case *File:
		return v.Children
	case *Namespace:
		return v.Children
	case *Class:
		return v.Children
	case *ClassTemplate:
		if v.Body != nil {
			return v.Body.Children
		}
	}
	return nil
}

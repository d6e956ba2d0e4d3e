package ast

import "strings"

// Type is a rendered C++ type. Spelling is the qualified text the frontend
// produced; Const and Array expose just enough structure for field binding.
type Type struct {
	Spelling string
	Const    bool
	Array    *Type
}

func (t Type) String() string { return t.Spelling }

// DeepConst reports whether the type is const at any array nesting depth.
func (t Type) DeepConst() bool {
	if t.Const {
		return true
	}
	if t.Array != nil {
		return t.Array.DeepConst()
	}
	return false
}

// ParseType builds a Type from a declaration's spelling and an optional array
// suffix such as "[3][4]". Leading or trailing const on the element marks the
// whole type const, which is what field binding needs.
func ParseType(spelling string, dims []string) Type {
	spelling = strings.TrimSpace(spelling)
	elem := Type{Spelling: spelling, Const: isConstSpelling(spelling)}
	if len(dims) == 0 {
		return elem
	}
	t := elem
	for i := len(dims) - 1; i >= 0; i-- {
		inner := t
		t = Type{Spelling: spelling + strings.Join(dims[i:], ""), Array: &inner}
	}
	return t
}

func isConstSpelling(spelling string) bool {
	// Only tokens outside template argument lists qualify the outer type.
	var outer strings.Builder
	depth := 0
	for _, r := range spelling {
		switch {
		case r == '<':
			depth++
			outer.WriteRune(' ')
		case r == '>' && depth > 0:
			depth--
			outer.WriteRune(' ')
		case depth == 0:
			outer.WriteRune(r)
		}
	}
	top := outer.String()

	// Pointers and references carry their own constness; only a const that
	// qualifies the outermost object counts.
	if i := strings.LastIndexAny(top, "*&"); i >= 0 {
		return strings.TrimSpace(top[i+1:]) == "const"
	}
	for _, f := range strings.Fields(top) {
		if f == "const" {
			return true
		}
	}
	return false
}

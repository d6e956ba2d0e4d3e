package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"cppbind/internal/engine/ast"
)

// declarator is a flattened C++ declarator: the declared name plus everything
// the declarator adds to the base type.
type declarator struct {
	name     string
	nameKind string
	suffix   string   // pointer and reference operators, in source order
	dims     []string // array dimensions, outermost first: "[2]", "[3]"
	function *sitter.Node
	// funcPointer is set when a function declarator wraps a pointer, as in
	// "void (*cb)(int)". Such a declarator declares a variable.
	funcPointer bool
}

func (d declarator) isFunction() bool {
	return d.function != nil && !d.funcPointer
}

func unwrapDeclarator(ctx *ExtractionContext, node *sitter.Node) declarator {
	var d declarator
	for node != nil {
		switch node.Kind() {
		case "identifier", "field_identifier", "type_identifier", "qualified_identifier",
			"destructor_name", "operator_name", "template_function", "namespace_identifier":
			d.name = ctx.NormalizedText(node)
			d.nameKind = node.Kind()
			return d
		case "pointer_declarator", "abstract_pointer_declarator":
			if d.function != nil {
				d.funcPointer = true
			}
			d.suffix += "*"
			if q := childOfKind(node, "type_qualifier"); q != nil {
				d.suffix += " " + ctx.Text(q)
			}
			node = node.ChildByFieldName("declarator")
		case "reference_declarator", "abstract_reference_declarator":
			if d.function != nil {
				d.funcPointer = true
			}
			if node.ChildCount() > 0 {
				d.suffix += ctx.Text(node.Child(0))
			}
			node = firstNamedChild(node)
		case "array_declarator", "abstract_array_declarator":
			d.dims = append([]string{"[" + ctx.NormalizedText(node.ChildByFieldName("size")) + "]"}, d.dims...)
			node = node.ChildByFieldName("declarator")
		case "function_declarator", "abstract_function_declarator":
			if d.function == nil {
				d.function = node
			}
			node = node.ChildByFieldName("declarator")
		case "parenthesized_declarator", "init_declarator", "attributed_declarator":
			if inner := node.ChildByFieldName("declarator"); inner != nil {
				node = inner
				continue
			}
			node = firstNamedChild(node)
		default:
			d.nameKind = node.Kind()
			return d
		}
	}
	return d
}

func firstNamedChild(node *sitter.Node) *sitter.Node {
	if node == nil || node.NamedChildCount() == 0 {
		return nil
	}
	return node.NamedChild(0)
}

// baseType renders the declaration specifiers of node: the type plus any
// cv-qualifiers, in source order. Storage classes and function specifiers are
// left out.
func baseType(ctx *ExtractionContext, node *sitter.Node) string {
	typeNode := node.ChildByFieldName("type")
	if typeNode == nil {
		return ""
	}
	var parts []string
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch {
		case child.StartByte() == typeNode.StartByte() && child.EndByte() == typeNode.EndByte():
			parts = append(parts, ctx.NormalizedText(child))
		case child.Kind() == "type_qualifier":
			parts = append(parts, ctx.Text(child))
		}
	}
	return strings.Join(parts, " ")
}

// spelling joins a base type and a declarator suffix: "const char" and "*"
// become "const char*".
func spelling(base, suffix string) string {
	if suffix == "" {
		return base
	}
	return base + suffix
}

func hasStorageClass(ctx *ExtractionContext, node *sitter.Node, class string) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == "storage_class_specifier" && ctx.Text(child) == class {
			return true
		}
	}
	return false
}

func hasVirtual(ctx *ExtractionContext, node *sitter.Node) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "virtual", "virtual_function_specifier":
			return true
		}
		if !child.IsNamed() && ctx.Text(child) == "virtual" {
			return true
		}
	}
	return false
}

// readParams renders a function declarator's parameter list. "(void)" is an
// empty list; a C-style ellipsis is dropped.
func readParams(ctx *ExtractionContext, fn *sitter.Node) []ast.Param {
	list := fn.ChildByFieldName("parameters")
	if list == nil {
		return nil
	}
	var out []ast.Param
	for i := uint(0); i < list.NamedChildCount(); i++ {
		p := list.NamedChild(i)
		switch p.Kind() {
		case "parameter_declaration", "optional_parameter_declaration":
		default:
			continue
		}
		base := baseType(ctx, p)
		d := unwrapDeclarator(ctx, p.ChildByFieldName("declarator"))
		if base == "void" && d.name == "" && d.suffix == "" && list.NamedChildCount() == 1 {
			return nil
		}
		t := ast.ParseType(spelling(base, d.suffix), d.dims)
		out = append(out, ast.Param{Name: d.name, Type: t})
	}
	return out
}

// functionQualifiers reads what follows a function declarator's parameter
// list: cv-qualifiers and the virt-specifiers override and final.
type functionQualifiers struct {
	Const    bool
	Override bool
	Final    bool
	Trailing string
}

func readFunctionQualifiers(ctx *ExtractionContext, fn *sitter.Node) functionQualifiers {
	var q functionQualifiers
	for i := uint(0); i < fn.ChildCount(); i++ {
		child := fn.Child(i)
		switch child.Kind() {
		case "type_qualifier":
			if ctx.Text(child) == "const" {
				q.Const = true
			}
		case "virtual_specifier":
			switch ctx.Text(child) {
			case "override":
				q.Override = true
			case "final":
				q.Final = true
			}
		case "trailing_return_type":
			q.Trailing = strings.TrimSpace(strings.TrimPrefix(ctx.NormalizedText(child), "->"))
		}
	}
	return q
}

// definitionClause reports "= 0" and "= delete" on a member declaration or an
// inline definition, whichever form the grammar produced.
type definitionClause struct {
	Pure    bool
	Deleted bool
}

func readDefinitionClause(ctx *ExtractionContext, node *sitter.Node) definitionClause {
	var c definitionClause
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "pure_virtual_clause":
			c.Pure = true
		case "delete_method_clause":
			c.Deleted = true
		}
	}
	if v := node.ChildByFieldName("default_value"); v != nil {
		switch strings.TrimSpace(ctx.Text(v)) {
		case "0":
			c.Pure = true
		case "delete":
			c.Deleted = true
		}
	}
	return c
}

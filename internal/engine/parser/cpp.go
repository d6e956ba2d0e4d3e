package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"cppbind/internal/engine/ast"
)

// CppExtractor turns a tree-sitter C++ syntax tree into an ast entity tree.
// Function bodies are never entered; only declarations are modelled.
type CppExtractor struct {
	engine *ExtractorEngine
}

func NewCppExtractor() *CppExtractor {
	x := &CppExtractor{}
	x.engine = NewExtractorEngine(map[string]NodeHandler{
		"namespace_definition":   x.handleNamespace,
		"class_specifier":        x.handleClassSpecifier,
		"struct_specifier":       x.handleClassSpecifier,
		"union_specifier":        x.handleClassSpecifier,
		"template_declaration":   x.handleTemplate,
		"template_instantiation": x.handleInstantiation,
		"function_definition":    x.handleFunctionDefinition,
		"declaration":            x.handleDeclaration,
		"field_declaration":      x.handleDeclaration,
		"access_specifier":       x.handleAccess,
		"enum_specifier":         x.handleUnexposed("enum"),
		"type_definition":        x.handleUnexposed("typedef"),
		"alias_declaration":      x.handleUnexposed("alias"),
		"compound_statement":     skip,
		"friend_declaration":     skip,
		"using_declaration":      skip,
	})
	return x
}

func skip(*ExtractionContext, *sitter.Node) bool { return true }

func (x *CppExtractor) Extract(node *sitter.Node, source []byte, filePath string) (*ast.File, *ast.Index, error) {
	ctx := NewExtractionContext(source, filePath)
	x.engine.Walk(ctx, node)
	ctx.finish()
	return ctx.File, ctx.Index, nil
}

func (x *CppExtractor) handleNamespace(ctx *ExtractionContext, node *sitter.Node) bool {
	name := ctx.NormalizedText(node.ChildByFieldName("name"))
	parts := []string{""}
	if name != "" {
		// "namespace a::b {" opens both levels.
		parts = strings.Split(strings.ReplaceAll(name, " ", ""), "::")
	}
	for _, part := range parts {
		ns := &ast.Namespace{Base: ast.Base{Name: part, Location: ctx.Location(node)}}
		ctx.add(ns)
		ctx.push(part, &ns.Children, nil)
	}
	x.engine.WalkChildren(ctx, node.ChildByFieldName("body"))
	for range parts {
		ctx.pop()
	}
	return true
}

func (x *CppExtractor) handleClassSpecifier(ctx *ExtractionContext, node *sitter.Node) bool {
	x.class(ctx, node, nil)
	return true
}

// class extracts a class specifier. With templateParams non-nil the class is
// the body of a primary template and a ClassTemplate is recorded instead.
func (x *CppExtractor) class(ctx *ExtractionContext, node *sitter.Node, templateParams []string) *ast.Class {
	nameNode := node.ChildByFieldName("name")
	body := node.ChildByFieldName("body")
	if nameNode == nil {
		// Anonymous classes have no name to register under.
		return nil
	}
	name := ctx.NormalizedText(nameNode)

	c := &ast.Class{
		Base:       ast.Base{Name: name, Location: ctx.Location(node)},
		ID:         ctx.id(name),
		ClassKind:  classKind(node.Kind()),
		Definition: body != nil,
	}
	if spec := childOfKind(node, "virtual_specifier"); spec != nil && ctx.Text(spec) == "final" {
		c.Final = true
	}
	x.bases(ctx, c, childOfKind(node, "base_class_clause"))

	qualified := ast.Qualify(ctx.ScopePath(), name)
	if templateParams != nil {
		t := &ast.ClassTemplate{Base: c.Base, ID: c.ID, Params: templateParams, Body: c}
		ctx.Index.Register(t.ID, qualified, t)
		ctx.add(t)
	} else {
		ctx.Index.Register(c.ID, qualified, c)
		ctx.add(c)
	}

	if body != nil {
		ctx.push(name, &c.Children, c)
		x.engine.WalkChildren(ctx, body)
		ctx.pop()
	}
	return c
}

func classKind(kind string) ast.ClassKind {
	switch kind {
	case "struct_specifier":
		return ast.ClassKindStruct
	case "union_specifier":
		return ast.ClassKindUnion
	}
	return ast.ClassKindClass
}

func (x *CppExtractor) bases(ctx *ExtractionContext, c *ast.Class, clause *sitter.Node) {
	if clause == nil {
		return
	}
	access := ""
	for i := uint(0); i < clause.ChildCount(); i++ {
		child := clause.Child(i)
		switch child.Kind() {
		case "access_specifier":
			access = ctx.Text(child)
		case "type_identifier", "qualified_type_identifier", "template_type":
			ref := ast.BaseRef{Name: ctx.NormalizedText(child), Access: parseAccess(access, c.ClassKind.DefaultAccess())}
			c.Bases = append(c.Bases, ref)
			idx := len(c.Bases) - 1
			ctx.later(ref.Name, func(id ast.EntityID) { c.Bases[idx].ID = id })
			access = ""
		}
	}
}

func parseAccess(s string, def ast.Access) ast.Access {
	switch strings.TrimSpace(s) {
	case "public":
		return ast.AccessPublic
	case "protected":
		return ast.AccessProtected
	case "private":
		return ast.AccessPrivate
	}
	return def
}

func (x *CppExtractor) handleAccess(ctx *ExtractionContext, node *sitter.Node) bool {
	if ctx.CurrentClass() == nil {
		return true
	}
	ctx.add(&ast.AccessSpecifier{
		Base:   ast.Base{Name: ctx.Text(node), Location: ctx.Location(node)},
		Access: parseAccess(ctx.Text(node), ast.AccessPublic),
	})
	return true
}

func (x *CppExtractor) handleUnexposed(what string) NodeHandler {
	return func(ctx *ExtractionContext, node *sitter.Node) bool {
		name := ctx.NormalizedText(node.ChildByFieldName("name"))
		if name == "" {
			name = ctx.NormalizedText(node.ChildByFieldName("declarator"))
		}
		ctx.add(&ast.Unexposed{Base: ast.Base{Name: name, Location: ctx.Location(node)}, What: what})
		return true
	}
}

func (x *CppExtractor) handleTemplate(ctx *ExtractionContext, node *sitter.Node) bool {
	paramList := node.ChildByFieldName("parameters")
	tparams := templateParams(ctx, paramList)
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if paramList != nil && child.StartByte() == paramList.StartByte() {
			continue
		}
		if spec := templatedClass(child); spec != nil {
			nameNode := spec.ChildByFieldName("name")
			switch {
			case nameNode == nil:
			case len(tparams) == 0:
				// template<> struct Vec<int> { ... } is an ordinary class
				// named after the specialization.
				x.class(ctx, spec, nil)
			case nameNode.Kind() == "template_type":
				ctx.add(&ast.Unexposed{
					Base: ast.Base{Name: ctx.NormalizedText(nameNode), Location: ctx.Location(spec)},
					What: "partial specialization",
				})
			default:
				x.class(ctx, spec, tparams)
			}
			continue
		}
		switch child.Kind() {
		case "requires_clause", "comment":
		default:
			ctx.add(&ast.Unexposed{
				Base: ast.Base{Name: declaredName(ctx, child), Location: ctx.Location(child)},
				What: "template",
			})
		}
	}
	return true
}

// templatedClass returns the class specifier a template declares, whether the
// grammar attached it directly or through a declaration without declarators.
func templatedClass(node *sitter.Node) *sitter.Node {
	switch node.Kind() {
	case "class_specifier", "struct_specifier", "union_specifier":
		return node
	case "declaration":
		t := node.ChildByFieldName("type")
		if t == nil || node.ChildByFieldName("declarator") != nil {
			return nil
		}
		switch t.Kind() {
		case "class_specifier", "struct_specifier", "union_specifier":
			return t
		}
	}
	return nil
}

func templateParams(ctx *ExtractionContext, list *sitter.Node) []string {
	out := []string{}
	if list == nil {
		return out
	}
	for i := uint(0); i < list.NamedChildCount(); i++ {
		p := list.NamedChild(i)
		var name string
		switch {
		case p.ChildByFieldName("name") != nil:
			name = ctx.Text(p.ChildByFieldName("name"))
		case p.ChildByFieldName("declarator") != nil:
			name = unwrapDeclarator(ctx, p.ChildByFieldName("declarator")).name
		default:
			name = ctx.ChildText(p, "type_identifier")
		}
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

// handleInstantiation records "template class Vec<float>;" as a specialization
// of the primary template.
func (x *CppExtractor) handleInstantiation(ctx *ExtractionContext, node *sitter.Node) bool {
	spec := childOfKind(node, "class_specifier", "struct_specifier", "union_specifier")
	if spec == nil {
		return true
	}
	nameNode := spec.ChildByFieldName("name")
	if nameNode == nil || nameNode.Kind() != "template_type" {
		return true
	}
	primary := ctx.NormalizedText(nameNode.ChildByFieldName("name"))
	args := ctx.NormalizedText(nameNode.ChildByFieldName("arguments"))
	args = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(args, "<"), ">"))

	s := &ast.ClassTemplateSpecialization{
		Base:        ast.Base{Name: ctx.NormalizedText(nameNode), Location: ctx.Location(node)},
		PrimaryName: primary,
		Args:        args,
	}
	ctx.later(primary, func(id ast.EntityID) { s.Primary = id })
	ctx.add(s)
	return true
}

func declaredName(ctx *ExtractionContext, node *sitter.Node) string {
	if d := node.ChildByFieldName("declarator"); d != nil {
		return unwrapDeclarator(ctx, d).name
	}
	if n := node.ChildByFieldName("name"); n != nil {
		return ctx.NormalizedText(n)
	}
	return ""
}

func (x *CppExtractor) handleFunctionDefinition(ctx *ExtractionContext, node *sitter.Node) bool {
	d := unwrapDeclarator(ctx, node.ChildByFieldName("declarator"))
	if !d.isFunction() {
		return true
	}
	x.function(ctx, node, d)
	return true
}

// handleDeclaration covers namespace-scope declarations and class member
// declarations. A declaration may define a class and declare several names.
func (x *CppExtractor) handleDeclaration(ctx *ExtractionContext, node *sitter.Node) bool {
	if t := node.ChildByFieldName("type"); t != nil {
		switch t.Kind() {
		case "class_specifier", "struct_specifier", "union_specifier":
			if t.ChildByFieldName("body") != nil {
				x.class(ctx, t, nil)
			}
		case "enum_specifier":
			if t.ChildByFieldName("body") != nil {
				x.handleUnexposed("enum")(ctx, t)
			}
		}
	}
	for _, declNode := range fieldChildren(node, "declarator") {
		d := unwrapDeclarator(ctx, &declNode)
		if d.name == "" {
			continue
		}
		if d.isFunction() {
			x.function(ctx, node, d)
			continue
		}
		x.variable(ctx, node, d)
	}
	return true
}

// function records a function declaration or definition at namespace or
// class scope.
func (x *CppExtractor) function(ctx *ExtractionContext, node *sitter.Node, d declarator) {
	loc := ctx.Location(node)
	class := ctx.CurrentClass()

	switch {
	case d.nameKind == "operator_name":
		ctx.add(&ast.Unexposed{Base: ast.Base{Name: d.name, Location: loc}, What: "operator"})
		return
	case d.nameKind == "template_function":
		ctx.add(&ast.Unexposed{Base: ast.Base{Name: d.name, Location: loc}, What: "template"})
		return
	case d.nameKind == "destructor_name":
		if class != nil {
			ctx.add(&ast.Destructor{Base: ast.Base{Name: d.name, Location: loc}, Virtual: hasVirtual(ctx, node)})
		}
		return
	case d.nameKind == "qualified_identifier" || strings.Contains(d.name, "::"):
		// Out-of-line definition of something declared elsewhere.
		return
	}

	clause := readDefinitionClause(ctx, node)
	quals := readFunctionQualifiers(ctx, d.function)
	params := readParams(ctx, d.function)

	if class != nil && node.ChildByFieldName("type") == nil && d.name == ast.StripTemplateArgs(class.Name) {
		ctx.add(&ast.Constructor{Base: ast.Base{Name: d.name, Location: loc}, Params: params, Deleted: clause.Deleted})
		return
	}

	ret := spelling(baseType(ctx, node), d.suffix)
	if quals.Trailing != "" && (ret == "auto" || ret == "") {
		ret = quals.Trailing
	}
	retType := ast.ParseType(ret, nil)
	static := hasStorageClass(ctx, node, "static")

	if class == nil || static {
		ctx.add(&ast.Function{
			Base:    ast.Base{Name: d.name, Location: loc},
			Return:  retType,
			Params:  params,
			Static:  static,
			Deleted: clause.Deleted,
		})
		return
	}

	virtual := hasVirtual(ctx, node) || clause.Pure
	ctx.add(&ast.MemberFunction{
		Base:     ast.Base{Name: d.name, Location: loc},
		Return:   retType,
		Params:   params,
		Virtual:  virtual,
		Pure:     clause.Pure,
		Override: quals.Override,
		Final:    quals.Final,
		Const:    quals.Const,
		Deleted:  clause.Deleted,
	})
}

func (x *CppExtractor) variable(ctx *ExtractionContext, node *sitter.Node, d declarator) {
	loc := ctx.Location(node)
	base := baseType(ctx, node)
	var t ast.Type
	if d.funcPointer {
		declText := ctx.NormalizedText(node.ChildByFieldName("declarator"))
		t = ast.ParseType(base+" "+strings.Replace(declText, d.name, "", 1), nil)
	} else {
		t = ast.ParseType(spelling(base, d.suffix), d.dims)
	}

	if ctx.CurrentClass() != nil && !hasStorageClass(ctx, node, "static") {
		ctx.add(&ast.MemberVariable{Base: ast.Base{Name: d.name, Location: loc}, Type: t})
		return
	}
	ctx.add(&ast.Variable{
		Base:   ast.Base{Name: d.name, Location: loc},
		Type:   t,
		Static: hasStorageClass(ctx, node, "static"),
	})
}

// countSyntaxErrors counts ERROR and MISSING nodes.
func countSyntaxErrors(node *sitter.Node) int {
	if node == nil || !node.HasError() && !node.IsMissing() {
		return 0
	}
	n := 0
	if node.IsError() || node.IsMissing() {
		n++
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		n += countSyntaxErrors(node.Child(i))
	}
	return n
}

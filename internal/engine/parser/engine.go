package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"cppbind/internal/engine/ast"
)

// NodeHandler processes a node for a language-specific extractor.
// Returns true if the handler has processed children and the walker should stop.
type NodeHandler func(ctx *ExtractionContext, node *sitter.Node) bool

// ExtractionContext carries the state shared by handlers while one file is
// walked: the source, the entity tree under construction and the scope stack.
type ExtractionContext struct {
	Source            []byte
	File              *ast.File
	Index             *ast.Index
	ProcessedChildren bool // If true, the walker will skip this node's children

	scopes []scope
	refs   ast.Deferred
}

// scope is one open container. Anonymous namespaces have an empty name and do
// not contribute to qualified names.
type scope struct {
	name     string
	children *[]ast.Entity
	class    *ast.Class
}

func NewExtractionContext(source []byte, path string) *ExtractionContext {
	file := &ast.File{Base: ast.Base{Name: path, Location: ast.Location{File: path}}}
	ctx := &ExtractionContext{
		Source: source,
		File:   file,
		Index:  ast.NewIndex(),
	}
	ctx.scopes = []scope{{children: &file.Children}}
	return ctx
}

func (c *ExtractionContext) ResetProcessedChildren() {
	c.ProcessedChildren = false
}

// ExtractorEngine walks the syntax tree and dispatches node handlers by kind.
type ExtractorEngine struct {
	handlers map[string]NodeHandler
}

func NewExtractorEngine(handlers map[string]NodeHandler) *ExtractorEngine {
	return &ExtractorEngine{handlers: handlers}
}

func (e *ExtractorEngine) Walk(ctx *ExtractionContext, node *sitter.Node) {
	if node == nil {
		return
	}

	ctx.ResetProcessedChildren()
	stop := false
	if handler, ok := e.handlers[node.Kind()]; ok {
		stop = handler(ctx, node)
	}

	if !stop && !ctx.ProcessedChildren {
		for i := uint(0); i < node.ChildCount(); i++ {
			e.Walk(ctx, node.Child(i))
		}
	}
}

// WalkChildren walks every child of node, used by handlers that open a scope.
func (e *ExtractorEngine) WalkChildren(ctx *ExtractionContext, node *sitter.Node) {
	if node == nil {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		e.Walk(ctx, node.Child(i))
	}
}

func (c *ExtractionContext) Text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(c.Source[node.StartByte():node.EndByte()])
}

// NormalizedText is Text with every whitespace run collapsed to one space.
func (c *ExtractionContext) NormalizedText(node *sitter.Node) string {
	return strings.Join(strings.Fields(c.Text(node)), " ")
}

func (c *ExtractionContext) Location(node *sitter.Node) ast.Location {
	return ast.Location{
		File:   c.File.Name,
		Line:   int(node.StartPosition().Row) + 1,
		Column: int(node.StartPosition().Column) + 1,
	}
}

func (c *ExtractionContext) ChildText(node *sitter.Node, kind string) string {
	if child := childOfKind(node, kind); child != nil {
		return c.Text(child)
	}
	return ""
}

func childOfKind(node *sitter.Node, kinds ...string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		for _, kind := range kinds {
			if child.Kind() == kind {
				return child
			}
		}
	}
	return nil
}

func fieldChildren(node *sitter.Node, field string) []sitter.Node {
	cursor := node.Walk()
	defer cursor.Close()
	return node.ChildrenByFieldName(field, cursor)
}

func (c *ExtractionContext) push(name string, children *[]ast.Entity, class *ast.Class) {
	c.scopes = append(c.scopes, scope{name: name, children: children, class: class})
}

func (c *ExtractionContext) pop() {
	if len(c.scopes) > 1 {
		c.scopes = c.scopes[:len(c.scopes)-1]
	}
}

func (c *ExtractionContext) add(e ast.Entity) {
	top := c.scopes[len(c.scopes)-1]
	*top.children = append(*top.children, e)
}

// CurrentClass returns the class whose body is being walked, or nil at
// namespace scope.
func (c *ExtractionContext) CurrentClass() *ast.Class {
	return c.scopes[len(c.scopes)-1].class
}

// ScopePath returns the names of the enclosing namespaces and classes.
func (c *ExtractionContext) ScopePath() []string {
	var path []string
	for _, s := range c.scopes {
		if s.name != "" {
			path = append(path, s.name)
		}
	}
	return path
}

func (c *ExtractionContext) id(name string) ast.EntityID {
	return ast.EntityID(c.File.Name + "#" + ast.Qualify(c.ScopePath(), name))
}

// later resolves name from the current scope once the whole file is indexed.
func (c *ExtractionContext) later(name string, set func(ast.EntityID)) {
	c.refs.Add(c.ScopePath(), name, set)
}

func (c *ExtractionContext) finish() {
	c.refs.Resolve(c.Index)
}

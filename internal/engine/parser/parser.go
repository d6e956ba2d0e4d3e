package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"cppbind/internal/core/errors"
	"cppbind/internal/engine/ast"
)

type Extractor interface {
	Extract(node *sitter.Node, source []byte, filePath string) (*ast.File, *ast.Index, error)
}

type Options struct {
	// FatalErrors turns a tree with syntax errors into a parse failure.
	// Otherwise tree-sitter's error recovery is trusted and the declarations
	// around the damage are still extracted.
	FatalErrors bool
}

// Result is one parsed file.
type Result struct {
	File         *ast.File
	Index        *ast.Index
	SyntaxErrors int
}

type Parser struct {
	loader    *GrammarLoader
	pool      *ParserPool
	extractor Extractor
	opts      Options
}

func NewParser(loader *GrammarLoader, opts Options) *Parser {
	return &Parser{
		loader:    loader,
		pool:      NewParserPool(loader.Language()),
		extractor: NewCppExtractor(),
		opts:      opts,
	}
}

func (p *Parser) Parse(path string, content []byte) (*Result, error) {
	sp := p.pool.Get()
	defer p.pool.Put(sp)

	tree := sp.Parse(content, nil)
	if tree == nil {
		return nil, errors.AddContext(errors.New(errors.CodeParseFailure, "parse failed"), errors.CtxPath, path)
	}
	defer tree.Close()

	root := tree.RootNode()
	syntaxErrors := countSyntaxErrors(root)
	if syntaxErrors > 0 && p.opts.FatalErrors {
		err := errors.New(errors.CodeParseFailure, fmt.Sprintf("%d syntax errors", syntaxErrors))
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}

	file, idx, err := p.extractor.Extract(root, content, path)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeParseFailure, "extraction failed"), errors.CtxPath, path)
	}
	return &Result{File: file, Index: idx, SyntaxErrors: syntaxErrors}, nil
}

func (p *Parser) ParseFile(path string, content []byte) (*ast.File, *ast.Index, error) {
	res, err := p.Parse(path, content)
	if err != nil {
		return nil, nil, err
	}
	return res.File, res.Index, nil
}

func (p *Parser) IsSupportedPath(path string) bool {
	return p.loader.extensions[strings.ToLower(filepath.Ext(path))]
}

func (p *Parser) SupportedExtensions() []string {
	return p.loader.SupportedExtensions()
}

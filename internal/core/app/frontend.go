package app

import (
	"bytes"
	"path/filepath"
	"strings"

	"cppbind/internal/core/config"
	"cppbind/internal/core/errors"
	"cppbind/internal/core/ports"
	"cppbind/internal/engine/ast"
	"cppbind/internal/engine/parser"
)

// NewFrontend builds the frontend named by inputs.frontend.
func NewFrontend(cfg *config.Config) (ports.Frontend, error) {
	switch cfg.Inputs.Frontend {
	case config.FrontendTreeSitter:
		loader, err := parser.NewGrammarLoader(cfg.Inputs.Extensions)
		if err != nil {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeValidationError, "load grammar"), errors.CtxField, "inputs.extensions")
		}
		return &treeSitterFrontend{
			parser: parser.NewParser(loader, parser.Options{FatalErrors: cfg.Compile.FatalErrors}),
		}, nil
	case config.FrontendDump:
		return dumpFrontend{}, nil
	}
	err := errors.New(errors.CodeNotSupported, "unknown frontend "+cfg.Inputs.Frontend)
	return nil, errors.AddContext(err, errors.CtxFrontend, cfg.Inputs.Frontend)
}

type treeSitterFrontend struct {
	parser *parser.Parser
}

func (f *treeSitterFrontend) Name() string { return config.FrontendTreeSitter }

func (f *treeSitterFrontend) Load(path string, content []byte) (*ast.File, *ast.Index, error) {
	return f.parser.ParseFile(path, content)
}

func (f *treeSitterFrontend) IsSupportedPath(path string) bool {
	return f.parser.IsSupportedPath(path)
}

func (f *treeSitterFrontend) SupportedExtensions() []string {
	return f.parser.SupportedExtensions()
}

// dumpFrontend reads entity trees produced by an external parser.
type dumpFrontend struct{}

var dumpExtensions = []string{".json", ".yaml", ".yml"}

func (dumpFrontend) Name() string { return config.FrontendDump }

func (dumpFrontend) Load(path string, content []byte) (*ast.File, *ast.Index, error) {
	file, idx, err := ast.DecodeDump(bytes.NewReader(content), path)
	if err != nil {
		return nil, nil, errors.AddContext(errors.Wrap(err, errors.CodeParseFailure, "invalid entity dump"), errors.CtxPath, path)
	}
	return file, idx, nil
}

func (dumpFrontend) IsSupportedPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range dumpExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func (dumpFrontend) SupportedExtensions() []string {
	return append([]string(nil), dumpExtensions...)
}

package parser

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
)

// Parser wraps a tree-sitter parser for one source language
type Parser struct {
	parser   *sitter.Parser
	language *sitter.Language
	lang     string
}

// NewParser creates a new Python parser, the native language
func NewParser() *Parser {
	p := sitter.NewParser()
	lang := python.GetLanguage()
	p.SetLanguage(lang)

	return &Parser{
		parser:   p,
		language: lang,
		lang:     "python",
	}
}

// NewJavaScriptParser creates a parser for JavaScript sources
func NewJavaScriptParser() *Parser {
	p := sitter.NewParser()
	lang := javascript.GetLanguage()
	p.SetLanguage(lang)

	return &Parser{
		parser:   p,
		language: lang,
		lang:     "javascript",
	}
}

// NewTypeScriptParser creates a parser for TypeScript/TSX sources
func NewTypeScriptParser() *Parser {
	p := sitter.NewParser()
	lang := tsx.GetLanguage()
	p.SetLanguage(lang)

	return &Parser{
		parser:   p,
		language: lang,
		lang:     "typescript",
	}
}

// Language returns the language tag this parser handles
func (p *Parser) Language() string {
	return p.lang
}

// ParseFile parses a source file into the internal AST
func (p *Parser) ParseFile(filename string, source []byte) (*Node, error) {
	tree, err := p.parser.ParseCtx(context.Background(), nil, source)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse file %s: %v", filename, err)
	}
	defer tree.Close()

	rootNode := tree.RootNode()
	if rootNode == nil {
		return nil, fmt.Errorf("no root node in parse tree for %s", filename)
	}
	if rootNode.HasError() {
		return nil, fmt.Errorf("syntax errors in %s", filename)
	}

	if p.lang == "python" {
		builder := NewASTBuilder(filename, source)
		return builder.Build(rootNode), nil
	}
	builder := NewForeignBuilder(filename, source)
	return builder.Build(rootNode), nil
}

// Parse parses source code with a placeholder filename
func (p *Parser) Parse(source []byte) (*Node, error) {
	return p.ParseFile("<input>", source)
}

// ParseString parses source code from a string
func (p *Parser) ParseString(source string) (*Node, error) {
	return p.Parse([]byte(source))
}

// Close closes the parser and frees resources
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// SplitLines splits source text into lines without trailing newlines
func SplitLines(source []byte) []string {
	text := strings.ReplaceAll(string(source), "\r\n", "\n")
	return strings.Split(text, "\n")
}

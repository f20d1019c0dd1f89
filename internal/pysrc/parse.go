package pysrc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/kode4food/airdraw/pkg/log"
)

var (
	ErrReadSource      = errors.New("failed to read source")
	ErrInvalidEncoding = errors.New("source is not valid UTF-8")
	ErrSyntax          = errors.New("invalid syntax")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseFile reads and parses the Python file at path
func ParseFile(ctx context.Context, path string) (*File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadSource, err)
	}
	return Parse(ctx, src)
}

// Parse builds the class model of a Python module. Any syntax error in the
// module fails the whole parse
func Parse(ctx context.Context, src []byte) (*File, error) {
	src = bytes.TrimPrefix(src, utf8BOM)
	if !utf8.Valid(src) {
		return nil, ErrInvalidEncoding
	}

	// parsers are not safe for concurrent use, so each parse gets its own
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		if bad := firstError(root); bad != nil {
			p := bad.StartPoint()
			return nil, fmt.Errorf("%w: line %d, column %d",
				ErrSyntax, p.Row+1, p.Column+1)
		}
		return nil, ErrSyntax
	}

	f := &File{}
	walk(root, func(n *sitter.Node) {
		if n.Type() == "class_definition" {
			f.Classes = append(f.Classes, buildClass(n, src))
		}
	})
	return f, nil
}

// ExtractOperators returns the operator class names defined in the file at
// path. Failures are logged and produce an empty result
func ExtractOperators(ctx context.Context, path string) []string {
	f, err := ParseFile(ctx, path)
	if err != nil {
		slog.Error("Failed to parse source",
			log.Path(path),
			log.Error(err))
		return []string{}
	}
	return f.OperatorClasses()
}

func buildClass(n *sitter.Node, src []byte) *Class {
	c := &Class{
		Name: fieldText(n, "name", src),
		Line: int(n.StartPoint().Row) + 1,
	}
	body := n.ChildByFieldName("body")
	if body == nil {
		return c
	}

	first := true
	for stmt := range namedChildren(body) {
		if first {
			c.Doc = docstring(stmt, src)
			first = false
		}
		if fn := functionDef(stmt); fn != nil &&
			fieldText(fn, "name", src) == "__init__" {
			// the last definition is the one bound to the class
			c.Init = buildFunction(fn, src)
		}
	}
	return c
}

func functionDef(n *sitter.Node) *sitter.Node {
	switch n.Type() {
	case "function_definition":
		return n
	case "decorated_definition":
		if def := n.ChildByFieldName("definition"); def != nil &&
			def.Type() == "function_definition" {
			return def
		}
	}
	return nil
}

func buildFunction(n *sitter.Node, src []byte) *Function {
	fn := &Function{
		Name:   fieldText(n, "name", src),
		Params: []*Param{},
	}
	params := n.ChildByFieldName("parameters")
	if params == nil {
		return fn
	}

	kind := PositionalOrKeyword
	receiver := true
	for p := range namedChildren(params) {
		switch p.Type() {
		case "keyword_separator", "list_splat_pattern",
			"dictionary_splat_pattern":
			kind = KeywordOnly
			receiver = false
			continue
		case "positional_separator":
			for _, prev := range fn.Params {
				prev.Kind = PositionalOnly
			}
			receiver = false
			continue
		case "typed_parameter":
			if inner := p.NamedChild(0); inner != nil &&
				inner.Type() != "identifier" {
				kind = KeywordOnly
				receiver = false
				continue
			}
		}

		param := buildParam(p, src)
		if param == nil {
			continue
		}
		if receiver {
			receiver = false
			continue
		}
		param.Kind = kind
		fn.Params = append(fn.Params, param)
	}
	return fn
}

func buildParam(n *sitter.Node, src []byte) *Param {
	switch n.Type() {
	case "identifier":
		return &Param{Name: n.Content(src)}
	case "typed_parameter":
		return &Param{
			Name: n.NamedChild(0).Content(src),
			Type: fieldText(n, "type", src),
		}
	case "default_parameter", "typed_default_parameter":
		name := n.ChildByFieldName("name")
		if name == nil || name.Type() != "identifier" {
			return nil
		}
		def := fieldText(n, "value", src)
		return &Param{
			Name:    name.Content(src),
			Type:    fieldText(n, "type", src),
			Default: &def,
		}
	default:
		return nil
	}
}

func docstring(stmt *sitter.Node, src []byte) string {
	if stmt.Type() != "expression_statement" || stmt.NamedChildCount() != 1 {
		return ""
	}
	str := stmt.NamedChild(0)
	if str.Type() != "string" {
		return ""
	}
	doc, ok := stringLiteral(str.Content(src))
	if !ok {
		return ""
	}
	return cleanDoc(doc)
}

// fieldText returns the source text of a field verbatim, line breaks and
// string literals included
func fieldText(n *sitter.Node, field string, src []byte) string {
	child := n.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return child.Content(src)
}

func namedChildren(n *sitter.Node) iter.Seq[*sitter.Node] {
	return func(yield func(*sitter.Node) bool) {
		count := int(n.NamedChildCount())
		for i := 0; i < count; i++ {
			child := n.NamedChild(i)
			if child == nil || child.Type() == "comment" {
				continue
			}
			if !yield(child) {
				return
			}
		}
	}
}

func walk(n *sitter.Node, visit func(*sitter.Node)) {
	visit(n)
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		if child := n.NamedChild(i); child != nil {
			walk(child, visit)
		}
	}
}

func firstError(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		child := n.Child(i)
		if child == nil || !child.HasError() && !child.IsMissing() {
			continue
		}
		if bad := firstError(child); bad != nil {
			return bad
		}
	}
	return nil
}

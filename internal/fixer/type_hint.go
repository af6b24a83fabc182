package fixer

import (
	"fmt"
	"strings"

	"github.com/ludo-technologies/conscan/domain"
	"github.com/ludo-technologies/conscan/internal/analyzer"
	"github.com/ludo-technologies/conscan/internal/parser"
)

// TypeHintFixer infers parameter and return annotations from how values
// are actually used inside the function body.
type TypeHintFixer struct{}

// NewTypeHintFixer creates a new TypeHintFixer
func NewTypeHintFixer() *TypeHintFixer {
	return &TypeHintFixer{}
}

// Handles claims type violations
func (f *TypeHintFixer) Handles(v *domain.Violation) bool {
	return v.Category == domain.CategoryType
}

// methodTypeHints maps well-known method names to the receiver type
// they imply.
var methodTypeHints = map[string]string{
	"append":     "list",
	"extend":     "list",
	"insert":     "list",
	"get":        "dict",
	"keys":       "dict",
	"values":     "dict",
	"items":      "dict",
	"update":     "dict",
	"add":        "set",
	"startswith": "str",
	"endswith":   "str",
	"upper":      "str",
	"lower":      "str",
	"strip":      "str",
	"split":      "str",
	"join":       "str",
	"format":     "str",
	"encode":     "str",
}

// inference weights: a return-type slot is worth double a parameter
// slot when blending confidence.
const (
	paramSlotWeight  = 1.0
	returnSlotWeight = 2.0
)

// Propose annotates the definition line with inferred types
func (f *TypeHintFixer) Propose(unit *analyzer.SourceUnit, v *domain.Violation) *domain.PatchSuggestion {
	fn := findFunctionAt(unit.Tree, v.Line, v.FunctionName)
	if fn == nil || v.Line < 1 || v.Line > len(unit.Lines) {
		return nil
	}
	line := unit.Lines[v.Line-1]
	open := strings.Index(line, "(")
	closeIdx := strings.LastIndex(line, ")")
	if open < 0 || closeIdx <= open {
		return nil
	}

	paramTypes := make(map[string]string)
	inferredSlots, totalSlots := 0.0, 0.0
	for _, p := range fn.PositionalParams() {
		totalSlots += paramSlotWeight
		if t := f.inferParamType(fn, p.Name); t != "" {
			paramTypes[p.Name] = t
			inferredSlots += paramSlotWeight
		}
	}

	returnType := f.inferReturnType(fn)
	totalSlots += returnSlotWeight
	if returnType != "" {
		inferredSlots += returnSlotWeight
	}

	if totalSlots == 0 || inferredSlots == 0 {
		return nil
	}

	var rendered []string
	for _, p := range fn.Params {
		if p == nil || p.Name == "" {
			continue
		}
		text := p.Name
		if t, ok := paramTypes[p.Name]; ok {
			text += ": " + t
		}
		if p.DefaultValue != nil && p.DefaultValue.Raw != "" {
			if strings.Contains(text, ":") {
				text += " = " + p.DefaultValue.Raw
			} else {
				text += "=" + p.DefaultValue.Raw
			}
		}
		rendered = append(rendered, text)
	}

	newLine := line[:open+1] + strings.Join(rendered, ", ") + ")"
	rest := strings.TrimSpace(line[closeIdx+1:])
	if returnType != "" && strings.HasPrefix(rest, ":") {
		newLine += " -> " + returnType + rest
	} else {
		newLine += line[closeIdx+1:]
	}
	if newLine == line {
		return nil
	}

	confidence := 0.4 + 0.5*(inferredSlots/totalSlots)
	return &domain.PatchSuggestion{
		ViolationID: v.ID,
		Confidence:  confidence,
		Safety:      domain.SafetyLevelSafe,
		Description: fmt.Sprintf("annotate '%s' with inferred types", fn.Name),
		FilePath:    unit.Path,
		StartLine:   v.Line,
		EndLine:     v.Line,
		OldCode:     line,
		NewCode:     newLine,
	}
}

// inferParamType deduces a parameter's type from method calls on it,
// literal comparisons with it, and arithmetic involving it.
func (f *TypeHintFixer) inferParamType(fn *parser.Node, param string) string {
	inferred := ""
	for _, stmt := range fn.Body {
		stmt.Walk(func(n *parser.Node) bool {
			if inferred != "" {
				return false
			}
			switch n.Type {
			case parser.NodeCall:
				// param.method(...) pattern
				if n.Callee != nil && n.Callee.Type == parser.NodeAttribute &&
					n.Callee.Object != nil && n.Callee.Object.Type == parser.NodeName &&
					n.Callee.Object.Name == param {
					if t, ok := methodTypeHints[n.Callee.Name]; ok {
						inferred = t
					}
				}
			case parser.NodeCompare:
				if t := literalComparisonType(n, param); t != "" {
					inferred = t
				}
			case parser.NodeSubscript:
				if n.Object != nil && n.Object.Type == parser.NodeName && n.Object.Name == param {
					inferred = "list"
				}
			}
			return true
		})
		if inferred != "" {
			break
		}
	}
	return inferred
}

// literalComparisonType reports the literal type a parameter is compared
// against, when the comparison involves the parameter by name.
func literalComparisonType(cmp *parser.Node, param string) string {
	var nameSide, literalSide *parser.Node
	for _, side := range []*parser.Node{cmp.Left, cmp.Right} {
		if side == nil {
			continue
		}
		if side.Type == parser.NodeName && side.Name == param {
			nameSide = side
		}
		if side.IsLiteral() {
			literalSide = side
		}
	}
	if nameSide == nil || literalSide == nil {
		return ""
	}
	return literalTypeName(literalSide)
}

// inferReturnType looks at return-statement literal types; a consistent
// literal type across all returns is used, otherwise nothing.
func (f *TypeHintFixer) inferReturnType(fn *parser.Node) string {
	inferred := ""
	consistent := true
	for _, stmt := range fn.Body {
		stmt.Walk(func(n *parser.Node) bool {
			if n.IsFunction() {
				return false
			}
			if n.Type != parser.NodeReturn {
				return true
			}
			value := n.Value
			if value == nil && len(n.Children) > 0 {
				value = n.Children[0]
			}
			if value == nil {
				return true
			}
			t := literalTypeName(value)
			if t == "" {
				consistent = false
				return true
			}
			if inferred == "" {
				inferred = t
			} else if inferred != t {
				consistent = false
			}
			return true
		})
	}
	if !consistent {
		return ""
	}
	return inferred
}

func literalTypeName(n *parser.Node) string {
	switch n.Type {
	case parser.NodeNumberLiteral:
		if strings.Contains(n.Raw, ".") {
			return "float"
		}
		return "int"
	case parser.NodeStringLiteral:
		return "str"
	case parser.NodeBooleanLiteral:
		return "bool"
	case parser.NodeList:
		return "list"
	case parser.NodeDict:
		return "dict"
	case parser.NodeSet:
		return "set"
	}
	return ""
}

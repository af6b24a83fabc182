package fixer

import (
	"fmt"
	"strings"

	"github.com/ludo-technologies/conscan/domain"
	"github.com/ludo-technologies/conscan/internal/analyzer"
	"github.com/ludo-technologies/conscan/internal/parser"
)

// ParameterBombFixer restructures over-long positional parameter lists.
// The chosen shape depends on how bad the list is: a few too many become
// keyword-only, moderately long lists keep two positional slots, and
// runaway lists are folded into a parameter object.
type ParameterBombFixer struct{}

// NewParameterBombFixer creates a new ParameterBombFixer
func NewParameterBombFixer() *ParameterBombFixer {
	return &ParameterBombFixer{}
}

// Handles claims position violations on function definitions
func (f *ParameterBombFixer) Handles(v *domain.Violation) bool {
	if v.Category != domain.CategoryPosition || v.Context == nil {
		return false
	}
	_, ok := v.Context["parameter_count"]
	return ok
}

// Propose rewrites the definition line for the flagged function
func (f *ParameterBombFixer) Propose(unit *analyzer.SourceUnit, v *domain.Violation) *domain.PatchSuggestion {
	fn := findFunctionAt(unit.Tree, v.Line, v.FunctionName)
	if fn == nil || v.Line < 1 || v.Line > len(unit.Lines) {
		return nil
	}
	line := unit.Lines[v.Line-1]
	params := fn.PositionalParams()
	count := len(params)

	var newLine, description string
	var confidence float64
	var safety domain.SafetyLevel

	switch {
	case count <= 5:
		newLine = f.keywordOnlyLine(line, fn, 1)
		description = fmt.Sprintf("make trailing parameters of '%s' keyword-only", fn.Name)
		confidence = 0.8
		safety = domain.SafetyLevelModerate
	case count <= 8:
		// Mid-size lists: annotating the parameters keeps every call
		// site valid, so prefer it whenever types can be inferred.
		if annotated := f.typedAnnotationLine(line, fn); annotated != "" {
			newLine = annotated
			description = fmt.Sprintf("annotate the parameters of '%s' with inferred types", fn.Name)
			confidence = 0.7
			safety = domain.SafetyLevelSafe
			break
		}
		newLine = f.keywordOnlyLine(line, fn, 2)
		description = fmt.Sprintf("keep two positional parameters of '%s', move the rest behind '*'", fn.Name)
		confidence = 0.65
		safety = domain.SafetyLevelModerate
	default:
		newLine = f.parameterObjectLine(line, fn)
		description = fmt.Sprintf("fold the parameters of '%s' into a parameter object", fn.Name)
		confidence = 0.5
		safety = domain.SafetyLevelRisky
	}
	if newLine == "" || newLine == line {
		return nil
	}

	return &domain.PatchSuggestion{
		ViolationID: v.ID,
		Confidence:  confidence,
		Safety:      safety,
		Description: description,
		FilePath:    unit.Path,
		StartLine:   v.Line,
		EndLine:     v.Line,
		OldCode:     line,
		NewCode:     newLine,
	}
}

// keywordOnlyLine rebuilds the def line with a '*' separator after the
// first keep positional parameters. Callers must then name the rest,
// which removes the order coupling without changing behavior for
// keyword call sites.
func (f *ParameterBombFixer) keywordOnlyLine(line string, fn *parser.Node, keep int) string {
	open := strings.Index(line, "(")
	closeIdx := strings.LastIndex(line, ")")
	if open < 0 || closeIdx <= open {
		return ""
	}

	var names []string
	for _, p := range fn.Params {
		if p == nil || p.Name == "" {
			continue
		}
		names = append(names, parameterText(p))
	}
	if keep >= len(names) {
		return ""
	}

	rebuilt := append([]string{}, names[:keep]...)
	rebuilt = append(rebuilt, "*")
	rebuilt = append(rebuilt, names[keep:]...)
	return line[:open+1] + strings.Join(rebuilt, ", ") + line[closeIdx:]
}

// typedAnnotationLine rebuilds the def line with inferred annotations on
// every parameter the body gives a type for. Unlike the keyword-only
// rewrite this never invalidates a call site. Returns "" when nothing
// can be inferred.
func (f *ParameterBombFixer) typedAnnotationLine(line string, fn *parser.Node) string {
	open := strings.Index(line, "(")
	closeIdx := strings.LastIndex(line, ")")
	if open < 0 || closeIdx <= open {
		return ""
	}

	inference := NewTypeHintFixer()
	inferred := 0
	var rendered []string
	for _, p := range fn.Params {
		if p == nil || p.Name == "" {
			continue
		}
		text := p.Name
		if p.TypeAnnotation == nil && p.Name != "self" && p.Name != "cls" {
			if t := inference.inferParamType(fn, p.Name); t != "" {
				text += ": " + t
				inferred++
			}
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
	if inferred == 0 {
		return ""
	}
	return line[:open+1] + strings.Join(rendered, ", ") + line[closeIdx:]
}

// parameterObjectLine replaces the whole list with a single params
// argument. Risky: every call site changes.
func (f *ParameterBombFixer) parameterObjectLine(line string, fn *parser.Node) string {
	open := strings.Index(line, "(")
	closeIdx := strings.LastIndex(line, ")")
	if open < 0 || closeIdx <= open {
		return ""
	}

	receiver := ""
	if len(fn.Params) > 0 && (fn.Params[0].Name == "self" || fn.Params[0].Name == "cls") {
		receiver = fn.Params[0].Name + ", "
	}
	return line[:open+1] + receiver + "params" + line[closeIdx:]
}

// parameterText renders one parameter with its default, preserving the
// original call contract.
func parameterText(p *parser.Node) string {
	text := p.Name
	if p.DefaultValue != nil && p.DefaultValue.Raw != "" {
		text += "=" + p.DefaultValue.Raw
	}
	return text
}

// findFunctionAt locates the function definition a violation points at
func findFunctionAt(tree *parser.Node, line int, name string) *parser.Node {
	var found *parser.Node
	tree.Walk(func(n *parser.Node) bool {
		if found != nil {
			return false
		}
		if n.Type == parser.NodeFunctionDef && n.Location.StartLine == line {
			if name == "" || n.Name == name {
				found = n
				return false
			}
		}
		return true
	})
	return found
}

package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ludo-technologies/conscan/domain"
	"github.com/ludo-technologies/conscan/internal/config"
	"github.com/ludo-technologies/conscan/internal/parser"
)

// AlgorithmDetector flags duplicated algorithms, overcomplex functions,
// and recursion cycles
type AlgorithmDetector struct{}

// NewAlgorithmDetector creates a new AlgorithmDetector
func NewAlgorithmDetector() *AlgorithmDetector {
	return &AlgorithmDetector{}
}

// Category identifies the connascence kind this detector emits
func (d *AlgorithmDetector) Category() domain.Category {
	return domain.CategoryAlgorithm
}

// Detect runs the duplicate, complexity and recursion passes
func (d *AlgorithmDetector) Detect(unit *SourceUnit, thresholds *config.ThresholdConfig) []*domain.Violation {
	var violations []*domain.Violation

	functions := collectFunctions(unit.Tree)
	violations = append(violations, d.detectDuplicates(unit, functions)...)
	violations = append(violations, d.detectComplexity(unit, functions, thresholds)...)
	violations = append(violations, d.detectRecursion(unit)...)

	return violations
}

func collectFunctions(tree *parser.Node) []*parser.Node {
	var functions []*parser.Node
	tree.Walk(func(n *parser.Node) bool {
		if n.Type == parser.NodeFunctionDef {
			functions = append(functions, n)
		}
		return true
	})
	return functions
}

// StructuralSignature normalizes a function body into a sequence of
// statement-kind tokens. Two functions with the same signature very
// likely implement the same algorithm.
func StructuralSignature(fn *parser.Node) string {
	var tokens []string
	for _, stmt := range fn.Body {
		appendSignatureTokens(stmt, &tokens)
	}
	return strings.Join(tokens, ",")
}

// appendSignatureTokens emits the statement kind plus nested statement
// structure, ignoring identifiers and literal values.
func appendSignatureTokens(n *parser.Node, tokens *[]string) {
	if n == nil {
		return
	}
	*tokens = append(*tokens, string(n.Type))

	for _, child := range n.Body {
		appendSignatureTokens(child, tokens)
	}
	if len(n.OrElse) > 0 {
		*tokens = append(*tokens, "Else")
		for _, child := range n.OrElse {
			appendSignatureTokens(child, tokens)
		}
	}
	for _, h := range n.Handlers {
		appendSignatureTokens(h, tokens)
	}
	if len(n.Finalizer) > 0 {
		*tokens = append(*tokens, "Finally")
		for _, child := range n.Finalizer {
			appendSignatureTokens(child, tokens)
		}
	}
}

// detectDuplicates links every function after the first sharing a
// structural signature to the first occurrence.
func (d *AlgorithmDetector) detectDuplicates(unit *SourceUnit, functions []*parser.Node) []*domain.Violation {
	var violations []*domain.Violation
	firstSeen := make(map[string]*parser.Node)

	for _, fn := range functions {
		sig := StructuralSignature(fn)
		// Single-token bodies (pass, stub returns) are structurally
		// identical by accident, not by copy.
		if sig == "" || !strings.Contains(sig, ",") {
			continue
		}

		original, ok := firstSeen[sig]
		if !ok {
			firstSeen[sig] = fn
			continue
		}
		if original == fn {
			continue
		}

		v := domain.NewViolation(
			domain.CategoryAlgorithm,
			domain.SeverityMedium,
			unit.Path,
			fn.Location.StartLine,
			fn.Location.StartCol,
			fmt.Sprintf("function '%s' has the same structure as '%s' (line %d); probable duplicated algorithm",
				fn.Name, original.Name, original.Location.StartLine),
		)
		v.EndLine = fn.Location.EndLine
		v.FunctionName = fn.Name
		v.Remediation = fmt.Sprintf("Extract the shared algorithm of '%s' and '%s' into a single helper", original.Name, fn.Name)
		v.CodeSnippet = unit.Snippet(fn.Location.StartLine)
		v.Locality = domain.LocalitySameModule
		v.Context = map[string]interface{}{
			"duplicate_of":      original.Name,
			"duplicate_of_line": original.Location.StartLine,
			"signature_tokens":  len(strings.Split(StructuralSignature(fn), ",")),
		}
		attachScope(v, fn)
		violations = append(violations, v)
	}
	return violations
}

// CyclomaticComplexity computes 1 + branching nodes + extra boolean
// operands for a function body.
func CyclomaticComplexity(fn *parser.Node) int {
	complexity := 1
	for _, stmt := range fn.Body {
		stmt.Walk(func(n *parser.Node) bool {
			// Nested function definitions are scored on their own
			if n.IsFunction() && n != fn {
				return false
			}
			if n.IsBranching() {
				complexity++
			}
			// Each boolean operator joins two operands; n operands add
			// n-1 decision points, which the binary BoolOp tree yields
			// naturally at one per node.
			if n.Type == parser.NodeBoolOp {
				complexity++
			}
			return true
		})
	}
	return complexity
}

func (d *AlgorithmDetector) detectComplexity(unit *SourceUnit, functions []*parser.Node, thresholds *config.ThresholdConfig) []*domain.Violation {
	var violations []*domain.Violation
	for _, fn := range functions {
		complexity := CyclomaticComplexity(fn)
		if complexity <= thresholds.MaxComplexity {
			continue
		}

		v := domain.NewViolation(
			domain.CategoryAlgorithm,
			domain.SeverityHigh,
			unit.Path,
			fn.Location.StartLine,
			fn.Location.StartCol,
			fmt.Sprintf("function '%s' has cyclomatic complexity %d (max %d)", fn.Name, complexity, thresholds.MaxComplexity),
		)
		v.EndLine = fn.Location.EndLine
		v.FunctionName = fn.Name
		v.Remediation = "Split the function into smaller units or replace branch chains with table dispatch"
		v.CodeSnippet = unit.Snippet(fn.Location.StartLine)
		v.Weight = float64(complexity) / float64(thresholds.MaxComplexity)
		v.Context = map[string]interface{}{
			"complexity": complexity,
			"threshold":  thresholds.MaxComplexity,
		}
		attachScope(v, fn)
		violations = append(violations, v)
	}
	return violations
}

func (d *AlgorithmDetector) detectRecursion(unit *SourceUnit) []*domain.Violation {
	var violations []*domain.Violation
	graph := BuildCallGraph(unit.Tree)

	for _, name := range graph.DirectRecursions() {
		fn := graph.Nodes[name]
		v := domain.NewViolation(
			domain.CategoryAlgorithm,
			domain.SeverityCritical,
			unit.Path,
			fn.Location.StartLine,
			fn.Location.StartCol,
			fmt.Sprintf("function '%s' is directly recursive", name),
		)
		v.EndLine = fn.Location.EndLine
		v.FunctionName = name
		v.Remediation = "Rewrite with an explicit loop and stack; unbounded recursion risks stack exhaustion"
		v.CodeSnippet = unit.Snippet(fn.Location.StartLine)
		v.Locality = domain.LocalitySameFunction
		v.Context = map[string]interface{}{
			"recursion": "direct",
		}
		attachScope(v, fn)
		violations = append(violations, v)
	}

	for _, cycle := range graph.IndirectCycles() {
		fn := graph.Nodes[cycle[0]]
		path := strings.Join(append(append([]string{}, cycle...), cycle[0]), " -> ")
		v := domain.NewViolation(
			domain.CategoryAlgorithm,
			domain.SeverityHigh,
			unit.Path,
			fn.Location.StartLine,
			fn.Location.StartCol,
			fmt.Sprintf("indirect recursion cycle: %s", path),
		)
		v.FunctionName = cycle[0]
		v.Remediation = "Break the cycle by inverting one call or introducing an explicit work queue"
		v.Locality = domain.LocalitySameModule
		cyclePath := make([]string, len(cycle))
		copy(cyclePath, cycle)
		sort.Strings(cyclePath)
		v.Context = map[string]interface{}{
			"recursion":  "indirect",
			"cycle":      path,
			"cycle_size": len(cycle),
		}
		violations = append(violations, v)
	}

	return violations
}

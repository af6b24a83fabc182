package fixer

import (
	"github.com/ludo-technologies/conscan/domain"
	"github.com/ludo-technologies/conscan/internal/analyzer"
)

// Strategy proposes a remediation for one violation category. A
// strategy inspects the violation plus the surrounding tree context and
// returns zero or one suggestion; nil means no fix is offered.
type Strategy interface {
	// Handles reports whether the strategy covers this violation
	Handles(v *domain.Violation) bool

	// Propose builds a patch suggestion, or nil when none applies
	Propose(unit *analyzer.SourceUnit, v *domain.Violation) *domain.PatchSuggestion
}

// Generator fans one violation list out to the strategy set
type Generator struct {
	strategies []Strategy
}

// NewGenerator creates a generator with all built-in strategies
func NewGenerator() *Generator {
	return &Generator{
		strategies: []Strategy{
			NewMagicLiteralFixer(),
			NewParameterBombFixer(),
			NewTypeHintFixer(),
		},
	}
}

// Propose collects suggestions for the violations the strategies cover.
// At most one suggestion is produced per violation: the first strategy
// claiming it wins.
func (g *Generator) Propose(unit *analyzer.SourceUnit, violations []*domain.Violation) []*domain.PatchSuggestion {
	var suggestions []*domain.PatchSuggestion
	for _, v := range violations {
		for _, s := range g.strategies {
			if !s.Handles(v) {
				continue
			}
			if patch := s.Propose(unit, v); patch != nil {
				suggestions = append(suggestions, patch)
			}
			break
		}
	}
	return suggestions
}

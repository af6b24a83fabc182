package fixer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ludo-technologies/conscan/domain"
	"github.com/ludo-technologies/conscan/internal/analyzer"
)

// MagicLiteralFixer extracts unexplained literals into named constants,
// or into environment lookups when the context smells like a credential.
type MagicLiteralFixer struct{}

// NewMagicLiteralFixer creates a new MagicLiteralFixer
func NewMagicLiteralFixer() *MagicLiteralFixer {
	return &MagicLiteralFixer{}
}

// Handles claims meaning violations that recorded the literal text
func (f *MagicLiteralFixer) Handles(v *domain.Violation) bool {
	if v.Category != domain.CategoryMeaning || v.Context == nil {
		return false
	}
	_, ok := v.Context["literal"].(string)
	return ok
}

var assignTargetRe = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*[:=]`)

// Propose builds the extraction patch
func (f *MagicLiteralFixer) Propose(unit *analyzer.SourceUnit, v *domain.Violation) *domain.PatchSuggestion {
	literal, _ := v.Context["literal"].(string)
	if v.Line < 1 || v.Line > len(unit.Lines) {
		return nil
	}
	line := unit.Lines[v.Line-1]
	if !strings.Contains(line, literal) {
		return nil
	}

	if _, security := v.Context["security"]; security {
		return f.proposeEnvExtraction(unit, v, literal, line)
	}

	name := f.inferConstantName(literal, line)
	confidence := f.scoreConfidence(literal, line)

	newLine := strings.Replace(line, literal, name, 1)
	return &domain.PatchSuggestion{
		ViolationID: v.ID,
		Confidence:  confidence,
		Safety:      domain.SafetyLevelSafe,
		Description: fmt.Sprintf("extract magic literal %s into constant %s", literal, name),
		FilePath:    unit.Path,
		StartLine:   v.Line,
		EndLine:     v.Line,
		OldCode:     line,
		NewCode:     newLine,
		ExtraLines: map[int]string{
			1: fmt.Sprintf("%s = %s", name, literal),
		},
	}
}

// proposeEnvExtraction moves a credential-like literal out of source
// into an environment lookup. Moderate safety: the deployment must grow
// the variable before this is correct.
func (f *MagicLiteralFixer) proposeEnvExtraction(unit *analyzer.SourceUnit, v *domain.Violation, literal, line string) *domain.PatchSuggestion {
	envName := "SECRET_VALUE"
	if m := assignTargetRe.FindStringSubmatch(line); m != nil {
		envName = strings.ToUpper(m[1])
	}

	newLine := strings.Replace(line, literal, fmt.Sprintf(`os.environ[%q]`, envName), 1)
	return &domain.PatchSuggestion{
		ViolationID: v.ID,
		Confidence:  0.75,
		Safety:      domain.SafetyLevelModerate,
		Description: fmt.Sprintf("replace hardcoded credential with environment variable %s", envName),
		FilePath:    unit.Path,
		StartLine:   v.Line,
		EndLine:     v.Line,
		OldCode:     line,
		NewCode:     newLine,
		ExtraLines: map[int]string{
			1: "import os",
		},
	}
}

// inferConstantName derives a constant name from the surrounding
// variable name when one exists, else from the literal itself.
func (f *MagicLiteralFixer) inferConstantName(literal, line string) string {
	if m := assignTargetRe.FindStringSubmatch(line); m != nil && !isUpperName(m[1]) {
		return "DEFAULT_" + strings.ToUpper(m[1])
	}
	if _, err := strconv.ParseFloat(literal, 64); err == nil {
		sanitized := strings.NewReplacer(".", "_", "-", "NEG_").Replace(literal)
		return "CONSTANT_" + sanitized
	}
	return "CONSTANT_VALUE"
}

// scoreConfidence blends literal type, magnitude and context into a
// [0,1] estimate. Large integers bound to a named variable score
// highest; bare strings score lowest.
func (f *MagicLiteralFixer) scoreConfidence(literal, line string) float64 {
	confidence := 0.5

	if n, err := strconv.ParseInt(literal, 10, 64); err == nil {
		confidence += 0.2
		if n >= 1000 || n <= -1000 {
			confidence += 0.15
		}
	} else if _, err := strconv.ParseFloat(literal, 64); err == nil {
		confidence += 0.15
	}

	if m := assignTargetRe.FindStringSubmatch(line); m != nil && !isUpperName(m[1]) {
		confidence += 0.1
	}

	if confidence > 0.95 {
		confidence = 0.95
	}
	return confidence
}

func isUpperName(name string) bool {
	return name == strings.ToUpper(name)
}

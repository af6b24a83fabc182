package fixer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ludo-technologies/conscan/domain"
	"github.com/ludo-technologies/conscan/internal/parser"
)

// Applier is the only supported way to turn patch suggestions into
// source mutations. It validates every candidate result by re-parsing
// and rolls back to the pre-patch text on failure; source is never
// mutated speculatively.
type Applier struct {
	validate func(filename string, source []byte) error
}

// NewApplier creates an applier that validates with the native parser
func NewApplier() *Applier {
	return &Applier{
		validate: func(filename string, source []byte) error {
			p := parser.NewParser()
			defer p.Close()
			_, err := p.ParseFile(filename, source)
			return err
		},
	}
}

// Apply filters the patches by policy, selects the highest-priority
// non-overlapping set, applies them bottom-up and re-parses the result.
// On validation failure everything rolls back and the original source is
// returned untouched.
func (a *Applier) Apply(path string, source []byte, patches []*domain.PatchSuggestion, policy domain.SafetyPolicy) *domain.ApplyResult {
	result := &domain.ApplyResult{NewSource: string(source)}

	var allowed []*domain.PatchSuggestion
	for _, patch := range patches {
		if !policy.Allows(patch) {
			result.Skipped = append(result.Skipped, domain.PatchOutcome{
				Patch:  patch,
				Reason: fmt.Sprintf("below policy: confidence %.2f, safety %s", patch.Confidence, patch.Safety),
			})
			continue
		}
		allowed = append(allowed, patch)
	}

	selected := selectNonOverlapping(allowed)
	for _, patch := range allowed {
		if !containsPatch(selected, patch) {
			result.Skipped = append(result.Skipped, domain.PatchOutcome{
				Patch:  patch,
				Reason: "overlaps a higher-priority patch",
			})
		}
	}
	if len(selected) == 0 {
		return result
	}

	lines, applied, failed := applyPatches(parser.SplitLines(source), selected)
	if len(failed) > 0 {
		for _, patch := range failed {
			result.Skipped = append(result.Skipped, domain.PatchOutcome{
				Patch:  patch,
				Reason: "span no longer matches the source",
			})
		}
	}
	if len(applied) == 0 {
		return result
	}

	newSource := strings.Join(lines, "\n")
	if err := a.validate(path, []byte(newSource)); err != nil {
		// Snapshot rollback: the candidate is discarded whole, the
		// original text survives.
		for _, patch := range selected {
			result.RolledBack = append(result.RolledBack, domain.PatchOutcome{
				Patch:  patch,
				Reason: "post-patch source failed to parse: " + err.Error(),
			})
		}
		result.NewSource = string(source)
		return result
	}

	for _, patch := range applied {
		result.Applied = append(result.Applied, domain.PatchOutcome{Patch: patch})
	}
	result.NewSource = newSource
	return result
}

// selectNonOverlapping keeps the highest-priority patch from each group
// of overlapping candidates. Priority is confidence first, then safety.
func selectNonOverlapping(patches []*domain.PatchSuggestion) []*domain.PatchSuggestion {
	ordered := make([]*domain.PatchSuggestion, len(patches))
	copy(ordered, patches)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Confidence != ordered[j].Confidence {
			return ordered[i].Confidence > ordered[j].Confidence
		}
		return ordered[i].Safety.Rank() < ordered[j].Safety.Rank()
	})

	var selected []*domain.PatchSuggestion
	for _, candidate := range ordered {
		conflict := false
		for _, kept := range selected {
			if candidate.Overlaps(kept) {
				conflict = true
				break
			}
		}
		if !conflict {
			selected = append(selected, candidate)
		}
	}
	return selected
}

// spanMatches verifies every line of the target span against the
// patch's recorded old code, not just the first one; a span whose tail
// drifted since the suggestion was generated is stale.
func spanMatches(span []string, oldCode string) bool {
	expected := parser.SplitLines([]byte(oldCode))
	if len(expected) != len(span) {
		return false
	}
	for i := range span {
		if span[i] != expected[i] {
			return false
		}
	}
	return true
}

// applyPatches mutates the line slice bottom-up so earlier spans keep
// their line numbers while later ones are rewritten. Extra lines are
// inserted after all replacements.
func applyPatches(lines []string, patches []*domain.PatchSuggestion) (result []string, applied, failed []*domain.PatchSuggestion) {
	ordered := make([]*domain.PatchSuggestion, len(patches))
	copy(ordered, patches)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StartLine > ordered[j].StartLine
	})

	extras := make(map[int][]string)
	for _, patch := range ordered {
		if patch.StartLine < 1 || patch.EndLine > len(lines) || patch.StartLine > patch.EndLine {
			failed = append(failed, patch)
			continue
		}
		if !spanMatches(lines[patch.StartLine-1:patch.EndLine], patch.OldCode) {
			failed = append(failed, patch)
			continue
		}
		replacement := parser.SplitLines([]byte(patch.NewCode))
		rebuilt := append([]string{}, lines[:patch.StartLine-1]...)
		rebuilt = append(rebuilt, replacement...)
		rebuilt = append(rebuilt, lines[patch.EndLine:]...)
		lines = rebuilt
		for at, text := range patch.ExtraLines {
			extras[at] = append(extras[at], text)
		}
		applied = append(applied, patch)
	}

	insertAt := make([]int, 0, len(extras))
	for at := range extras {
		insertAt = append(insertAt, at)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(insertAt)))
	for _, at := range insertAt {
		idx := at - 1
		if idx < 0 {
			idx = 0
		}
		if idx > len(lines) {
			idx = len(lines)
		}
		rebuilt := append([]string{}, lines[:idx]...)
		rebuilt = append(rebuilt, extras[at]...)
		rebuilt = append(rebuilt, lines[idx:]...)
		lines = rebuilt
	}

	return lines, applied, failed
}

func containsPatch(patches []*domain.PatchSuggestion, target *domain.PatchSuggestion) bool {
	for _, p := range patches {
		if p == target {
			return true
		}
	}
	return false
}

package metrics

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/conscan/domain"
)

// CompareBaseline diffs the current snapshot against a pinned one
func CompareBaseline(baseline, current *domain.MetricsSnapshot) *domain.BaselineComparison {
	if baseline == nil || current == nil {
		return nil
	}

	severityDeltas := make(map[domain.Severity]int)
	for _, severity := range []domain.Severity{
		domain.SeverityCritical,
		domain.SeverityHigh,
		domain.SeverityMedium,
		domain.SeverityLow,
		domain.SeverityInfo,
	} {
		delta := current.BySeverity[severity] - baseline.BySeverity[severity]
		if delta != 0 {
			severityDeltas[severity] = delta
		}
	}

	qualityDelta := current.OverallQualityScore - baseline.OverallQualityScore
	violationDelta := current.TotalViolations - baseline.TotalViolations
	return &domain.BaselineComparison{
		Baseline:       baseline,
		Current:        current,
		QualityDelta:   qualityDelta,
		ViolationDelta: violationDelta,
		SeverityDeltas: severityDeltas,
		Improved:       qualityDelta > 0 || (qualityDelta == 0 && violationDelta < 0),
	}
}

// SaveBaseline persists a snapshot as the pinned baseline
func SaveBaseline(path string, snapshot *domain.MetricsSnapshot) error {
	if snapshot == nil {
		return domain.NewInvalidInputError("no snapshot to save", nil)
	}
	data, err := yaml.Marshal(snapshot)
	if err != nil {
		return domain.NewOutputError("failed to encode baseline", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return domain.NewOutputError("failed to create baseline directory", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return domain.NewOutputError("failed to write baseline", err)
	}
	return nil
}

// LoadBaseline reads a pinned baseline snapshot
func LoadBaseline(path string) (*domain.MetricsSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.NewFileNotFoundError(path, err)
		}
		return nil, domain.NewConfigError("failed to read baseline", err)
	}
	var snapshot domain.MetricsSnapshot
	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return nil, domain.NewConfigError("failed to decode baseline", err)
	}
	return &snapshot, nil
}

package metrics

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ludo-technologies/conscan/domain"
)

func violation(category domain.Category, severity domain.Severity, line int) *domain.Violation {
	return domain.NewViolation(category, severity, "a.py", line, 0, "finding")
}

func TestScoreCleanRun(t *testing.T) {
	snapshot := NewScorer().Score(nil, 10)

	if snapshot.ConnascenceIndex != 0 {
		t.Errorf("no violations should index 0, got %f", snapshot.ConnascenceIndex)
	}
	if snapshot.OverallQualityScore != 1.0 {
		t.Errorf("a clean run scores 1.0, got %f", snapshot.OverallQualityScore)
	}
	if snapshot.RuleComplianceScore != 1.0 || snapshot.DuplicationScore != 1.0 {
		t.Error("clean sub-scores should be 1.0")
	}
	if snapshot.FilesAnalyzed != 10 {
		t.Errorf("expected 10 files recorded, got %d", snapshot.FilesAnalyzed)
	}
}

func TestScoreDegradesWithSeverity(t *testing.T) {
	lowOnly := NewScorer().Score([]*domain.Violation{
		violation(domain.CategoryName, domain.SeverityLow, 1),
	}, 1)
	criticalOnly := NewScorer().Score([]*domain.Violation{
		violation(domain.CategoryName, domain.SeverityCritical, 1),
	}, 1)

	if criticalOnly.OverallQualityScore >= lowOnly.OverallQualityScore {
		t.Errorf("critical violations must hurt more: %f vs %f",
			criticalOnly.OverallQualityScore, lowOnly.OverallQualityScore)
	}
}

func TestScoreIndexUsesCategoryWeight(t *testing.T) {
	identity := NewScorer().Score([]*domain.Violation{
		violation(domain.CategoryIdentity, domain.SeverityMedium, 1),
	}, 1)
	name := NewScorer().Score([]*domain.Violation{
		violation(domain.CategoryName, domain.SeverityMedium, 1),
	}, 1)

	if identity.ConnascenceIndex <= name.ConnascenceIndex {
		t.Errorf("identity connascence should index higher: %f vs %f",
			identity.ConnascenceIndex, name.ConnascenceIndex)
	}
}

func TestScoreBoundedInUnitInterval(t *testing.T) {
	var violations []*domain.Violation
	for i := 0; i < 500; i++ {
		violations = append(violations, violation(domain.CategoryIdentity, domain.SeverityCritical, i+1))
	}
	snapshot := NewScorer().Score(violations, 1)

	if snapshot.OverallQualityScore < 0 || snapshot.OverallQualityScore > 1 {
		t.Errorf("overall score escaped [0,1]: %f", snapshot.OverallQualityScore)
	}
	if snapshot.RuleComplianceScore < 0 {
		t.Errorf("compliance score must floor at 0, got %f", snapshot.RuleComplianceScore)
	}
}

func TestScoreCountsBySeverityAndCategory(t *testing.T) {
	snapshot := NewScorer().Score([]*domain.Violation{
		violation(domain.CategoryMeaning, domain.SeverityHigh, 1),
		violation(domain.CategoryMeaning, domain.SeverityLow, 2),
		violation(domain.CategoryTiming, domain.SeverityHigh, 3),
	}, 2)

	if snapshot.TotalViolations != 3 {
		t.Errorf("expected 3 total, got %d", snapshot.TotalViolations)
	}
	if snapshot.BySeverity[domain.SeverityHigh] != 2 {
		t.Errorf("expected 2 high, got %d", snapshot.BySeverity[domain.SeverityHigh])
	}
	if snapshot.ByCategory[domain.CategoryMeaning] != 2 {
		t.Errorf("expected 2 meaning, got %d", snapshot.ByCategory[domain.CategoryMeaning])
	}
}

func TestHistoryRingBounded(t *testing.T) {
	h := NewHistory(3)
	for i := 0; i < 5; i++ {
		h.Append(&domain.MetricsSnapshot{TotalViolations: i})
	}

	if h.Len() != 3 {
		t.Fatalf("expected 3 retained snapshots, got %d", h.Len())
	}
	if h.Latest().TotalViolations != 4 {
		t.Errorf("latest should be the last appended, got %d", h.Latest().TotalViolations)
	}

	window := h.Window(3)
	if window[0].TotalViolations != 2 {
		t.Errorf("window should start at the oldest retained, got %d", window[0].TotalViolations)
	}
}

func TestTrendImproving(t *testing.T) {
	h := NewHistory(10)
	base := time.Now()
	for i := 0; i < 4; i++ {
		h.Append(&domain.MetricsSnapshot{
			Timestamp:           base.Add(time.Duration(i) * time.Minute),
			OverallQualityScore: 0.5 + float64(i)*0.1,
			TotalViolations:     20 - i*5,
		})
	}

	trend := h.Trend(4)
	if trend == nil {
		t.Fatal("expected a trend for 4 snapshots")
	}
	if trend.Direction != domain.TrendImproving {
		t.Errorf("rising quality should be improving, got %s", trend.Direction)
	}
	if trend.ViolationDelta != -15 {
		t.Errorf("expected violation delta -15, got %d", trend.ViolationDelta)
	}
}

func TestTrendStableWithinBand(t *testing.T) {
	h := NewHistory(10)
	h.Append(&domain.MetricsSnapshot{OverallQualityScore: 0.80, TotalViolations: 5})
	h.Append(&domain.MetricsSnapshot{OverallQualityScore: 0.81, TotalViolations: 5})

	trend := h.Trend(2)
	if trend == nil {
		t.Fatal("expected a trend for 2 snapshots")
	}
	if trend.Direction != domain.TrendStable {
		t.Errorf("a 0.01 delta is inside the stable band, got %s", trend.Direction)
	}
}

func TestTrendNeedsTwoSnapshots(t *testing.T) {
	h := NewHistory(10)
	h.Append(&domain.MetricsSnapshot{OverallQualityScore: 0.8})

	if trend := h.Trend(5); trend != nil {
		t.Error("a single snapshot has no trend")
	}
}

func TestCompareBaseline(t *testing.T) {
	baseline := &domain.MetricsSnapshot{
		OverallQualityScore: 0.6,
		TotalViolations:     10,
		BySeverity:          map[domain.Severity]int{domain.SeverityHigh: 4},
	}
	current := &domain.MetricsSnapshot{
		OverallQualityScore: 0.8,
		TotalViolations:     6,
		BySeverity:          map[domain.Severity]int{domain.SeverityHigh: 1},
	}

	cmp := CompareBaseline(baseline, current)
	if !cmp.Improved {
		t.Error("higher quality should register as improved")
	}
	if cmp.ViolationDelta != -4 {
		t.Errorf("expected violation delta -4, got %d", cmp.ViolationDelta)
	}
	if cmp.SeverityDeltas[domain.SeverityHigh] != -3 {
		t.Errorf("expected high delta -3, got %d", cmp.SeverityDeltas[domain.SeverityHigh])
	}
}

func TestBaselineRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics", "baseline.yaml")
	snapshot := &domain.MetricsSnapshot{
		OverallQualityScore: 0.75,
		TotalViolations:     3,
		FilesAnalyzed:       12,
	}

	if err := SaveBaseline(path, snapshot); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := LoadBaseline(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.OverallQualityScore != 0.75 || loaded.TotalViolations != 3 {
		t.Errorf("round-trip mismatch: %+v", loaded)
	}
}

func TestDuplicationScorePenalizesClusters(t *testing.T) {
	dup := violation(domain.CategoryAlgorithm, domain.SeverityMedium, 20)
	dup.Context = map[string]interface{}{"duplicate_of": "first"}

	with := NewScorer().Score([]*domain.Violation{dup}, 1)
	without := NewScorer().Score([]*domain.Violation{
		violation(domain.CategoryAlgorithm, domain.SeverityMedium, 20),
	}, 1)

	if with.DuplicationScore >= without.DuplicationScore {
		t.Errorf("duplicate findings must lower the duplication score: %f vs %f",
			with.DuplicationScore, without.DuplicationScore)
	}
}

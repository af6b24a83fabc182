package metrics

import (
	"math"
	"time"

	"github.com/ludo-technologies/conscan/domain"
)

// rulePenalty scales how much one violation of a given severity costs
// the compliance score.
var rulePenalty = map[domain.Severity]float64{
	domain.SeverityCritical: 0.10,
	domain.SeverityHigh:     0.05,
	domain.SeverityMedium:   0.02,
	domain.SeverityLow:      0.01,
	domain.SeverityInfo:     0.005,
}

// duplicationClusterPenalty is the base cost of one duplicate cluster
const duplicationClusterPenalty = 0.05

// Scorer turns a violation list into a quality scorecard
type Scorer struct{}

// NewScorer creates a new Scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score computes the snapshot for one run
func (s *Scorer) Score(violations []*domain.Violation, filesAnalyzed int) *domain.MetricsSnapshot {
	snapshot := &domain.MetricsSnapshot{
		Timestamp:       time.Now(),
		TotalViolations: len(violations),
		BySeverity:      make(map[domain.Severity]int),
		ByCategory:      make(map[domain.Category]int),
		FilesAnalyzed:   filesAnalyzed,
	}

	for _, v := range violations {
		snapshot.BySeverity[v.Severity]++
		snapshot.ByCategory[v.Category]++
	}

	snapshot.ConnascenceIndex = s.connascenceIndex(violations)
	snapshot.RuleComplianceScore = s.complianceScore(violations)
	snapshot.DuplicationScore = s.duplicationScore(violations)
	snapshot.OverallQualityScore = s.overallScore(
		s.connascenceScore(snapshot.ConnascenceIndex, filesAnalyzed),
		snapshot.RuleComplianceScore,
		snapshot.DuplicationScore,
	)
	return snapshot
}

// connascenceIndex sums severity weight times category weight times the
// per-violation weight. Lower is better; zero means a clean run.
func (s *Scorer) connascenceIndex(violations []*domain.Violation) float64 {
	index := 0.0
	for _, v := range violations {
		index += v.Severity.Weight() * domain.CategoryWeight(v.Category) * v.Weight
	}
	return index
}

// connascenceScore normalizes the index into [0,1] for blending with the
// other sub-scores. The per-file scale keeps large codebases comparable
// with small ones.
func (s *Scorer) connascenceScore(index float64, filesAnalyzed int) float64 {
	if filesAnalyzed < 1 {
		filesAnalyzed = 1
	}
	perFile := index / float64(filesAnalyzed)
	return 1.0 / (1.0 + perFile/10.0)
}

// complianceScore starts at 1 and subtracts a severity-scaled penalty
// per violation, floored at 0.
func (s *Scorer) complianceScore(violations []*domain.Violation) float64 {
	score := 1.0
	for _, v := range violations {
		score -= rulePenalty[v.Severity]
	}
	return math.Max(0, score)
}

// duplicationScore starts at 1 and subtracts a penalty per duplicate
// cluster, scaled by cluster size, capped so one pathological file
// cannot zero the score alone.
func (s *Scorer) duplicationScore(violations []*domain.Violation) float64 {
	clusters := make(map[string]int)
	for _, v := range violations {
		if v.Category != domain.CategoryAlgorithm || v.Context == nil {
			continue
		}
		original, ok := v.Context["duplicate_of"].(string)
		if !ok {
			continue
		}
		clusters[v.FilePath+":"+original]++
	}

	penalty := 0.0
	for _, size := range clusters {
		p := duplicationClusterPenalty * (1.0 + 0.5*float64(size-1))
		if p > 0.2 {
			p = 0.2
		}
		penalty += p
	}
	if penalty > 0.8 {
		penalty = 0.8
	}
	return 1.0 - penalty
}

// overallScore blends the sub-scores with weight shifted toward the
// worst one: a codebase is only as healthy as its weakest dimension.
// The shift coefficients are tunable policy, not a fixed contract.
func (s *Scorer) overallScore(connascence, compliance, duplication float64) float64 {
	scores := []float64{connascence, compliance, duplication}
	worst := scores[0]
	for _, score := range scores[1:] {
		if score < worst {
			worst = score
		}
	}

	base := 1.0 / 3.0
	shift := 0.5 * (1.0 - worst)
	total := 0.0
	weightSum := 0.0
	for _, score := range scores {
		weight := base
		if score == worst {
			weight += shift
		}
		total += weight * score
		weightSum += weight
	}
	return total / weightSum
}

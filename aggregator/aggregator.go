// Package aggregator folds every checker's result into a single
// commutative, associative aggregated RiskScore plus the sorted
// per-checker diagnostics list.
package aggregator

import (
	"sort"
	"strings"

	"github.com/sqlguard/sqlguard"
)

// Aggregate folds a set of CheckerResults into the report's aggregated
// score:
// aggregatedScore.level = max({r.Score.Level | r.Success && r.Score.Level != NONE} ∪ {NONE})
// plus the checker results sorted into deterministic checkerId order.
// The result does not depend on the order results arrive in, so the fold
// is commutative and associative over its inputs.
func Aggregate(results []sqlguard.CheckerResult) (score sqlguard.RiskScore, sorted []sqlguard.CheckerResult) {
	sorted = make([]sqlguard.CheckerResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].CheckerID < sorted[j].CheckerID })

	score = sqlguard.RiskScore{Level: sqlguard.RiskNone}

	var messages, recommendations []string
	metadata := map[string]string{}
	for _, r := range sorted {
		if !r.Success || r.Score.Level == sqlguard.RiskNone {
			continue
		}
		if r.Score.Level > score.Level {
			score.Level = r.Score.Level
		}
		if r.Score.Numeric > score.Numeric {
			score.Numeric = r.Score.Numeric
		}
		if r.Score.Message != "" {
			messages = append(messages, r.Score.Message)
		}
		if r.Score.Recommendation != "" {
			recommendations = append(recommendations, r.Score.Recommendation)
		}
		for k, v := range r.Score.Metadata {
			metadata[r.CheckerID+"."+k] = v
		}
	}

	score.Message = strings.Join(messages, "; ")
	score.Recommendation = strings.Join(recommendations, "; ")
	if len(metadata) > 0 {
		score.Metadata = metadata
	}
	return score, sorted
}

package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sqlguard/sqlguard"
)

func TestAggregateTakesMaxLevelAndNumeric(t *testing.T) {
	results := []sqlguard.CheckerResult{
		{CheckerID: "WhitelistOnly", Success: true, Score: sqlguard.RiskScore{Level: sqlguard.RiskMedium, Numeric: 50, Message: "medium finding"}},
		{CheckerID: "NoWhereClause", Success: true, Score: sqlguard.RiskScore{Level: sqlguard.RiskCritical, Numeric: 95, Message: "critical finding"}},
	}
	score, _ := Aggregate(results)
	assert.Equal(t, sqlguard.RiskCritical, score.Level)
	assert.Equal(t, 95, score.Numeric)
	assert.Contains(t, score.Message, "critical finding")
	assert.Contains(t, score.Message, "medium finding")
}

func TestAggregateMessageOrderIsDeterministicByCheckerID(t *testing.T) {
	a, _ := Aggregate([]sqlguard.CheckerResult{
		{CheckerID: "Zeta", Success: true, Score: sqlguard.RiskScore{Level: sqlguard.RiskLow, Message: "z"}},
		{CheckerID: "Alpha", Success: true, Score: sqlguard.RiskScore{Level: sqlguard.RiskLow, Message: "a"}},
	})
	b, _ := Aggregate([]sqlguard.CheckerResult{
		{CheckerID: "Alpha", Success: true, Score: sqlguard.RiskScore{Level: sqlguard.RiskLow, Message: "a"}},
		{CheckerID: "Zeta", Success: true, Score: sqlguard.RiskScore{Level: sqlguard.RiskLow, Message: "z"}},
	})
	assert.Equal(t, a.Message, b.Message)
	assert.Equal(t, "a; z", a.Message)
}

func TestAggregateFailedCheckersDoNotAffectLevel(t *testing.T) {
	score, sorted := Aggregate([]sqlguard.CheckerResult{
		{CheckerID: "Broken", Success: false, ErrorMessage: "timeout"},
	})
	assert.Equal(t, sqlguard.RiskNone, score.Level)
	assert.Len(t, sorted, 1)
}

func TestAggregateEmptyResultsYieldsNoRisk(t *testing.T) {
	score, sorted := Aggregate(nil)
	assert.Equal(t, sqlguard.RiskNone, score.Level)
	assert.Equal(t, 0, score.Numeric)
	assert.Empty(t, sorted)
}

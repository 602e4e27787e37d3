package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlguard/sqlguard"
	"github.com/sqlguard/sqlguard/checker"
	"github.com/sqlguard/sqlguard/config"
	"github.com/sqlguard/sqlguard/sqlast"
	"github.com/sqlguard/sqlguard/tokenizer"
)

func sqlContext(t *testing.T, sql string, cmd sqlguard.CommandType) sqlguard.SqlContext {
	t.Helper()
	n, err := sqlast.Parse(sql, tokenizer.DefaultSqlDialect)
	require.NoError(t, err)
	return sqlguard.SqlContext{AST: n, RawSQL: sql, Command: cmd}
}

func TestOrchestratorRunFlagsUnboundedDelete(t *testing.T) {
	reg := checker.NewDefaultRegistry(nil)
	o := New(reg)
	rc := &config.RuntimeConfig{Checkers: map[string]config.CheckerConfig{}}

	report := o.Run(context.Background(), "mapper-1", sqlContext(t, "DELETE FROM users", sqlguard.CommandDelete), rc)
	assert.Equal(t, sqlguard.RiskCritical, report.AggregatedScore.Level)
	assert.Len(t, report.PerCheckerResults, 11)
	assert.Equal(t, "mapper-1", report.SqlID)
	assert.NotEmpty(t, report.ReportID)
}

type slowChecker struct{}

func (slowChecker) CheckerID() string { return "SlowChecker" }
func (slowChecker) Category() string  { return "test" }
func (slowChecker) Check(ctx sqlguard.SqlContext, cfg config.CheckerConfig) sqlguard.RiskScore {
	time.Sleep(50 * time.Millisecond)
	return sqlguard.RiskScore{Level: sqlguard.RiskHigh, Numeric: 80}
}

func TestOrchestratorTimesOutSlowChecker(t *testing.T) {
	reg := checker.NewRegistry()
	reg.Register(slowChecker{})
	o := New(reg, WithCheckerDeadline(5*time.Millisecond))
	rc := &config.RuntimeConfig{Checkers: map[string]config.CheckerConfig{}}

	report := o.Run(context.Background(), "mapper-2", sqlContext(t, "SELECT 1", sqlguard.CommandSelect), rc)
	require.Len(t, report.PerCheckerResults, 1)
	assert.False(t, report.PerCheckerResults[0].Success)
	assert.Equal(t, "timeout", report.PerCheckerResults[0].ErrorMessage)
	assert.Equal(t, sqlguard.RiskNone, report.AggregatedScore.Level)
}

type panickingChecker struct{}

func (panickingChecker) CheckerID() string { return "PanicChecker" }
func (panickingChecker) Category() string  { return "test" }
func (panickingChecker) Check(ctx sqlguard.SqlContext, cfg config.CheckerConfig) sqlguard.RiskScore {
	panic("boom")
}

func TestOrchestratorSurvivesPanickingChecker(t *testing.T) {
	reg := checker.NewRegistry()
	reg.Register(panickingChecker{})
	o := New(reg)
	rc := &config.RuntimeConfig{Checkers: map[string]config.CheckerConfig{}}

	var report sqlguard.AuditReport
	assert.NotPanics(t, func() {
		report = o.Run(context.Background(), "mapper-3", sqlContext(t, "SELECT 1", sqlguard.CommandSelect), rc)
	})

	require.Len(t, report.PerCheckerResults, 1)
	assert.False(t, report.PerCheckerResults[0].Success)
	assert.Equal(t, sqlguard.ErrCheckerPanicked.Error(), report.PerCheckerResults[0].ErrorMessage)
	assert.Equal(t, sqlguard.RiskNone, report.AggregatedScore.Level)
}

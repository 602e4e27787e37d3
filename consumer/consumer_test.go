package consumer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlguard/sqlguard"
	"github.com/sqlguard/sqlguard/checker"
	"github.com/sqlguard/sqlguard/config"
	"github.com/sqlguard/sqlguard/orchestrator"
	"github.com/sqlguard/sqlguard/rewriter"
	"github.com/sqlguard/sqlguard/sqlast"
)

type fakePersister struct {
	reports []sqlguard.AuditReport
}

func (f *fakePersister) Append(ctx context.Context, report sqlguard.AuditReport) error {
	f.reports = append(f.reports, report)
	return nil
}

func newTestConsumer(persist Persister) *Consumer {
	orch := orchestrator.New(checker.NewDefaultRegistry(nil))
	store := config.NewStore(&config.RuntimeConfig{Checkers: map[string]config.CheckerConfig{}})
	return New(nil, persist, orch, store, Config{}, nil)
}

func TestProcessEventPersistsReportForValidSQL(t *testing.T) {
	persist := &fakePersister{}
	c := newTestConsumer(persist)

	err := c.processEvent(context.Background(), Event{Sql: "DELETE FROM users", MapperID: "m1"})
	require.NoError(t, err)
	require.Len(t, persist.reports, 1)
	assert.Equal(t, sqlguard.RiskCritical, persist.reports[0].AggregatedScore.Level)
	assert.Equal(t, "m1", persist.reports[0].SqlID)
}

func TestProcessEventWithRetryRejectsMissingSQLAsPoisonPill(t *testing.T) {
	persist := &fakePersister{}
	c := newTestConsumer(persist)

	err := c.processEventWithRetry(context.Background(), []byte(`{"mapperId":"m1"}`))
	require.Error(t, err)
	_, ok := isPoisonPill(err)
	assert.True(t, ok)
}

func TestProcessEventWithRetryRejectsMalformedJSONAsPoisonPill(t *testing.T) {
	persist := &fakePersister{}
	c := newTestConsumer(persist)

	err := c.processEventWithRetry(context.Background(), []byte(`not json`))
	require.Error(t, err)
	_, ok := isPoisonPill(err)
	assert.True(t, ok)
}

func TestProcessEventDegradesGracefullyOnUnparsableSQL(t *testing.T) {
	persist := &fakePersister{}
	c := newTestConsumer(persist)

	err := c.processEvent(context.Background(), Event{Sql: "not really sql (((", MapperID: "m2"})
	require.NoError(t, err)
	require.Len(t, persist.reports, 1)
}

func TestProcessEventAppliesConfiguredDialect(t *testing.T) {
	persist := &fakePersister{}
	c := newTestConsumer(persist)

	err := c.processEvent(context.Background(), Event{Sql: "SELECT * FROM orders WHERE id = $1", MapperID: "m3", DataSource: "PostgreSQL 16.2"})
	require.NoError(t, err)
	require.Len(t, persist.reports, 1)
}

func TestProcessEventRunsConfiguredRewriteChainBeforeChecks(t *testing.T) {
	persist := &fakePersister{}
	orch := orchestrator.New(checker.NewDefaultRegistry(nil))
	chain := rewriter.NewChain(rewriter.TenantFilterRewriter{Column: "tenant_id", ParamName: ":tenantId"})
	store := config.NewStore(&config.RuntimeConfig{Checkers: map[string]config.CheckerConfig{}, RewriteChain: chain})
	c := New(nil, persist, orch, store, Config{}, nil)

	err := c.processEvent(context.Background(), Event{Sql: "DELETE FROM orders", MapperID: "m4"})
	require.NoError(t, err)
	require.Len(t, persist.reports, 1)
	assert.NotEqual(t, sqlguard.RiskCritical, persist.reports[0].AggregatedScore.Level)
}

func TestProcessEventTreatsRewriteFailureAsPoisonPill(t *testing.T) {
	persist := &fakePersister{}
	orch := orchestrator.New(checker.NewDefaultRegistry(nil))
	chain := rewriter.NewChain(failingRewriter{})
	store := config.NewStore(&config.RuntimeConfig{Checkers: map[string]config.CheckerConfig{}, RewriteChain: chain})
	c := New(nil, persist, orch, store, Config{}, nil)

	err := c.processEventWithRetry(context.Background(), []byte(`{"sql":"SELECT * FROM orders","mapperId":"m5"}`))
	require.Error(t, err)
	_, ok := isPoisonPill(err)
	assert.True(t, ok)
	assert.Empty(t, persist.reports)
}

type failingRewriter struct{}

func (failingRewriter) RewriterID() string { return "failingRewriter" }
func (failingRewriter) Rewrite(ctx sqlguard.SqlContext) (sqlast.Node, error) {
	return nil, assert.AnError
}

package scanner

import (
	"context"
	"os"
	"path/filepath"
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

func writeSQLFile(t *testing.T, dir, name, sql string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(sql), 0o644))
	return path
}

func TestScanFlagsUnboundedDeleteInPlainSQLFile(t *testing.T) {
	dir := t.TempDir()
	writeSQLFile(t, dir, "delete_all.sql", "DELETE FROM orders")

	orch := orchestrator.New(checker.NewDefaultRegistry(nil))
	s := New(orch, sqlguard.NewDialectRegistry())
	rc := &config.RuntimeConfig{Checkers: map[string]config.CheckerConfig{}}

	results, err := s.Scan(context.Background(), dir, rc)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Report)
	assert.Equal(t, sqlguard.RiskCritical, results[0].Report.AggregatedScore.Level)
}

func TestScanAppliesConfiguredRewriteChainBeforeChecks(t *testing.T) {
	dir := t.TempDir()
	writeSQLFile(t, dir, "delete_all.sql", "DELETE FROM orders")

	orch := orchestrator.New(checker.NewDefaultRegistry(nil))
	s := New(orch, sqlguard.NewDialectRegistry())
	chain := rewriter.NewChain(rewriter.TenantFilterRewriter{Column: "tenant_id", ParamName: ":tenantId"})
	rc := &config.RuntimeConfig{Checkers: map[string]config.CheckerConfig{}, RewriteChain: chain}

	results, err := s.Scan(context.Background(), dir, rc)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Report)
	assert.NotEqual(t, sqlguard.RiskCritical, results[0].Report.AggregatedScore.Level)
}

type failingRewriter struct{}

func (failingRewriter) RewriterID() string { return "failingRewriter" }
func (failingRewriter) Rewrite(ctx sqlguard.SqlContext) (sqlast.Node, error) {
	return nil, assert.AnError
}

func TestScanRewriteFailureSurfacesAsFinding(t *testing.T) {
	dir := t.TempDir()
	writeSQLFile(t, dir, "select_all.sql", "SELECT * FROM orders")

	orch := orchestrator.New(checker.NewDefaultRegistry(nil))
	s := New(orch, sqlguard.NewDialectRegistry())
	chain := rewriter.NewChain(failingRewriter{})
	rc := &config.RuntimeConfig{Checkers: map[string]config.CheckerConfig{}, RewriteChain: chain}

	results, err := s.Scan(context.Background(), dir, rc)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Nil(t, results[0].Report)
	require.Len(t, results[0].Findings, 1)
	assert.Equal(t, "REWRITE_ERROR", results[0].Findings[0].Code)
}

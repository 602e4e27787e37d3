package rewriter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlguard/sqlguard"
	"github.com/sqlguard/sqlguard/sqlast"
	"github.com/sqlguard/sqlguard/tokenizer"
)

func parseFor(t *testing.T, sql string) sqlguard.SqlContext {
	t.Helper()
	n, err := sqlast.Parse(sql, tokenizer.DefaultSqlDialect)
	require.NoError(t, err)
	return sqlguard.SqlContext{AST: n, RawSQL: sql}
}

func TestTenantFilterRewriterInjectsWhere(t *testing.T) {
	ctx := parseFor(t, "SELECT * FROM orders")
	rw := TenantFilterRewriter{Column: "tenant_id", ParamName: ":tenantId"}
	out, err := rw.Rewrite(ctx)
	require.NoError(t, err)

	sel := out.(*sqlast.SelectStatement)
	require.NotNil(t, sel.Where)
	bin := sel.Where.Condition.(sqlast.BinaryExpr)
	assert.Equal(t, "=", bin.Op)
}

func TestTenantFilterRewriterAndsWithExistingWhere(t *testing.T) {
	ctx := parseFor(t, "SELECT * FROM orders WHERE status = 1")
	rw := TenantFilterRewriter{Column: "tenant_id", ParamName: ":tenantId"}
	out, err := rw.Rewrite(ctx)
	require.NoError(t, err)

	sel := out.(*sqlast.SelectStatement)
	bin := sel.Where.Condition.(sqlast.BinaryExpr)
	assert.Equal(t, "AND", bin.Op)
}

func TestTenantFilterRewriterSkipsUnlistedTable(t *testing.T) {
	ctx := parseFor(t, "SELECT * FROM audit_log")
	rw := TenantFilterRewriter{Column: "tenant_id", ParamName: ":tenantId", Tables: map[string]bool{"orders": true}}
	out, err := rw.Rewrite(ctx)
	require.NoError(t, err)

	sel := out.(*sqlast.SelectStatement)
	assert.Nil(t, sel.Where)
}

func TestSoftDeleteRewriterAppendsIsNullPredicate(t *testing.T) {
	ctx := parseFor(t, "SELECT * FROM orders WHERE id = 1")
	rw := SoftDeleteRewriter{DeletedColumn: "deleted_at", Tables: map[string]bool{"orders": true}}
	out, err := rw.Rewrite(ctx)
	require.NoError(t, err)

	sel := out.(*sqlast.SelectStatement)
	bin := sel.Where.Condition.(sqlast.BinaryExpr)
	assert.Equal(t, "AND", bin.Op)
	right := bin.Right.(sqlast.BinaryExpr)
	assert.Equal(t, "IS", right.Op)
}

func TestChainRunAppliesRewritersInOrder(t *testing.T) {
	ctx := parseFor(t, "SELECT * FROM orders")
	chain := NewChain(
		TenantFilterRewriter{Column: "tenant_id", ParamName: ":tenantId"},
		SoftDeleteRewriter{DeletedColumn: "deleted_at", Tables: map[string]bool{"orders": true}},
	)
	result := chain.Run(ctx)
	require.NoError(t, result.Err)

	sel := result.Context.AST.(*sqlast.SelectStatement)
	bin := sel.Where.Condition.(sqlast.BinaryExpr)
	assert.Equal(t, "AND", bin.Op)
}

type failingRewriter struct{}

func (failingRewriter) RewriterID() string { return "failingRewriter" }
func (failingRewriter) Rewrite(ctx sqlguard.SqlContext) (sqlast.Node, error) {
	return nil, assert.AnError
}

func TestChainRunAbortsOnRewriterFailure(t *testing.T) {
	ctx := parseFor(t, "SELECT * FROM orders")
	chain := NewChain(failingRewriter{})
	result := chain.Run(ctx)
	require.Error(t, result.Err)
	assert.Equal(t, "failingRewriter", result.FailedID)
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlguard/sqlguard"
	"github.com/sqlguard/sqlguard/sqlast"
	"github.com/sqlguard/sqlguard/tokenizer"
)

func sqlContextForTest(t *testing.T, sql string) sqlguard.SqlContext {
	t.Helper()
	n, err := sqlast.Parse(sql, tokenizer.DefaultSqlDialect)
	require.NoError(t, err)
	return sqlguard.SqlContext{AST: n, RawSQL: sql}
}

func TestToRuntimeBuildsEmptyRewriteChainByDefault(t *testing.T) {
	fc := defaultFileConfig()
	rc := fc.ToRuntime()
	require.NotNil(t, rc.RewriteChain)
}

func TestToRuntimeBuildsConfiguredRewriteChain(t *testing.T) {
	fc := defaultFileConfig()
	fc.Rewriters = RewriterFile{
		TenantFilter: &TenantFilterFile{Column: "tenant_id", ParamName: ":tenantId", Tables: []string{"orders"}},
		SoftDelete:   &SoftDeleteFile{Column: "deleted_at", Tables: []string{"orders"}},
	}

	rc := fc.ToRuntime()
	require.NotNil(t, rc.RewriteChain)

	sqlCtx := sqlContextForTest(t, "SELECT * FROM orders")
	result := rc.RewriteChain.Run(sqlCtx)
	require.NoError(t, result.Err)
	assert.NotNil(t, result.Context.AST)
}

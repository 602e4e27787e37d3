package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlguard/sqlguard"
	"github.com/sqlguard/sqlguard/config"
	"github.com/sqlguard/sqlguard/sqlast"
	"github.com/sqlguard/sqlguard/tokenizer"
)

func mustParse(t *testing.T, sql string) sqlast.Node {
	t.Helper()
	n, err := sqlast.Parse(sql, tokenizer.DefaultSqlDialect)
	require.NoError(t, err)
	return n
}

func ctxFor(t *testing.T, sql string, cmd sqlguard.CommandType) sqlguard.SqlContext {
	return sqlguard.SqlContext{AST: mustParse(t, sql), RawSQL: sql, Command: cmd}
}

func TestNoWhereClauseFlagsUnboundedDelete(t *testing.T) {
	ctx := ctxFor(t, "DELETE FROM users", sqlguard.CommandDelete)
	score := NoWhereClause{}.Check(ctx, config.CheckerConfig{})
	assert.Equal(t, sqlguard.RiskCritical, score.Level)
}

func TestNoWhereClauseAllowsBoundedSelect(t *testing.T) {
	ctx := ctxFor(t, "SELECT * FROM users LIMIT 10", sqlguard.CommandSelect)
	score := NoWhereClause{}.Check(ctx, config.CheckerConfig{})
	assert.Equal(t, sqlguard.NoRisk, score)
}

func TestNoWhereClauseFlagsUnboundedSelect(t *testing.T) {
	ctx := ctxFor(t, "SELECT * FROM users", sqlguard.CommandSelect)
	score := NoWhereClause{}.Check(ctx, config.CheckerConfig{})
	assert.Equal(t, sqlguard.RiskCritical, score.Level)
}

func TestDummyConditionFlagsAlwaysTrue(t *testing.T) {
	ctx := ctxFor(t, "SELECT * FROM users WHERE 1 = 1", sqlguard.CommandSelect)
	score := DummyCondition{}.Check(ctx, config.CheckerConfig{})
	assert.Equal(t, sqlguard.RiskHigh, score.Level)
}

func TestDummyConditionIgnoresRealPredicate(t *testing.T) {
	ctx := ctxFor(t, "SELECT * FROM users WHERE id = 5", sqlguard.CommandSelect)
	score := DummyCondition{}.Check(ctx, config.CheckerConfig{})
	assert.Equal(t, sqlguard.NoRisk, score)
}

func TestBlacklistOnlyRequiresAllConjunctsBlacklisted(t *testing.T) {
	cfg := config.CheckerConfig{Thresholds: map[string]any{"columns": []any{"status", "deleted"}}}

	blocked := ctxFor(t, "SELECT * FROM users WHERE status = 1 AND deleted = 0", sqlguard.CommandSelect)
	assert.Equal(t, sqlguard.RiskHigh, BlacklistOnly{}.Check(blocked, cfg).Level)

	mixed := ctxFor(t, "SELECT * FROM users WHERE status = 1 AND id = 5", sqlguard.CommandSelect)
	assert.Equal(t, sqlguard.NoRisk, BlacklistOnly{}.Check(mixed, cfg))
}

func TestBlacklistOnlyOrEscapesOnNonBlacklistedBranch(t *testing.T) {
	cfg := config.CheckerConfig{Thresholds: map[string]any{"columns": []any{"status"}}}
	ctx := ctxFor(t, "SELECT * FROM users WHERE status = 1 OR id = 5", sqlguard.CommandSelect)
	assert.Equal(t, sqlguard.NoRisk, BlacklistOnly{}.Check(ctx, cfg))
}

func TestWhitelistOnlyFlagsColumnOutsideSet(t *testing.T) {
	cfg := config.CheckerConfig{Thresholds: map[string]any{"columns": []any{"id"}}}
	ctx := ctxFor(t, "SELECT * FROM users WHERE secret_token = 1", sqlguard.CommandSelect)
	score := WhitelistOnly{}.Check(ctx, cfg)
	assert.Equal(t, sqlguard.RiskMedium, score.Level)
}

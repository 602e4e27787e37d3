package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sqlguard/sqlguard"
	"github.com/sqlguard/sqlguard/config"
)

func TestNoPaginationFlagsLargeTableFullScan(t *testing.T) {
	cfg := config.CheckerConfig{Thresholds: map[string]any{"largeTables": []any{"events"}}}
	ctx := ctxFor(t, "SELECT * FROM events WHERE kind = 1", sqlguard.CommandSelect)
	score := NoPagination{}.Check(ctx, cfg)
	assert.Equal(t, sqlguard.RiskHigh, score.Level)
}

func TestNoPaginationIgnoresSmallTable(t *testing.T) {
	cfg := config.CheckerConfig{Thresholds: map[string]any{"largeTables": []any{"events"}}}
	ctx := ctxFor(t, "SELECT * FROM settings WHERE kind = 1", sqlguard.CommandSelect)
	assert.Equal(t, sqlguard.NoRisk, NoPagination{}.Check(ctx, cfg))
}

func TestMissingOrderByFlagsPaginationWithoutOrder(t *testing.T) {
	ctx := ctxFor(t, "SELECT * FROM users WHERE id = 1 LIMIT 10 OFFSET 20", sqlguard.CommandSelect)
	score := MissingOrderBy{}.Check(ctx, config.CheckerConfig{})
	assert.Equal(t, sqlguard.RiskMedium, score.Level)
}

func TestMissingOrderByAllowsOrderedPagination(t *testing.T) {
	ctx := ctxFor(t, "SELECT * FROM users WHERE id = 1 ORDER BY id LIMIT 10", sqlguard.CommandSelect)
	assert.Equal(t, sqlguard.NoRisk, MissingOrderBy{}.Check(ctx, config.CheckerConfig{}))
}

func TestDeepPaginationFlagsLargeOffset(t *testing.T) {
	ctx := ctxFor(t, "SELECT * FROM users ORDER BY id LIMIT 10 OFFSET 50000", sqlguard.CommandSelect)
	score := DeepPagination{}.Check(ctx, config.CheckerConfig{})
	assert.Equal(t, sqlguard.RiskHigh, score.Level)
}

func TestDeepPaginationAllowsSmallOffset(t *testing.T) {
	ctx := ctxFor(t, "SELECT * FROM users ORDER BY id LIMIT 10 OFFSET 5", sqlguard.CommandSelect)
	assert.Equal(t, sqlguard.NoRisk, DeepPagination{}.Check(ctx, config.CheckerConfig{}))
}

func TestLargePageSizeFlagsOversizedLimit(t *testing.T) {
	ctx := ctxFor(t, "SELECT * FROM users ORDER BY id LIMIT 5000", sqlguard.CommandSelect)
	score := LargePageSize{}.Check(ctx, config.CheckerConfig{})
	assert.Equal(t, sqlguard.RiskMedium, score.Level)
}

func TestNoConditionPaginationFlagsLimitWithoutWhere(t *testing.T) {
	ctx := ctxFor(t, "SELECT * FROM users ORDER BY id LIMIT 10", sqlguard.CommandSelect)
	score := NoConditionPagination{}.Check(ctx, config.CheckerConfig{})
	assert.Equal(t, sqlguard.RiskHigh, score.Level)
}

func TestNoConditionPaginationAllowsLimitWithWhere(t *testing.T) {
	ctx := ctxFor(t, "SELECT * FROM users WHERE id = 1 ORDER BY id LIMIT 10", sqlguard.CommandSelect)
	assert.Equal(t, sqlguard.NoRisk, NoConditionPagination{}.Check(ctx, config.CheckerConfig{}))
}

package checker

import (
	"strconv"
	"strings"

	"github.com/sqlguard/sqlguard"
	"github.com/sqlguard/sqlguard/config"
	"github.com/sqlguard/sqlguard/sqlast"
)

// NoPagination flags a SELECT over a whitelisted large table with no
// LIMIT/OFFSET bound.
type NoPagination struct{}

func (NoPagination) CheckerID() string { return "NoPagination" }
func (NoPagination) Category() string  { return "pagination" }

func (NoPagination) Check(ctx sqlguard.SqlContext, cfg config.CheckerConfig) sqlguard.RiskScore {
	sel, ok := ctx.AST.(*sqlast.SelectStatement)
	if !ok {
		return sqlguard.NoRisk
	}
	if sel.Limit != nil || sel.Offset != nil {
		return sqlguard.NoRisk
	}

	largeTables := stringSet(cfg, "largeTables")
	if len(largeTables) == 0 || sel.From == nil {
		return sqlguard.NoRisk
	}

	for _, ref := range sel.From.Tables {
		if largeTables[strings.ToLower(ref.Table.Name)] {
			return sqlguard.RiskScore{
				Level:          effectiveLevel(cfg, sqlguard.RiskHigh),
				Numeric:        70,
				Message:        "SELECT over large table \"" + ref.Table.Name + "\" has no pagination bound",
				Recommendation: "Add a LIMIT/OFFSET (or dialect-equivalent) bound.",
			}
		}
	}
	return sqlguard.NoRisk
}

// MissingOrderBy flags a pagination node with no ORDER BY in the same
// statement scope.
type MissingOrderBy struct{}

func (MissingOrderBy) CheckerID() string { return "MissingOrderBy" }
func (MissingOrderBy) Category() string  { return "pagination" }

func (MissingOrderBy) Check(ctx sqlguard.SqlContext, cfg config.CheckerConfig) sqlguard.RiskScore {
	sel, ok := ctx.AST.(*sqlast.SelectStatement)
	if !ok {
		return sqlguard.NoRisk
	}
	if sel.Limit == nil && sel.Offset == nil {
		return sqlguard.NoRisk
	}
	if sel.OrderBy != nil {
		return sqlguard.NoRisk
	}
	return sqlguard.RiskScore{
		Level:          effectiveLevel(cfg, sqlguard.RiskMedium),
		Numeric:        40,
		Message:        "Pagination present without ORDER BY",
		Recommendation: "Add an ORDER BY so paginated pages are stable across requests.",
	}
}

// DeepPagination flags OFFSET exceeding a configured threshold.
type DeepPagination struct{}

func (DeepPagination) CheckerID() string { return "DeepPagination" }
func (DeepPagination) Category() string  { return "pagination" }

func (DeepPagination) Check(ctx sqlguard.SqlContext, cfg config.CheckerConfig) sqlguard.RiskScore {
	sel, ok := ctx.AST.(*sqlast.SelectStatement)
	if !ok || sel.Offset == nil {
		return sqlguard.NoRisk
	}

	n, ok := literalInt(sel.Offset.Count)
	if !ok {
		return sqlguard.NoRisk
	}

	threshold := cfg.ThresholdInt("offsetThreshold", 10000)
	if n <= threshold {
		return sqlguard.NoRisk
	}

	return sqlguard.RiskScore{
		Level:          effectiveLevel(cfg, sqlguard.RiskHigh),
		Numeric:        70,
		Message:        "OFFSET exceeds the deep-pagination threshold",
		Recommendation: "Use keyset pagination instead of a large OFFSET.",
	}
}

// LargePageSize flags LIMIT/page size exceeding a configured threshold.
type LargePageSize struct{}

func (LargePageSize) CheckerID() string { return "LargePageSize" }
func (LargePageSize) Category() string  { return "pagination" }

func (LargePageSize) Check(ctx sqlguard.SqlContext, cfg config.CheckerConfig) sqlguard.RiskScore {
	sel, ok := ctx.AST.(*sqlast.SelectStatement)
	if !ok || sel.Limit == nil {
		return sqlguard.NoRisk
	}

	n, ok := literalInt(sel.Limit.Count)
	if !ok {
		return sqlguard.NoRisk
	}

	threshold := cfg.ThresholdInt("limitThreshold", 500)
	if n <= threshold {
		return sqlguard.NoRisk
	}

	return sqlguard.RiskScore{
		Level:          effectiveLevel(cfg, sqlguard.RiskMedium),
		Numeric:        35,
		Message:        "LIMIT exceeds the configured page-size threshold",
		Recommendation: "Reduce the page size or paginate in smaller batches.",
	}
}

// NoConditionPagination flags LIMIT present but WHERE absent.
type NoConditionPagination struct{}

func (NoConditionPagination) CheckerID() string { return "NoConditionPagination" }
func (NoConditionPagination) Category() string  { return "pagination" }

func (NoConditionPagination) Check(ctx sqlguard.SqlContext, cfg config.CheckerConfig) sqlguard.RiskScore {
	sel, ok := ctx.AST.(*sqlast.SelectStatement)
	if !ok || sel.Limit == nil {
		return sqlguard.NoRisk
	}
	if sel.Where != nil {
		return sqlguard.NoRisk
	}
	return sqlguard.RiskScore{
		Level:          effectiveLevel(cfg, sqlguard.RiskHigh),
		Numeric:        65,
		Message:        "LIMIT present without any WHERE condition",
		Recommendation: "Add a WHERE clause so the page is computed over a bounded subset.",
	}
}

func literalInt(n sqlast.Node) (int, bool) {
	lit, ok := n.(sqlast.Literal)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(lit.Raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

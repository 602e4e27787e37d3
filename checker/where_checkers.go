package checker

import (
	"strings"

	"github.com/sqlguard/sqlguard"
	"github.com/sqlguard/sqlguard/config"
	"github.com/sqlguard/sqlguard/sqlast"
)

// whereOf extracts the WHERE condition (or nil) and reports whether a
// bounded pagination clause is present, from any of the three DML
// statement shapes a checker might see.
func whereOf(ctx sqlguard.SqlContext) (cond sqlast.Node, hasWhere bool, hasPagination bool) {
	switch stmt := ctx.AST.(type) {
	case *sqlast.SelectStatement:
		if stmt.Where != nil {
			return stmt.Where.Condition, true, stmt.Limit != nil || stmt.Offset != nil
		}
		return nil, false, stmt.Limit != nil || stmt.Offset != nil
	case *sqlast.UpdateStatement:
		if stmt.Where != nil {
			return stmt.Where.Condition, true, false
		}
		return nil, false, false
	case *sqlast.DeleteStatement:
		if stmt.Where != nil {
			return stmt.Where.Condition, true, false
		}
		return nil, false, false
	default:
		return nil, false, false
	}
}

// NoWhereClause flags DELETE/UPDATE with no WHERE, or SELECT with neither
// a WHERE nor bounded pagination.
type NoWhereClause struct{}

func (NoWhereClause) CheckerID() string { return "NoWhereClause" }
func (NoWhereClause) Category() string  { return "predicate" }

func (NoWhereClause) Check(ctx sqlguard.SqlContext, cfg config.CheckerConfig) sqlguard.RiskScore {
	if ctx.AST == nil {
		return sqlguard.NoRisk
	}

	_, hasWhere, hasPagination := whereOf(ctx)
	if hasWhere {
		return sqlguard.NoRisk
	}

	switch ctx.Command {
	case sqlguard.CommandDelete:
		return sqlguard.RiskScore{
			Level:          effectiveLevel(cfg, sqlguard.RiskCritical),
			Numeric:        95,
			Message:        "DELETE statement has no WHERE clause",
			Recommendation: "Add a WHERE clause to scope the delete, or confirm the full-table delete is intentional.",
		}
	case sqlguard.CommandUpdate:
		return sqlguard.RiskScore{
			Level:          effectiveLevel(cfg, sqlguard.RiskCritical),
			Numeric:        95,
			Message:        "UPDATE statement has no WHERE clause",
			Recommendation: "Add a WHERE clause to scope the update, or confirm the full-table update is intentional.",
		}
	case sqlguard.CommandSelect:
		if hasPagination {
			return sqlguard.NoRisk
		}
		return sqlguard.RiskScore{
			Level:          effectiveLevel(cfg, sqlguard.RiskCritical),
			Numeric:        90,
			Message:        "SELECT statement has no WHERE clause and no bounded pagination",
			Recommendation: "Add a WHERE clause or a LIMIT/pagination bound to avoid a full table scan.",
		}
	default:
		return sqlguard.NoRisk
	}
}

// DummyCondition flags a WHERE that reduces syntactically to a constant
// truthy predicate.
type DummyCondition struct{}

func (DummyCondition) CheckerID() string { return "DummyCondition" }
func (DummyCondition) Category() string  { return "predicate" }

func (DummyCondition) Check(ctx sqlguard.SqlContext, cfg config.CheckerConfig) sqlguard.RiskScore {
	cond, hasWhere, _ := whereOf(ctx)
	if !hasWhere {
		return sqlguard.NoRisk
	}

	for _, conjunct := range sqlast.SplitConjuncts(cond) {
		if sqlast.IsDummyPredicate(conjunct) {
			return sqlguard.RiskScore{
				Level:          effectiveLevel(cfg, sqlguard.RiskHigh),
				Numeric:        80,
				Message:        "WHERE clause contains a constant truthy predicate",
				Recommendation: "Remove the always-true condition or replace it with a real filter.",
			}
		}
	}
	return sqlguard.NoRisk
}

// BlacklistOnly flags a WHERE whose predicates reference only configured
// low-selectivity columns. Every top-level AND-conjunct must be
// blacklist-only for the finding to fire; an OR-disjunct escapes the
// finding if ANY of its branches references a non-blacklisted column,
// since an OR widens rather than narrows the predicate's effective
// selectivity. See DESIGN.md for the rationale.
type BlacklistOnly struct{}

func (BlacklistOnly) CheckerID() string { return "BlacklistOnly" }
func (BlacklistOnly) Category() string  { return "predicate" }

func (BlacklistOnly) Check(ctx sqlguard.SqlContext, cfg config.CheckerConfig) sqlguard.RiskScore {
	cond, hasWhere, _ := whereOf(ctx)
	if !hasWhere {
		return sqlguard.NoRisk
	}

	blacklist := stringSet(cfg, "columns")
	if len(blacklist) == 0 {
		return sqlguard.NoRisk
	}

	if allConjunctsBlacklisted(cond, blacklist) {
		return sqlguard.RiskScore{
			Level:          effectiveLevel(cfg, sqlguard.RiskHigh),
			Numeric:        75,
			Message:        "WHERE clause references only low-selectivity columns",
			Recommendation: "Add a condition on a selective column, or confirm the low-selectivity scan is intentional.",
		}
	}
	return sqlguard.NoRisk
}

func allConjunctsBlacklisted(n sqlast.Node, blacklist map[string]bool) bool {
	for _, conjunct := range sqlast.SplitConjuncts(n) {
		if !disjunctBlacklisted(conjunct, blacklist) {
			return false
		}
	}
	return true
}

// disjunctBlacklisted reports whether every branch of an OR references
// only blacklisted columns; a disjunct with no column references at all
// (e.g. a bare literal) does not count toward the blacklist-only verdict.
func disjunctBlacklisted(n sqlast.Node, blacklist map[string]bool) bool {
	for _, branch := range sqlast.SplitDisjuncts(n) {
		refs := sqlast.ColumnRefs(branch)
		if len(refs) == 0 {
			continue
		}
		for _, ref := range refs {
			if !blacklist[strings.ToLower(ref.Name)] {
				return false
			}
		}
	}
	return true
}

// WhitelistOnly flags any referenced column not in the permitted set for
// this mapper/table.
type WhitelistOnly struct{}

func (WhitelistOnly) CheckerID() string { return "WhitelistOnly" }
func (WhitelistOnly) Category() string  { return "predicate" }

func (WhitelistOnly) Check(ctx sqlguard.SqlContext, cfg config.CheckerConfig) sqlguard.RiskScore {
	cond, hasWhere, _ := whereOf(ctx)
	if !hasWhere {
		return sqlguard.NoRisk
	}

	whitelist := stringSet(cfg, "columns")
	if len(whitelist) == 0 {
		return sqlguard.NoRisk
	}

	for _, ref := range sqlast.ColumnRefs(cond) {
		if !whitelist[strings.ToLower(ref.Name)] {
			return sqlguard.RiskScore{
				Level:          effectiveLevel(cfg, sqlguard.RiskMedium),
				Numeric:        50,
				Message:        "WHERE clause references column \"" + ref.Name + "\" outside the permitted set",
				Recommendation: "Restrict filters to the mapper's whitelisted columns, or add the column to the whitelist if intentional.",
			}
		}
	}
	return sqlguard.NoRisk
}

package rewriter

import (
	"github.com/sqlguard/sqlguard"
	"github.com/sqlguard/sqlguard/sqlast"
)

// TenantFilterRewriter appends `<column> = <paramName>` to a statement's
// WHERE clause (creating one if absent), scoping every audited statement
// to the tenant bound at construction time. It never touches statements
// against tables outside Tables, and returns the AST unchanged when the
// table cannot be identified.
type TenantFilterRewriter struct {
	Column    string
	ParamName string
	Tables    map[string]bool // nil/empty means apply to every table
}

func (TenantFilterRewriter) RewriterID() string { return "TenantFilterRewriter" }

func (r TenantFilterRewriter) Rewrite(ctx sqlguard.SqlContext) (sqlast.Node, error) {
	predicate := sqlast.BinaryExpr{
		Op:    "=",
		Left:  sqlast.ColumnRef{Name: r.Column},
		Right: sqlast.ParamRef{Name: r.ParamName},
	}

	switch stmt := ctx.AST.(type) {
	case *sqlast.SelectStatement:
		if !r.appliesTo(stmt.From) {
			return stmt, nil
		}
		cp := *stmt
		cp.Where = appendToWhere(cp.Where, predicate)
		return &cp, nil

	case *sqlast.UpdateStatement:
		if !r.tableMatches(stmt.Table.Name) {
			return stmt, nil
		}
		cp := *stmt
		cp.Where = appendToWhere(cp.Where, predicate)
		return &cp, nil

	case *sqlast.DeleteStatement:
		if !r.tableMatches(stmt.Table.Name) {
			return stmt, nil
		}
		cp := *stmt
		cp.Where = appendToWhere(cp.Where, predicate)
		return &cp, nil

	default:
		return ctx.AST, nil
	}
}

func (r TenantFilterRewriter) appliesTo(from *sqlast.FromClause) bool {
	if from == nil {
		return false
	}
	if len(r.Tables) == 0 {
		return true
	}
	for _, ref := range from.Tables {
		if r.tableMatches(ref.Table.Name) {
			return true
		}
	}
	return false
}

func (r TenantFilterRewriter) tableMatches(name string) bool {
	if len(r.Tables) == 0 {
		return true
	}
	return r.Tables[name]
}

func appendToWhere(existing *sqlast.WhereClause, predicate sqlast.Node) *sqlast.WhereClause {
	if existing == nil {
		return &sqlast.WhereClause{Condition: predicate}
	}
	return &sqlast.WhereClause{
		Condition: sqlast.BinaryExpr{Op: "AND", Left: existing.Condition, Right: predicate},
	}
}

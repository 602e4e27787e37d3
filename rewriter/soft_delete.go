package rewriter

import (
	"github.com/sqlguard/sqlguard"
	"github.com/sqlguard/sqlguard/sqlast"
)

// SoftDeleteRewriter appends `<deletedColumn> IS NULL` to the WHERE
// clause of SELECT/UPDATE statements against soft-deleting tables,
// so audited reads/writes naturally exclude rows already soft-deleted.
// It deliberately does not rewrite DELETE itself: converting a DELETE
// statement into an UPDATE would change the statement's Command and is
// outside what a WHERE-predicate rewrite can safely do here.
type SoftDeleteRewriter struct {
	DeletedColumn string
	Tables        map[string]bool
}

func (SoftDeleteRewriter) RewriterID() string { return "SoftDeleteRewriter" }

func (r SoftDeleteRewriter) Rewrite(ctx sqlguard.SqlContext) (sqlast.Node, error) {
	predicate := sqlast.BinaryExpr{
		Op:   "IS",
		Left: sqlast.ColumnRef{Name: r.DeletedColumn},
		Right: sqlast.Literal{Raw: "NULL"},
	}

	switch stmt := ctx.AST.(type) {
	case *sqlast.SelectStatement:
		if stmt.From == nil || !r.anyTableMatches(stmt.From) {
			return stmt, nil
		}
		cp := *stmt
		cp.Where = appendToWhere(cp.Where, predicate)
		return &cp, nil

	case *sqlast.UpdateStatement:
		if !r.Tables[stmt.Table.Name] {
			return stmt, nil
		}
		cp := *stmt
		cp.Where = appendToWhere(cp.Where, predicate)
		return &cp, nil

	default:
		return ctx.AST, nil
	}
}

func (r SoftDeleteRewriter) anyTableMatches(from *sqlast.FromClause) bool {
	for _, ref := range from.Tables {
		if r.Tables[ref.Table.Name] {
			return true
		}
	}
	return false
}

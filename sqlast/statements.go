package sqlast

import "github.com/sqlguard/sqlguard/tokenizer"

// SelectStatement models a SELECT. Optional clauses are nil pointers when
// absent from the source text.
type SelectStatement struct {
	Base
	Select   SelectClause
	From     *FromClause
	Where    *WhereClause
	GroupBy  *GroupByClause
	Having   *HavingClause
	OrderBy  *OrderByClause
	Limit    *LimitClause
	Offset   *OffsetClause
	With     *WithClause
}

func (n SelectStatement) String() string { return "SELECT" }

// InsertStatement models an INSERT.
type InsertStatement struct {
	Base
	Table      TableName
	Columns    []ColumnRef
	Values     *Values
	Select     *SelectStatement // INSERT ... SELECT form
	Returning  *ReturningClause
}

func (n InsertStatement) String() string { return "INSERT" }

// UpdateStatement models an UPDATE.
type UpdateStatement struct {
	Base
	Table      TableName
	Sets       []SetClause
	Where      *WhereClause
	Returning  *ReturningClause
}

func (n UpdateStatement) String() string { return "UPDATE" }

// DeleteStatement models a DELETE.
type DeleteStatement struct {
	Base
	Table      TableName
	Where      *WhereClause
	Returning  *ReturningClause
}

func (n DeleteStatement) String() string { return "DELETE" }

// WithClause models a WITH (CTE) prefix.
type WithClause struct {
	Base
	CTEs []CTEDefinition
}

func (n WithClause) String() string { return "WITH" }

// CTEDefinition is one named CTE.
type CTEDefinition struct {
	Base
	Name      string
	Recursive bool
	Query     *SelectStatement
}

func (n CTEDefinition) String() string { return "CTE(" + n.Name + ")" }

// SelectClause is the item list between SELECT and FROM.
type SelectClause struct {
	Base
	Items    []SelectItem
	Wildcard bool // true when the list is bare "*"
}

func (n SelectClause) String() string { return "SELECT_CLAUSE" }

// SelectItem is one projected expression, with an optional alias.
type SelectItem struct {
	Base
	Expr  Node
	Alias string
}

func (n SelectItem) String() string { return "SELECT_ITEM" }

// FromClause lists the tables/subqueries a statement reads from.
type FromClause struct {
	Base
	Tables []TableReference
}

func (n FromClause) String() string { return "FROM_CLAUSE" }

// TableReference is one FROM-clause entry.
type TableReference struct {
	Base
	Table TableName
	Alias string
}

func (n TableReference) String() string { return "TABLE_REF" }

// WhereClause wraps the boolean predicate expression.
type WhereClause struct {
	Base
	Condition Node
}

func (n WhereClause) String() string { return "WHERE" }

// GroupByClause lists grouping columns.
type GroupByClause struct {
	Base
	Fields []ColumnRef
}

func (n GroupByClause) String() string { return "GROUP_BY" }

// HavingClause wraps the post-aggregation predicate.
type HavingClause struct {
	Base
	Condition Node
}

func (n HavingClause) String() string { return "HAVING" }

// OrderByClause lists sort fields.
type OrderByClause struct {
	Base
	Fields []OrderByField
}

func (n OrderByClause) String() string { return "ORDER_BY" }

// OrderByField is one sort key plus direction.
type OrderByField struct {
	Base
	Field ColumnRef
	Desc  bool
}

func (n OrderByField) String() string { return "ORDER_BY_FIELD" }

// LimitClause bounds the result count.
type LimitClause struct {
	Base
	Count Node
}

func (n LimitClause) String() string { return "LIMIT" }

// OffsetClause skips leading rows.
type OffsetClause struct {
	Base
	Count Node
}

func (n OffsetClause) String() string { return "OFFSET" }

// ReturningClause lists columns an INSERT/UPDATE/DELETE returns.
type ReturningClause struct {
	Base
	Fields []ColumnRef
}

func (n ReturningClause) String() string { return "RETURNING" }

// SetClause is one column=value assignment in an UPDATE.
type SetClause struct {
	Base
	Field ColumnRef
	Value Node
}

func (n SetClause) String() string { return "SET" }

// Values is the VALUES(...) list of an INSERT.
type Values struct {
	Base
	Rows [][]Node
}

func (n Values) String() string { return "VALUES" }

// TableName is a (schema-qualified) table identifier.
type TableName struct {
	Base
	Schema string
	Name   string
}

func (n TableName) String() string { return "TABLE(" + n.Name + ")" }

// ColumnRef is a (table-qualified) column identifier.
type ColumnRef struct {
	Base
	Table string
	Name  string
}

func (n ColumnRef) String() string { return "COLUMN(" + n.Name + ")" }

// pos is a convenience constructor; the parser does not call it.
func pos(p tokenizer.Position) tokenizer.Position { return p }

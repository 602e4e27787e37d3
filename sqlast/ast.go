// Package sqlast models a simplified SQL abstract syntax tree and a
// single-pass parser producing it. It deliberately does not attempt to be
// a general-purpose SQL parser: it models exactly the statement and
// clause shapes the checker library needs. A real third-party SQL parser
// is still used as a black-box dependency at a different layer, see
// pgquery.go, which cross-checks Postgres-family input against it.
package sqlast

import "github.com/sqlguard/sqlguard/tokenizer"

// Node is the interface every AST node implements.
type Node interface {
	Type() NodeType
	Position() tokenizer.Position
	String() string
}

// NodeType discriminates AST node shapes.
type NodeType int

const (
	NodeSelectStatement NodeType = iota
	NodeInsertStatement
	NodeUpdateStatement
	NodeDeleteStatement

	NodeWithClause
	NodeSelectClause
	NodeFromClause
	NodeWhereClause
	NodeGroupByClause
	NodeHavingClause
	NodeOrderByClause
	NodeLimitClause
	NodeOffsetClause
	NodeReturningClause
	NodeCTEDefinition

	NodeTableName
	NodeColumnRef
	NodeSelectItem
	NodeTableReference
	NodeOrderByField
	NodeSetClause
	NodeValues

	NodeBinaryExpr
	NodeUnaryExpr
	NodeLiteral
	NodeParamRef
	NodeFuncCall
	NodeWildcard
	NodeOther
)

var nodeTypeNames = map[NodeType]string{
	NodeSelectStatement: "SELECT_STATEMENT", NodeInsertStatement: "INSERT_STATEMENT",
	NodeUpdateStatement: "UPDATE_STATEMENT", NodeDeleteStatement: "DELETE_STATEMENT",
	NodeWithClause: "WITH_CLAUSE", NodeSelectClause: "SELECT_CLAUSE",
	NodeFromClause: "FROM_CLAUSE", NodeWhereClause: "WHERE_CLAUSE",
	NodeGroupByClause: "GROUP_BY_CLAUSE", NodeHavingClause: "HAVING_CLAUSE",
	NodeOrderByClause: "ORDER_BY_CLAUSE", NodeLimitClause: "LIMIT_CLAUSE",
	NodeOffsetClause: "OFFSET_CLAUSE", NodeReturningClause: "RETURNING_CLAUSE",
	NodeCTEDefinition: "CTE_DEFINITION", NodeTableName: "TABLE_NAME",
	NodeColumnRef: "COLUMN_REF", NodeSelectItem: "SELECT_ITEM",
	NodeTableReference: "TABLE_REFERENCE", NodeOrderByField: "ORDER_BY_FIELD",
	NodeSetClause: "SET_CLAUSE", NodeValues: "VALUES",
	NodeBinaryExpr: "BINARY_EXPR", NodeUnaryExpr: "UNARY_EXPR",
	NodeLiteral: "LITERAL", NodeParamRef: "PARAM_REF", NodeFuncCall: "FUNC_CALL",
	NodeWildcard: "WILDCARD", NodeOther: "OTHER",
}

func (n NodeType) String() string {
	if s, ok := nodeTypeNames[n]; ok {
		return s
	}
	return "UNKNOWN"
}

// Base is embedded by every concrete node to supply Type/Position.
type Base struct {
	NType NodeType
	Pos   tokenizer.Position
}

func (b Base) Type() NodeType              { return b.NType }
func (b Base) Position() tokenizer.Position { return b.Pos }

package sqlast

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sqlguard/sqlguard/tokenizer"
)

var log = logrus.WithField("component", "sqlast")

// ParseError wraps a parse failure with position context. Parse failures
// are never fatal to the caller: the consumer and scanner go on with a
// nil AST, keeping the CommandType the normalizer derived, when Parse
// returns an error.
type ParseError struct {
	Pos tokenizer.Position
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("sqlast: %s at %d:%d", e.Err, e.Pos.Line, e.Pos.Column)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse tokenizes and parses one SQL statement under the given dialect.
func Parse(sql string, dialect tokenizer.SqlDialect) (Node, error) {
	all := tokenizer.New(sql, dialect).Tokenize()

	significant := make([]tokenizer.Token, 0, len(all))
	for _, tok := range all {
		if tok.Type == tokenizer.WHITESPACE || tok.Type == tokenizer.LINE_COMMENT || tok.Type == tokenizer.BLOCK_COMMENT {
			continue
		}
		significant = append(significant, tok)
	}

	if err := validateParens(significant); err != nil {
		return nil, err
	}

	p := &parser{tokens: significant}
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	if dialect.Name == "postgres" {
		crossCheckPostgres(sql)
	}

	return stmt, nil
}

// crossCheckPostgres runs the libpg_query black-box validator against sql
// and logs a warning on disagreement. It never changes the AST or the
// error this package's own parser already produced: libpg_query serves
// only as a second opinion on Postgres-family input.
func crossCheckPostgres(sql string) {
	if valid, _, err := ValidatePostgresFamily(sql); err != nil || !valid {
		log.WithError(err).Warn("libpg_query cross-check disagreed with sqlast's own parse")
	}
}

// validateParens is a stack-based paren-balance check run before any
// structural parsing is attempted, in the same spirit as a first parser
// pass that rejects obviously malformed input early.
func validateParens(tokens []tokenizer.Token) error {
	depth := 0
	for _, tok := range tokens {
		switch tok.Type {
		case tokenizer.OPENED_PARENS:
			depth++
		case tokenizer.CLOSED_PARENS:
			depth--
			if depth < 0 {
				return &ParseError{Pos: tok.Position, Err: fmt.Errorf("unmatched closing parenthesis")}
			}
		}
	}
	if depth != 0 {
		last := tokenizer.Position{}
		if len(tokens) > 0 {
			last = tokens[len(tokens)-1].Position
		}
		return &ParseError{Pos: last, Err: fmt.Errorf("unclosed parenthesis")}
	}
	return nil
}

type parser struct {
	tokens []tokenizer.Token
	idx    int
}

func (p *parser) cur() tokenizer.Token {
	if p.idx >= len(p.tokens) {
		return tokenizer.Token{Type: tokenizer.EOF}
	}
	return p.tokens[p.idx]
}

func (p *parser) peekType(offset int) tokenizer.TokenType {
	idx := p.idx + offset
	if idx >= len(p.tokens) {
		return tokenizer.EOF
	}
	return p.tokens[idx].Type
}

func (p *parser) advance() tokenizer.Token {
	tok := p.cur()
	if p.idx < len(p.tokens) {
		p.idx++
	}
	return tok
}

func (p *parser) at(tt tokenizer.TokenType) bool { return p.cur().Type == tt }

func (p *parser) expect(tt tokenizer.TokenType) (tokenizer.Token, error) {
	if !p.at(tt) {
		return tokenizer.Token{}, &ParseError{Pos: p.cur().Position, Err: fmt.Errorf("expected %s, got %s", tt, p.cur().Type)}
	}
	return p.advance(), nil
}

func (p *parser) parseStatement() (Node, error) {
	var with *WithClause
	if p.at(tokenizer.WITH) {
		w, err := p.parseWithClause()
		if err != nil {
			return nil, err
		}
		with = w
	}

	switch p.cur().Type {
	case tokenizer.SELECT:
		return p.parseSelect(with)
	case tokenizer.INSERT:
		return p.parseInsert()
	case tokenizer.UPDATE:
		return p.parseUpdate()
	case tokenizer.DELETE:
		return p.parseDelete()
	default:
		return nil, &ParseError{Pos: p.cur().Position, Err: fmt.Errorf("%w: unrecognized leading keyword %q", ErrUnsupportedStatement, p.cur().Value)}
	}
}

func (p *parser) parseWithClause() (*WithClause, error) {
	start := p.cur().Position
	p.advance() // WITH

	var ctes []CTEDefinition
	for {
		recursive := false
		if p.at(tokenizer.WORD) && strings.EqualFold(p.cur().Value, "RECURSIVE") {
			recursive = true
			p.advance()
		}
		nameTok, err := p.expect(tokenizer.WORD)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenizer.AS); err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenizer.OPENED_PARENS); err != nil {
			return nil, err
		}
		inner, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenizer.CLOSED_PARENS); err != nil {
			return nil, err
		}
		sel, _ := inner.(*SelectStatement)
		ctes = append(ctes, CTEDefinition{
			Base:      Base{NType: NodeCTEDefinition, Pos: nameTok.Position},
			Name:      nameTok.Value,
			Recursive: recursive,
			Query:     sel,
		})
		if p.at(tokenizer.COMMA) {
			p.advance()
			continue
		}
		break
	}

	return &WithClause{Base: Base{NType: NodeWithClause, Pos: start}, CTEs: ctes}, nil
}

func (p *parser) parseSelect(with *WithClause) (*SelectStatement, error) {
	start := p.cur().Position
	p.advance() // SELECT

	if p.at(tokenizer.DISTINCT) || p.at(tokenizer.ALL) {
		p.advance()
	}

	selectClause, err := p.parseSelectClause()
	if err != nil {
		return nil, err
	}

	stmt := &SelectStatement{
		Base:   Base{NType: NodeSelectStatement, Pos: start},
		Select: *selectClause,
		With:   with,
	}

	if p.at(tokenizer.FROM) {
		from, err := p.parseFromClause()
		if err != nil {
			return nil, err
		}
		stmt.From = from
	}

	if p.at(tokenizer.WHERE) {
		where, err := p.parseWhereClause()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}

	if p.at(tokenizer.GROUP) {
		gb, err := p.parseGroupByClause()
		if err != nil {
			return nil, err
		}
		stmt.GroupBy = gb
	}

	if p.at(tokenizer.HAVING) {
		hv, err := p.parseHavingClause()
		if err != nil {
			return nil, err
		}
		stmt.Having = hv
	}

	if p.at(tokenizer.ORDER) {
		ob, err := p.parseOrderByClause()
		if err != nil {
			return nil, err
		}
		stmt.OrderBy = ob
	}

	if err := p.parseLimitOffset(&stmt.Limit, &stmt.Offset); err != nil {
		return nil, err
	}

	return stmt, nil
}

func (p *parser) parseSelectClause() (*SelectClause, error) {
	start := p.cur().Position
	if p.at(tokenizer.STAR) {
		p.advance()
		return &SelectClause{Base: Base{NType: NodeSelectClause, Pos: start}, Wildcard: true}, nil
	}

	var items []SelectItem
	for {
		itemStart := p.cur().Position
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		alias := ""
		if p.at(tokenizer.AS) {
			p.advance()
			tok, err := p.expect(tokenizer.WORD)
			if err != nil {
				return nil, err
			}
			alias = tok.Value
		} else if p.at(tokenizer.WORD) {
			alias = p.advance().Value
		}
		items = append(items, SelectItem{Base: Base{NType: NodeSelectItem, Pos: itemStart}, Expr: expr, Alias: alias})
		if p.at(tokenizer.COMMA) {
			p.advance()
			continue
		}
		break
	}

	return &SelectClause{Base: Base{NType: NodeSelectClause, Pos: start}, Items: items}, nil
}

func (p *parser) parseFromClause() (*FromClause, error) {
	start := p.cur().Position
	p.advance() // FROM

	var refs []TableReference
	for {
		refStart := p.cur().Position
		table, err := p.parseTableName()
		if err != nil {
			return nil, err
		}
		alias := ""
		if p.at(tokenizer.AS) {
			p.advance()
			tok, err := p.expect(tokenizer.WORD)
			if err != nil {
				return nil, err
			}
			alias = tok.Value
		} else if p.at(tokenizer.WORD) && !p.cur().IsKeyword() {
			alias = p.advance().Value
		}
		refs = append(refs, TableReference{Base: Base{NType: NodeTableReference, Pos: refStart}, Table: table, Alias: alias})

		// Skip JOIN ... ON ... chains without modeling them structurally;
		// checkers only need the base table set for whitelist lookups.
		for p.at(tokenizer.JOIN) || isJoinKeyword(p.cur()) {
			p.skipJoin()
		}

		if p.at(tokenizer.COMMA) {
			p.advance()
			continue
		}
		break
	}

	return &FromClause{Base: Base{NType: NodeFromClause, Pos: start}, Tables: refs}, nil
}

func isJoinKeyword(tok tokenizer.Token) bool {
	if tok.Type != tokenizer.WORD {
		return false
	}
	switch strings.ToUpper(tok.Value) {
	case "INNER", "LEFT", "RIGHT", "FULL", "CROSS", "OUTER":
		return true
	default:
		return false
	}
}

func (p *parser) skipJoin() {
	for !p.at(tokenizer.EOF) && !p.at(tokenizer.WHERE) && !p.at(tokenizer.GROUP) &&
		!p.at(tokenizer.ORDER) && !p.at(tokenizer.HAVING) && !p.at(tokenizer.LIMIT) &&
		!p.at(tokenizer.COMMA) && !p.at(tokenizer.CLOSED_PARENS) {
		if p.at(tokenizer.JOIN) {
			p.advance()
			continue
		}
		if isJoinKeyword(p.cur()) {
			p.advance()
			continue
		}
		p.advance()
	}
}

func (p *parser) parseTableName() (TableName, error) {
	start := p.cur().Position
	first, err := p.expect(tokenizer.WORD)
	if err != nil {
		return TableName{}, err
	}
	if p.at(tokenizer.DOT) {
		p.advance()
		second, err := p.expect(tokenizer.WORD)
		if err != nil {
			return TableName{}, err
		}
		return TableName{Base: Base{NType: NodeTableName, Pos: start}, Schema: first.Value, Name: second.Value}, nil
	}
	return TableName{Base: Base{NType: NodeTableName, Pos: start}, Name: first.Value}, nil
}

func (p *parser) parseColumnRef() (ColumnRef, error) {
	start := p.cur().Position
	first, err := p.expect(tokenizer.WORD)
	if err != nil {
		return ColumnRef{}, err
	}
	if p.at(tokenizer.DOT) {
		p.advance()
		second, err := p.expect(tokenizer.WORD)
		if err != nil {
			return ColumnRef{}, err
		}
		return ColumnRef{Base: Base{NType: NodeColumnRef, Pos: start}, Table: first.Value, Name: second.Value}, nil
	}
	return ColumnRef{Base: Base{NType: NodeColumnRef, Pos: start}, Name: first.Value}, nil
}

func (p *parser) parseWhereClause() (*WhereClause, error) {
	start := p.cur().Position
	p.advance() // WHERE
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &WhereClause{Base: Base{NType: NodeWhereClause, Pos: start}, Condition: cond}, nil
}

func (p *parser) parseGroupByClause() (*GroupByClause, error) {
	start := p.cur().Position
	p.advance() // GROUP
	if _, err := p.expect(tokenizer.BY); err != nil {
		return nil, err
	}
	var fields []ColumnRef
	for {
		f, err := p.parseColumnRef()
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
		if p.at(tokenizer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return &GroupByClause{Base: Base{NType: NodeGroupByClause, Pos: start}, Fields: fields}, nil
}

func (p *parser) parseHavingClause() (*HavingClause, error) {
	start := p.cur().Position
	p.advance() // HAVING
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &HavingClause{Base: Base{NType: NodeHavingClause, Pos: start}, Condition: cond}, nil
}

func (p *parser) parseOrderByClause() (*OrderByClause, error) {
	start := p.cur().Position
	p.advance() // ORDER
	if _, err := p.expect(tokenizer.BY); err != nil {
		return nil, err
	}
	var fields []OrderByField
	for {
		fStart := p.cur().Position
		f, err := p.parseColumnRef()
		if err != nil {
			return nil, err
		}
		desc := false
		if p.at(tokenizer.WORD) && strings.EqualFold(p.cur().Value, "DESC") {
			desc = true
			p.advance()
		} else if p.at(tokenizer.WORD) && strings.EqualFold(p.cur().Value, "ASC") {
			p.advance()
		}
		fields = append(fields, OrderByField{Base: Base{NType: NodeOrderByField, Pos: fStart}, Field: f, Desc: desc})
		if p.at(tokenizer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return &OrderByClause{Base: Base{NType: NodeOrderByClause, Pos: start}, Fields: fields}, nil
}

func (p *parser) parseLimitOffset(limit **LimitClause, offset **OffsetClause) error {
	for p.at(tokenizer.LIMIT) || p.at(tokenizer.OFFSET) {
		if p.at(tokenizer.LIMIT) {
			start := p.cur().Position
			p.advance()
			n, err := p.parsePrimary()
			if err != nil {
				return err
			}
			*limit = &LimitClause{Base: Base{NType: NodeLimitClause, Pos: start}, Count: n}
			continue
		}
		start := p.cur().Position
		p.advance()
		n, err := p.parsePrimary()
		if err != nil {
			return err
		}
		*offset = &OffsetClause{Base: Base{NType: NodeOffsetClause, Pos: start}, Count: n}
	}
	return nil
}

func (p *parser) parseInsert() (*InsertStatement, error) {
	start := p.cur().Position
	p.advance() // INSERT
	if p.at(tokenizer.INTO) {
		p.advance()
	}
	table, err := p.parseTableName()
	if err != nil {
		return nil, err
	}

	stmt := &InsertStatement{Base: Base{NType: NodeInsertStatement, Pos: start}, Table: table}

	if p.at(tokenizer.OPENED_PARENS) {
		p.advance()
		for {
			col, err := p.parseColumnRef()
			if err != nil {
				return nil, err
			}
			stmt.Columns = append(stmt.Columns, col)
			if p.at(tokenizer.COMMA) {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(tokenizer.CLOSED_PARENS); err != nil {
			return nil, err
		}
	}

	if p.at(tokenizer.VALUES) {
		v, err := p.parseValues()
		if err != nil {
			return nil, err
		}
		stmt.Values = v
	} else if p.at(tokenizer.SELECT) {
		sel, err := p.parseSelect(nil)
		if err != nil {
			return nil, err
		}
		stmt.Select = sel
	}

	if p.at(tokenizer.RETURNING) {
		ret, err := p.parseReturning()
		if err != nil {
			return nil, err
		}
		stmt.Returning = ret
	}

	return stmt, nil
}

func (p *parser) parseValues() (*Values, error) {
	start := p.cur().Position
	p.advance() // VALUES
	var rows [][]Node
	for {
		if _, err := p.expect(tokenizer.OPENED_PARENS); err != nil {
			return nil, err
		}
		var row []Node
		for {
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			row = append(row, v)
			if p.at(tokenizer.COMMA) {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(tokenizer.CLOSED_PARENS); err != nil {
			return nil, err
		}
		rows = append(rows, row)
		if p.at(tokenizer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return &Values{Base: Base{NType: NodeValues, Pos: start}, Rows: rows}, nil
}

func (p *parser) parseReturning() (*ReturningClause, error) {
	start := p.cur().Position
	p.advance() // RETURNING
	var fields []ColumnRef
	if p.at(tokenizer.STAR) {
		p.advance()
		return &ReturningClause{Base: Base{NType: NodeReturningClause, Pos: start}}, nil
	}
	for {
		f, err := p.parseColumnRef()
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
		if p.at(tokenizer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return &ReturningClause{Base: Base{NType: NodeReturningClause, Pos: start}, Fields: fields}, nil
}

func (p *parser) parseUpdate() (*UpdateStatement, error) {
	start := p.cur().Position
	p.advance() // UPDATE
	table, err := p.parseTableName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenizer.SET); err != nil {
		return nil, err
	}

	stmt := &UpdateStatement{Base: Base{NType: NodeUpdateStatement, Pos: start}, Table: table}

	for {
		setStart := p.cur().Position
		col, err := p.parseColumnRef()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenizer.EQUAL); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Sets = append(stmt.Sets, SetClause{Base: Base{NType: NodeSetClause, Pos: setStart}, Field: col, Value: val})
		if p.at(tokenizer.COMMA) {
			p.advance()
			continue
		}
		break
	}

	if p.at(tokenizer.WHERE) {
		where, err := p.parseWhereClause()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}

	if p.at(tokenizer.RETURNING) {
		ret, err := p.parseReturning()
		if err != nil {
			return nil, err
		}
		stmt.Returning = ret
	}

	return stmt, nil
}

func (p *parser) parseDelete() (*DeleteStatement, error) {
	start := p.cur().Position
	p.advance() // DELETE
	if p.at(tokenizer.FROM) {
		p.advance()
	}
	table, err := p.parseTableName()
	if err != nil {
		return nil, err
	}

	stmt := &DeleteStatement{Base: Base{NType: NodeDeleteStatement, Pos: start}, Table: table}

	if p.at(tokenizer.WHERE) {
		where, err := p.parseWhereClause()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}

	if p.at(tokenizer.RETURNING) {
		ret, err := p.parseReturning()
		if err != nil {
			return nil, err
		}
		stmt.Returning = ret
	}

	return stmt, nil
}

// Expression grammar, precedence low to high: OR, AND, NOT, comparison, primary.

func (p *parser) parseExpr() (Node, error) { return p.parseOr() }

func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.at(tokenizer.OR) {
		start := p.cur().Position
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = BinaryExpr{Base: Base{NType: NodeBinaryExpr, Pos: start}, Op: "OR", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.at(tokenizer.AND) {
		start := p.cur().Position
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = BinaryExpr{Base: Base{NType: NodeBinaryExpr, Pos: start}, Op: "AND", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (Node, error) {
	if p.at(tokenizer.NOT) {
		start := p.cur().Position
		p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return UnaryExpr{Base: Base{NType: NodeUnaryExpr, Pos: start}, Op: "NOT", Operand: operand}, nil
	}
	return p.parseComparison()
}

var comparisonOps = map[tokenizer.TokenType]string{
	tokenizer.EQUAL: "=", tokenizer.NOT_EQUAL: "<>", tokenizer.LESS_THAN: "<",
	tokenizer.GREATER_THAN: ">", tokenizer.LESS_EQUAL: "<=", tokenizer.GREATER_EQUAL: ">=",
	tokenizer.LIKE: "LIKE", tokenizer.IN: "IN", tokenizer.IS: "IS", tokenizer.BETWEEN: "BETWEEN",
}

func (p *parser) parseComparison() (Node, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	op, ok := comparisonOps[p.cur().Type]
	if !ok {
		return left, nil
	}
	start := p.cur().Position
	p.advance()

	if op == "IN" {
		if _, err := p.expect(tokenizer.OPENED_PARENS); err != nil {
			return nil, err
		}
		var elems []Node
		for {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
			if p.at(tokenizer.COMMA) {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(tokenizer.CLOSED_PARENS); err != nil {
			return nil, err
		}
		return BinaryExpr{Base: Base{NType: NodeBinaryExpr, Pos: start}, Op: "IN", Left: left, Right: FuncCall{Base: Base{NType: NodeFuncCall, Pos: start}, Name: "LIST", Args: elems}}, nil
	}

	if op == "BETWEEN" {
		low, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		if p.at(tokenizer.AND) {
			p.advance()
		}
		high, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return BinaryExpr{Base: Base{NType: NodeBinaryExpr, Pos: start}, Op: "BETWEEN", Left: left, Right: BinaryExpr{Base: Base{NType: NodeBinaryExpr, Pos: start}, Op: "AND", Left: low, Right: high}}, nil
	}

	right, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return BinaryExpr{Base: Base{NType: NodeBinaryExpr, Pos: start}, Op: op, Left: left, Right: right}, nil
}

func (p *parser) parsePrimary() (Node, error) {
	tok := p.cur()
	switch tok.Type {
	case tokenizer.OPENED_PARENS:
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenizer.CLOSED_PARENS); err != nil {
			return nil, err
		}
		return inner, nil
	case tokenizer.NUMBER:
		p.advance()
		return Literal{Base: Base{NType: NodeLiteral, Pos: tok.Position}, Raw: tok.Value}, nil
	case tokenizer.QUOTE:
		p.advance()
		return Literal{Base: Base{NType: NodeLiteral, Pos: tok.Position}, Raw: tok.Value}, nil
	case tokenizer.PLACEHOLDER:
		p.advance()
		return ParamRef{Base: Base{NType: NodeParamRef, Pos: tok.Position}, Name: tok.Value}, nil
	case tokenizer.STAR:
		p.advance()
		return Wildcard{Base: Base{NType: NodeWildcard, Pos: tok.Position}}, nil
	case tokenizer.NULL_KEYWORD:
		p.advance()
		return Literal{Base: Base{NType: NodeLiteral, Pos: tok.Position}, Raw: "NULL"}, nil
	case tokenizer.WORD:
		if strings.EqualFold(tok.Value, "true") || strings.EqualFold(tok.Value, "false") {
			p.advance()
			return Literal{Base: Base{NType: NodeLiteral, Pos: tok.Position}, Raw: strings.ToLower(tok.Value)}, nil
		}
		if p.peekType(1) == tokenizer.OPENED_PARENS {
			name := p.advance().Value
			p.advance() // (
			var args []Node
			if !p.at(tokenizer.CLOSED_PARENS) {
				if p.at(tokenizer.STAR) {
					p.advance()
					args = append(args, Wildcard{Base: Base{NType: NodeWildcard, Pos: tok.Position}})
				} else {
					for {
						a, err := p.parseExpr()
						if err != nil {
							return nil, err
						}
						args = append(args, a)
						if p.at(tokenizer.COMMA) {
							p.advance()
							continue
						}
						break
					}
				}
			}
			if _, err := p.expect(tokenizer.CLOSED_PARENS); err != nil {
				return nil, err
			}
			return FuncCall{Base: Base{NType: NodeFuncCall, Pos: tok.Position}, Name: name, Args: args}, nil
		}
		col, err := p.parseColumnRef()
		if err != nil {
			return nil, err
		}
		return col, nil
	default:
		p.advance()
		return Other{Base: Base{NType: NodeOther, Pos: tok.Position}, Raw: tok.Value}, nil
	}
}

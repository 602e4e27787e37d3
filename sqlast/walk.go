package sqlast

// Walk calls visit for n and every descendant expression node reachable
// from it. It only descends through the BinaryExpr, UnaryExpr and FuncCall
// nodes defined in expr.go; a statement node is visited but not descended
// into, so callers pass a statement's Condition/Value field themselves —
// it is not a full-statement visitor, since checkers only ever need to
// inspect predicate trees.
func Walk(n Node, visit func(Node)) {
	if n == nil {
		return
	}
	visit(n)
	switch t := n.(type) {
	case BinaryExpr:
		Walk(t.Left, visit)
		Walk(t.Right, visit)
	case UnaryExpr:
		Walk(t.Operand, visit)
	case FuncCall:
		for _, a := range t.Args {
			Walk(a, visit)
		}
	}
}

// ColumnRefs returns every ColumnRef reachable from an expression tree, in
// encounter order, duplicates included.
func ColumnRefs(n Node) []ColumnRef {
	var refs []ColumnRef
	Walk(n, func(node Node) {
		if c, ok := node.(ColumnRef); ok {
			refs = append(refs, c)
		}
	})
	return refs
}

// IsDummyPredicate reports whether a WHERE condition reduces, syntactically,
// to a constant truthy predicate: a bare `true` literal, or `<lit> = <lit>`
// where both sides are equal literals (the canonical `1=1` pattern).
func IsDummyPredicate(n Node) bool {
	switch t := n.(type) {
	case Literal:
		return t.IsTruthyConstant()
	case BinaryExpr:
		if t.Op != "=" {
			return false
		}
		l, lok := t.Left.(Literal)
		r, rok := t.Right.(Literal)
		return lok && rok && l.Raw == r.Raw
	default:
		return false
	}
}

// SplitConjuncts flattens a tree of AND-joined BinaryExpr nodes into its
// leaf conjuncts. A single non-AND node returns a one-element slice.
func SplitConjuncts(n Node) []Node {
	if be, ok := n.(BinaryExpr); ok && be.Op == "AND" {
		return append(SplitConjuncts(be.Left), SplitConjuncts(be.Right)...)
	}
	return []Node{n}
}

// SplitDisjuncts flattens a tree of OR-joined BinaryExpr nodes into its
// leaf disjuncts.
func SplitDisjuncts(n Node) []Node {
	if be, ok := n.(BinaryExpr); ok && be.Op == "OR" {
		return append(SplitDisjuncts(be.Left), SplitDisjuncts(be.Right)...)
	}
	return []Node{n}
}

package sqlast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlguard/sqlguard/tokenizer"
)

func TestParseDeleteNoWhere(t *testing.T) {
	node, err := Parse("DELETE FROM users", tokenizer.DefaultSqlDialect)
	require.NoError(t, err)

	del, ok := node.(*DeleteStatement)
	require.True(t, ok)
	assert.Equal(t, "users", del.Table.Name)
	assert.Nil(t, del.Where)
}

func TestParseSelectWithDummyWhere(t *testing.T) {
	node, err := Parse("SELECT * FROM users WHERE 1=1", tokenizer.DefaultSqlDialect)
	require.NoError(t, err)

	sel, ok := node.(*SelectStatement)
	require.True(t, ok)
	require.NotNil(t, sel.Where)
	assert.True(t, IsDummyPredicate(sel.Where.Condition))
}

func TestParseSelectPaginationAndOrder(t *testing.T) {
	node, err := Parse(
		"SELECT * FROM users WHERE status = 'active' ORDER BY id LIMIT 20 OFFSET 50000",
		tokenizer.DefaultSqlDialect,
	)
	require.NoError(t, err)

	sel := node.(*SelectStatement)
	require.NotNil(t, sel.Limit)
	require.NotNil(t, sel.Offset)
	require.NotNil(t, sel.OrderBy)
	assert.Equal(t, "50000", sel.Offset.Count.(Literal).Raw)
}

func TestParseUnbalancedParensFails(t *testing.T) {
	_, err := Parse("SELECT * FROM users WHERE (id = 1", tokenizer.DefaultSqlDialect)
	assert.Error(t, err)
}

func TestColumnRefsCollectsBothSides(t *testing.T) {
	node, err := Parse("SELECT * FROM t WHERE a = b AND c = 1", tokenizer.DefaultSqlDialect)
	require.NoError(t, err)
	sel := node.(*SelectStatement)

	refs := ColumnRefs(sel.Where.Condition)
	var names []string
	for _, r := range refs {
		names = append(names, r.Name)
	}
	assert.ElementsMatch(t, []string{"a", "b", "c"}, names)
}

package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sqlguard/sqlguard"
	"github.com/sqlguard/sqlguard/tokenizer"
)

func TestNormalizeStripsLiterals(t *testing.T) {
	a, cmdA, fpA := Normalize("SELECT * FROM users WHERE id = 1", tokenizer.DefaultSqlDialect)
	b, cmdB, fpB := Normalize("SELECT   *   FROM users WHERE id = 42", tokenizer.DefaultSqlDialect)

	assert.Equal(t, sqlguard.CommandSelect, cmdA)
	assert.Equal(t, cmdA, cmdB)
	assert.Equal(t, a, b)
	assert.Equal(t, fpA, fpB)
}

func TestNormalizeDistinguishesShape(t *testing.T) {
	_, _, fp1 := Normalize("SELECT * FROM users WHERE id = 1", tokenizer.DefaultSqlDialect)
	_, _, fp2 := Normalize("SELECT * FROM accounts WHERE id = 1", tokenizer.DefaultSqlDialect)
	assert.NotEqual(t, fp1, fp2)
}

func TestNormalizeNeverFails(t *testing.T) {
	_, cmd, _ := Normalize("", tokenizer.DefaultSqlDialect)
	assert.Equal(t, sqlguard.CommandUnknown, cmd)

	_, cmd2, fp := Normalize("not really ; sql (((", tokenizer.DefaultSqlDialect)
	assert.Equal(t, sqlguard.CommandUnknown, cmd2)
	assert.NotZero(t, fp)
}

func TestClassifyCommandTypes(t *testing.T) {
	cases := map[string]sqlguard.CommandType{
		"SELECT 1":                    sqlguard.CommandSelect,
		"INSERT INTO t VALUES (1)":    sqlguard.CommandInsert,
		"UPDATE t SET a=1":            sqlguard.CommandUpdate,
		"DELETE FROM t":               sqlguard.CommandDelete,
		"WITH c AS (SELECT 1) SELECT * FROM c": sqlguard.CommandSelect,
		"CREATE TABLE t (id int)":     sqlguard.CommandDDL,
	}
	for sql, want := range cases {
		_, got, _ := Normalize(sql, tokenizer.DefaultSqlDialect)
		assert.Equalf(t, want, got, "sql=%q", sql)
	}
}

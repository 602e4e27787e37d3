// Package normalize implements the SQL normalizer: tokenize, replace
// literals and placeholders with a sentinel, collapse whitespace, and
// hash the result into a stable fingerprint. Normalization is pure and
// total: it never returns an error, so the same input always yields the
// same Fingerprint.
package normalize

import (
	"strings"

	"github.com/google/uuid"

	"github.com/sqlguard/sqlguard"
	"github.com/sqlguard/sqlguard/tokenizer"
)

// fingerprintNamespace anchors the deterministic SHA1-based UUID used as
// the fingerprint; any fixed namespace works as long as it never changes,
// since only relative stability across calls matters.
var fingerprintNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

const sentinel = "?"

// Normalize tokenizes sql, strips literals/placeholders/parameters down
// to a single sentinel, collapses whitespace, and returns the resulting
// stable text plus its CommandType and Fingerprint. It never fails: an
// empty or unparsable input still yields a (possibly low-quality) result
// derived from the raw text.
func Normalize(sql string, dialect tokenizer.SqlDialect) (normalized string, cmd sqlguard.CommandType, fp sqlguard.Fingerprint) {
	if strings.TrimSpace(sql) == "" {
		return "", sqlguard.CommandUnknown, fingerprint("")
	}

	tokens := tokenizer.New(sql, dialect).Tokenize()

	var b strings.Builder
	for _, tok := range tokens {
		switch tok.Type {
		case tokenizer.EOF:
			continue
		case tokenizer.WHITESPACE, tokenizer.LINE_COMMENT, tokenizer.BLOCK_COMMENT:
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			continue
		case tokenizer.QUOTE, tokenizer.NUMBER, tokenizer.PLACEHOLDER:
			writeSentinel(&b)
		default:
			b.WriteString(tok.Value)
		}
	}

	normalized = collapseWhitespace(b.String())
	cmd = classify(tokens)
	fp = fingerprint(normalized)
	return normalized, cmd, fp
}

func writeSentinel(b *strings.Builder) {
	s := b.String()
	if len(s) > 0 && s[len(s)-1] != ' ' {
		b.WriteByte(' ')
	}
	b.WriteString(sentinel)
}

func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// classify derives CommandType from the first significant keyword token.
// WITH prefixes a CTE and is skipped in favor of the statement it leads.
func classify(tokens []tokenizer.Token) sqlguard.CommandType {
	depth := 0
	sawWith := false
	for _, tok := range tokens {
		switch tok.Type {
		case tokenizer.OPENED_PARENS:
			depth++
			continue
		case tokenizer.CLOSED_PARENS:
			depth--
			continue
		case tokenizer.WHITESPACE, tokenizer.LINE_COMMENT, tokenizer.BLOCK_COMMENT:
			continue
		case tokenizer.WITH:
			sawWith = true
			continue
		}
		if depth > 0 {
			continue
		}
		if sawWith && tok.Type != tokenizer.SELECT && tok.Type != tokenizer.INSERT &&
			tok.Type != tokenizer.UPDATE && tok.Type != tokenizer.DELETE {
			continue
		}
		switch tok.Type {
		case tokenizer.SELECT:
			return sqlguard.CommandSelect
		case tokenizer.INSERT:
			return sqlguard.CommandInsert
		case tokenizer.UPDATE:
			return sqlguard.CommandUpdate
		case tokenizer.DELETE:
			return sqlguard.CommandDelete
		case tokenizer.WORD:
			if isDDLKeyword(tok.Value) {
				return sqlguard.CommandDDL
			}
			return sqlguard.CommandUnknown
		default:
			return sqlguard.CommandUnknown
		}
	}
	return sqlguard.CommandUnknown
}

func isDDLKeyword(word string) bool {
	switch strings.ToUpper(word) {
	case "CREATE", "ALTER", "DROP", "TRUNCATE":
		return true
	default:
		return false
	}
}

// fingerprint derives the stable 128-bit identifier from already-
// normalized SQL text via a SHA1-based (version 5) UUID, which is
// deterministic for identical input and collision-resistant in practice.
func fingerprint(normalized string) sqlguard.Fingerprint {
	u := uuid.NewSHA1(fingerprintNamespace, []byte(normalized))
	var fp sqlguard.Fingerprint
	copy(fp[:], u[:])
	return fp
}

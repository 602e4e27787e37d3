package sqlast

import pgquery "github.com/pganalyze/pg_query_go/v2"

// ValidatePostgresFamily parses sql with libpg_query, a real third-party
// SQL parser, used here purely as a black box: its only job is to
// confirm the text is valid Postgres-family SQL and to provide a
// normalized form as a cross-check against this package's own
// fingerprint-oriented normalization. It is never used
// to build the checker AST — sqlast's own parser (parser.go) remains the
// single source of the tree checkers walk, per the design note that
// template and SQL analysis (and, by extension, any auxiliary deep
// parser) must not leak into each other's representation.
func ValidatePostgresFamily(sql string) (valid bool, normalized string, err error) {
	if _, err := pgquery.Parse(sql); err != nil {
		return false, "", err
	}
	norm, err := pgquery.Normalize(sql)
	if err != nil {
		return true, "", err
	}
	return true, norm, nil
}

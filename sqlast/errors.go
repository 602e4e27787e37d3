package sqlast

import "errors"

// ErrUnsupportedStatement is returned for syntactic forms the parser does
// not model; never fatal to the caller, see ParseError's doc comment.
var ErrUnsupportedStatement = errors.New("sqlast: unsupported statement form")

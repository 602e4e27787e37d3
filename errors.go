package sqlguard

import "errors"

// Normalizer errors.
var (
	// ErrEmptySQL names the empty-input condition. Normalize does not
	// return it: empty input yields CommandUnknown like any other text.
	ErrEmptySQL = errors.New("sqlguard: empty SQL text")
)

// Parser / sqlast errors. Parse failures are never fatal to the caller.
// sqlast.Parse does not wrap these sentinels: it returns a
// *sqlast.ParseError, wrapping sqlast.ErrUnsupportedStatement for an
// unrecognized leading keyword.
var (
	// ErrUnbalancedParens names parentheses that do not nest correctly.
	ErrUnbalancedParens = errors.New("sqlguard: unbalanced parentheses")
	// ErrUnsupportedStatement names a syntactic form the parser does not model.
	ErrUnsupportedStatement = errors.New("sqlguard: unsupported statement form")
	// ErrUnexpectedToken names a token stream that matches no production.
	ErrUnexpectedToken = errors.New("sqlguard: unexpected token")
)

// Template analyzer errors. template.ParseMapper reports both conditions
// as MYBATIS_PARSE_ERROR findings and does not return these sentinels.
var (
	// ErrMapperParse names the MYBATIS_PARSE_ERROR condition: malformed XML.
	ErrMapperParse = errors.New("sqlguard: mapper template parse error")
	// ErrIncludeNotResolved names an <include refid> with no matching fragment.
	ErrIncludeNotResolved = errors.New("sqlguard: include reference not resolved")
)

// Checker errors.
var (
	// ErrCheckerTimeout is the errorMessage sentinel for a checker that exceeded its deadline.
	ErrCheckerTimeout = errors.New("timeout")
	// ErrCheckerPanicked is recorded when a checker implementation panics.
	ErrCheckerPanicked = errors.New("sqlguard: checker panicked")
	// ErrUnknownChecker names a config entry whose checkerId has no
	// registered implementation. No function returns it; such entries are
	// ignored.
	ErrUnknownChecker = errors.New("sqlguard: unknown checker id")
)

// Rewriter errors.
var (
	// ErrRewriterFailed aborts orchestration for the event; see design note on rewriter errors.
	ErrRewriterFailed = errors.New("sqlguard: rewriter failed")
)

// Config errors. Config load errors at startup are fatal per the error
// handling design: the process must not enter the running state.
var (
	// ErrConfigNotFound names a missing config file. LoadFile does not
	// return it: a missing file yields the documented defaults.
	ErrConfigNotFound = errors.New("sqlguard: config file not found")
	// ErrConfigInvalid is returned when the YAML does not decode into the expected shape.
	ErrConfigInvalid = errors.New("sqlguard: invalid config")
	// ErrConfigUnknownStrategy names an activeStrategy with no defined
	// profile. The config loader does not validate activeStrategy and does
	// not return it.
	ErrConfigUnknownStrategy = errors.New("sqlguard: unknown active strategy")
)

// Event consumer errors.
var (
	// ErrEventSchemaInvalid names an undecodable event. The consumer marks
	// such events with its own poison-pill error, which sends them straight
	// to the dead-letter topic; it does not return this sentinel.
	ErrEventSchemaInvalid = errors.New("sqlguard: event schema invalid")
	// ErrRetryExhausted names an exhausted backoff ladder. The consumer
	// returns the last attempt's error instead of this sentinel.
	ErrRetryExhausted = errors.New("sqlguard: retry attempts exhausted")
	// ErrConsumerPaused names consumption paused by the backpressure
	// controller. The fetch loop waits while paused instead of returning it.
	ErrConsumerPaused = errors.New("sqlguard: consumer paused by backpressure controller")
)

// Persistence errors.
var (
	// ErrReportNotFound is returned by findById when no report exists for the given id.
	ErrReportNotFound = errors.New("sqlguard: report not found")
	// ErrPersistenceTransient marks a write failure eligible for the retry ladder.
	ErrPersistenceTransient = errors.New("sqlguard: transient persistence error")
	// ErrPersistencePermanent names a write failure not worth retrying. The
	// store classifies every failure as ErrPersistenceTransient and does not
	// return it.
	ErrPersistencePermanent = errors.New("sqlguard: permanent persistence error")
	// ErrBatchNotAtomic is returned when a batch append partially fails.
	ErrBatchNotAtomic = errors.New("sqlguard: batch append is not atomic")
)

// Scanner errors.
var (
	// ErrProjectPathInvalid is returned when --project-path does not point at a readable directory.
	ErrProjectPathInvalid = errors.New("sqlguard: project path is not a readable directory")
)

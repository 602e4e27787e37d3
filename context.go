package sqlguard

import (
	"time"

	"github.com/sqlguard/sqlguard/sqlast"
)

// CommandType is the leading-keyword classification of a SQL statement.
type CommandType string

const (
	CommandSelect  CommandType = "SELECT"
	CommandUpdate  CommandType = "UPDATE"
	CommandDelete  CommandType = "DELETE"
	CommandInsert  CommandType = "INSERT"
	CommandDDL     CommandType = "DDL"
	CommandUnknown CommandType = "UNKNOWN"
)

// Fingerprint is a stable 128-bit identifier derived from SQL text after
// stripping literals and parameter placeholders and folding whitespace.
type Fingerprint [16]byte

// ParamUsage describes how one bound parameter name is used on the SQL side.
type ParamUsage int

const (
	ParamUsageLiteral ParamUsage = iota
	ParamUsageIdentifier
)

// ParamBinding is one entry in a SqlContext's parameter-binding view.
type ParamBinding struct {
	Name  string
	Usage ParamUsage
}

// ExecMetadata is optional runtime execution metadata attached to an event.
// Absent in static-scan mode.
type ExecMetadata struct {
	ElapsedMs    int64
	RowsAffected int64
	ErrorMessage string
	DataSource   string
	MapperID     string
	Timestamp    time.Time
}

// SqlContext is the immutable input every checker receives.
type SqlContext struct {
	AST         sqlast.Node
	RawSQL      string
	Command     CommandType
	Fingerprint Fingerprint
	Dialect     Dialect
	Exec        *ExecMetadata
	Params      []ParamBinding
}

// HasExecMetadata reports whether this context carries runtime execution
// metadata (true in the runtime audit path, false during static scans).
func (c SqlContext) HasExecMetadata() bool {
	return c.Exec != nil
}

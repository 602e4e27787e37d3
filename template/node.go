// Package template parses a MyBatis-style XML mapper document into a
// node tree and runs structural and interpolation-safety checks directly
// against that tree, without ever reconstructing concrete SQL.
package template

import "github.com/sqlguard/sqlguard"

// Host identifies the syntactic position a placeholder or static fragment
// occupies within the surrounding SQL shape.
type Host string

const (
	HostWhere     Host = "WHERE"
	HostOrderBy   Host = "ORDER_BY"
	HostLimit     Host = "LIMIT"
	HostColumns   Host = "COLUMNS"
	HostTable     Host = "TABLE"
	HostUnknown   Host = "UNKNOWN"
)

// Branch is one <if>/<when> guard condition active over a fragment, kept
// as raw expression text plus the variables CEL extraction found in it.
type Branch struct {
	Expr      string
	Variables []string
	Negated   bool
}

// Node is one fragment of a parsed mapper statement.
type Node interface {
	node()
}

// Static is literal SQL text copied verbatim into the statement.
type Static struct {
	Text    string
	Host    Host
	Witness []Branch
}

// ParamBind is a `#{name}` style safe bound-parameter placeholder.
type ParamBind struct {
	Name    string
	Host    Host
	Witness []Branch
}

// RawInterpolation is a `${name}` style unsafe textual splice.
type RawInterpolation struct {
	Name    string
	Host    Host
	Witness []Branch
}

// Conditional is an `<if test="...">` fragment.
type Conditional struct {
	Branch   Branch
	Children []Node
}

// Choose is a `<choose>`/`<when>`/`<otherwise>` exclusive fragment set.
type Choose struct {
	Whens     []Conditional
	Otherwise []Node
}

// Loop is a `<foreach>` fragment.
type Loop struct {
	Collection string
	Item       string
	Open       string
	Close      string
	Separator  string
	Children   []Node
}

// TrimWrap is a `<trim>`/`<where>`/`<set>` fragment that conditionally
// injects a prefix/suffix and strips leading boolean operators/commas. A
// `<where>` wrapper that always injects WHERE when any child is active is
// how a mapper neutralizes what would otherwise be a missing-WHERE finding.
type TrimWrap struct {
	Prefix          string
	Suffix          string
	PrefixOverrides []string
	SuffixOverrides []string
	Children        []Node
	InjectsWhere    bool
}

// IncludeRef is a `<include refid="...">` reference to a shared fragment.
type IncludeRef struct {
	RefID    string
	Resolved []Node
	Missing  bool
}

func (Static) node()           {}
func (ParamBind) node()        {}
func (RawInterpolation) node() {}
func (Conditional) node()      {}
func (Choose) node()           {}
func (Loop) node()             {}
func (TrimWrap) node()         {}
func (IncludeRef) node()       {}

// Statement is one parsed mapper SQL statement (one <select>/<insert>/
// <update>/<delete> element) with its fragment tree.
type Statement struct {
	ID       string
	Command  string
	Body     []Node
	Findings []Finding
}

// Finding is one analyzer-level observation attached to a statement.
type Finding struct {
	Code       string
	Level      sqlguard.RiskLevel
	Message    string
	Witness    []Branch
	Host       Host
	Suppressed bool
}

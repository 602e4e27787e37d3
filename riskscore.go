package sqlguard

import "time"

// RiskLevel is a totally ordered severity. Zero value is RiskNone.
type RiskLevel int

const (
	RiskNone RiskLevel = iota
	RiskLow
	RiskMedium
	RiskHigh
	RiskCritical
)

func (l RiskLevel) String() string {
	switch l {
	case RiskNone:
		return "NONE"
	case RiskLow:
		return "LOW"
	case RiskMedium:
		return "MEDIUM"
	case RiskHigh:
		return "HIGH"
	case RiskCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ParseRiskLevel parses the YAML/JSON string form used in checker configs.
func ParseRiskLevel(s string) (RiskLevel, bool) {
	switch s {
	case "NONE":
		return RiskNone, true
	case "LOW":
		return RiskLow, true
	case "MEDIUM":
		return RiskMedium, true
	case "HIGH":
		return RiskHigh, true
	case "CRITICAL":
		return RiskCritical, true
	default:
		return RiskNone, false
	}
}

// RiskScore is a single checker's verdict. NONE (the zero value) means the
// checker found nothing; it is distinct from a checker error, which is
// represented at the CheckerResult level instead.
type RiskScore struct {
	Level          RiskLevel
	Numeric        int // 0-100
	Message        string
	Recommendation string
	Metadata       map[string]string
}

// NoRisk is the canonical NONE score returned by checkers that found
// nothing to flag.
var NoRisk = RiskScore{Level: RiskNone}

// CheckerResult is one checker's outcome for one SqlContext.
type CheckerResult struct {
	CheckerID    string
	Success      bool
	Score        RiskScore
	ErrorMessage string
	ElapsedMs    int64
}

// AuditReport is the final per-event output of the orchestrator: the
// aggregated score across every successful checker, plus every
// checker's raw result for diagnostics. Invariant:
// aggregatedScore.level = max({r.Score.Level | r.Success && r.Score.Level != NONE} ∪ {NONE}).
type AuditReport struct {
	ReportID          string
	SqlID             string
	Sql               string
	AggregatedScore   RiskScore
	PerCheckerResults []CheckerResult
	CreatedAt         time.Time
	ExecutionTimeMs   int64
	RowsAffected      int64
}

package checker

import (
	"strconv"
	"sync"

	"github.com/sqlguard/sqlguard"
	"github.com/sqlguard/sqlguard/config"
)

// ErrorRateTracker maintains a rolling per-fingerprint error ratio. It is
// an explicit singleton wired in at registry construction (design note
// §9), not package-level state: the ErrorRate checker only reads it, and
// stays a pure function of (SqlContext, CheckerConfig, *snapshot of the
// tracker*) at the instant Check runs. Callers that observe execution
// outcomes call Record; the checker itself never does.
type ErrorRateTracker struct {
	mu         sync.Mutex
	windowSize int
	windows    map[sqlguard.Fingerprint]*errorWindow
}

type errorWindow struct {
	outcomes []bool // true = error
	next     int
	filled   int
}

// NewErrorRateTracker builds a tracker with the given rolling-window size
// per fingerprint (e.g. "ratio of errors over the last N executions").
func NewErrorRateTracker(windowSize int) *ErrorRateTracker {
	if windowSize <= 0 {
		windowSize = 50
	}
	return &ErrorRateTracker{
		windowSize: windowSize,
		windows:    make(map[sqlguard.Fingerprint]*errorWindow),
	}
}

// Record appends one execution outcome to the fingerprint's window.
func (t *ErrorRateTracker) Record(fp sqlguard.Fingerprint, isError bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	w, ok := t.windows[fp]
	if !ok {
		w = &errorWindow{outcomes: make([]bool, t.windowSize)}
		t.windows[fp] = w
	}
	w.outcomes[w.next] = isError
	w.next = (w.next + 1) % t.windowSize
	if w.filled < t.windowSize {
		w.filled++
	}
}

// Ratio returns the current error ratio for fp and the number of samples
// the ratio is based on. ok is false if nothing has been recorded yet.
func (t *ErrorRateTracker) Ratio(fp sqlguard.Fingerprint) (ratio float64, samples int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	w, exists := t.windows[fp]
	if !exists || w.filled == 0 {
		return 0, 0, false
	}

	errs := 0
	for i := 0; i < w.filled; i++ {
		if w.outcomes[i] {
			errs++
		}
	}
	return float64(errs) / float64(w.filled), w.filled, true
}

// SlowQuery flags execution metadata reporting an elapsed time over a
// configured threshold.
type SlowQuery struct{}

func (SlowQuery) CheckerID() string { return "SlowQuery" }
func (SlowQuery) Category() string  { return "runtime" }

func (SlowQuery) Check(ctx sqlguard.SqlContext, cfg config.CheckerConfig) sqlguard.RiskScore {
	if !ctx.HasExecMetadata() {
		return sqlguard.NoRisk
	}

	threshold := int64(cfg.ThresholdInt("elapsedMsThreshold", 1000))
	if ctx.Exec.ElapsedMs <= threshold {
		return sqlguard.NoRisk
	}

	return sqlguard.RiskScore{
		Level:          effectiveLevel(cfg, sqlguard.RiskMedium),
		Numeric:        45,
		Message:        "Observed execution time exceeds the slow-query threshold",
		Recommendation: "Review the query plan, add an index, or narrow the predicate.",
	}
}

// ErrorRate flags a fingerprint whose rolling error ratio exceeds a
// configured threshold. The rolling window is tracked per fingerprint,
// not per mapper: two invocations of the same mapper that produce
// different normalized shapes (hence different fingerprints) are tracked
// independently, since it is the shape, not the mapper identity, that
// determines whether a given execution is safe.
type ErrorRate struct {
	Tracker *ErrorRateTracker
}

func (ErrorRate) CheckerID() string { return "ErrorRate" }
func (ErrorRate) Category() string  { return "runtime" }

func (c ErrorRate) Check(ctx sqlguard.SqlContext, cfg config.CheckerConfig) sqlguard.RiskScore {
	if c.Tracker == nil {
		return sqlguard.NoRisk
	}

	minSamples := cfg.ThresholdInt("minSamples", 20)
	ratio, samples, ok := c.Tracker.Ratio(ctx.Fingerprint)
	if !ok || samples < minSamples {
		return sqlguard.NoRisk
	}

	thresholdPct := cfg.ThresholdInt("ratioThresholdPercent", 5)
	if ratio*100 <= float64(thresholdPct) {
		return sqlguard.NoRisk
	}

	return sqlguard.RiskScore{
		Level:          effectiveLevel(cfg, sqlguard.RiskHigh),
		Numeric:        72,
		Message:        "Observed error rate for this query shape exceeds the configured threshold",
		Recommendation: "Investigate recent failures for this query shape before it runs again.",
		Metadata: map[string]string{
			"samples": strconv.Itoa(samples),
		},
	}
}

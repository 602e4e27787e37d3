// Package checker implements the rule engine: a registry of independent
// checkers sharing the `Check(SqlContext) RiskScore` contract. Checker
// dispatch is the one place in the system needing open-set polymorphism;
// it is modeled as an interface plus a registry keyed by checkerId rather
// than a closed tagged variant, since new checkers are expected to be
// added without touching the orchestrator.
package checker

import (
	"sync"

	"github.com/sqlguard/sqlguard"
	"github.com/sqlguard/sqlguard/config"
)

// Checker is the contract every rule implementation satisfies. Checkers
// must be pure functions of their SqlContext and config snapshot: the
// same inputs always produce the same RiskScore.
type Checker interface {
	CheckerID() string
	Category() string
	Check(ctx sqlguard.SqlContext, cfg config.CheckerConfig) sqlguard.RiskScore
}

// Registry is wired through construction rather than relying on
// package-level globals, avoiding hidden module-level state. The
// orchestrator depends only on this type, not on any specific Checker
// implementation.
type Registry struct {
	mu       sync.RWMutex
	checkers map[string]Checker
	order    []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{checkers: make(map[string]Checker)}
}

// NewDefaultRegistry returns a registry pre-populated with the mandatory
// checker roster. tracker backs the ErrorRate checker's rolling window;
// pass nil to register it inert (it will return NONE for every context,
// since it has nowhere to read error history from).
func NewDefaultRegistry(tracker *ErrorRateTracker) *Registry {
	r := NewRegistry()
	for _, c := range []Checker{
		NoWhereClause{},
		DummyCondition{},
		BlacklistOnly{},
		WhitelistOnly{},
		NoPagination{},
		MissingOrderBy{},
		DeepPagination{},
		LargePageSize{},
		NoConditionPagination{},
		SlowQuery{},
		ErrorRate{Tracker: tracker},
	} {
		r.Register(c)
	}
	return r
}

// Register adds or replaces a checker by its CheckerID.
func (r *Registry) Register(c Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.checkers[c.CheckerID()]; !exists {
		r.order = append(r.order, c.CheckerID())
	}
	r.checkers[c.CheckerID()] = c
}

// Enabled returns the checkers enabled under rc, in stable registration
// order, so downstream aggregation ordering (by checkerId) is deterministic.
func (r *Registry) Enabled(rc *config.RuntimeConfig) []Checker {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Checker, 0, len(r.order))
	for _, id := range r.order {
		cc := rc.ForChecker(id)
		if cc.Enabled {
			out = append(out, r.checkers[id])
		}
	}
	return out
}

// Get returns one checker by id.
func (r *Registry) Get(id string) (Checker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.checkers[id]
	return c, ok
}

// effectiveLevel applies a config-provided riskLevel override, if any, to
// a checker's default level, per CheckerConfig.severityOverrides.
func effectiveLevel(cfg config.CheckerConfig, def sqlguard.RiskLevel) sqlguard.RiskLevel {
	if cfg.HasOverride {
		return cfg.RiskLevel
	}
	return def
}

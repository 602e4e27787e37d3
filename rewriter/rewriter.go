// Package rewriter implements the optional pre-check transform chain: an
// ordered sequence of AST rewrites applied before checker dispatch, such
// as injecting a tenant filter or a soft-delete predicate.
package rewriter

import (
	"fmt"

	"github.com/sqlguard/sqlguard"
	"github.com/sqlguard/sqlguard/sqlast"
)

// Rewriter transforms a SqlContext's AST, returning it unchanged if no
// modification applies. Rewriters must be thread-safe and must not
// mutate the AST passed to them in place.
type Rewriter interface {
	RewriterID() string
	Rewrite(ctx sqlguard.SqlContext) (sqlast.Node, error)
}

// Chain runs an ordered list of rewriters over one SqlContext.
type Chain struct {
	rewriters []Rewriter
}

// NewChain builds a chain from enabled rewriters, in the given order.
func NewChain(rewriters ...Rewriter) *Chain {
	return &Chain{rewriters: rewriters}
}

// Result is the outcome of running the chain, either a rewritten
// SqlContext or the id of the rewriter that failed.
type Result struct {
	Context       sqlguard.SqlContext
	FailedID      string
	Err           error
}

// Run applies every rewriter in order. A rewriter failure aborts the
// chain for this event and returns a Result whose FailedID names the
// rewriter and whose Err wraps ErrRewriterFailed. No AuditReport is built
// for an aborted event: the consumer dead-letters it and the scanner
// records a REWRITE_ERROR finding for the statement.
func (c *Chain) Run(ctx sqlguard.SqlContext) Result {
	current := ctx
	for _, r := range c.rewriters {
		next, err := r.Rewrite(current)
		if err != nil {
			return Result{Context: current, FailedID: r.RewriterID(), Err: fmt.Errorf("%w: %s: %w", sqlguard.ErrRewriterFailed, r.RewriterID(), err)}
		}
		current.AST = next
	}
	return Result{Context: current}
}

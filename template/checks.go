package template

import (
	"strings"

	"github.com/sqlguard/sqlguard"
)

// AnalyzeOptions configures the structural and interpolation checks.
type AnalyzeOptions struct {
	// SortColumnAllowList permits named raw ${} splices in ORDER BY host
	// positions, and TableAllowList in TABLE host positions, without
	// flagging CRITICAL.
	SortColumnAllowList map[string]bool
	TableAllowList      map[string]bool
}

// Analyze runs every structural and interpolation-safety check over a
// parsed statement and appends any findings it produces.
func Analyze(stmt *Statement, opts AnalyzeOptions) {
	stmt.Findings = append(stmt.Findings, checkRawInterpolation(stmt.Body, opts)...)
	stmt.Findings = append(stmt.Findings, checkUnresolvedIncludes(stmt.Body)...)

	if stmt.Command == "DELETE" || stmt.Command == "UPDATE" {
		stmt.Findings = append(stmt.Findings, checkWhereReachability(stmt.Body)...)
	}
	if stmt.Command == "SELECT" {
		stmt.Findings = append(stmt.Findings, checkPaginationPresence(stmt.Body)...)
		stmt.Findings = append(stmt.Findings, checkWildcardSelection(stmt.Body)...)
	}
	stmt.Findings = append(stmt.Findings, checkDummyPredicates(stmt.Body)...)
}

func checkRawInterpolation(nodes []Node, opts AnalyzeOptions) []Finding {
	var findings []Finding
	walk(nodes, func(n Node) {
		raw, ok := n.(RawInterpolation)
		if !ok {
			return
		}
		allowed := false
		switch raw.Host {
		case HostOrderBy:
			allowed = opts.SortColumnAllowList[raw.Name]
		case HostTable:
			allowed = opts.TableAllowList[raw.Name]
		}
		if allowed {
			return
		}
		findings = append(findings, Finding{
			Code:    "UNSAFE_INTERPOLATION",
			Level:   sqlguard.RiskCritical,
			Message: "raw text splice \"${" + raw.Name + "}\" in " + string(raw.Host) + " position is not parameter-bound",
			Witness: raw.Witness,
			Host:    raw.Host,
		})
	})
	return findings
}

func checkUnresolvedIncludes(nodes []Node) []Finding {
	var findings []Finding
	walk(nodes, func(n Node) {
		inc, ok := n.(IncludeRef)
		if !ok || !inc.Missing {
			return
		}
		findings = append(findings, Finding{
			Code:    "MYBATIS_PARSE_ERROR",
			Level:   sqlguard.RiskLow,
			Message: "unresolved <include refid=\"" + inc.RefID + "\">",
		})
	})
	return findings
}

// checkWhereReachability flags a DELETE/UPDATE branch that can execute
// without any WHERE fragment in scope. A TrimWrap with InjectsWhere=true
// neutralizes every branch nested inside it.
func checkWhereReachability(nodes []Node) []Finding {
	if hasReachableWhere(nodes, false) {
		return nil
	}
	if !hasAnyBranch(nodes) {
		return []Finding{{
			Code:    "MISSING_WHERE_BRANCH",
			Level:   sqlguard.RiskCritical,
			Message: "no branch of this statement produces a WHERE clause",
		}}
	}

	var findings []Finding
	collectUnguardedBranches(nodes, false, nil, &findings)
	return findings
}

func hasReachableWhere(nodes []Node, underInjectingWrap bool) bool {
	for _, n := range nodes {
		switch v := n.(type) {
		case Static:
			if v.Host == HostWhere && strings.TrimSpace(v.Text) != "" {
				return true
			}
		case ParamBind:
			if v.Host == HostWhere {
				return true
			}
		case Conditional:
			if hasReachableWhere(v.Children, underInjectingWrap) {
				return true
			}
		case Choose:
			for _, w := range v.Whens {
				if hasReachableWhere(w.Children, underInjectingWrap) {
					return true
				}
			}
			if hasReachableWhere(v.Otherwise, underInjectingWrap) {
				return true
			}
		case Loop:
			if hasReachableWhere(v.Children, underInjectingWrap) {
				return true
			}
		case TrimWrap:
			if v.InjectsWhere {
				return true
			}
			if hasReachableWhere(v.Children, underInjectingWrap) {
				return true
			}
		case IncludeRef:
			if hasReachableWhere(v.Resolved, underInjectingWrap) {
				return true
			}
		}
	}
	return false
}

func hasAnyBranch(nodes []Node) bool {
	found := false
	walk(nodes, func(n Node) {
		switch n.(type) {
		case Conditional, Choose:
			found = true
		}
	})
	return found
}

// collectUnguardedBranches emits one finding per Conditional/Choose branch
// whose subtree lacks a WHERE, unless an ancestor TrimWrap injects one.
func collectUnguardedBranches(nodes []Node, guarded bool, witness []Branch, findings *[]Finding) {
	for _, n := range nodes {
		switch v := n.(type) {
		case Conditional:
			if guarded || hasReachableWhere(v.Children, guarded) {
				continue
			}
			*findings = append(*findings, Finding{
				Code:    "MISSING_WHERE_BRANCH",
				Level:   sqlguard.RiskCritical,
				Message: "branch guarded by \"" + v.Branch.Expr + "\" does not produce a WHERE clause",
				Witness: append(append([]Branch{}, witness...), v.Branch),
				Host:    HostWhere,
			})
		case Choose:
			for _, w := range v.Whens {
				if guarded || hasReachableWhere(w.Children, guarded) {
					continue
				}
				*findings = append(*findings, Finding{
					Code:    "MISSING_WHERE_BRANCH",
					Level:   sqlguard.RiskCritical,
					Message: "branch guarded by \"" + w.Branch.Expr + "\" does not produce a WHERE clause",
					Witness: append(append([]Branch{}, witness...), w.Branch),
					Host:    HostWhere,
				})
			}
			if !guarded && !hasReachableWhere(v.Otherwise, guarded) && v.Otherwise != nil {
				*findings = append(*findings, Finding{
					Code:    "MISSING_WHERE_BRANCH",
					Level:   sqlguard.RiskCritical,
					Message: "<otherwise> branch does not produce a WHERE clause",
					Host:    HostWhere,
				})
			}
		case TrimWrap:
			collectUnguardedBranches(v.Children, guarded || v.InjectsWhere, witness, findings)
		case Loop:
			collectUnguardedBranches(v.Children, guarded, witness, findings)
		case IncludeRef:
			collectUnguardedBranches(v.Resolved, guarded, witness, findings)
		}
	}
}

func checkPaginationPresence(nodes []Node) []Finding {
	hasLimit := false
	hasOrderBy := false
	walk(nodes, func(n Node) {
		switch v := n.(type) {
		case Static:
			if v.Host == HostLimit {
				hasLimit = true
			}
			if v.Host == HostOrderBy {
				hasOrderBy = true
			}
		case ParamBind:
			if v.Host == HostLimit {
				hasLimit = true
			}
		}
	})
	if hasLimit && !hasOrderBy {
		return []Finding{{
			Code:    "MISSING_ORDER_BY",
			Level:   sqlguard.RiskMedium,
			Message: "pagination present without ORDER BY",
			Host:    HostOrderBy,
		}}
	}
	return nil
}

func checkWildcardSelection(nodes []Node) []Finding {
	var findings []Finding
	walk(nodes, func(n Node) {
		static, ok := n.(Static)
		if !ok {
			return
		}
		trimmed := strings.TrimSpace(static.Text)
		if static.Host == HostColumns && strings.Contains(trimmed, "*") {
			findings = append(findings, Finding{
				Code:    "UNFILTERED_WILDCARD",
				Level:   sqlguard.RiskLow,
				Message: "unfiltered wildcard column selection",
				Host:    HostColumns,
				Witness: static.Witness,
			})
		}
	})
	return findings
}

func checkDummyPredicates(nodes []Node) []Finding {
	var findings []Finding
	walk(nodes, func(n Node) {
		static, ok := n.(Static)
		if !ok || static.Host != HostWhere {
			return
		}
		norm := strings.ToLower(strings.Join(strings.Fields(static.Text), " "))
		if strings.Contains(norm, "1=1") || strings.Contains(norm, "1 = 1") || strings.Contains(norm, "true") {
			findings = append(findings, Finding{
				Code:    "DUMMY_PREDICATE",
				Level:   sqlguard.RiskHigh,
				Message: "static WHERE text contains a constant truthy predicate",
				Host:    HostWhere,
				Witness: static.Witness,
			})
		}
	})
	return findings
}

// walk visits every node in the tree, descending into every container
// kind, in document order.
func walk(nodes []Node, visit func(Node)) {
	for _, n := range nodes {
		visit(n)
		switch v := n.(type) {
		case Conditional:
			walk(v.Children, visit)
		case Choose:
			for _, w := range v.Whens {
				visit(w)
				walk(w.Children, visit)
			}
			walk(v.Otherwise, visit)
		case Loop:
			walk(v.Children, visit)
		case TrimWrap:
			walk(v.Children, visit)
		case IncludeRef:
			walk(v.Resolved, visit)
		}
	}
}

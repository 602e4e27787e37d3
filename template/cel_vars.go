package template

import (
	"strings"

	"github.com/google/cel-go/cel"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// celVariableExtractor pulls variable names out of a mapper's `test=`
// boolean expressions, for branch-witness tracking. It never evaluates
// the expression; it only needs the set of identifiers referenced.
type celVariableExtractor struct {
	env *cel.Env
}

func newCELVariableExtractor() (*celVariableExtractor, error) {
	env, err := cel.NewEnv(cel.Variable("_", cel.AnyType))
	if err != nil {
		return nil, err
	}
	return &celVariableExtractor{env: env}, nil
}

func (c *celVariableExtractor) extractVariables(expression string) []string {
	if expression == "" {
		return nil
	}

	parsed, issues := c.env.Parse(expression)
	if issues != nil && issues.Err() != nil {
		return c.extractSimple(expression)
	}

	vars := make(map[string]bool)
	parsedExpr, _ := cel.AstToParsedExpr(parsed)
	if parsedExpr != nil && parsedExpr.GetExpr() != nil {
		c.walk(parsedExpr.GetExpr(), vars)
	}

	out := make([]string, 0, len(vars))
	for v := range vars {
		out = append(out, v)
	}
	return out
}

func (c *celVariableExtractor) walk(expr *exprpb.Expr, vars map[string]bool) {
	if expr == nil {
		return
	}
	switch expr.GetExprKind().(type) {
	case *exprpb.Expr_IdentExpr:
		if name := expr.GetIdentExpr().GetName(); name != "_" {
			vars[name] = true
		}
	case *exprpb.Expr_SelectExpr:
		sel := expr.GetSelectExpr()
		c.walk(sel.GetOperand(), vars)
	case *exprpb.Expr_CallExpr:
		call := expr.GetCallExpr()
		for _, arg := range call.GetArgs() {
			c.walk(arg, vars)
		}
		if call.GetTarget() != nil {
			c.walk(call.GetTarget(), vars)
		}
	case *exprpb.Expr_ListExpr:
		for _, elem := range expr.GetListExpr().GetElements() {
			c.walk(elem, vars)
		}
	case *exprpb.Expr_StructExpr:
		for _, entry := range expr.GetStructExpr().GetEntries() {
			if mapKey, ok := entry.GetKeyKind().(*exprpb.Expr_CreateStruct_Entry_MapKey); ok {
				c.walk(mapKey.MapKey, vars)
			}
			c.walk(entry.GetValue(), vars)
		}
	case *exprpb.Expr_ComprehensionExpr:
		comp := expr.GetComprehensionExpr()
		c.walk(comp.GetIterRange(), vars)
		c.walk(comp.GetResult(), vars)
		if comp.GetLoopCondition() != nil {
			c.walk(comp.GetLoopCondition(), vars)
		}
	}
}

// extractSimple is the fallback used when an expression fails to parse
// as CEL (mapper `test=` strings are often OGNL-ish, not strict CEL).
func (c *celVariableExtractor) extractSimple(expression string) []string {
	expr := strings.TrimSpace(expression)
	expr = strings.TrimPrefix(expr, "!")
	expr = strings.TrimPrefix(expr, "(")
	expr = strings.TrimSuffix(expr, ")")

	for _, op := range []string{"||", "&&", "or", "and"} {
		if strings.Contains(expr, op) {
			vars := make(map[string]bool)
			for _, part := range strings.Split(expr, op) {
				for _, v := range c.extractSimple(strings.TrimSpace(part)) {
					vars[v] = true
				}
			}
			out := make([]string, 0, len(vars))
			for v := range vars {
				out = append(out, v)
			}
			return out
		}
	}

	for _, op := range []string{"==", "!=", ">=", "<=", ">", "<"} {
		if idx := strings.Index(expr, op); idx >= 0 {
			return c.extractSimple(expr[:idx])
		}
	}

	field := strings.FieldsFunc(expr, func(r rune) bool {
		return r == '.' || r == ' '
	})
	if len(field) == 0 {
		return nil
	}
	return []string{field[0]}
}

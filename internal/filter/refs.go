package filter

import (
	"sort"

	"github.com/google/cel-go/cel"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

var predicateVars = map[string]bool{varValue: true, varPath: true, varKey: true}

// references returns the predicate variables ast reads, sorted. Names bound
// by a macro (e.g. x in value.exists(x, x > 1)) are not counted.
func references(ast *cel.Ast) []string {
	parsed, err := cel.AstToParsedExpr(ast)
	if err != nil || parsed.GetExpr() == nil {
		return nil
	}
	seen := make(map[string]bool)
	collectRefs(parsed.GetExpr(), nil, seen)

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func collectRefs(e *exprpb.Expr, bound map[string]bool, seen map[string]bool) {
	if e == nil {
		return
	}
	switch e.ExprKind.(type) {
	case *exprpb.Expr_IdentExpr:
		name := e.GetIdentExpr().GetName()
		if predicateVars[name] && !bound[name] {
			seen[name] = true
		}

	case *exprpb.Expr_SelectExpr:
		collectRefs(e.GetSelectExpr().GetOperand(), bound, seen)

	case *exprpb.Expr_CallExpr:
		call := e.GetCallExpr()
		collectRefs(call.GetTarget(), bound, seen)
		for _, arg := range call.GetArgs() {
			collectRefs(arg, bound, seen)
		}

	case *exprpb.Expr_ListExpr:
		for _, elem := range e.GetListExpr().GetElements() {
			collectRefs(elem, bound, seen)
		}

	case *exprpb.Expr_StructExpr:
		for _, entry := range e.GetStructExpr().GetEntries() {
			collectRefs(entry.GetMapKey(), bound, seen)
			collectRefs(entry.GetValue(), bound, seen)
		}

	case *exprpb.Expr_ComprehensionExpr:
		comp := e.GetComprehensionExpr()
		collectRefs(comp.GetIterRange(), bound, seen)
		collectRefs(comp.GetAccuInit(), bound, seen)

		inner := make(map[string]bool, len(bound)+2)
		for name := range bound {
			inner[name] = true
		}
		inner[comp.GetIterVar()] = true
		inner[comp.GetAccuVar()] = true
		collectRefs(comp.GetLoopCondition(), inner, seen)
		collectRefs(comp.GetLoopStep(), inner, seen)
		collectRefs(comp.GetResult(), inner, seen)
	}
}

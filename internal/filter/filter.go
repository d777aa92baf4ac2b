// Package filter compiles CEL predicates used to narrow path matches.
//
// A predicate sees three variables:
//
//	value  the matched value (dyn)
//	path   the concrete location, e.g. $.users[0].name
//	key    the last step of the location ("" for the root)
//
// Example: refpath get '$.users[*]' --where 'value.age >= 18'
package filter

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/decls"
	"github.com/google/cel-go/common/types"
	celext "github.com/google/cel-go/ext"

	"github.com/oakwood-commons/refpath/pkg/refnode"
	"github.com/oakwood-commons/refpath/pkg/tree"
)

const (
	varValue = "value"
	varPath  = "path"
	varKey   = "key"
)

// Predicate is a compiled boolean CEL expression.
type Predicate struct {
	expr string
	prg  cel.Program
	refs []string
}

// newEnv creates the CEL environment with the predicate variables and the
// common extension libraries.
func newEnv(opts ...cel.EnvOption) (*cel.Env, error) {
	allOpts := make([]cel.EnvOption, 0, 7+len(opts))
	allOpts = append(allOpts,
		cel.Variable(varValue, cel.DynType),
		cel.Variable(varPath, cel.StringType),
		cel.Variable(varKey, cel.StringType),
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	)
	allOpts = append(allOpts, opts...)
	return cel.NewEnv(allOpts...)
}

// Compile parses and type-checks expr. The expression must produce a bool.
func Compile(expr string) (*Predicate, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("empty filter expression")
	}
	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("filter %q must return bool, not %s", expr, out)
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Predicate{expr: expr, prg: prg, refs: references(ast)}, nil
}

// String returns the source expression.
func (p *Predicate) String() string {
	return p.expr
}

// References lists the variables (value, path, key) the predicate reads.
// An empty result means the predicate is constant for every match.
func (p *Predicate) References() []string {
	return slices.Clone(p.refs)
}

// Match evaluates the predicate against a matched node.
func (p *Predicate) Match(n *refnode.Node) (bool, error) {
	path := n.Path()
	key := ""
	if last, ok := path.Last(); ok {
		key = last.Key
		if last.IsIndex {
			key = strconv.Itoa(last.Index)
		}
	}
	return p.Eval(n.Value(), path.String(), key)
}

// Eval evaluates the predicate against explicit variable values.
func (p *Predicate) Eval(value any, path, key string) (bool, error) {
	result, _, err := p.prg.Eval(map[string]any{
		varValue: tree.ToNative(value),
		varPath:  path,
		varKey:   key,
	})
	if err != nil {
		return false, fmt.Errorf("eval error at %s: %w", path, err)
	}
	b, ok := result.(types.Bool)
	if !ok {
		return false, fmt.Errorf("filter %q returned %s at %s, not bool", p.expr, result.Type(), path)
	}
	return bool(b), nil
}

// Functions lists the functions and macros available to predicates with a
// usage hint each, e.g. "startsWith() - string.startsWith(string) -> bool".
func Functions() ([]string, error) {
	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	seen := make(map[string]bool)
	out := make([]string, 0, 100)
	add := func(entry string) {
		if !seen[entry] {
			seen[entry] = true
			out = append(out, entry)
		}
	}

	for _, fn := range env.Functions() {
		if isOperator(fn.Name()) {
			continue
		}
		for _, o := range fn.OverloadDecls() {
			add(fn.Name() + "() - " + usageFromOverload(fn.Name(), o))
		}
	}
	for _, m := range env.Macros() {
		if isOperator(m.Function()) {
			continue
		}
		add(m.Function() + "() - CEL macro")
	}

	sort.Strings(out)
	return out, nil
}

// isOperator filters out internal operator-style declarations.
func isOperator(name string) bool {
	if strings.HasPrefix(name, "@") {
		return true
	}
	if strings.HasPrefix(name, "_") && strings.HasSuffix(name, "_") {
		return true
	}
	switch name {
	case "!_", "-_", "_[_]", "_?_:_":
		return true
	}
	return false
}

func typeLabel(t *types.Type) string {
	if t == nil {
		return "any"
	}
	if name := t.DeclaredTypeName(); name != "" {
		return name
	}
	if name := t.TypeName(); name != "" {
		return name
	}
	return "any"
}

func formatParams(params []*types.Type) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = typeLabel(p)
	}
	return strings.Join(parts, ", ")
}

// usageFromOverload renders an overload as name(args) -> result, or
// recv.name(args) -> result for member functions.
func usageFromOverload(name string, o *decls.OverloadDecl) string {
	params := o.ArgTypes()
	call := name + "(" + formatParams(params) + ")"
	if o.IsMemberFunction() && len(params) > 0 {
		call = typeLabel(params[0]) + "." + name + "(" + formatParams(params[1:]) + ")"
	}
	if o.ResultType() == nil {
		return call
	}
	return call + " -> " + typeLabel(o.ResultType())
}

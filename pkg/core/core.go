// Package core wires the path engine, match filtering and limiting into one
// Engine used by the CLI and by embedding programs.
package core

import (
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/refpath/internal/filter"
	"github.com/oakwood-commons/refpath/internal/limiter"
	"github.com/oakwood-commons/refpath/pkg/loader"
	"github.com/oakwood-commons/refpath/pkg/refnode"
	"github.com/oakwood-commons/refpath/pkg/tree"
)

// Matcher decides whether a matched node takes part in an operation.
type Matcher interface {
	Match(n *refnode.Node) (bool, error)
}

// Engine runs path operations over a document root.
type Engine struct {
	Logger  logr.Logger
	Matcher Matcher
	Limit   limiter.Config

	where string
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets the logger used for per-match debug output.
func WithLogger(lgr logr.Logger) Option {
	return func(e *Engine) {
		e.Logger = lgr
	}
}

// WithMatcher sets a custom match filter.
func WithMatcher(m Matcher) Option {
	return func(e *Engine) {
		e.Matcher = m
	}
}

// WithWhere filters matches with a CEL predicate. It is compiled by New.
func WithWhere(expr string) Option {
	return func(e *Engine) {
		e.where = expr
	}
}

// WithLimit windows the matches each operation acts on.
func WithLimit(cfg limiter.Config) Option {
	return func(e *Engine) {
		e.Limit = cfg
	}
}

// New creates an Engine with defaults.
func New(opts ...Option) (*Engine, error) {
	engine := &Engine{Logger: logr.Discard()}
	for _, opt := range opts {
		opt(engine)
	}
	if err := engine.Limit.Validate(); err != nil {
		return nil, err
	}
	if engine.where != "" {
		if engine.Matcher != nil {
			return nil, fmt.Errorf("a where expression and a custom matcher cannot be combined")
		}
		pred, err := filter.Compile(engine.where)
		if err != nil {
			return nil, fmt.Errorf("--where: %w", err)
		}
		if refs := pred.References(); len(refs) == 0 {
			engine.Logger.Info("where expression ignores value, path and key; it selects all or nothing", "where", engine.where)
		} else {
			engine.Logger.V(1).Info("where expression compiled", "where", engine.where, "references", refs)
		}
		engine.Matcher = pred
	}
	return engine, nil
}

// LoadFileWithLogger reads a file and parses it into a single root node.
func LoadFileWithLogger(path string, lgr logr.Logger) (any, error) {
	return loader.LoadFileWithLogger(path, lgr)
}

// LoadReader parses everything r yields into a single root node.
func LoadReader(r io.Reader, lgr logr.Logger) (any, error) {
	return loader.LoadReader(r, lgr)
}

// Match is one resolved location and the value found there.
type Match struct {
	Path  refnode.Path
	Value any
}

// Report lists the concrete locations an operation matched and changed.
type Report struct {
	Matched []string
	Changed []string
}

// Matches yields the nodes expr resolves to in *root after the matcher and
// limit are applied. The traversal is lazy: once the limit is reached no
// further part of the document is walked.
func (e *Engine) Matches(root *any, expr string) iter.Seq2[*refnode.Node, error] {
	seq := refnode.Yield(root, expr)
	if e.Matcher != nil {
		seq = e.filtered(seq)
	}
	return limiter.Apply(e.Limit, seq)
}

func (e *Engine) filtered(seq iter.Seq2[*refnode.Node, error]) iter.Seq2[*refnode.Node, error] {
	return func(yield func(*refnode.Node, error) bool) {
		for n, err := range seq {
			if err != nil {
				if !yield(nil, err) {
					return
				}
				continue
			}
			ok, err := e.Matcher.Match(n)
			if err != nil {
				yield(nil, err)
				return
			}
			if !ok {
				e.Logger.V(2).Info("filtered out", "path", n.Path().String())
				continue
			}
			if !yield(n, nil) {
				return
			}
		}
	}
}

// Get returns the matches of expr without modifying root.
func (e *Engine) Get(root any, expr string) ([]Match, error) {
	var out []Match
	for n, err := range e.Matches(&root, expr) {
		if err != nil {
			return out, fmt.Errorf("get %s: %w", expr, err)
		}
		e.Logger.V(1).Info("match", "op", "get", "path", n.Path().String())
		out = append(out, Match{Path: n.Path(), Value: n.Value()})
	}
	return out, nil
}

// Set replaces the value at every match with a copy of value.
func (e *Engine) Set(root any, expr string, value any) (any, Report, error) {
	return e.mutate(root, expr, "set", func(n *refnode.Node) error {
		return n.Modify(tree.Clone(value))
	})
}

// Delete removes every match from its parent container.
func (e *Engine) Delete(root any, expr string) (any, Report, error) {
	return e.mutate(root, expr, "delete", func(n *refnode.Node) error {
		return n.Remove()
	})
}

// Truncate shortens every matched string to maxLen code points followed by
// suffix.
func (e *Engine) Truncate(root any, expr string, maxLen int, suffix string) (any, Report, error) {
	if maxLen < 0 {
		return root, Report{}, fmt.Errorf("truncate %s: %w: %d", expr, refnode.ErrInvalidLength, maxLen)
	}
	return e.mutate(root, expr, "truncate", func(n *refnode.Node) error {
		return n.Truncate(maxLen, suffix)
	})
}

// mutate applies op to each match in traversal order. On error the root is
// returned with the mutations made so far.
func (e *Engine) mutate(root any, expr, opName string, op func(*refnode.Node) error) (any, Report, error) {
	var report Report
	for n, err := range e.Matches(&root, expr) {
		if err != nil {
			return root, report, fmt.Errorf("%s %s: %w", opName, expr, err)
		}
		path := n.Path().String()
		report.Matched = append(report.Matched, path)
		if err := op(n); err != nil {
			if errors.Is(err, refnode.ErrPathUnreachable) {
				e.Logger.V(1).Info("match went stale", "op", opName, "path", path)
			}
			return root, report, fmt.Errorf("%s %s: %w", opName, expr, err)
		}
		e.Logger.V(1).Info("match", "op", opName, "path", path)
		report.Changed = append(report.Changed, path)
	}
	return root, report, nil
}

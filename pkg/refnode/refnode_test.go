package refnode

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/refpath/pkg/pathexpr"
	"github.com/oakwood-commons/refpath/pkg/testkit"
	"github.com/oakwood-commons/refpath/pkg/tree"
)

const loremTail = "lorem ipsum dolor sit amet, consectetur adipiscing elit. Suspendisse ut venenatis arcu"

func itemsDocument() any {
	return tree.Of(
		"items", []any{
			tree.Of("title", "First", "description", "First description "+loremTail+"."),
			tree.Of("title", "Second", "description", "Second description "+loremTail+"."),
		},
	)
}

func TestTraverseRemovesNestedNodes(t *testing.T) {
	leaf := func(title string) *tree.Object {
		return tree.Of("title", title, "children", []any{})
	}
	var doc any = []any{
		tree.Of(
			"title", "First",
			"children", []any{
				tree.Of("title", "First.1", "children", []any{leaf("First.1.1"), leaf("First.1.2")}),
				leaf("First.2"),
			},
		),
	}

	err := Traverse(&doc, "[*].children[*].children[*].title", func(n *Node) error {
		return n.Remove()
	})
	require.NoError(t, err)

	want := []any{
		tree.Of(
			"title", "First",
			"children", []any{
				tree.Of("title", "First.1", "children", []any{
					tree.Of("children", []any{}),
					tree.Of("children", []any{}),
				}),
				leaf("First.2"),
			},
		),
	}
	assert.Equal(t, want, doc)
}

func TestMapTruncatesMatches(t *testing.T) {
	got, err := Map(itemsDocument(), ".items[*].description", func(n *Node) error {
		return n.Truncate(18, "...")
	})
	require.NoError(t, err)

	want := tree.Of(
		"items", []any{
			tree.Of("title", "First", "description", "First description ..."),
			tree.Of("title", "Second", "description", "Second description..."),
		},
	)
	assert.Equal(t, want, got)
}

func TestMapModifiesMatches(t *testing.T) {
	got, err := Map(itemsDocument(), ".items[*].description", func(n *Node) error {
		return n.Modify(strings.ReplaceAll(n.Value().(string), loremTail, "abc"))
	})
	require.NoError(t, err)

	want := tree.Of(
		"items", []any{
			tree.Of("title", "First", "description", "First description abc."),
			tree.Of("title", "Second", "description", "Second description abc."),
		},
	)
	assert.Equal(t, want, got)
}

func TestYieldVisitsDepthFirstLeftToRight(t *testing.T) {
	var doc any = tree.Of(
		"b", []any{"b0", "b1"},
		"a", []any{"a0"},
		"c", []any{},
		"d", []any{"d0", "d1", "d2"},
	)

	var paths []string
	var values []any
	for node, err := range Yield(&doc, ".*[*]") {
		require.NoError(t, err)
		paths = append(paths, node.Path().String())
		values = append(values, node.Value())
	}

	assert.Equal(t, []string{"$.b[0]", "$.b[1]", "$.a[0]", "$.d[0]", "$.d[1]", "$.d[2]"}, paths)
	assert.Equal(t, []any{"b0", "b1", "a0", "d0", "d1", "d2"}, values)
}

func TestYieldNativeMapsInKeyOrder(t *testing.T) {
	var doc any = map[string]any{"zeta": 1, "alpha": 2, "mid": 3}
	nodes, err := Collect(&doc, ".*")
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	assert.Equal(t, "$.alpha", nodes[0].Path().String())
	assert.Equal(t, "$.mid", nodes[1].Path().String())
	assert.Equal(t, "$.zeta", nodes[2].Path().String())
}

func TestRemoveLeavesSiblingsUntouched(t *testing.T) {
	var doc any = tree.Of(
		"user", tree.Of("name", "alice", "email", "a@example.com", "age", 30),
		"tags", []any{"x", "y"},
	)

	err := Traverse(&doc, "$.user.email", func(n *Node) error { return n.Remove() })
	require.NoError(t, err)

	want := tree.Of(
		"user", tree.Of("name", "alice", "age", 30),
		"tags", []any{"x", "y"},
	)
	assert.Equal(t, want, doc)
}

func TestModifyWritesOnlyTheMatchedSlot(t *testing.T) {
	var doc any = tree.Of("list", []any{"a", "b", "c"}, "other", "keep")

	err := Traverse(&doc, ".list[1]", func(n *Node) error { return n.Modify("B") })
	require.NoError(t, err)
	assert.Equal(t, tree.Of("list", []any{"a", "B", "c"}, "other", "keep"), doc)
}

func TestUnreachableLiteralAbortsTraversal(t *testing.T) {
	var doc any = []any{
		tree.Of("name", "one"),
		tree.Of("title", "no name here"),
		tree.Of("name", "three"),
	}

	calls := 0
	err := Traverse(&doc, "[*].name", func(n *Node) error {
		calls++
		return n.Modify("changed")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPathUnreachable)

	var unreachable *UnreachableError
	require.True(t, errors.As(err, &unreachable))
	assert.Equal(t, tree.KeyStep("name"), unreachable.Step)
	assert.Equal(t, "$[1]", unreachable.At.String())
	assert.Equal(t, "object with 1 keys", unreachable.Current)
	assert.Contains(t, err.Error(), `no key "name"`)

	assert.Equal(t, 1, calls)
	assert.Equal(t, []any{
		tree.Of("name", "changed"),
		tree.Of("title", "no name here"),
		tree.Of("name", "three"),
	}, doc)
}

func TestUnreachableReportsRemainingSegments(t *testing.T) {
	var doc any = tree.Of("a", tree.Of())
	_, err := Collect(&doc, ".a.b[2].c")
	require.Error(t, err)

	var unreachable *UnreachableError
	require.True(t, errors.As(err, &unreachable))
	assert.Equal(t, []pathexpr.Segment{pathexpr.Index(2), pathexpr.Property("c")}, unreachable.Remaining)
	assert.Contains(t, err.Error(), "remaining segments: [2].c")
}

func TestIndexOutOfRangeIsUnreachable(t *testing.T) {
	var doc any = tree.Of("list", []any{1})
	_, err := Collect(&doc, ".list[3]")
	assert.ErrorIs(t, err, ErrPathUnreachable)

	_, err = Collect(&doc, ".list.name")
	assert.ErrorIs(t, err, ErrPathUnreachable)

	_, err = Collect(&doc, ".list[0].deeper")
	assert.ErrorIs(t, err, ErrPathUnreachable)
}

func TestWildcardOverEmptyOrScalarMatchesNothing(t *testing.T) {
	var doc any = tree.Of("empty", []any{}, "obj", tree.NewObject(), "scalar", "text")
	for _, expr := range []string{".empty[*]", ".obj.*", ".scalar[*]"} {
		nodes, err := Collect(&doc, expr)
		require.NoError(t, err, expr)
		assert.Empty(t, nodes, expr)
	}
}

func TestDecimalNamesCrossContainerKinds(t *testing.T) {
	var doc any = tree.Of(
		"list", []any{"zero", "one"},
		"byKey", tree.Of("0", "zero-key"),
	)

	nodes, err := Collect(&doc, ".list.1")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "one", nodes[0].Value())
	assert.Equal(t, "$.list[1]", nodes[0].Path().String())

	nodes, err = Collect(&doc, ".byKey[0]")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "zero-key", nodes[0].Value())
	assert.Equal(t, "$.byKey.0", nodes[0].Path().String())
}

func TestRemovingSequenceElementsShiftsLaterNodes(t *testing.T) {
	var doc any = tree.Of("list", []any{"a", "b", "c"})

	var errs []error
	var seen []any
	err := Traverse(&doc, ".list[*]", func(n *Node) error {
		seen = append(seen, n.Value())
		errs = append(errs, n.Remove())
		return nil
	})
	require.NoError(t, err)

	// values are snapshots, but each removal shifts what later paths address
	assert.Equal(t, []any{"a", "b", "c"}, seen)
	require.Len(t, errs, 3)
	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	assert.ErrorIs(t, errs[2], ErrPathUnreachable)
	assert.ErrorIs(t, errs[2], tree.ErrNoSlot)
	assert.Equal(t, tree.Of("list", []any{"b"}), doc)
}

func TestRemoveFromTopLevelSequenceUpdatesRoot(t *testing.T) {
	got, err := Map([]any{"keep", "drop", "keep"}, "[1]", func(n *Node) error {
		return n.Remove()
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"keep", "keep"}, got)
}

func TestNodeAddressesLocationNotValue(t *testing.T) {
	var doc any = tree.Of("a", "one", "b", "two")
	nodes, err := Collect(&doc, ".*")
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	require.NoError(t, nodes[1].Modify("TWO"))
	require.NoError(t, nodes[0].Modify("ONE"))
	assert.Equal(t, "one", nodes[0].Value())
	assert.Equal(t, tree.Of("a", "ONE", "b", "TWO"), doc)

	// truncation reads the value currently stored, not the snapshot
	require.NoError(t, nodes[0].Truncate(2, ""))
	assert.Equal(t, tree.Of("a", "ON", "b", "TWO"), doc)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		max    int
		suffix string
		want   string
	}{
		{"counts code points not bytes", "zażółć gęślą jaźń", 6, "…", "zażółć…"},
		{"short value still gets suffix", "abc", 10, "...", "abc..."},
		{"exact length", "abcd", 4, "!", "abcd!"},
		{"zero keeps nothing", "abc", 0, "...", "..."},
		{"empty suffix", "abcdef", 3, "", "abc"},
		{"emoji", "👍👍👍", 2, "", "👍👍"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Map(tree.Of("v", tt.value), ".v", func(n *Node) error {
				return n.Truncate(tt.max, tt.suffix)
			})
			require.NoError(t, err)
			assert.Equal(t, tree.Of("v", tt.want), got)
		})
	}
}

func TestTruncateRejectsNonStrings(t *testing.T) {
	var doc any = tree.Of("n", 42)
	err := Traverse(&doc, ".n", func(n *Node) error { return n.Truncate(1, "") })
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	var mismatch *TypeMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "truncate", mismatch.Op)
	assert.Equal(t, "$.n", mismatch.Path.String())
	assert.Equal(t, 42, mismatch.Value)
	assert.Equal(t, tree.Of("n", 42), doc)
}

func TestTruncateRejectsNegativeLength(t *testing.T) {
	var doc any = tree.Of("s", "text")
	err := Traverse(&doc, ".s", func(n *Node) error { return n.Truncate(-1, "") })
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestRootExpressions(t *testing.T) {
	for _, expr := range []string{"$", "."} {
		t.Run(expr, func(t *testing.T) {
			var doc any = "root text"
			nodes, err := Collect(&doc, expr)
			require.NoError(t, err)
			require.Len(t, nodes, 1)
			assert.True(t, nodes[0].IsRoot())
			assert.Equal(t, "$", nodes[0].Path().String())

			assert.ErrorIs(t, nodes[0].Remove(), ErrRootNotRemovable)
			require.NoError(t, nodes[0].Truncate(4, "~"))
			assert.Equal(t, "root~", doc)
		})
	}

	got, err := Map(tree.Of("a", 1), "$", func(n *Node) error { return n.Modify([]any{"replaced"}) })
	require.NoError(t, err)
	assert.Equal(t, []any{"replaced"}, got)
}

func TestInvalidExpressionIsReturned(t *testing.T) {
	var doc any = tree.Of("a", 1)
	called := false
	err := Traverse(&doc, "a..b", func(*Node) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, pathexpr.ErrInvalidExpression)
	assert.False(t, called)
}

func TestParsedExpressionIsAccepted(t *testing.T) {
	var doc any = tree.Of("a", tree.Of("b", 1))
	nodes, err := Collect(&doc, pathexpr.MustParse("$.a.b"))
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, 1, nodes[0].Value())
}

func TestNilRoot(t *testing.T) {
	_, err := Collect[string](nil, ".a")
	assert.ErrorIs(t, err, ErrNilRoot)
}

func TestWalkerErrorStopsTraversal(t *testing.T) {
	var doc any = []any{"a", "b", "c"}
	stop := errors.New("stop")
	visited := 0
	err := Traverse(&doc, "[*]", func(n *Node) error {
		visited++
		if visited == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, visited)
}

func TestTraverseCallsWalkerOncePerMatch(t *testing.T) {
	var doc any = tree.Of("rows", []any{
		tree.Of("cells", []any{1, 2}),
		tree.Of("cells", []any{3}),
	})
	spy := testkit.NewCallSpy(t).SetMaxExpectedCalls(3)
	err := Traverse(&doc, ".rows[*].cells[*]", func(*Node) error {
		spy.Track()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, spy.Calls())
}

func TestStoppingEarlySkipsRemainingBranches(t *testing.T) {
	// the third element has no "a", so a full traversal would fail
	var doc any = []any{tree.Of("a", 1), tree.Of("a", 2), tree.Of("b", 3)}

	var got []any
	for node, err := range Yield(&doc, "[*].a") {
		require.NoError(t, err)
		got = append(got, node.Value())
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []any{1, 2}, got)

	_, err := Collect(&doc, "[*].a")
	assert.ErrorIs(t, err, ErrPathUnreachable)
}

func TestPathString(t *testing.T) {
	p := Path{tree.KeyStep("items"), tree.IndexStep(0), tree.KeyStep("display name"), tree.KeyStep(`say "x"`)}
	assert.Equal(t, `$.items[0]."display name"."say \"x\""`, p.String())
	assert.Equal(t, "$", Path(nil).String())

	last, ok := p.Last()
	require.True(t, ok)
	assert.Equal(t, tree.KeyStep(`say "x"`), last)
	_, ok = Path(nil).Last()
	assert.False(t, ok)

	reparsed, err := pathexpr.Parse(p.String())
	require.NoError(t, err)
	assert.Equal(t, []pathexpr.Segment{
		pathexpr.Property("items"),
		pathexpr.Index(0),
		pathexpr.QuotedProperty("display name"),
		pathexpr.QuotedProperty(`say "x"`),
	}, reparsed.Segments())
}

func TestNodePathIsACopy(t *testing.T) {
	var doc any = tree.Of("a", []any{1})
	nodes, err := Collect(&doc, ".a[0]")
	require.NoError(t, err)
	p := nodes[0].Path()
	p[0] = tree.KeyStep("zzz")
	require.NoError(t, nodes[0].Modify(2))
	assert.Equal(t, tree.Of("a", []any{2}), doc)
}

func TestStaleParentIsUnreachable(t *testing.T) {
	var doc any = tree.Of("outer", tree.Of("inner", "v"))
	nodes, err := Collect(&doc, ".outer.inner")
	require.NoError(t, err)

	doc.(*tree.Object).Set("outer", "gone")
	err = nodes[0].Modify("x")
	assert.ErrorIs(t, err, ErrPathUnreachable)
	assert.Contains(t, err.Error(), "$.outer")
}

package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/refpath/pkg/tree"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		input string
		want  any
	}{
		{"42", 42},
		{"1.5", 1.5},
		{"true", true},
		{"null", nil},
		{`"quoted text"`, "quoted text"},
		{"plain words", "plain words"},
		{"", ""},
		{"[1, two]", []any{1, "two"}},
		{"{b: 1, a: 2}", tree.Of("b", 1, "a", 2)},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseValue(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseValueInvalid(t *testing.T) {
	_, err := ParseValue("{unclosed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid value")
}

type sample struct {
	Name string
}

func TestNormalize(t *testing.T) {
	in := map[string]any{
		"zeta":  []any{map[string]any{"y": 1, "x": 2}},
		"alpha": map[int]string{2: "b", 1: "a"},
		"ptr":   &sample{Name: "n"},
		"nil":   []string(nil),
		"ints":  []int{1, 2},
	}

	got := Normalize(in)
	obj, ok := got.(*tree.Object)
	require.True(t, ok)
	assert.Equal(t, []string{"alpha", "ints", "nil", "ptr", "zeta"}, obj.Keys())

	alpha, _ := obj.Get("alpha")
	assert.Equal(t, tree.Of("1", "a", "2", "b"), alpha)

	zeta, _ := obj.Get("zeta")
	assert.Equal(t, []any{tree.Of("x", 2, "y", 1)}, zeta)

	ints, _ := obj.Get("ints")
	assert.Equal(t, []any{1, 2}, ints)

	empty, _ := obj.Get("nil")
	assert.Equal(t, []any{}, empty)

	ptr, _ := obj.Get("ptr")
	assert.Equal(t, sample{Name: "n"}, ptr)
}

func TestNormalizeKeepsTreeObjects(t *testing.T) {
	obj := tree.Of("b", 1, "a", 2)
	assert.Same(t, obj, Normalize(obj))
	assert.Nil(t, Normalize(nil))
	assert.Equal(t, "s", Normalize("s"))
}

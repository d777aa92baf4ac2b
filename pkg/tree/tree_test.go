package tree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKeepsInsertionOrder(t *testing.T) {
	o := NewObject()
	o.Set("zeta", 1).Set("alpha", 2).Set("mid", 3)
	o.Set("zeta", 10)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, o.Keys())
	v, ok := o.Get("zeta")
	require.True(t, ok)
	assert.Equal(t, 10, v)
	assert.Equal(t, 3, o.Len())

	assert.True(t, o.Delete("alpha"))
	assert.False(t, o.Delete("alpha"))
	assert.Equal(t, []string{"zeta", "mid"}, o.Keys())
	assert.False(t, o.Has("alpha"))
}

func TestObjectZeroValue(t *testing.T) {
	var o Object
	o.Set("a", 1)
	assert.Equal(t, []string{"a"}, o.Keys())

	var nilObj *Object
	assert.Equal(t, 0, nilObj.Len())
	assert.Nil(t, nilObj.Keys())
	_, ok := nilObj.Get("a")
	assert.False(t, ok)
}

func TestObjectDeleteLastKeyEqualsEmpty(t *testing.T) {
	o := Of("only", true)
	o.Delete("only")
	assert.Equal(t, NewObject(), o)
}

func TestOfPanicsOnBadArguments(t *testing.T) {
	assert.Panics(t, func() { Of("a") })
	assert.Panics(t, func() { Of(1, "a") })
}

func TestObjectMarshalJSONOrdered(t *testing.T) {
	o := Of("b", 1, "a", []any{Of("y", "1", "x", nil)}, "c", map[string]any{"k": "v"})
	data, err := json.Marshal(o)
	require.NoError(t, err)
	assert.Equal(t, `{"b":1,"a":[{"y":"1","x":null}],"c":{"k":"v"}}`, string(data))

	var nilObj *Object
	data, err = json.Marshal(nilObj)
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestToNative(t *testing.T) {
	o := Of("list", []any{Of("a", 1)}, "plain", "x")
	got := ToNative(o)
	assert.Equal(t, map[string]any{
		"list":  []any{map[string]any{"a": 1}},
		"plain": "x",
	}, got)

	// the source is untouched
	_, isObj := o.values["list"].([]any)[0].(*Object)
	assert.True(t, isObj)
}

func TestEntriesNaturalOrder(t *testing.T) {
	assert.Equal(t, []Entry{
		{Step: KeyStep("b"), Value: 1},
		{Step: KeyStep("a"), Value: 2},
	}, Entries(Of("b", 1, "a", 2)))

	assert.Equal(t, []Entry{
		{Step: KeyStep("a"), Value: 2},
		{Step: KeyStep("b"), Value: 1},
	}, Entries(map[string]any{"b": 1, "a": 2}))

	assert.Equal(t, []Entry{
		{Step: IndexStep(0), Value: "x"},
		{Step: IndexStep(1), Value: "y"},
	}, Entries([]any{"x", "y"}))

	assert.Empty(t, Entries("scalar"))
	assert.Empty(t, Entries(nil))
}

func TestLookup(t *testing.T) {
	seq := []any{"a", "b"}
	tests := []struct {
		name      string
		container any
		step      Step
		want      any
		wantStep  Step
		wantOK    bool
	}{
		{"object key", Of("k", 1), KeyStep("k"), 1, KeyStep("k"), true},
		{"object missing", Of("k", 1), KeyStep("x"), nil, KeyStep("x"), false},
		{"object decimal key by index", Of("0", "zero"), IndexStep(0), "zero", KeyStep("0"), true},
		{"map key", map[string]any{"k": 2}, KeyStep("k"), 2, KeyStep("k"), true},
		{"sequence index", seq, IndexStep(1), "b", IndexStep(1), true},
		{"sequence decimal key", seq, KeyStep("1"), "b", IndexStep(1), true},
		{"sequence non-canonical key", seq, KeyStep("01"), nil, KeyStep("01"), false},
		{"sequence word key", seq, KeyStep("x"), nil, KeyStep("x"), false},
		{"sequence out of range", seq, IndexStep(2), nil, IndexStep(2), false},
		{"scalar", "text", KeyStep("x"), nil, KeyStep("x"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, step, ok := Lookup(tt.container, tt.step)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantStep, step)
		})
	}
}

func TestSetChild(t *testing.T) {
	o := Of("a", 1)
	got, err := SetChild(o, KeyStep("b"), 2)
	require.NoError(t, err)
	assert.Same(t, o, got)
	assert.Equal(t, []string{"a", "b"}, o.Keys())

	seq := []any{1, 2}
	got, err = SetChild(seq, IndexStep(1), "two")
	require.NoError(t, err)
	assert.Equal(t, []any{1, "two"}, got)
	assert.Equal(t, "two", seq[1])

	_, err = SetChild(seq, IndexStep(5), "x")
	assert.ErrorIs(t, err, ErrNoSlot)

	_, err = SetChild(42, KeyStep("a"), "x")
	assert.ErrorIs(t, err, ErrNotContainer)
}

func TestDeleteChild(t *testing.T) {
	o := Of("a", 1, "b", 2)
	_, err := DeleteChild(o, KeyStep("a"))
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, o.Keys())
	_, err = DeleteChild(o, KeyStep("a"))
	assert.ErrorIs(t, err, ErrNoSlot)

	m := map[string]any{"a": 1}
	_, err = DeleteChild(m, KeyStep("a"))
	require.NoError(t, err)
	assert.Empty(t, m)

	got, err := DeleteChild([]any{"x", "y", "z"}, IndexStep(0))
	require.NoError(t, err)
	assert.Equal(t, []any{"y", "z"}, got)

	_, err = DeleteChild([]any{"x"}, IndexStep(3))
	assert.ErrorIs(t, err, ErrNoSlot)
	_, err = DeleteChild(nil, IndexStep(0))
	assert.ErrorIs(t, err, ErrNotContainer)
}

func TestStepString(t *testing.T) {
	assert.Equal(t, "[3]", IndexStep(3).String())
	assert.Equal(t, "name", KeyStep("name").String())
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "null", Describe(nil))
	assert.Equal(t, "object with 1 keys", Describe(Of("a", 1)))
	assert.Equal(t, "object with 0 keys", Describe(map[string]any{}))
	assert.Equal(t, "sequence of 2 elements", Describe([]any{1, 2}))
	assert.Equal(t, "string", Describe("x"))
	assert.True(t, IsContainer([]any{}))
	assert.False(t, IsContainer(1))
}

func TestCloneIsDeep(t *testing.T) {
	orig := Of("b", []any{Of("x", 1)}, "a", map[string]any{"k": []any{"v"}})
	cp := Clone(orig).(*Object)

	assert.Equal(t, orig, cp)
	assert.Equal(t, []string{"b", "a"}, cp.Keys())

	inner, _ := cp.Get("b")
	inner.([]any)[0].(*Object).Set("x", 2)
	cp.Set("c", true)

	origInner, _ := orig.Get("b")
	assert.Equal(t, Of("x", 1), origInner.([]any)[0])
	assert.False(t, orig.Has("c"))
	assert.Equal(t, "s", Clone("s"))
	assert.Nil(t, Clone(nil))
}

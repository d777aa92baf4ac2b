package limiter

import (
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/refpath/pkg/testkit"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
		errMsg  string
	}{
		{name: "valid limit only", cfg: Config{Limit: 10}},
		{name: "valid offset only", cfg: Config{Offset: 5}},
		{name: "valid limit and offset", cfg: Config{Limit: 10, Offset: 5}},
		{name: "zero values valid", cfg: Config{}},
		{name: "negative limit invalid", cfg: Config{Limit: -1}, wantErr: true, errMsg: "--limit must be non-negative"},
		{name: "negative offset invalid", cfg: Config{Offset: -1}, wantErr: true, errMsg: "--offset must be non-negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestConfigIsActive(t *testing.T) {
	assert.False(t, Config{}.IsActive())
	assert.True(t, Config{Limit: 1}.IsActive())
	assert.True(t, Config{Offset: 1}.IsActive())
}

// counting yields 1..n and tracks how many values were pulled.
func counting(spy *testkit.CallSpy, n int) iter.Seq2[int, error] {
	return func(yield func(int, error) bool) {
		for i := 1; i <= n; i++ {
			spy.Track()
			if !yield(i, nil) {
				return
			}
		}
	}
}

func collect(t *testing.T, seq iter.Seq2[int, error]) []int {
	t.Helper()
	var out []int
	for v, err := range seq {
		require.NoError(t, err)
		out = append(out, v)
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		want  []int
		pulls int
	}{
		{name: "inactive", cfg: Config{}, want: []int{1, 2, 3, 4, 5}, pulls: 5},
		{name: "limit", cfg: Config{Limit: 2}, want: []int{1, 2}, pulls: 2},
		{name: "offset", cfg: Config{Offset: 3}, want: []int{4, 5}, pulls: 5},
		{name: "offset and limit", cfg: Config{Offset: 1, Limit: 2}, want: []int{2, 3}, pulls: 3},
		{name: "offset past end", cfg: Config{Offset: 9}, want: nil, pulls: 5},
		{name: "limit past end", cfg: Config{Limit: 9}, want: []int{1, 2, 3, 4, 5}, pulls: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spy := testkit.NewCallSpy(t).SetMaxExpectedCalls(tt.pulls)
			got := collect(t, Apply(tt.cfg, counting(spy, 5)))
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.pulls, spy.Calls())
		})
	}
}

func TestApplyPassesErrorsThrough(t *testing.T) {
	boom := errors.New("boom")
	src := func(yield func(int, error) bool) {
		if !yield(1, nil) {
			return
		}
		if !yield(0, boom) {
			return
		}
		yield(2, nil)
	}

	var vals []int
	var errs []error
	for v, err := range Apply(Config{Offset: 1}, src) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		vals = append(vals, v)
	}
	assert.Equal(t, []int{2}, vals)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], boom)
}

func TestApplyConsumerStops(t *testing.T) {
	spy := testkit.NewCallSpy(t).SetMaxExpectedCalls(1)
	for range Apply(Config{Limit: 3}, counting(spy, 5)) {
		break
	}
	assert.Equal(t, 1, spy.Calls())
}

func TestSlice(t *testing.T) {
	items := []string{"a", "b", "c", "d"}
	assert.Equal(t, items, Slice(Config{}, items))
	assert.Equal(t, []string{"a", "b"}, Slice(Config{Limit: 2}, items))
	assert.Equal(t, []string{"c", "d"}, Slice(Config{Offset: 2}, items))
	assert.Equal(t, []string{"b"}, Slice(Config{Offset: 1, Limit: 1}, items))
	assert.Empty(t, Slice(Config{Offset: 10}, items))
}

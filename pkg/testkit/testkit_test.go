package testkit

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type exampleEntity struct {
	ID   string
	Name string
}

func entityID(e *exampleEntity) (string, bool) {
	return e.ID, e.ID != ""
}

func TestRepositoryOperations(t *testing.T) {
	repo := NewRepository(entityID)
	first := &exampleEntity{ID: "1", Name: "first"}

	require.NoError(t, repo.Add(first))
	require.NoError(t, repo.Add(&exampleEntity{ID: "2", Name: "second"}))

	got, ok := repo.FindByID("1")
	require.True(t, ok)
	assert.Same(t, first, got)

	_, ok = repo.FindByID("3")
	assert.False(t, ok)

	found, ok := repo.FindBy(func(e *exampleEntity) bool { return strings.HasPrefix(e.Name, "sec") })
	require.True(t, ok)
	assert.Equal(t, "2", found.ID)

	_, ok = repo.FindBy(func(e *exampleEntity) bool { return false })
	assert.False(t, ok)

	all := repo.FindAll()
	require.Len(t, all, 2)
	assert.Equal(t, "1", all[0].ID)
	assert.Equal(t, "2", all[1].ID)

	repo.Clear()
	assert.Equal(t, 0, repo.Len())
	assert.Empty(t, repo.FindAll())
}

func TestRepositoryMissingKey(t *testing.T) {
	repo := NewRepository(entityID)
	assert.ErrorIs(t, repo.Add(&exampleEntity{Name: "anonymous"}), ErrMissingKey)

	noKeys := NewRepository[int, string](nil)
	assert.ErrorIs(t, noKeys.Add("x"), ErrMissingKey)
	noKeys.AddWithKey(7, "x")
	v, ok := noKeys.FindByID(7)
	require.True(t, ok)
	assert.Equal(t, "x", v)
}

func TestRepositoryReplaceKeepsPosition(t *testing.T) {
	repo := NewRepository[string, int](nil)
	repo.AddWithKey("a", 1)
	repo.AddWithKey("b", 2)
	repo.AddWithKey("a", 3)

	assert.Equal(t, []int{3, 2}, repo.FindAll())
	assert.Equal(t, 2, repo.Len())
}

// recordingT captures assertion failures instead of failing the test.
type recordingT struct {
	messages []string
}

func (r *recordingT) Errorf(format string, args ...any) {
	r.messages = append(r.messages, fmt.Sprintf(format, args...))
}

type tracked struct {
	spy *CallSpy
}

func (s *tracked) someMethod() {
	s.spy.Track()
}

func TestCallSpyFailsOnceMaximumExceeded(t *testing.T) {
	rec := &recordingT{}
	svc := &tracked{spy: NewCallSpy(rec).SetMaxExpectedCalls(2)}

	svc.someMethod()
	svc.someMethod()
	assert.Empty(t, rec.messages)

	svc.someMethod()
	require.Len(t, rec.messages, 1)
	assert.Contains(t, rec.messages[0], "[testkit.CallSpy] Number of calls exceeded (3 of 2 allowed) in method testkit.(*tracked).someMethod and location testkit_test.go:")
	assert.Equal(t, 3, svc.spy.Calls())
}

func TestCallSpyWithoutMaximumNeverFails(t *testing.T) {
	rec := &recordingT{}
	spy := NewCallSpy(rec)
	for i := 0; i < 10; i++ {
		assert.True(t, spy.Track())
	}
	assert.Empty(t, rec.messages)
	assert.Equal(t, 10, spy.Calls())
}

func TestCallSpyTrackReportsFailure(t *testing.T) {
	rec := &recordingT{}
	spy := NewCallSpy(rec).SetMaxExpectedCalls(0)
	assert.False(t, spy.Track())
	assert.Len(t, rec.messages, 1)
}

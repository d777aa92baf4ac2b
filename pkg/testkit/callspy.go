package testkit

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/stretchr/testify/assert"
)

const spyTag = "[testkit.CallSpy]"

// CallSpy counts calls and fails the test once a maximum is exceeded.
//
//	spy := testkit.NewCallSpy(t).SetMaxExpectedCalls(2)
//	fake := func() { spy.Track() }
type CallSpy struct {
	t      assert.TestingT
	calls  int
	max    int
	hasMax bool
}

// NewCallSpy returns a spy that reports failures to t.
func NewCallSpy(t assert.TestingT) *CallSpy {
	return &CallSpy{t: t}
}

// SetMaxExpectedCalls sets how many calls are allowed before Track fails.
func (s *CallSpy) SetMaxExpectedCalls(n int) *CallSpy {
	s.max = n
	s.hasMax = true
	return s
}

// Track records one call. It reports a failure naming the calling function
// and its location once the call count goes past the maximum, and returns
// false in that case.
func (s *CallSpy) Track() bool {
	if h, ok := s.t.(interface{ Helper() }); ok {
		h.Helper()
	}
	s.calls++
	if !s.hasMax || s.calls <= s.max {
		return true
	}
	method, location := callSite(2)
	return assert.Fail(s.t, fmt.Sprintf("%s Number of calls exceeded (%d of %d allowed) in method %s and location %s",
		spyTag, s.calls, s.max, method, location))
}

// Calls returns the number of tracked calls.
func (s *CallSpy) Calls() int {
	return s.calls
}

// callSite names the function skip frames above the caller of callSite.
func callSite(skip int) (string, string) {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown", "unknown"
	}
	name := "unknown"
	if fn := runtime.FuncForPC(pc); fn != nil {
		name = fn.Name()
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
	}
	return name, fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

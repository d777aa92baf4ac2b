// Package limiter applies --limit/--offset windows to match streams.
package limiter

import (
	"fmt"
	"iter"
)

// Config holds the record-limiting parameters.
type Config struct {
	Limit  int // Keep only this many records (0 = unlimited)
	Offset int // Skip the first N records (0 = no skip)
}

// Validate rejects negative values.
func (c Config) Validate() error {
	if c.Limit < 0 {
		return fmt.Errorf("--limit must be non-negative, got %d", c.Limit)
	}
	if c.Offset < 0 {
		return fmt.Errorf("--offset must be non-negative, got %d", c.Offset)
	}
	return nil
}

// IsActive returns true if any limiting is configured.
func (c Config) IsActive() bool {
	return c.Limit > 0 || c.Offset > 0
}

// Apply windows seq. Records before Offset are pulled and dropped; once Limit
// records have been passed on the source is not pulled again. Errors are
// always passed through and do not count as records.
func Apply[T any](c Config, seq iter.Seq2[T, error]) iter.Seq2[T, error] {
	if !c.IsActive() {
		return seq
	}
	return func(yield func(T, error) bool) {
		seen, kept := 0, 0
		for v, err := range seq {
			if err != nil {
				if !yield(v, err) {
					return
				}
				continue
			}
			seen++
			if seen <= c.Offset {
				continue
			}
			if !yield(v, nil) {
				return
			}
			kept++
			if c.Limit > 0 && kept >= c.Limit {
				return
			}
		}
	}
}

// Slice applies the window to an already materialised slice.
func Slice[T any](c Config, items []T) []T {
	if !c.IsActive() {
		return items
	}
	start := min(c.Offset, len(items))
	end := len(items)
	if c.Limit > 0 {
		end = min(start+c.Limit, len(items))
	}
	return items[start:end]
}

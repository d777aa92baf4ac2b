// Package pathexpr parses the small path language used to address nodes in
// nested map/slice data.
//
// Path example: $.items[*]."display name"[0]
//
// An expression may start with the root marker '$'. Properties are introduced
// by '.', followed by an alphanumeric name, a double-quoted name (\" escapes a
// quote) or the wildcard '*'. Brackets hold a decimal index or '*'. The lone
// root marker "$" and the lone separator "." are accepted and address the root.
package pathexpr

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const (
	tokenRoot         = '$'
	tokenSeparator    = '.'
	tokenBracketOpen  = '['
	tokenBracketClose = ']'
	tokenQuote        = '"'
	tokenEscape       = '\\'
	tokenWildcard     = '*'
)

// Expression is a validated path expression. The zero value addresses the root.
type Expression struct {
	raw      string
	segments []Segment
}

// Parse validates input and splits it into segments.
func Parse(input string) (Expression, error) {
	if !Validate(input) {
		return Expression{}, &InvalidExpressionError{Input: input}
	}
	segments, err := split(input)
	if err != nil {
		return Expression{}, &InvalidExpressionError{Input: input, Reason: err.Error()}
	}
	return Expression{raw: input, segments: segments}, nil
}

// MustParse is like Parse but panics on invalid input.
func MustParse(input string) Expression {
	e, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return e
}

// Segments returns a copy of the parsed segments in traversal order.
func (e Expression) Segments() []Segment {
	return slices.Clone(e.segments)
}

// Len returns the number of segments.
func (e Expression) Len() int {
	return len(e.segments)
}

// IsRoot reports whether the expression has no segments.
func (e Expression) IsRoot() bool {
	return len(e.segments) == 0
}

// HasWildcard reports whether any segment is a wildcard.
func (e Expression) HasWildcard() bool {
	return slices.ContainsFunc(e.segments, Segment.IsWildcard)
}

// String returns the expression text as it was parsed.
func (e Expression) String() string {
	if e.raw == "" {
		return string(tokenRoot)
	}
	return e.raw
}

// Validate reports whether input is a well-formed path expression.
//
// The scan tracks three modes: inside brackets, inside a property name and
// inside a quoted name. Escapes look ahead a single character.
func Validate(input string) bool {
	if input == string(tokenRoot) || input == string(tokenSeparator) {
		return true
	}
	n := len(input)
	if n == 0 {
		return false
	}

	i := 0
	if input[0] == tokenRoot {
		i++
	}
	if i >= n || (input[i] != tokenSeparator && input[i] != tokenBracketOpen) {
		return false
	}

	inBrackets := false
	inProperty := false
	inQuotes := false
	quotedLen := 0

	for ; i < n; i++ {
		c := input[i]
		var prev byte
		if i > 0 {
			prev = input[i-1]
		}

		if inQuotes {
			switch {
			case c == tokenEscape && i+1 < n && input[i+1] == tokenQuote:
				i++
				quotedLen++
			case c == tokenQuote:
				if quotedLen == 0 {
					return false
				}
				inQuotes = false
				inProperty = false
			default:
				quotedLen++
			}
			continue
		}

		switch c {
		case tokenQuote:
			// a quoted name must open right after its separator
			if inBrackets || !inProperty || prev != tokenSeparator {
				return false
			}
			inQuotes = true
			quotedLen = 0
		case tokenSeparator:
			if inBrackets || prev == tokenSeparator {
				return false
			}
			inProperty = true
		case tokenBracketOpen:
			if inBrackets || (inProperty && prev == tokenSeparator) {
				return false
			}
			inProperty = false
			inBrackets = true
		case tokenBracketClose:
			if !inBrackets || prev == tokenBracketOpen {
				return false
			}
			inBrackets = false
		case tokenWildcard:
			var next byte
			if i+1 < n {
				next = input[i+1]
			}
			switch {
			case inBrackets:
				if prev != tokenBracketOpen || next != tokenBracketClose {
					return false
				}
			case inProperty:
				if prev != tokenSeparator {
					return false
				}
				if next != 0 && next != tokenSeparator && next != tokenBracketOpen {
					return false
				}
				inProperty = false
			default:
				return false
			}
		default:
			if inBrackets {
				if !isDigit(c) {
					return false
				}
				continue
			}
			if !inProperty || !isAlnum(c) {
				return false
			}
		}
	}

	return !inBrackets && !inQuotes && input[n-1] != tokenSeparator
}

// split turns validated input into segments. Callers must run Validate first;
// malformed input gives undefined results.
func split(input string) ([]Segment, error) {
	var segments []Segment
	var buf strings.Builder
	inBrackets := false

	flush := func() error {
		if buf.Len() == 0 {
			return nil
		}
		text := buf.String()
		buf.Reset()
		switch {
		case text == string(tokenWildcard) && inBrackets:
			segments = append(segments, Wildcard())
		case text == string(tokenWildcard):
			segments = append(segments, PropertyWildcard())
		case inBrackets:
			idx, err := strconv.Atoi(text)
			if err != nil {
				return fmt.Errorf("index %q out of range", text)
			}
			segments = append(segments, Index(idx))
		default:
			segments = append(segments, Property(text))
		}
		return nil
	}

	i := 0
	if strings.HasPrefix(input, string(tokenRoot)) {
		i++
	}
	for ; i < len(input); i++ {
		c := input[i]
		switch c {
		case tokenQuote:
			name, end := readQuoted(input, i+1)
			segments = append(segments, QuotedProperty(name))
			i = end
		case tokenSeparator, tokenBracketOpen:
			if err := flush(); err != nil {
				return nil, err
			}
			inBrackets = c == tokenBracketOpen
		case tokenBracketClose:
			if err := flush(); err != nil {
				return nil, err
			}
			inBrackets = false
		default:
			buf.WriteByte(c)
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return segments, nil
}

// readQuoted reads a quoted name starting at start (just past the opening
// quote) and returns the unescaped name and the index of the closing quote.
func readQuoted(input string, start int) (string, int) {
	var b strings.Builder
	i := start
	for ; i < len(input); i++ {
		c := input[i]
		if c == tokenEscape && i+1 < len(input) && input[i+1] == tokenQuote {
			b.WriteByte(tokenQuote)
			i++
			continue
		}
		if c == tokenQuote {
			break
		}
		b.WriteByte(c)
	}
	return b.String(), i
}

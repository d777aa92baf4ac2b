package pathexpr

import (
	"strconv"
	"strings"
)

// Kind identifies the type of a path segment.
type Kind uint8

const (
	// KindProperty is a bare identifier: .name
	KindProperty Kind = iota + 1
	// KindQuotedProperty is a double-quoted name: ."any text"
	KindQuotedProperty
	// KindIndex is a non-negative sequence index: [3]
	KindIndex
	// KindWildcard matches every key or element: .* or [*]
	KindWildcard
)

func (k Kind) String() string {
	switch k {
	case KindProperty:
		return "property"
	case KindQuotedProperty:
		return "quoted-property"
	case KindIndex:
		return "index"
	case KindWildcard:
		return "wildcard"
	default:
		return "unknown"
	}
}

// Segment is one step of a parsed path expression.
// Name is set for property kinds, Index for KindIndex. Dotted marks a
// wildcard written as .* rather than [*].
type Segment struct {
	Kind   Kind
	Name   string
	Index  int
	Dotted bool
}

// Property returns a bare property segment.
func Property(name string) Segment {
	return Segment{Kind: KindProperty, Name: name}
}

// QuotedProperty returns a quoted property segment.
func QuotedProperty(name string) Segment {
	return Segment{Kind: KindQuotedProperty, Name: name}
}

// Index returns an index segment.
func Index(n int) Segment {
	return Segment{Kind: KindIndex, Index: n}
}

// Wildcard returns the bracket wildcard segment: [*]
func Wildcard() Segment {
	return Segment{Kind: KindWildcard}
}

// PropertyWildcard returns the wildcard segment written after a separator: .*
func PropertyWildcard() Segment {
	return Segment{Kind: KindWildcard, Dotted: true}
}

// IsWildcard reports whether the segment matches every child.
func (s Segment) IsWildcard() bool {
	return s.Kind == KindWildcard
}

// String renders the segment back into expression syntax.
func (s Segment) String() string {
	switch s.Kind {
	case KindProperty, KindQuotedProperty:
		return FormatName(s.Name)
	case KindIndex:
		return "[" + strconv.Itoa(s.Index) + "]"
	case KindWildcard:
		if s.Dotted {
			return string(tokenSeparator) + string(tokenWildcard)
		}
		return "[*]"
	default:
		return ""
	}
}

// FormatSegments renders a segment list as an expression rooted at '$'.
func FormatSegments(segments []Segment) string {
	var b strings.Builder
	b.WriteByte(tokenRoot)
	for _, s := range segments {
		b.WriteString(s.String())
	}
	return b.String()
}

// FormatName renders a property access for name, quoting it when it is not a
// plain alphanumeric identifier.
func FormatName(name string) string {
	if isIdentifier(name) {
		return string(tokenSeparator) + name
	}
	var b strings.Builder
	b.Grow(len(name) + 3)
	b.WriteByte(tokenSeparator)
	b.WriteByte(tokenQuote)
	b.WriteString(strings.ReplaceAll(name, `"`, `\"`))
	b.WriteByte(tokenQuote)
	return b.String()
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !isAlnum(name[i]) {
			return false
		}
	}
	return true
}

func isAlnum(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

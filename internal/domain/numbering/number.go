package numbering

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxDepth bounds decimal nesting: "3", "3.1", "3.1.1". Anything deeper
// is refused outright rather than truncated.
const MaxDepth = 3

// Number is a row number: one integer base component plus up to two
// decimal suffix components. Comparison is numeric per component, never
// lexicographic, so 3.2 sorts before 3.10.
type Number struct {
	parts []int
}

// Base returns a single-component number.
func Base(n int) Number {
	return Number{parts: []int{n}}
}

// Parse reads a dot-separated row number.
func Parse(s string) (Number, error) {
	raw := strings.Split(strings.TrimSpace(s), ".")
	if len(raw) == 0 || raw[0] == "" {
		return Number{}, fmt.Errorf("%w: %q", ErrMalformedNumber, s)
	}
	if len(raw) > MaxDepth {
		return Number{}, fmt.Errorf("%w: %q", ErrDepthExceeded, s)
	}
	parts := make([]int, len(raw))
	for i, p := range raw {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Number{}, fmt.Errorf("%w: %q", ErrMalformedNumber, s)
		}
		parts[i] = n
	}
	return Number{parts: parts}, nil
}

func (n Number) String() string {
	if len(n.parts) == 0 {
		return ""
	}
	out := make([]string, len(n.parts))
	for i, p := range n.parts {
		out[i] = strconv.Itoa(p)
	}
	return strings.Join(out, ".")
}

// Depth returns the number of components.
func (n Number) Depth() int {
	return len(n.parts)
}

// IsZero reports an unassigned number.
func (n Number) IsZero() bool {
	return len(n.parts) == 0
}

// Compare orders numbers component by component.
func (n Number) Compare(o Number) int {
	for i := 0; i < len(n.parts) && i < len(o.parts); i++ {
		if n.parts[i] != o.parts[i] {
			if n.parts[i] < o.parts[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(n.parts) < len(o.parts):
		return -1
	case len(n.parts) > len(o.parts):
		return 1
	}
	return 0
}

// Child appends a decimal suffix component, refusing to exceed MaxDepth.
func (n Number) Child(seq int) (Number, error) {
	if len(n.parts) >= MaxDepth {
		return Number{}, fmt.Errorf("%w: cannot nest below %s", ErrDepthExceeded, n)
	}
	parts := make([]int, len(n.parts)+1)
	copy(parts, n.parts)
	parts[len(n.parts)] = seq
	return Number{parts: parts}, nil
}

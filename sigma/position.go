package sigma

import (
	"fmt"
	"strconv"
	"strings"
)

// Position is the path of a node from the root of a proposition tree. The
// root is "0"; the i-th child of a node at p is p followed by i. Hints for
// distributed signing are addressed by position.
type Position []int

// RootPosition is the position of the root node.
var RootPosition = Position{0}

// Child returns the position of the i-th child of p.
func (p Position) Child(i int) Position {
	c := make(Position, len(p)+1)
	copy(c, p)
	c[len(p)] = i
	return c
}

// Equal reports whether p and o address the same node.
func (p Position) Equal(o Position) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

func (p Position) String() string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, "-")
}

// ParsePosition parses the String form of a position.
func ParsePosition(s string) (Position, error) {
	if s == "" {
		return nil, fmt.Errorf("sigma: empty position")
	}
	parts := strings.Split(s, "-")
	p := make(Position, len(parts))
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("sigma: invalid position %q", s)
		}
		p[i] = v
	}
	return p, nil
}

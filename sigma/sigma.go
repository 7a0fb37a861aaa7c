// Package sigma defines the proposition trees produced by script reduction
// and consumed by the prover and the verifier.
//
// A SigmaBoolean is a closed sum type: two kinds of leaves (knowledge of a
// discrete logarithm, equality of two discrete logarithms), three
// connectives (AND, OR, k-of-n THRESHOLD) and a trivial constant.
package sigma

import (
	"errors"
	"fmt"
	"strings"

	"github.com/drand/kyber"
)

// MaxChildren bounds the arity of a threshold node: children are addressed by
// the nonzero byte values 1..255 when challenges are split.
const MaxChildren = 255

var (
	// ErrTooManyChildren is returned when a threshold has more than MaxChildren children.
	ErrTooManyChildren = errors.New("sigma: too many children in threshold")
	// ErrNoChildren is returned when a connective is built without children.
	ErrNoChildren = errors.New("sigma: connective without children")
)

// SigmaBoolean is a proposition a sigma proof is given for.
type SigmaBoolean interface {
	fmt.Stringer
	isSigmaBoolean()
}

// ProveDlog states knowledge of w such that H = g^w, g being the group generator.
type ProveDlog struct {
	H kyber.Point
}

// ProveDHTuple states knowledge of w such that U = G^w and V = H^w.
type ProveDHTuple struct {
	G, H, U, V kyber.Point
}

// CAnd holds when every child holds.
type CAnd struct {
	Children []SigmaBoolean
}

// COr holds when at least one child holds.
type COr struct {
	Children []SigmaBoolean
}

// CThreshold holds when at least K children hold.
type CThreshold struct {
	K        int
	Children []SigmaBoolean
}

// TrivialProp is a proposition decided without cryptography.
type TrivialProp struct {
	Value bool
}

var (
	// TrueProp is proven by the empty proof.
	TrueProp = TrivialProp{Value: true}
	// FalseProp cannot be proven.
	FalseProp = TrivialProp{Value: false}
)

func (ProveDlog) isSigmaBoolean()    {}
func (ProveDHTuple) isSigmaBoolean() {}
func (CAnd) isSigmaBoolean()         {}
func (COr) isSigmaBoolean()          {}
func (CThreshold) isSigmaBoolean()   {}
func (TrivialProp) isSigmaBoolean()  {}

func (p ProveDlog) String() string {
	return fmt.Sprintf("ProveDlog(%s)", p.H)
}

func (p ProveDHTuple) String() string {
	return fmt.Sprintf("ProveDHTuple(%s, %s, %s, %s)", p.G, p.H, p.U, p.V)
}

func (a CAnd) String() string {
	return "CAND(" + joinChildren(a.Children) + ")"
}

func (o COr) String() string {
	return "COR(" + joinChildren(o.Children) + ")"
}

func (t CThreshold) String() string {
	return fmt.Sprintf("CTHRESHOLD(%d, %s)", t.K, joinChildren(t.Children))
}

func (t TrivialProp) String() string {
	if t.Value {
		return "TrueProp"
	}
	return "FalseProp"
}

func joinChildren(children []SigmaBoolean) string {
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

// IsLeaf reports whether sb is a ProveDlog or ProveDHTuple.
func IsLeaf(sb SigmaBoolean) bool {
	switch sb.(type) {
	case ProveDlog, ProveDHTuple:
		return true
	default:
		return false
	}
}

// Children returns the direct children of a connective, nil otherwise.
func Children(sb SigmaBoolean) []SigmaBoolean {
	switch n := sb.(type) {
	case CAnd:
		return n.Children
	case COr:
		return n.Children
	case CThreshold:
		return n.Children
	default:
		return nil
	}
}

// Leaves returns the leaves of sb in depth-first, left-to-right order.
func Leaves(sb SigmaBoolean) []SigmaBoolean {
	var out []SigmaBoolean
	stack := []SigmaBoolean{sb}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if IsLeaf(n) {
			out = append(out, n)
			continue
		}
		children := Children(n)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return out
}

// Equal compares two propositions through their canonical encoding.
func Equal(a, b SigmaBoolean) bool {
	ab, err := Bytes(a)
	if err != nil {
		return false
	}
	bb, err := Bytes(b)
	if err != nil {
		return false
	}
	return string(ab) == string(bb)
}

package sigma

// NewAnd builds the conjunction of children. Trivially true children are
// dropped, a trivially false child makes the whole conjunction false, and a
// single remaining child is returned as is.
func NewAnd(children ...SigmaBoolean) SigmaBoolean {
	rest := make([]SigmaBoolean, 0, len(children))
	for _, c := range children {
		if t, ok := c.(TrivialProp); ok {
			if !t.Value {
				return FalseProp
			}
			continue
		}
		rest = append(rest, c)
	}
	switch len(rest) {
	case 0:
		return TrueProp
	case 1:
		return rest[0]
	default:
		return CAnd{Children: rest}
	}
}

// NewOr builds the disjunction of children. Trivially false children are
// dropped, a trivially true child makes the whole disjunction true, and a
// single remaining child is returned as is.
func NewOr(children ...SigmaBoolean) SigmaBoolean {
	rest := make([]SigmaBoolean, 0, len(children))
	for _, c := range children {
		if t, ok := c.(TrivialProp); ok {
			if t.Value {
				return TrueProp
			}
			continue
		}
		rest = append(rest, c)
	}
	switch len(rest) {
	case 0:
		return FalseProp
	case 1:
		return rest[0]
	default:
		return COr{Children: rest}
	}
}

// NewThreshold builds "at least k of children". Each trivially true child
// lowers the bound by one, trivially false children are dropped; the result
// collapses to a constant, an OR (k == 1) or an AND (k == n) when possible.
func NewThreshold(k int, children ...SigmaBoolean) (SigmaBoolean, error) {
	if len(children) > MaxChildren {
		return nil, ErrTooManyChildren
	}
	rest := make([]SigmaBoolean, 0, len(children))
	for _, c := range children {
		if t, ok := c.(TrivialProp); ok {
			if t.Value {
				k--
			}
			continue
		}
		rest = append(rest, c)
	}
	switch {
	case k <= 0:
		return TrueProp, nil
	case k > len(rest):
		return FalseProp, nil
	case k == 1:
		return NewOr(rest...), nil
	case k == len(rest):
		return NewAnd(rest...), nil
	default:
		return CThreshold{K: k, Children: rest}, nil
	}
}

// Provable reports whether sb can be proven by a party for which known
// returns true on exactly the leaves it can prove.
func Provable(sb SigmaBoolean, known func(leaf SigmaBoolean) bool) bool {
	switch n := sb.(type) {
	case TrivialProp:
		return n.Value
	case ProveDlog, ProveDHTuple:
		return known(n)
	case CAnd:
		for _, c := range n.Children {
			if !Provable(c, known) {
				return false
			}
		}
		return true
	case COr:
		for _, c := range n.Children {
			if Provable(c, known) {
				return true
			}
		}
		return false
	case CThreshold:
		count := 0
		for _, c := range n.Children {
			if Provable(c, known) {
				count++
			}
		}
		return count >= n.K
	default:
		return false
	}
}

package proof

import (
	"github.com/zutxo/sigma/cost"
	"github.com/zutxo/sigma/sigma"
)

// EstimateCost returns the cost of verifying a proof of sb, computed from
// its shape alone: group operations per leaf, challenge distribution per
// connective and hashing of the transcript.
func EstimateCost(sb sigma.SigmaBoolean) (cost.JitCost, error) {
	if _, ok := sb.(sigma.TrivialProp); ok {
		return 0, nil
	}
	acc := cost.NewUnlimited()
	transcript := 0
	stack := []sigma.SigmaBoolean{sb}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		var err error
		switch p := n.(type) {
		case sigma.ProveDlog:
			err = acc.Charge(cost.ProveDlogVerify)
			transcript += 6 + 2*p.H.MarshalSize()
		case sigma.ProveDHTuple:
			err = acc.Charge(cost.ProveDHTupleVerify)
			transcript += 6 + 6*p.G.MarshalSize()
		case sigma.CAnd:
			err = acc.ChargeItems(cost.ConnectiveVerify, len(p.Children))
			transcript += 4
		case sigma.COr:
			err = acc.ChargeItems(cost.ConnectiveVerify, len(p.Children))
			transcript += 4
		case sigma.CThreshold:
			err = acc.ChargeItems(cost.ThresholdVerify, len(p.Children))
			transcript += 6
		}
		if err != nil {
			return 0, err
		}
		stack = append(stack, sigma.Children(n)...)
	}
	if err := acc.ChargeItems(cost.FiatShamir, transcript); err != nil {
		return 0, err
	}
	return acc.Total(), nil
}

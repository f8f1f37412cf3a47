package pricing

import (
	"github.com/shopspring/decimal"

	"pricing-detective/core/types"
)

var hundred = decimal.NewFromInt(100)

// TierCost compares a tier's advertised price with the backend's estimate
// of what it really costs
type TierCost struct {
	Name   string
	Stated Amount
	True   Amount

	// Comparable is false when either side could not be parsed or the
	// currencies differ; Delta and Markup are zero then.
	Comparable bool

	// Delta is the monthly hidden cost, true minus stated
	Delta decimal.Decimal

	// Markup is Delta as a percentage of the stated monthly price.
	// It is zero when the stated price is free.
	Markup decimal.Decimal
}

// HasHiddenCost reports whether the true cost exceeds the advertised price
func (c TierCost) HasHiddenCost() bool {
	return c.Comparable && c.Delta.IsPositive()
}

// CompareTier parses both prices of a tier. It reports false when the tier
// carries no true cost estimate.
func CompareTier(tier types.TierAnalysis) (TierCost, bool) {
	trueText, ok := tier.TrueCost()
	if !ok {
		return TierCost{}, false
	}

	cost := TierCost{Name: tier.Name}
	stated, statedOK := ParseAmount(tier.StatedPrice)
	actual, actualOK := ParseAmount(trueText)
	cost.Stated = stated
	cost.True = actual
	if !statedOK || !actualOK {
		return cost, true
	}
	if stated.Currency != "" && actual.Currency != "" && stated.Currency != actual.Currency {
		return cost, true
	}

	cost.Comparable = true
	cost.Delta = actual.Monthly().Sub(stated.Monthly())
	// Sub-cent yearly prices round to a zero monthly price.
	if m := stated.Monthly(); !m.IsZero() {
		cost.Markup = cost.Delta.Div(m).Mul(hundred).Round(0)
	}
	return cost, true
}

// HiddenCosts returns the comparable tiers whose true cost exceeds the
// advertised price, in backend order
func HiddenCosts(result *types.AnalysisResult) []TierCost {
	if result == nil {
		return nil
	}
	var out []TierCost
	for _, tier := range result.Tiers {
		cost, ok := CompareTier(tier)
		if ok && cost.HasHiddenCost() {
			out = append(out, cost)
		}
	}
	return out
}

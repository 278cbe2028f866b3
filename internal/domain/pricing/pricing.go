// Package pricing computes order discounts and GST.
package pricing

import "github.com/shopspring/decimal"

var (
	hundred = decimal.NewFromInt(100)
	half    = decimal.New(5, -1)
)

// Tier grants Percent discount to totals at or above Threshold.
type Tier struct {
	Threshold decimal.Decimal
	Percent   int
}

// Policy holds the discount and tax parameters.
type Policy struct {
	// Tiers are checked in order; the first whose threshold the total
	// reaches sets the base discount.
	Tiers         []Tier
	PremiumBonus  int
	FestivalBonus int
	// MaxDiscount clamps the combined discount percentage.
	MaxDiscount int
	TaxRate     decimal.Decimal
}

// DefaultPolicy is the policy applied by the package-level functions.
var DefaultPolicy = Policy{
	Tiers: []Tier{
		{Threshold: decimal.NewFromInt(25_000), Percent: 10},
		{Threshold: decimal.NewFromInt(10_000), Percent: 5},
	},
	PremiumBonus:  5,
	FestivalBonus: 5,
	MaxDiscount:   25,
	TaxRate:       decimal.RequireFromString("0.18"),
}

// Quote is the full price breakdown for an order total.
type Quote struct {
	Subtotal        decimal.Decimal
	DiscountPercent int
	Discount        decimal.Decimal
	Taxable         decimal.Decimal
	GST             decimal.Decimal
	Total           decimal.Decimal
}

// DiscountPercentage returns the discount percentage under DefaultPolicy.
func DiscountPercentage(total decimal.Decimal, premium, festival bool) int {
	return DefaultPolicy.DiscountPercentage(total, premium, festival)
}

// GST returns the tax owed under DefaultPolicy.
func GST(total decimal.Decimal, premium, festival bool) decimal.Decimal {
	return DefaultPolicy.GST(total, premium, festival)
}

// QuoteFor returns the price breakdown under DefaultPolicy.
func QuoteFor(total decimal.Decimal, premium, festival bool) Quote {
	return DefaultPolicy.Quote(total, premium, festival)
}

// DiscountPercentage returns the tier discount plus any premium and festival
// bonuses, clamped at MaxDiscount.
func (p Policy) DiscountPercentage(total decimal.Decimal, premium, festival bool) int {
	percent := 0
	for _, tier := range p.Tiers {
		if total.GreaterThanOrEqual(tier.Threshold) {
			percent = tier.Percent
			break
		}
	}

	if premium {
		percent += p.PremiumBonus
	}
	if festival {
		percent += p.FestivalBonus
	}

	return min(percent, p.MaxDiscount)
}

// GST applies the discount to total and returns TaxRate of the discounted
// amount, rounded half-up to cents.
func (p Policy) GST(total decimal.Decimal, premium, festival bool) decimal.Decimal {
	percent := p.DiscountPercentage(total, premium, festival)
	return p.tax(discounted(total, percent))
}

// Quote returns the subtotal, discount, taxable amount, GST and grand total
// for the given total. Monetary fields are rounded to cents.
func (p Policy) Quote(total decimal.Decimal, premium, festival bool) Quote {
	percent := p.DiscountPercentage(total, premium, festival)
	taxable := discounted(total, percent)
	gst := p.tax(taxable)

	return Quote{
		Subtotal:        roundCents(total),
		DiscountPercent: percent,
		Discount:        roundCents(total.Sub(taxable)),
		Taxable:         roundCents(taxable),
		GST:             gst,
		Total:           roundCents(taxable.Add(gst)),
	}
}

func (p Policy) tax(amount decimal.Decimal) decimal.Decimal {
	return roundCents(amount.Mul(p.TaxRate))
}

// roundCents rounds half-up at the cent boundary: floor(v*100 + 0.5) / 100.
// Negative halves round toward positive infinity, so -0.045 becomes -0.04.
func roundCents(v decimal.Decimal) decimal.Decimal {
	return v.Mul(hundred).Add(half).Floor().Div(hundred)
}

// discounted returns total * (1 - percent/100) without rounding.
func discounted(total decimal.Decimal, percent int) decimal.Decimal {
	factor := hundred.Sub(decimal.NewFromInt(int64(percent))).Div(hundred)
	return total.Mul(factor)
}

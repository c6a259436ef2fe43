package cart

import "math"

const (
	freeShippingOver = 100.0
	flatShipping     = 10.0
	taxRate          = 0.08
)

// Summary is the order-summary box: shipping is free above the threshold,
// tax is a flat 8% of the subtotal.
type Summary struct {
	Subtotal float64
	Shipping float64
	Tax      float64
	Total    float64
}

func Summarize(subtotal float64) Summary {
	shipping := flatShipping
	if subtotal > freeShippingOver {
		shipping = 0
	}
	tax := round2(subtotal * taxRate)
	return Summary{
		Subtotal: round2(subtotal),
		Shipping: shipping,
		Tax:      tax,
		Total:    round2(subtotal + shipping + tax),
	}
}

func (s Summary) FreeShipping() bool { return s.Shipping == 0 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }

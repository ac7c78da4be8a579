package usage

import "strings"

// Price is the USD cost per million tokens.
type Price struct {
	Input       float64
	Output      float64
	CacheCreate float64
	CacheRead   float64
}

// Pricing is keyed by model family.
var Pricing = map[string]Price{
	"opus":   {Input: 15.0, Output: 75.0, CacheCreate: 18.75, CacheRead: 1.50},
	"sonnet": {Input: 3.0, Output: 15.0, CacheCreate: 3.75, CacheRead: 0.30},
	"haiku":  {Input: 0.80, Output: 4.0, CacheCreate: 1.0, CacheRead: 0.08},
}

// DefaultPrice applies to unknown models and to periods mixing families.
var DefaultPrice = Pricing["sonnet"]

// Family maps a model id such as "claude-sonnet-4-5-20250929" to its
// family. Unrecognized ids are returned unchanged.
func Family(model string) string {
	lower := strings.ToLower(model)
	for _, family := range []string{"opus", "sonnet", "haiku"} {
		if strings.Contains(lower, family) {
			return family
		}
	}
	return model
}

// Cost prices t. A single known family uses its own price; anything else
// uses DefaultPrice.
func Cost(t Tokens, families []string) float64 {
	price := DefaultPrice
	if len(families) == 1 {
		if p, ok := Pricing[families[0]]; ok {
			price = p
		}
	}
	const perMillion = 1_000_000.0
	return float64(t.Input)/perMillion*price.Input +
		float64(t.Output)/perMillion*price.Output +
		float64(t.CacheCreate)/perMillion*price.CacheCreate +
		float64(t.CacheRead)/perMillion*price.CacheRead
}

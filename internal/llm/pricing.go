package llm

import "strings"

// Price is what a hosted model charges per million tokens, in USD.
type Price struct {
	In  float64
	Out float64
}

// USD is the charge for one call's token counts.
func (p Price) USD(in, out int) float64 {
	return (float64(in)*p.In + float64(out)*p.Out) / 1e6
}

// PriceOf finds the price list entry for model. Dated or suffixed
// versions ("gemini-1.5-pro-002") use the longest listed prefix, and
// Ollama models ("name:tag") run locally for free. The second result is
// false for models with no known price.
func PriceOf(model string) (Price, bool) {
	if p, ok := prices[model]; ok {
		return p, true
	}
	if strings.Contains(model, ":") {
		return Price{}, true
	}
	best := ""
	for name := range prices {
		if len(name) > len(best) && strings.HasPrefix(model, name+"-") {
			best = name
		}
	}
	if best == "" {
		return Price{}, false
	}
	return prices[best], true
}

var prices = map[string]Price{
	"claude-haiku-4-5":         {1, 5},
	"claude-sonnet-4-20250514": {3, 15},

	"gpt-4.1":     {2, 8},
	"gpt-4o":      {2.5, 10},
	"gpt-4o-mini": {0.15, 0.6},

	"gemini-1.5-flash":     {0.075, 0.3},
	"gemini-1.5-flash-8b":  {0.0375, 0.15},
	"gemini-1.5-pro":       {1.25, 5},
	"gemini-2.0-flash":     {0.1, 0.4},
	"gemini-2.0-flash-exp": {0, 0},
}

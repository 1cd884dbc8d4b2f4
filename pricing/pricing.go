// Package pricing converts token counts into USD fees per provider and model.
package pricing

import (
	"log/slog"
	"strings"

	"github.com/theimaginaryfoundation/cha2hatena/summary/provider"
)

// TokenClass selects which price applies to a token count.
type TokenClass string

const (
	Input    TokenClass = "input"
	Output   TokenClass = "output"
	Thoughts TokenClass = "thoughts"
)

// Rate is a price pair in USD per million tokens.
type Rate struct {
	Input  float64
	Output float64
}

// Model is one model's pricing. When Above is set, requests with more than Threshold
// tokens are billed entirely at Above.
type Model struct {
	Base      Rate
	Threshold int64
	Above     *Rate
}

func (m Model) rateFor(tokens int64) Rate {
	if m.Above != nil && tokens > m.Threshold {
		return *m.Above
	}
	return m.Base
}

// Table is one provider's price list.
type Table struct {
	Default string
	Models  map[string]Model
}

// Tables holds list prices per provider. DeepSeek input uses the cache-miss price.
var Tables = map[provider.ID]Table{
	provider.Gemini: {
		Default: "gemini-2.5-pro",
		Models: map[string]Model{
			"gemini-2.5-flash": {Base: Rate{Input: 0.30, Output: 2.50}},
			"gemini-2.5-pro": {
				Base:      Rate{Input: 1.25, Output: 10.00},
				Threshold: 200_000,
				Above:     &Rate{Input: 2.50, Output: 15.00},
			},
		},
	},
	provider.DeepSeek: {
		Default: "deepseek-chat",
		Models: map[string]Model{
			"deepseek-chat":     {Base: Rate{Input: 0.28, Output: 0.42}},
			"deepseek-reasoner": {Base: Rate{Input: 0.28, Output: 0.42}},
		},
	},
}

const perMillion = 1_000_000

// Calculator prices usage against Tables.
type Calculator struct {
	Logger *slog.Logger
}

// Calculate prices tokens of class for model. Thoughts are billed at the output price.
// An unknown model falls back to the provider's default model with a warning.
func (c Calculator) Calculate(id provider.ID, model string, class TokenClass, tokens int64) float64 {
	if tokens <= 0 {
		return 0
	}
	m := c.lookup(id, model)
	rate := m.rateFor(tokens)
	price := rate.Input
	if class == Output || class == Thoughts {
		price = rate.Output
	}
	return float64(tokens) * price / perMillion
}

func (c Calculator) lookup(id provider.ID, model string) Model {
	table, ok := Tables[id]
	if !ok {
		c.logger().Warn("no price table for provider, using gemini", "provider", string(id))
		table = Tables[provider.Gemini]
	}
	if m, ok := table.Models[strings.ToLower(strings.TrimSpace(model))]; ok {
		return m
	}
	c.logger().Warn("unknown model, pricing as default", "provider", string(id), "model", model, "default", table.Default)
	return table.Models[table.Default]
}

func (c Calculator) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Calculate prices with the default logger.
func Calculate(id provider.ID, model string, class TokenClass, tokens int64) float64 {
	return Calculator{}.Calculate(id, model, class, tokens)
}

// Fees is the priced breakdown of one call. Output includes thoughts.
type Fees struct {
	Input  float64
	Output float64
	Total  float64
}

// Breakdown prices a whole call. Each token count selects its own tier.
func (c Calculator) Breakdown(id provider.ID, model string, u provider.Usage) Fees {
	in := c.Calculate(id, model, Input, u.InputTokens)
	out := c.Calculate(id, model, Output, u.OutputTokens) + c.Calculate(id, model, Thoughts, u.ThoughtsTokens)
	return Fees{Input: in, Output: out, Total: in + out}
}

// Breakdown prices a whole call with the default logger.
func Breakdown(id provider.ID, model string, u provider.Usage) Fees {
	return Calculator{}.Breakdown(id, model, u)
}

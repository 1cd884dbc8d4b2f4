package pricing

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/theimaginaryfoundation/cha2hatena/summary/provider"
)

func TestCalculate_ThoughtsBilledAsOutput(t *testing.T) {
	t.Parallel()

	for id, table := range Tables {
		for model := range table.Models {
			for _, n := range []int64{1, 1234, 200_000, 250_000} {
				require.Equal(t,
					Calculate(id, model, Output, n),
					Calculate(id, model, Thoughts, n),
					"%s/%s n=%d", id, model, n)
			}
		}
	}
}

func TestCalculate_TierBoundary(t *testing.T) {
	t.Parallel()

	require.InDelta(t, 200_000*1.25/1e6, Calculate(provider.Gemini, "gemini-2.5-pro", Input, 200_000), 1e-12)
	require.InDelta(t, 200_001*2.50/1e6, Calculate(provider.Gemini, "gemini-2.5-pro", Input, 200_001), 1e-12)
	require.InDelta(t, 200_000*10.0/1e6, Calculate(provider.Gemini, "gemini-2.5-pro", Output, 200_000), 1e-12)
	require.InDelta(t, 200_001*15.0/1e6, Calculate(provider.Gemini, "gemini-2.5-pro", Output, 200_001), 1e-12)
}

func TestCalculate_Flat(t *testing.T) {
	t.Parallel()

	require.InDelta(t, 0.30, Calculate(provider.Gemini, "gemini-2.5-flash", Input, 1_000_000), 1e-12)
	require.InDelta(t, 2.50, Calculate(provider.Gemini, "Gemini-2.5-Flash", Output, 1_000_000), 1e-12)
	require.InDelta(t, 0.28, Calculate(provider.DeepSeek, "deepseek-chat", Input, 1_000_000), 1e-12)
	require.InDelta(t, 0.42*3, Calculate(provider.DeepSeek, "deepseek-reasoner", Output, 3_000_000), 1e-12)
}

func TestCalculate_UnknownModelFallsBack(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	c := Calculator{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	got := c.Calculate(provider.Gemini, "gemini-9-ultra", Input, 1000)
	require.Equal(t, c.Calculate(provider.Gemini, "gemini-2.5-pro", Input, 1000), got)
	require.Contains(t, buf.String(), "unknown model")

	got = c.Calculate(provider.DeepSeek, "deepseek-v9", Output, 1000)
	require.Equal(t, c.Calculate(provider.DeepSeek, "deepseek-chat", Output, 1000), got)
}

func TestCalculate_NonPositiveTokens(t *testing.T) {
	t.Parallel()

	require.Zero(t, Calculate(provider.Gemini, "gemini-2.5-pro", Input, 0))
	require.Zero(t, Calculate(provider.DeepSeek, "deepseek-chat", Output, -5))
}

func TestBreakdown(t *testing.T) {
	t.Parallel()

	u := provider.Usage{InputTokens: 1_000_000, ThoughtsTokens: 500_000, OutputTokens: 500_000}
	f := Breakdown(provider.Gemini, "gemini-2.5-flash", u)
	require.InDelta(t, 0.30, f.Input, 1e-12)
	require.InDelta(t, 2.50, f.Output, 1e-12)
	require.InDelta(t, 2.80, f.Total, 1e-12)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/theimaginaryfoundation/cha2hatena/summary/provider"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "config.yaml", `
ai:
  provider: DeepSeek
  prompt: "以下の会話をブログ記事にしてください。"
  thoughts_level: high
  temperature: 0.7
paths:
  output_dir: out
transcript:
  gap_threshold: 1h
other:
  debug: true
hatena:
  publish: true
  author: someone
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, provider.DeepSeek, cfg.ProviderID())
	require.Equal(t, "deepseek-chat", cfg.AI.Model)
	require.InDelta(t, 0.7, cfg.Temperature(), 1e-9)
	require.Equal(t, filepath.Join("out", "ledger.csv"), cfg.Paths.Ledger)
	require.Equal(t, filepath.Join("out", "history.db"), cfg.Paths.History)
	require.True(t, cfg.Other.Debug)
	require.True(t, cfg.Hatena.Publish)
	require.True(t, cfg.DraftEntries())

	gap, err := cfg.Gap()
	require.NoError(t, err)
	require.Equal(t, time.Hour, gap)

	budget, err := cfg.ThinkingBudget()
	require.NoError(t, err)
	require.Equal(t, int32(24576), *budget)
}

func TestLoad_TOML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "config.toml", `
[ai]
model = "gemini-2.5-pro"
thoughts_level = "2048"

[transcript]
gap_threshold = "0"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, provider.Gemini, cfg.ProviderID())
	require.Equal(t, "gemini-2.5-pro", cfg.AI.Model)

	gap, err := cfg.Gap()
	require.NoError(t, err)
	require.Zero(t, gap)

	budget, err := cfg.ThinkingBudget()
	require.NoError(t, err)
	require.Equal(t, int32(2048), *budget)
}

func TestValidate_Defaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	require.NoError(t, cfg.Validate())
	require.Equal(t, "gemini", cfg.AI.Provider)
	require.Equal(t, "gemini-2.5-flash", cfg.AI.Model)
	require.InDelta(t, 1.1, cfg.Temperature(), 1e-9)
	require.Equal(t, "medium", cfg.AI.ThoughtsLevel)
	require.Equal(t, "outputs", cfg.Paths.OutputDir)
	require.Equal(t, filepath.Join("outputs", "app.log"), cfg.Paths.LogFile)

	gap, err := cfg.Gap()
	require.NoError(t, err)
	require.Equal(t, 3*time.Hour, gap)
}

func TestValidate_Rejects(t *testing.T) {
	t.Parallel()

	hot := 3.0
	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown provider", Config{AI: AIConfig{Provider: "openai"}}},
		{"temperature", Config{AI: AIConfig{Temperature: &hot}}},
		{"thoughts level", Config{AI: AIConfig{ThoughtsLevel: "extreme"}}},
		{"gap", Config{Transcript: TranscriptConfig{GapThreshold: "three hours"}}},
		{"negative gap", Config{Transcript: TranscriptConfig{GapThreshold: "-1h"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			require.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadSecrets(t *testing.T) {
	envFile := writeFile(t, ".env", "DEEPSEEK_API_KEY=sk-from-file\nHATENA_BASE_URL=https://blog.hatena.ne.jp/x/y/atom/\n")
	t.Setenv("DEEPSEEK_API_KEY", "")
	t.Setenv("HATENA_BASE_URL", "")
	t.Setenv("GEMINI_API_KEY", " g-from-env ")
	require.NoError(t, os.Unsetenv("DEEPSEEK_API_KEY"))
	require.NoError(t, os.Unsetenv("HATENA_BASE_URL"))

	s, err := LoadSecrets(envFile)
	require.NoError(t, err)
	require.Equal(t, "g-from-env", s.GeminiAPIKey)
	require.Equal(t, "sk-from-file", s.DeepSeekAPIKey)
	require.Equal(t, "https://blog.hatena.ne.jp/x/y/atom/", s.Hatena.BaseURL)

	key, err := s.APIKey(provider.DeepSeek)
	require.NoError(t, err)
	require.Equal(t, "sk-from-file", key)

	_, err = Secrets{}.APIKey(provider.Gemini)
	require.ErrorContains(t, err, "GEMINI_API_KEY")

	_, err = LoadSecrets(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
}

// Package config loads the run configuration from YAML or TOML and secrets from the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/theimaginaryfoundation/cha2hatena/chatlog"
	"github.com/theimaginaryfoundation/cha2hatena/summary/provider"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "config.yaml"

type Config struct {
	AI         AIConfig         `yaml:"ai" toml:"ai"`
	Paths      PathsConfig      `yaml:"paths" toml:"paths"`
	Transcript TranscriptConfig `yaml:"transcript" toml:"transcript"`
	Other      OtherConfig      `yaml:"other" toml:"other"`
	Hatena     HatenaConfig     `yaml:"hatena" toml:"hatena"`
}

type AIConfig struct {
	Provider      string   `yaml:"provider" toml:"provider"`
	Model         string   `yaml:"model" toml:"model"`
	Prompt        string   `yaml:"prompt" toml:"prompt"`
	ThoughtsLevel string   `yaml:"thoughts_level" toml:"thoughts_level"`
	Temperature   *float64 `yaml:"temperature" toml:"temperature"`
}

type PathsConfig struct {
	OutputDir string `yaml:"output_dir" toml:"output_dir"`
	Ledger    string `yaml:"ledger" toml:"ledger"`
	History   string `yaml:"history" toml:"history"`
	LogFile   string `yaml:"log_file" toml:"log_file"`
}

type TranscriptConfig struct {
	// GapThreshold is a Go duration string such as "3h" or "90m". "0" keeps every message.
	GapThreshold string `yaml:"gap_threshold" toml:"gap_threshold"`
}

type OtherConfig struct {
	Debug bool `yaml:"debug" toml:"debug"`
}

type HatenaConfig struct {
	Publish bool   `yaml:"publish" toml:"publish"`
	Author  string `yaml:"author" toml:"author"`
	Draft   *bool  `yaml:"draft" toml:"draft"`
}

const (
	defaultTemperature   = 1.1
	defaultThoughtsLevel = "medium"
	defaultOutputDir     = "outputs"
)

// Load reads path, choosing the decoder by extension (.toml, otherwise YAML), and
// validates the result. A missing file at DefaultPath yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	cfg := &Config{}
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && path == DefaultPath:
	case err != nil:
		return nil, fmt.Errorf("config.Load: read %s: %w", path, err)
	case strings.EqualFold(filepath.Ext(path), ".toml"):
		if _, err := toml.Decode(string(b), cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate fills defaults and rejects values that cannot be used.
func (c *Config) Validate() error {
	if c.AI.Provider == "" {
		c.AI.Provider = string(provider.Gemini)
	}
	id, err := provider.ParseID(c.AI.Provider)
	if err != nil {
		return fmt.Errorf("ai.provider: %w", err)
	}
	c.AI.Provider = string(id)
	c.AI.Model = strings.TrimSpace(c.AI.Model)
	if c.AI.Model == "" {
		c.AI.Model = provider.DefaultModel(id)
	}
	if c.AI.Temperature == nil {
		t := defaultTemperature
		c.AI.Temperature = &t
	}
	if *c.AI.Temperature < 0 || *c.AI.Temperature > 2 {
		return fmt.Errorf("ai.temperature must be between 0 and 2, got %v", *c.AI.Temperature)
	}
	c.AI.ThoughtsLevel = strings.ToLower(strings.TrimSpace(c.AI.ThoughtsLevel))
	if c.AI.ThoughtsLevel == "" {
		c.AI.ThoughtsLevel = defaultThoughtsLevel
	}
	if _, err := c.ThinkingBudget(); err != nil {
		return err
	}

	c.Paths.OutputDir = strings.TrimSpace(c.Paths.OutputDir)
	if c.Paths.OutputDir == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.Ledger == "" {
		c.Paths.Ledger = filepath.Join(c.Paths.OutputDir, "ledger.csv")
	}
	if c.Paths.History == "" {
		c.Paths.History = filepath.Join(c.Paths.OutputDir, "history.db")
	}
	if c.Paths.LogFile == "" {
		c.Paths.LogFile = filepath.Join(c.Paths.OutputDir, "app.log")
	}

	if strings.TrimSpace(c.Transcript.GapThreshold) == "" {
		c.Transcript.GapThreshold = chatlog.DefaultGap.String()
	}
	if _, err := c.Gap(); err != nil {
		return err
	}
	return nil
}

func (c *Config) ProviderID() provider.ID {
	return provider.ID(c.AI.Provider)
}

// Gap parses the transcript gap threshold.
func (c *Config) Gap() (time.Duration, error) {
	s := strings.TrimSpace(c.Transcript.GapThreshold)
	if s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("transcript.gap_threshold: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("transcript.gap_threshold must not be negative, got %s", s)
	}
	return d, nil
}

func (c *Config) Temperature() float64 {
	if c.AI.Temperature == nil {
		return defaultTemperature
	}
	return *c.AI.Temperature
}

var thinkingBudgets = map[string]int32{
	"off":     0,
	"low":     1024,
	"medium":  8192,
	"high":    24576,
	"dynamic": -1,
}

// ThinkingBudget maps ai.thoughts_level to a reasoning token budget. It accepts the
// named levels or a plain integer.
func (c *Config) ThinkingBudget() (*int32, error) {
	level := c.AI.ThoughtsLevel
	if level == "" {
		level = defaultThoughtsLevel
	}
	if b, ok := thinkingBudgets[level]; ok {
		return &b, nil
	}
	n, err := strconv.ParseInt(level, 10, 32)
	if err != nil || n < -1 {
		return nil, fmt.Errorf("ai.thoughts_level: want off|low|medium|high|dynamic or a token count, got %q", level)
	}
	b := int32(n)
	return &b, nil
}

// DraftEntries reports whether published entries stay drafts. Defaults to true.
func (c *Config) DraftEntries() bool {
	return c.Hatena.Draft == nil || *c.Hatena.Draft
}

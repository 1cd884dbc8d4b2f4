package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/theimaginaryfoundation/cha2hatena/hatena"
	"github.com/theimaginaryfoundation/cha2hatena/summary/provider"
)

// Secrets are credentials read from the environment, never from the config file.
type Secrets struct {
	GeminiAPIKey   string
	DeepSeekAPIKey string
	Hatena         hatena.Config
}

// LoadSecrets loads envFile into the process environment when it exists, without
// overriding variables already set, then reads the known keys.
func LoadSecrets(envFile string) (Secrets, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Secrets{}, fmt.Errorf("config.LoadSecrets: %s: %w", envFile, err)
		}
	}
	return Secrets{
		GeminiAPIKey:   env("GEMINI_API_KEY"),
		DeepSeekAPIKey: env("DEEPSEEK_API_KEY"),
		Hatena: hatena.Config{
			BaseURL:           env("HATENA_BASE_URL"),
			ConsumerKey:       env("HATENA_CONSUMER_KEY"),
			ConsumerSecret:    env("HATENA_CONSUMER_SECRET"),
			AccessToken:       env("HATENA_ACCESS_TOKEN"),
			AccessTokenSecret: env("HATENA_ACCESS_TOKEN_SECRET"),
		},
	}, nil
}

// APIKey returns the key for id, or an error naming the variable to set.
func (s Secrets) APIKey(id provider.ID) (string, error) {
	var key, name string
	switch id {
	case provider.DeepSeek:
		key, name = s.DeepSeekAPIKey, "DEEPSEEK_API_KEY"
	default:
		key, name = s.GeminiAPIKey, "GEMINI_API_KEY"
	}
	if key == "" {
		return "", fmt.Errorf("missing %s (set it in the environment or .env)", name)
	}
	return key, nil
}

func env(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}

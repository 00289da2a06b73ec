// Package config resolves routerchat settings from flags, the process
// environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Keys are named after the environment variables that set them, so a .env
// file and the real environment use the same spelling.
const (
	KeyAPIKey  = "openrouter_api_key"
	KeyBaseURL = "openrouter_base_url"
	KeyReferer = "openrouter_referer"
	KeyTitle   = "openrouter_title"
	KeyLogFile = "routerchat_log_file"
	KeyDebug   = "routerchat_debug"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultLogFile = "conversation_log.jsonl"
	DefaultEnvFile = ".env"
)

// ErrMissingAPIKey means no credential was found in any source.
var ErrMissingAPIKey = errors.New("config: OPENROUTER_API_KEY is not set (export it or add it to .env)")

// Config is the resolved process configuration. It is built once at startup
// and passed to the components that need it.
type Config struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
	Referer string `json:"referer,omitempty"`
	Title   string `json:"title,omitempty"`
	LogFile string `json:"log_file"`
	Debug   bool   `json:"debug"`
}

// SetDefaults registers default values and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyBaseURL, DefaultBaseURL)
	v.SetDefault(KeyLogFile, DefaultLogFile)
	v.SetDefault(KeyDebug, false)
	for _, k := range []string{KeyAPIKey, KeyBaseURL, KeyReferer, KeyTitle, KeyLogFile, KeyDebug} {
		_ = v.BindEnv(k, strings.ToUpper(k))
	}
}

// Load reads envFile (if it exists) into v and returns the resulting Config.
// Flags bound to v beforehand take precedence over the environment, which
// takes precedence over the file. A missing file is not an error. The
// returned Config is not validated; callers that need the credential call
// Validate.
func Load(v *viper.Viper, envFile string) (*Config, error) {
	SetDefaults(v)

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("config: read %s: %w", envFile, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: stat %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		APIKey:  strings.TrimSpace(v.GetString(KeyAPIKey)),
		BaseURL: strings.TrimSuffix(strings.TrimSpace(v.GetString(KeyBaseURL)), "/"),
		Referer: v.GetString(KeyReferer),
		Title:   v.GetString(KeyTitle),
		LogFile: v.GetString(KeyLogFile),
		Debug:   v.GetBool(KeyDebug),
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.LogFile == "" {
		cfg.LogFile = DefaultLogFile
	}
	return cfg, nil
}

// Validate reports ErrMissingAPIKey when no credential is configured.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// Redacted returns a copy safe to print: the key keeps only its last four
// characters.
func (c Config) Redacted() Config {
	switch n := len(c.APIKey); {
	case n == 0:
	case n <= 4:
		c.APIKey = strings.Repeat("*", n)
	default:
		c.APIKey = strings.Repeat("*", n-4) + c.APIKey[n-4:]
	}
	return c
}

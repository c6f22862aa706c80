// Package config loads the process configuration from the environment once
// at startup. The resulting struct is passed by reference into the
// collaborators; nothing reads the environment after Load returns.
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	Port       string `mapstructure:"port"`
	DevLogging bool   `mapstructure:"dev_logging"`

	NotionToken        string  `mapstructure:"notion_token"`
	NotionVersion      string  `mapstructure:"notion_version"`
	NotionBaseURL      string  `mapstructure:"notion_base_url"`
	NotionRateLimitRPS float64 `mapstructure:"notion_rate_limit_rps"`
	StatusFilter       string  `mapstructure:"status_filter"`

	GeminiAPIKey  string `mapstructure:"gemini_api_key"`
	GeminiModel   string `mapstructure:"gemini_model"`
	GeminiBaseURL string `mapstructure:"gemini_base_url"`

	EmailUser string `mapstructure:"email_user"`
	EmailPass string `mapstructure:"email_pass"`
	SMTPHost  string `mapstructure:"smtp_host"`
	SMTPPort  int    `mapstructure:"smtp_port"`

	PromptConfigPath string        `mapstructure:"prompt_config_path"`
	RetryMaxAttempts int           `mapstructure:"retry_max_attempts"`
	RetryDelay       time.Duration `mapstructure:"retry_delay"`
}

// Load reads the environment into a Config. Missing required values are
// reported by Validate, not here, so the caller can print them all at once.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "3000")
	v.SetDefault("dev_logging", false)
	v.SetDefault("notion_rate_limit_rps", 3.0)
	v.SetDefault("status_filter", "Debut")
	v.SetDefault("retry_max_attempts", 5)
	v.SetDefault("retry_delay", 5*time.Second)

	// AutomaticEnv alone does not surface env vars through Unmarshal; each
	// key has to be bound explicitly.
	for _, key := range []string{
		"port", "dev_logging",
		"notion_token", "notion_version", "notion_base_url", "notion_rate_limit_rps", "status_filter",
		"gemini_api_key", "gemini_model", "gemini_base_url",
		"email_user", "email_pass", "smtp_host", "smtp_port",
		"prompt_config_path", "retry_max_attempts", "retry_delay",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, errors.Wrapf(err, "bind env %s", key)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	return cfg, nil
}

// Validate reports every missing required setting.
func (c *Config) Validate() []error {
	var errs []error
	if strings.TrimSpace(c.NotionToken) == "" {
		errs = append(errs, errors.New("NOTION_TOKEN is required"))
	}
	if strings.TrimSpace(c.NotionVersion) == "" {
		errs = append(errs, errors.New("NOTION_VERSION is required"))
	}
	if strings.TrimSpace(c.GeminiAPIKey) == "" {
		errs = append(errs, errors.New("GEMINI_API_KEY is required"))
	}
	if strings.TrimSpace(c.EmailUser) == "" {
		errs = append(errs, errors.New("EMAIL_USER is required"))
	}
	if c.EmailPass == "" {
		errs = append(errs, errors.New("EMAIL_PASS is required"))
	}
	return errs
}

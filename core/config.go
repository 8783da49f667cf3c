package core

import (
	"fmt"
	"strings"
	"time"
)

type WebhookConfig struct {
	Secret string `koanf:"secret" mapstructure:"secret"`
	Path   string `koanf:"path" mapstructure:"path"`
	// AllowUntrusted bypasses the trust filter entirely; when set the filter
	// is never consulted, so an empty trust list does not block processing.
	AllowUntrusted bool `koanf:"allow_untrusted" mapstructure:"allow_untrusted"`
}

type DispatchConfig struct {
	Concurrency int           `koanf:"concurrency" mapstructure:"concurrency"`
	SendTimeout time.Duration `koanf:"send_timeout" mapstructure:"send_timeout"`
}

type LedgerConfig struct {
	// Retention <= 0 disables age-based cleanup.
	Retention       time.Duration `koanf:"retention" mapstructure:"retention"`
	CleanupInterval time.Duration `koanf:"cleanup_interval" mapstructure:"cleanup_interval"`
}

type Config struct {
	ServiceName string         `koanf:"service_name" mapstructure:"service_name"`
	Webhook     WebhookConfig  `koanf:"webhook" mapstructure:"webhook"`
	Dispatch    DispatchConfig `koanf:"dispatch" mapstructure:"dispatch"`
	Ledger      LedgerConfig   `koanf:"ledger" mapstructure:"ledger"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "repowatch",
		Webhook: WebhookConfig{
			Path: "/webhook",
		},
		Dispatch: DispatchConfig{
			Concurrency: 5,
			SendTimeout: 10 * time.Second,
		},
		Ledger: LedgerConfig{
			Retention:       72 * time.Hour,
			CleanupInterval: time.Hour,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if strings.TrimSpace(c.Webhook.Path) == "" || !strings.HasPrefix(strings.TrimSpace(c.Webhook.Path), "/") {
		return fmt.Errorf("core: webhook path must start with /")
	}
	if c.Dispatch.Concurrency <= 0 {
		return fmt.Errorf("core: dispatch concurrency must be positive")
	}
	if c.Dispatch.SendTimeout < 0 {
		return fmt.Errorf("core: dispatch send_timeout cannot be negative")
	}
	if c.Ledger.Retention > 0 && c.Ledger.CleanupInterval <= 0 {
		return fmt.Errorf("core: ledger cleanup_interval is required when retention is enabled")
	}
	return nil
}

// RetentionEnabled reports whether age-based ledger cleanup is configured.
func (c LedgerConfig) RetentionEnabled() bool {
	return c.Retention > 0
}

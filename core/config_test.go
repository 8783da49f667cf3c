package core

import (
	"context"
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestConfigValidate_RejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ServiceName = " "
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected missing service name error")
	}

	cfg = DefaultConfig()
	cfg.Webhook.Path = "webhook"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected webhook path error")
	}

	cfg = DefaultConfig()
	cfg.Dispatch.Concurrency = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected concurrency error")
	}

	cfg = DefaultConfig()
	cfg.Ledger.CleanupInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected cleanup interval error while retention is enabled")
	}
}

func TestLedgerConfig_RetentionEnabled(t *testing.T) {
	if (LedgerConfig{Retention: 0}).RetentionEnabled() {
		t.Fatalf("zero retention should be disabled")
	}
	if (LedgerConfig{Retention: -time.Hour}).RetentionEnabled() {
		t.Fatalf("negative retention should be disabled")
	}
	if !(LedgerConfig{Retention: time.Hour}).RetentionEnabled() {
		t.Fatalf("positive retention should be enabled")
	}
}

func TestGoOptionsResolver_RuntimeWinsOverLoaded(t *testing.T) {
	defaults := DefaultConfig()
	loaded := Config{
		Webhook:  WebhookConfig{Secret: "from-config"},
		Dispatch: DispatchConfig{Concurrency: 8},
	}
	runtime := Config{
		Webhook: WebhookConfig{Secret: "from-runtime"},
	}

	resolved, err := GoOptionsResolver{}.Resolve(defaults, loaded, runtime)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Webhook.Secret != "from-runtime" {
		t.Fatalf("expected runtime secret to win, got %q", resolved.Webhook.Secret)
	}
	if resolved.Dispatch.Concurrency != 8 {
		t.Fatalf("expected loaded concurrency to survive, got %d", resolved.Dispatch.Concurrency)
	}
	if resolved.Webhook.Path != defaults.Webhook.Path {
		t.Fatalf("expected default path to survive, got %q", resolved.Webhook.Path)
	}
}

func TestCfgxConfigProvider_AppliesRawOverDefaults(t *testing.T) {
	provider := NewCfgxConfigProvider(NewStaticRawConfigLoader(map[string]any{
		"webhook": map[string]any{
			"secret": "s3cret",
		},
	}))
	cfg, err := provider.Load(context.Background(), DefaultConfig())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Webhook.Secret != "s3cret" {
		t.Fatalf("expected raw secret applied, got %q", cfg.Webhook.Secret)
	}
	if cfg.Dispatch.Concurrency != 5 {
		t.Fatalf("expected defaults retained, got %d", cfg.Dispatch.Concurrency)
	}
}

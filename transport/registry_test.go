package transport

import (
	"context"
	"testing"

	"github.com/goliatone/go-repowatch/core"
)

type staticTransport struct {
	platform string
}

func (t staticTransport) Platform() string { return t.platform }

func (t staticTransport) Send(context.Context, core.PushTarget, core.Message) error {
	return nil
}

func TestRegistry_RegisterResolveAndListDeterministic(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(staticTransport{platform: "telegram"}); err != nil {
		t.Fatalf("register telegram transport: %v", err)
	}
	if err := registry.Register(staticTransport{platform: "discord"}); err != nil {
		t.Fatalf("register discord transport: %v", err)
	}

	resolved, err := registry.Resolve("Discord")
	if err != nil {
		t.Fatalf("resolve discord transport: %v", err)
	}
	if resolved.Platform() != "discord" {
		t.Fatalf("unexpected platform %q", resolved.Platform())
	}

	listed := registry.List()
	if len(listed) != 2 {
		t.Fatalf("expected 2 transports, got %d", len(listed))
	}
	if listed[0].Platform() != "discord" || listed[1].Platform() != "telegram" {
		t.Fatalf("expected deterministic sorted order, got %q and %q",
			listed[0].Platform(), listed[1].Platform())
	}

	if err := registry.Register(staticTransport{platform: "discord"}); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestRegistry_ResolveUnknownPlatformFails(t *testing.T) {
	registry := NewRegistry()
	if _, err := registry.Resolve("matrix"); err == nil {
		t.Fatalf("expected unknown platform error")
	}
}

func TestRegistry_FactoryBuildsAndCachesTransport(t *testing.T) {
	registry := NewRegistry()
	builds := 0
	if err := registry.RegisterFactory("slack", func(map[string]any) (core.Transport, error) {
		builds++
		return staticTransport{platform: "slack"}, nil
	}); err != nil {
		t.Fatalf("register transport factory: %v", err)
	}

	if _, err := registry.Resolve("slack"); err != nil {
		t.Fatalf("resolve slack transport: %v", err)
	}
	if _, err := registry.Resolve("slack"); err != nil {
		t.Fatalf("resolve slack transport again: %v", err)
	}
	if builds != 1 {
		t.Fatalf("expected factory to run once, ran %d times", builds)
	}
}

func TestUnsupportedTransport_FailsEverySend(t *testing.T) {
	unsupported := NewUnsupportedTransport("matrix", "no active channel")
	err := unsupported.Send(context.Background(), core.PushTarget{Platform: "matrix", ChannelID: "room-1"}, core.Message{})
	if err == nil {
		t.Fatalf("expected send to fail")
	}
}

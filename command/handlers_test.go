package command

import (
	"context"
	"testing"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-repowatch/core"
)

type stubMutatingService struct {
	trustRepoFn              func(ctx context.Context, repo string) (core.TrustedRepo, error)
	setTrustEnabledFn        func(ctx context.Context, repo string, enabled bool) (core.TrustedRepo, error)
	untrustRepoFn            func(ctx context.Context, repo string) error
	subscribeFn              func(ctx context.Context, req core.SubscribeRequest) (core.Subscription, error)
	setSubscriptionEventsFn  func(ctx context.Context, id string, events []core.EventKind) (core.Subscription, error)
	setSubscriptionEnabledFn func(ctx context.Context, id string, enabled bool) (core.Subscription, error)
	unsubscribeFn            func(ctx context.Context, req core.UnsubscribeRequest) error
	cleanupDeliveriesFn      func(ctx context.Context) (int, error)
}

func (s stubMutatingService) TrustRepo(ctx context.Context, repo string) (core.TrustedRepo, error) {
	return s.trustRepoFn(ctx, repo)
}

func (s stubMutatingService) SetTrustEnabled(ctx context.Context, repo string, enabled bool) (core.TrustedRepo, error) {
	return s.setTrustEnabledFn(ctx, repo, enabled)
}

func (s stubMutatingService) UntrustRepo(ctx context.Context, repo string) error {
	return s.untrustRepoFn(ctx, repo)
}

func (s stubMutatingService) Subscribe(ctx context.Context, req core.SubscribeRequest) (core.Subscription, error) {
	return s.subscribeFn(ctx, req)
}

func (s stubMutatingService) SetSubscriptionEvents(ctx context.Context, id string, events []core.EventKind) (core.Subscription, error) {
	return s.setSubscriptionEventsFn(ctx, id, events)
}

func (s stubMutatingService) SetSubscriptionEnabled(ctx context.Context, id string, enabled bool) (core.Subscription, error) {
	return s.setSubscriptionEnabledFn(ctx, id, enabled)
}

func (s stubMutatingService) Unsubscribe(ctx context.Context, req core.UnsubscribeRequest) error {
	return s.unsubscribeFn(ctx, req)
}

func (s stubMutatingService) CleanupDeliveries(ctx context.Context) (int, error) {
	return s.cleanupDeliveriesFn(ctx)
}

func TestTrustRepoCommand_ExecuteDelegatesAndStoresResult(t *testing.T) {
	expected := core.TrustedRepo{Repo: "octo/widgets", Enabled: true}
	called := false
	svc := stubMutatingService{
		trustRepoFn: func(_ context.Context, repo string) (core.TrustedRepo, error) {
			called = true
			if repo != "octo/widgets" {
				t.Fatalf("expected octo/widgets, got %q", repo)
			}
			return expected, nil
		},
	}

	cmd := NewTrustRepoCommand(svc)
	collector := gocmd.NewResult[core.TrustedRepo]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	if err := cmd.Execute(ctx, TrustRepoMessage{Repo: "octo/widgets"}); err != nil {
		t.Fatalf("execute trust: %v", err)
	}
	if !called {
		t.Fatalf("expected trust service invocation")
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if result.Repo != expected.Repo || !result.Enabled {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestSubscribeCommand_ExecuteStoresSubscription(t *testing.T) {
	expected := core.Subscription{ID: "sub_1", Repo: "octo/widgets"}
	svc := stubMutatingService{
		subscribeFn: func(_ context.Context, req core.SubscribeRequest) (core.Subscription, error) {
			if req.Platform != "discord" || req.ChannelID != "chan-1" {
				t.Fatalf("unexpected subscribe payload: %#v", req)
			}
			return expected, nil
		},
	}

	cmd := NewSubscribeCommand(svc)
	collector := gocmd.NewResult[core.Subscription]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err := cmd.Execute(ctx, SubscribeMessage{Request: core.SubscribeRequest{
		Platform:  "discord",
		ChannelID: "chan-1",
		Repo:      "octo/widgets",
	}})
	if err != nil {
		t.Fatalf("execute subscribe: %v", err)
	}
	result, ok := collector.Load()
	if !ok || result.ID != "sub_1" {
		t.Fatalf("expected stored subscription, got %#v ok=%v", result, ok)
	}
}

func TestUnsubscribeCommand_Delegates(t *testing.T) {
	called := false
	svc := stubMutatingService{
		unsubscribeFn: func(_ context.Context, req core.UnsubscribeRequest) error {
			called = true
			if req.Repo != "octo/widgets" {
				t.Fatalf("unexpected unsubscribe payload: %#v", req)
			}
			return nil
		},
	}
	cmd := NewUnsubscribeCommand(svc)
	err := cmd.Execute(context.Background(), UnsubscribeMessage{Request: core.UnsubscribeRequest{
		Platform:  "discord",
		ChannelID: "chan-1",
		Repo:      "octo/widgets",
	}})
	if err != nil {
		t.Fatalf("execute unsubscribe: %v", err)
	}
	if !called {
		t.Fatalf("expected unsubscribe invocation")
	}
}

func TestCleanupDeliveriesCommand_StoresPrunedCount(t *testing.T) {
	svc := stubMutatingService{
		cleanupDeliveriesFn: func(context.Context) (int, error) {
			return 3, nil
		},
	}
	cmd := NewCleanupDeliveriesCommand(svc)
	collector := gocmd.NewResult[int]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	if err := cmd.Execute(ctx, CleanupDeliveriesMessage{}); err != nil {
		t.Fatalf("execute cleanup: %v", err)
	}
	pruned, ok := collector.Load()
	if !ok || pruned != 3 {
		t.Fatalf("expected pruned count 3, got %d ok=%v", pruned, ok)
	}
}

func TestCommandMessages_Validate(t *testing.T) {
	if err := (TrustRepoMessage{Repo: "octo/widgets"}).Validate(); err != nil {
		t.Fatalf("validate trust message: %v", err)
	}
	if err := (TrustRepoMessage{Repo: "widgets"}).Validate(); err == nil {
		t.Fatalf("expected owner/name validation error")
	}
	if err := (SubscribeMessage{Request: core.SubscribeRequest{
		ChannelID: "chan-1",
		Repo:      "octo/widgets",
	}}).Validate(); err == nil {
		t.Fatalf("expected missing platform error")
	}
	if err := (SetSubscriptionEventsMessage{SubscriptionID: "sub_1"}).Validate(); err == nil {
		t.Fatalf("expected empty events error")
	}
	if err := (SetSubscriptionEventsMessage{
		SubscriptionID: "sub_1",
		Events:         []core.EventKind{"bogus"},
	}).Validate(); err == nil {
		t.Fatalf("expected unknown kind error")
	}
	if err := (CleanupDeliveriesMessage{}).Validate(); err != nil {
		t.Fatalf("validate cleanup message: %v", err)
	}
}

func TestCommands_RequireService(t *testing.T) {
	if err := (&TrustRepoCommand{}).Execute(context.Background(), TrustRepoMessage{Repo: "octo/widgets"}); err == nil {
		t.Fatalf("expected dependency error")
	}
}

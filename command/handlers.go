package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-repowatch/core"
)

type MutatingService interface {
	TrustRepo(ctx context.Context, repo string) (core.TrustedRepo, error)
	SetTrustEnabled(ctx context.Context, repo string, enabled bool) (core.TrustedRepo, error)
	UntrustRepo(ctx context.Context, repo string) error
	Subscribe(ctx context.Context, req core.SubscribeRequest) (core.Subscription, error)
	SetSubscriptionEvents(ctx context.Context, id string, events []core.EventKind) (core.Subscription, error)
	SetSubscriptionEnabled(ctx context.Context, id string, enabled bool) (core.Subscription, error)
	Unsubscribe(ctx context.Context, req core.UnsubscribeRequest) error
	CleanupDeliveries(ctx context.Context) (int, error)
}

type TrustRepoCommand struct {
	service MutatingService
}

func NewTrustRepoCommand(service MutatingService) *TrustRepoCommand {
	return &TrustRepoCommand{service: service}
}

func (c *TrustRepoCommand) Execute(ctx context.Context, msg TrustRepoMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: trust service is required")
	}
	out, err := c.service.TrustRepo(ctx, msg.Repo)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type SetTrustEnabledCommand struct {
	service MutatingService
}

func NewSetTrustEnabledCommand(service MutatingService) *SetTrustEnabledCommand {
	return &SetTrustEnabledCommand{service: service}
}

func (c *SetTrustEnabledCommand) Execute(ctx context.Context, msg SetTrustEnabledMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: trust service is required")
	}
	out, err := c.service.SetTrustEnabled(ctx, msg.Repo, msg.Enabled)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UntrustRepoCommand struct {
	service MutatingService
}

func NewUntrustRepoCommand(service MutatingService) *UntrustRepoCommand {
	return &UntrustRepoCommand{service: service}
}

func (c *UntrustRepoCommand) Execute(ctx context.Context, msg UntrustRepoMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: trust service is required")
	}
	return c.service.UntrustRepo(ctx, msg.Repo)
}

type SubscribeCommand struct {
	service MutatingService
}

func NewSubscribeCommand(service MutatingService) *SubscribeCommand {
	return &SubscribeCommand{service: service}
}

func (c *SubscribeCommand) Execute(ctx context.Context, msg SubscribeMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: subscription service is required")
	}
	out, err := c.service.Subscribe(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type SetSubscriptionEventsCommand struct {
	service MutatingService
}

func NewSetSubscriptionEventsCommand(service MutatingService) *SetSubscriptionEventsCommand {
	return &SetSubscriptionEventsCommand{service: service}
}

func (c *SetSubscriptionEventsCommand) Execute(ctx context.Context, msg SetSubscriptionEventsMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: subscription service is required")
	}
	out, err := c.service.SetSubscriptionEvents(ctx, msg.SubscriptionID, msg.Events)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type SetSubscriptionEnabledCommand struct {
	service MutatingService
}

func NewSetSubscriptionEnabledCommand(service MutatingService) *SetSubscriptionEnabledCommand {
	return &SetSubscriptionEnabledCommand{service: service}
}

func (c *SetSubscriptionEnabledCommand) Execute(ctx context.Context, msg SetSubscriptionEnabledMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: subscription service is required")
	}
	out, err := c.service.SetSubscriptionEnabled(ctx, msg.SubscriptionID, msg.Enabled)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UnsubscribeCommand struct {
	service MutatingService
}

func NewUnsubscribeCommand(service MutatingService) *UnsubscribeCommand {
	return &UnsubscribeCommand{service: service}
}

func (c *UnsubscribeCommand) Execute(ctx context.Context, msg UnsubscribeMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: subscription service is required")
	}
	return c.service.Unsubscribe(ctx, msg.Request)
}

type CleanupDeliveriesCommand struct {
	service MutatingService
}

func NewCleanupDeliveriesCommand(service MutatingService) *CleanupDeliveriesCommand {
	return &CleanupDeliveriesCommand{service: service}
}

func (c *CleanupDeliveriesCommand) Execute(ctx context.Context, msg CleanupDeliveriesMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: ledger service is required")
	}
	pruned, err := c.service.CleanupDeliveries(ctx)
	if err != nil {
		return err
	}
	storeResult(ctx, pruned)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}

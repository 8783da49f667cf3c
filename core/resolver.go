package core

import (
	"context"
	"fmt"
)

// TargetResolver maps a (repository, event kind) pair to the push targets of
// every enabled subscription covering that kind. Target order is unspecified.
type TargetResolver struct {
	store SubscriptionStore
}

func NewTargetResolver(store SubscriptionStore) (*TargetResolver, error) {
	if store == nil {
		return nil, fmt.Errorf("core: subscription store is required")
	}
	return &TargetResolver{store: store}, nil
}

func (r *TargetResolver) ResolveTargets(ctx context.Context, repo string, kind EventKind) ([]PushTarget, error) {
	if r == nil || r.store == nil {
		return nil, fmt.Errorf("core: target resolver is not configured")
	}
	repo = NormalizeRepo(repo)
	if repo == "" {
		return nil, fmt.Errorf("core: repository is required")
	}
	subscriptions, err := r.store.ListByRepo(ctx, repo)
	if err != nil {
		return nil, err
	}
	targets := make([]PushTarget, 0, len(subscriptions))
	for _, sub := range subscriptions {
		if !sub.Enabled || !sub.Wants(kind) {
			continue
		}
		targets = append(targets, PushTarget{
			Platform:  sub.Platform,
			ChannelID: sub.ChannelID,
			GuildID:   sub.GuildID,
			UserID:    sub.UserID,
		})
	}
	return targets, nil
}

package query

import (
	"context"

	"github.com/goliatone/go-repowatch/core"
)

type TrustReader interface {
	Get(ctx context.Context, repo string) (core.TrustedRepo, error)
	List(ctx context.Context) ([]core.TrustedRepo, error)
}

type SubscriptionReader interface {
	Get(ctx context.Context, id string) (core.Subscription, error)
	ListByChannel(ctx context.Context, platform, channelID string) ([]core.Subscription, error)
	ListByRepo(ctx context.Context, repo string) ([]core.Subscription, error)
}

type DeliveryReader interface {
	IsDelivered(ctx context.Context, deliveryID string) (bool, error)
}

type GetTrustedRepoQuery struct {
	reader TrustReader
}

func NewGetTrustedRepoQuery(reader TrustReader) *GetTrustedRepoQuery {
	return &GetTrustedRepoQuery{reader: reader}
}

func (q *GetTrustedRepoQuery) Query(ctx context.Context, msg GetTrustedRepoMessage) (core.TrustedRepo, error) {
	if q == nil || q.reader == nil {
		return core.TrustedRepo{}, queryDependencyError("query: trust reader is required")
	}
	return q.reader.Get(ctx, msg.Repo)
}

type ListTrustedReposQuery struct {
	reader TrustReader
}

func NewListTrustedReposQuery(reader TrustReader) *ListTrustedReposQuery {
	return &ListTrustedReposQuery{reader: reader}
}

func (q *ListTrustedReposQuery) Query(ctx context.Context, msg ListTrustedReposMessage) ([]core.TrustedRepo, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: trust reader is required")
	}
	return q.reader.List(ctx)
}

type GetSubscriptionQuery struct {
	reader SubscriptionReader
}

func NewGetSubscriptionQuery(reader SubscriptionReader) *GetSubscriptionQuery {
	return &GetSubscriptionQuery{reader: reader}
}

func (q *GetSubscriptionQuery) Query(ctx context.Context, msg GetSubscriptionMessage) (core.Subscription, error) {
	if q == nil || q.reader == nil {
		return core.Subscription{}, queryDependencyError("query: subscription reader is required")
	}
	return q.reader.Get(ctx, msg.SubscriptionID)
}

type ListSubscriptionsQuery struct {
	reader SubscriptionReader
}

func NewListSubscriptionsQuery(reader SubscriptionReader) *ListSubscriptionsQuery {
	return &ListSubscriptionsQuery{reader: reader}
}

func (q *ListSubscriptionsQuery) Query(
	ctx context.Context,
	msg ListSubscriptionsMessage,
) ([]core.Subscription, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: subscription reader is required")
	}
	return q.reader.ListByChannel(ctx, msg.Platform, msg.ChannelID)
}

type ListRepoSubscriptionsQuery struct {
	reader SubscriptionReader
}

func NewListRepoSubscriptionsQuery(reader SubscriptionReader) *ListRepoSubscriptionsQuery {
	return &ListRepoSubscriptionsQuery{reader: reader}
}

func (q *ListRepoSubscriptionsQuery) Query(
	ctx context.Context,
	msg ListRepoSubscriptionsMessage,
) ([]core.Subscription, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: subscription reader is required")
	}
	return q.reader.ListByRepo(ctx, msg.Repo)
}

type IsDeliveredQuery struct {
	reader DeliveryReader
}

func NewIsDeliveredQuery(reader DeliveryReader) *IsDeliveredQuery {
	return &IsDeliveredQuery{reader: reader}
}

func (q *IsDeliveredQuery) Query(ctx context.Context, msg IsDeliveredMessage) (bool, error) {
	if q == nil || q.reader == nil {
		return false, queryDependencyError("query: delivery reader is required")
	}
	return q.reader.IsDelivered(ctx, msg.DeliveryID)
}

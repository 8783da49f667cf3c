package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-repowatch/core"
)

var (
	_ gocmd.Querier[GetTrustedRepoMessage, core.TrustedRepo]          = (*GetTrustedRepoQuery)(nil)
	_ gocmd.Querier[ListTrustedReposMessage, []core.TrustedRepo]      = (*ListTrustedReposQuery)(nil)
	_ gocmd.Querier[GetSubscriptionMessage, core.Subscription]        = (*GetSubscriptionQuery)(nil)
	_ gocmd.Querier[ListSubscriptionsMessage, []core.Subscription]    = (*ListSubscriptionsQuery)(nil)
	_ gocmd.Querier[ListRepoSubscriptionsMessage, []core.Subscription] = (*ListRepoSubscriptionsQuery)(nil)
	_ gocmd.Querier[IsDeliveredMessage, bool]                         = (*IsDeliveredQuery)(nil)

	_ TrustReader        = (core.TrustStore)(nil)
	_ SubscriptionReader = (core.SubscriptionStore)(nil)
	_ DeliveryReader     = (core.DeliveryStore)(nil)
)

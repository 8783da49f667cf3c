package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[TrustRepoMessage]              = (*TrustRepoCommand)(nil)
	_ gocmd.Commander[SetTrustEnabledMessage]        = (*SetTrustEnabledCommand)(nil)
	_ gocmd.Commander[UntrustRepoMessage]            = (*UntrustRepoCommand)(nil)
	_ gocmd.Commander[SubscribeMessage]              = (*SubscribeCommand)(nil)
	_ gocmd.Commander[SetSubscriptionEventsMessage]  = (*SetSubscriptionEventsCommand)(nil)
	_ gocmd.Commander[SetSubscriptionEnabledMessage] = (*SetSubscriptionEnabledCommand)(nil)
	_ gocmd.Commander[UnsubscribeMessage]            = (*UnsubscribeCommand)(nil)
	_ gocmd.Commander[CleanupDeliveriesMessage]      = (*CleanupDeliveriesCommand)(nil)
)

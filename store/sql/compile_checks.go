package sqlstore

import (
	"github.com/goliatone/go-repowatch/core"
)

var (
	_ core.TrustStore        = (*TrustStore)(nil)
	_ core.TrustStore        = (*CachedTrustStore)(nil)
	_ core.SubscriptionStore = (*SubscriptionStore)(nil)
	_ core.DeliveryStore     = (*DeliveryStore)(nil)

	_ core.StoreProvider          = (*RepositoryFactory)(nil)
	_ core.RepositoryStoreFactory = (*RepositoryFactory)(nil)
)

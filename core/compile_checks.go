package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ DeliveryStore     = (*MemoryDeliveryLedger)(nil)
	_ TrustStore        = (*MemoryTrustStore)(nil)
	_ SubscriptionStore = (*MemorySubscriptionStore)(nil)
	_ StoreProvider     = (*MemoryStoreProvider)(nil)

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)

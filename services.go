package repowatch

import "github.com/goliatone/go-repowatch/core"

type Config = core.Config

type WebhookConfig = core.WebhookConfig

type DispatchConfig = core.DispatchConfig

type LedgerConfig = core.LedgerConfig

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies
type DeliveryStore = core.DeliveryStore
type TrustStore = core.TrustStore
type SubscriptionStore = core.SubscriptionStore
type StoreProvider = core.StoreProvider
type Transport = core.Transport
type TransportResolver = core.TransportResolver
type MetricsRecorder = core.MetricsRecorder

type Event = core.Event
type EventKind = core.EventKind
type Message = core.Message
type PushTarget = core.PushTarget
type TrustedRepo = core.TrustedRepo
type Subscription = core.Subscription
type DeliveryRecord = core.DeliveryRecord

type SubscribeRequest = core.SubscribeRequest
type UnsubscribeRequest = core.UnsubscribeRequest

var (
	WithLogger            = core.WithLogger
	WithLoggerProvider    = core.WithLoggerProvider
	WithMetricsRecorder   = core.WithMetricsRecorder
	WithErrorFactory      = core.WithErrorFactory
	WithErrorMapper       = core.WithErrorMapper
	WithPersistenceClient = core.WithPersistenceClient
	WithRepositoryFactory = core.WithRepositoryFactory
	WithConfigProvider    = core.WithConfigProvider
	WithOptionsResolver   = core.WithOptionsResolver
	WithDeliveryStore     = core.WithDeliveryStore
	WithTrustStore        = core.WithTrustStore
	WithSubscriptionStore = core.WithSubscriptionStore
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return core.Setup(cfg, opts...)
}

package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// DeliveryStore is the idempotency ledger for inbound webhook deliveries.
// Record inserts unconditionally; callers record exactly once per accepted
// request, strictly before fan-out begins.
type DeliveryStore interface {
	Record(ctx context.Context, in RecordDeliveryInput) (DeliveryRecord, error)
	IsDelivered(ctx context.Context, deliveryID string) (bool, error)
	Cleanup(ctx context.Context, before time.Time) (int, error)
}

// TrustStore holds the administrator-curated repository allow-list.
type TrustStore interface {
	Trust(ctx context.Context, repo string) (TrustedRepo, error)
	SetEnabled(ctx context.Context, repo string, enabled bool) (TrustedRepo, error)
	Untrust(ctx context.Context, repo string) error
	Get(ctx context.Context, repo string) (TrustedRepo, error)
	List(ctx context.Context) ([]TrustedRepo, error)
}

// SubscriptionStore holds delivery subscriptions keyed by
// (platform, channel_id, repo). Create is idempotent for that key.
type SubscriptionStore interface {
	Create(ctx context.Context, in CreateSubscriptionInput) (Subscription, error)
	Get(ctx context.Context, id string) (Subscription, error)
	GetBySession(ctx context.Context, platform, channelID, repo string) (Subscription, error)
	SetEnabled(ctx context.Context, id string, enabled bool) (Subscription, error)
	SetEvents(ctx context.Context, id string, events []EventKind) (Subscription, error)
	Remove(ctx context.Context, id string) error
	ListByRepo(ctx context.Context, repo string) ([]Subscription, error)
	ListByChannel(ctx context.Context, platform, channelID string) ([]Subscription, error)
}

type StoreProvider interface {
	DeliveryStore() DeliveryStore
	TrustStore() TrustStore
	SubscriptionStore() SubscriptionStore
}

type RepositoryStoreFactory interface {
	BuildStores(persistenceClient any) (StoreProvider, error)
}

// Transport delivers a rendered message to one target address on a single
// platform. Implementations impose their own per-send timeout.
type Transport interface {
	Platform() string
	Send(ctx context.Context, target PushTarget, message Message) error
}

// TransportResolver selects the transport registered for a target's platform.
type TransportResolver interface {
	Resolve(platform string) (Transport, error)
}

type JobExecutionMessage struct {
	JobID          string
	ScriptPath     string
	Parameters     map[string]any
	IdempotencyKey string
	DedupPolicy    string
}

type JobNackOptions struct {
	Delay      time.Duration
	Requeue    bool
	DeadLetter bool
	Reason     string
}

type JobEnqueuer interface {
	Enqueue(ctx context.Context, msg *JobExecutionMessage) error
}

type JobDelivery interface {
	Message() *JobExecutionMessage
	Ack(ctx context.Context) error
	Nack(ctx context.Context, opts JobNackOptions) error
}

type JobDequeuer interface {
	Dequeue(ctx context.Context) (JobDelivery, error)
}

type JobWorkerHook interface {
	OnStart(ctx context.Context, event JobWorkerEvent)
	OnSuccess(ctx context.Context, event JobWorkerEvent)
	OnFailure(ctx context.Context, event JobWorkerEvent)
	OnRetry(ctx context.Context, event JobWorkerEvent)
}

type JobWorkerEvent struct {
	Message   *JobExecutionMessage
	Attempt   int
	Delay     time.Duration
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}

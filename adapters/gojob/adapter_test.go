package gojob

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-repowatch/core"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
)

func TestMessageMappingRoundTrip(t *testing.T) {
	original := NewLedgerCleanupMessage(72*time.Hour, time.Unix(1_700_000_000, 0))

	converted := ToExecutionMessage(original)
	if converted == nil {
		t.Fatalf("expected converted message")
	}
	roundTrip := FromExecutionMessage(converted)
	if roundTrip.JobID != JobIDLedgerCleanup {
		t.Fatalf("expected job id %q, got %q", JobIDLedgerCleanup, roundTrip.JobID)
	}
	if roundTrip.IdempotencyKey != original.IdempotencyKey {
		t.Fatalf("expected idempotency key %q, got %q", original.IdempotencyKey, roundTrip.IdempotencyKey)
	}
	if roundTrip.DedupPolicy != "drop" {
		t.Fatalf("expected drop dedup policy, got %q", roundTrip.DedupPolicy)
	}
	if roundTrip.Parameters[ParamRetention] != "72h0m0s" {
		t.Fatalf("expected retention parameter to survive mapping, got %#v", roundTrip.Parameters)
	}
}

func TestLedgerCleanupMessage_BucketsByWindow(t *testing.T) {
	window := time.Unix(1_700_000_000, 0)
	first := NewLedgerCleanupMessage(time.Hour, window)
	second := NewLedgerCleanupMessage(time.Hour, window)
	if first.IdempotencyKey != second.IdempotencyKey {
		t.Fatalf("expected stable idempotency key per window")
	}
	next := NewLedgerCleanupMessage(time.Hour, window.Add(time.Hour))
	if next.IdempotencyKey == first.IdempotencyKey {
		t.Fatalf("expected distinct idempotency key per window")
	}
}

func TestEnqueueAndDequeueAdapters(t *testing.T) {
	ctx := context.Background()
	enqueuer := &stubQueueEnqueuer{}
	enqueueAdapter := NewEnqueuerAdapter(enqueuer)

	msg := NewLedgerCleanupMessage(72*time.Hour, time.Now().UTC())
	if err := enqueueAdapter.Enqueue(ctx, msg); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if enqueuer.last == nil || enqueuer.last.JobID != JobIDLedgerCleanup {
		t.Fatalf("expected mapped go-job message")
	}

	dequeuer := &stubQueueDequeuer{delivery: &stubQueueDelivery{msg: enqueuer.last}}
	dequeueAdapter := NewDequeuerAdapter(dequeuer, RetryPolicy{})
	delivery, err := dequeueAdapter.Dequeue(ctx)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	got := delivery.Message()
	if got == nil || got.JobID != JobIDLedgerCleanup {
		t.Fatalf("expected mapped repowatch message")
	}
	if err := delivery.Ack(ctx); err != nil {
		t.Fatalf("ack: %v", err)
	}
	if !dequeuer.delivery.(*stubQueueDelivery).acked {
		t.Fatalf("expected ack on underlying delivery")
	}
}

func TestRetryPolicy_NormalizeAttempt(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, MaxDelay: time.Minute, DeadLetterOnMax: true}

	normalized := policy.NormalizeAttempt(core.JobNackOptions{
		Delay:   5 * time.Minute,
		Requeue: true,
	}, 1)
	if normalized.Delay != time.Minute {
		t.Fatalf("expected delay capped at max, got %v", normalized.Delay)
	}
	if !normalized.Requeue || normalized.DeadLetter {
		t.Fatalf("expected requeue below max attempts, got %#v", normalized)
	}

	exhausted := policy.NormalizeAttempt(core.JobNackOptions{Requeue: true}, 3)
	if exhausted.Requeue {
		t.Fatalf("expected no requeue at max attempts")
	}
	if !exhausted.DeadLetter {
		t.Fatalf("expected dead letter at max attempts")
	}

	fallback := RetryPolicy{}.NormalizeAttempt(core.JobNackOptions{}, 0)
	if !fallback.Requeue {
		t.Fatalf("expected default requeue when neither flag set")
	}
}

func TestDeliveryAdapter_NackAppliesPolicy(t *testing.T) {
	underlying := &stubQueueDelivery{msg: &job.ExecutionMessage{JobID: JobIDLedgerCleanup}}
	adapter := NewDeliveryAdapter(underlying, RetryPolicy{MaxAttempts: 1, DeadLetterOnMax: true})

	if err := adapter.NackForAttempt(context.Background(), core.JobNackOptions{Requeue: true}, 1); err != nil {
		t.Fatalf("nack: %v", err)
	}
	if underlying.nackOpts.Requeue {
		t.Fatalf("expected requeue suppressed at max attempts")
	}
	if !underlying.nackOpts.DeadLetter {
		t.Fatalf("expected dead letter at max attempts")
	}
}

func TestLedgerCleanupHandler_AcksOnSuccess(t *testing.T) {
	service := &stubCleanupService{pruned: 4}
	handler, err := NewLedgerCleanupHandler(service, RetryPolicy{})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	delivery := &stubCoreDelivery{msg: NewLedgerCleanupMessage(time.Hour, time.Now())}
	if err := handler.Handle(context.Background(), delivery); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !delivery.acked {
		t.Fatalf("expected ack after successful cleanup")
	}
	if service.calls != 1 {
		t.Fatalf("expected one cleanup call, got %d", service.calls)
	}
}

func TestLedgerCleanupHandler_NacksOnFailure(t *testing.T) {
	service := &stubCleanupService{err: errors.New("db unavailable")}
	handler, err := NewLedgerCleanupHandler(service, RetryPolicy{})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	delivery := &stubCoreDelivery{msg: NewLedgerCleanupMessage(time.Hour, time.Now())}
	if err := handler.Handle(context.Background(), delivery); err == nil {
		t.Fatalf("expected cleanup error")
	}
	if delivery.acked {
		t.Fatalf("expected no ack on failure")
	}
	if !delivery.nackOpts.Requeue {
		t.Fatalf("expected requeue nack, got %#v", delivery.nackOpts)
	}
	if !strings.Contains(delivery.nackOpts.Reason, "db unavailable") {
		t.Fatalf("expected failure reason, got %q", delivery.nackOpts.Reason)
	}
}

func TestLedgerCleanupHandler_DeadLettersUnknownJob(t *testing.T) {
	handler, err := NewLedgerCleanupHandler(&stubCleanupService{}, RetryPolicy{})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	delivery := &stubCoreDelivery{msg: &core.JobExecutionMessage{JobID: "repowatch.other"}}
	if err := handler.Handle(context.Background(), delivery); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !delivery.nackOpts.DeadLetter {
		t.Fatalf("expected dead letter for unknown job id")
	}
}

type stubCleanupService struct {
	pruned int
	err    error
	calls  int
}

func (s *stubCleanupService) CleanupDeliveries(context.Context) (int, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	return s.pruned, nil
}

type stubQueueEnqueuer struct {
	last *job.ExecutionMessage
}

func (s *stubQueueEnqueuer) Enqueue(_ context.Context, msg *job.ExecutionMessage) error {
	s.last = msg
	return nil
}

type stubQueueDequeuer struct {
	delivery queue.Delivery
}

func (s *stubQueueDequeuer) Dequeue(context.Context) (queue.Delivery, error) {
	return s.delivery, nil
}

type stubQueueDelivery struct {
	msg      *job.ExecutionMessage
	acked    bool
	nackOpts queue.NackOptions
}

func (s *stubQueueDelivery) Message() *job.ExecutionMessage {
	return s.msg
}

func (s *stubQueueDelivery) Ack(context.Context) error {
	s.acked = true
	return nil
}

func (s *stubQueueDelivery) Nack(_ context.Context, opts queue.NackOptions) error {
	s.nackOpts = opts
	return nil
}

type stubCoreDelivery struct {
	msg      *core.JobExecutionMessage
	acked    bool
	nackOpts core.JobNackOptions
}

func (s *stubCoreDelivery) Message() *core.JobExecutionMessage {
	return s.msg
}

func (s *stubCoreDelivery) Ack(context.Context) error {
	s.acked = true
	return nil
}

func (s *stubCoreDelivery) Nack(_ context.Context, opts core.JobNackOptions) error {
	s.nackOpts = opts
	return nil
}

var _ core.JobDelivery = (*stubCoreDelivery)(nil)

package gojob

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-repowatch/core"
)

// CleanupService is the slice of the repowatch service the cleanup job needs.
type CleanupService interface {
	CleanupDeliveries(ctx context.Context) (int, error)
}

// LedgerCleanupHandler consumes ledger cleanup deliveries and prunes stale
// idempotency records through the service.
type LedgerCleanupHandler struct {
	service    CleanupService
	policy     RetryPolicy
	retryDelay time.Duration
}

func NewLedgerCleanupHandler(service CleanupService, policy RetryPolicy) (*LedgerCleanupHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("gojob: cleanup service is required")
	}
	return &LedgerCleanupHandler{
		service:    service,
		policy:     policy,
		retryDelay: 30 * time.Second,
	}, nil
}

// Handle runs one cleanup pass. Unknown job ids are dead-lettered, transient
// failures are nacked for requeue, and successful runs ack the delivery.
func (h *LedgerCleanupHandler) Handle(ctx context.Context, delivery core.JobDelivery) error {
	if h == nil || h.service == nil {
		return fmt.Errorf("gojob: cleanup handler is not configured")
	}
	if delivery == nil {
		return fmt.Errorf("gojob: delivery is required")
	}
	msg := delivery.Message()
	if msg == nil || msg.JobID != JobIDLedgerCleanup {
		return delivery.Nack(ctx, core.JobNackOptions{
			DeadLetter: true,
			Reason:     "unexpected job id",
		})
	}
	if _, err := h.service.CleanupDeliveries(ctx); err != nil {
		nackErr := delivery.Nack(ctx, core.JobNackOptions{
			Delay:   h.retryDelay,
			Requeue: true,
			Reason:  err.Error(),
		})
		if nackErr != nil {
			return nackErr
		}
		return err
	}
	return delivery.Ack(ctx)
}

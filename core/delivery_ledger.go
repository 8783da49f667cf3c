package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

const defaultLedgerMaxEntries = 8192

// MemoryDeliveryLedger is an in-process DeliveryStore for tests and
// single-node deployments. Inserts are unconditional; duplicates are caught
// by the IsDelivered membership check that precedes recording.
type MemoryDeliveryLedger struct {
	mu         sync.Mutex
	maxEntries int
	records    map[string]DeliveryRecord
	Now        func() time.Time
}

func NewMemoryDeliveryLedger() *MemoryDeliveryLedger {
	return NewMemoryDeliveryLedgerWithLimits(defaultLedgerMaxEntries)
}

func NewMemoryDeliveryLedgerWithLimits(maxEntries int) *MemoryDeliveryLedger {
	if maxEntries <= 0 {
		maxEntries = defaultLedgerMaxEntries
	}
	return &MemoryDeliveryLedger{
		maxEntries: maxEntries,
		records:    map[string]DeliveryRecord{},
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (l *MemoryDeliveryLedger) Record(_ context.Context, in RecordDeliveryInput) (DeliveryRecord, error) {
	if l == nil {
		return DeliveryRecord{}, fmt.Errorf("core: delivery ledger is not configured")
	}
	id := strings.TrimSpace(in.DeliveryID)
	if id == "" {
		return DeliveryRecord{}, fmt.Errorf("core: delivery id is required")
	}
	record := DeliveryRecord{
		ID:         id,
		Repo:       NormalizeRepo(in.Repo),
		EventName:  strings.TrimSpace(in.EventName),
		ReceivedAt: l.now(),
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.enforceCapacityLocked(1)
	l.records[id] = record
	return record, nil
}

func (l *MemoryDeliveryLedger) IsDelivered(_ context.Context, deliveryID string) (bool, error) {
	if l == nil {
		return false, fmt.Errorf("core: delivery ledger is not configured")
	}
	deliveryID = strings.TrimSpace(deliveryID)
	if deliveryID == "" {
		return false, fmt.Errorf("core: delivery id is required")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.records[deliveryID]
	return ok, nil
}

func (l *MemoryDeliveryLedger) Cleanup(_ context.Context, before time.Time) (int, error) {
	if l == nil {
		return 0, fmt.Errorf("core: delivery ledger is not configured")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	pruned := 0
	for id, record := range l.records {
		if record.ReceivedAt.Before(before) {
			delete(l.records, id)
			pruned++
		}
	}
	return pruned, nil
}

func (l *MemoryDeliveryLedger) now() time.Time {
	if l != nil && l.Now != nil {
		return l.Now().UTC()
	}
	return time.Now().UTC()
}

func (l *MemoryDeliveryLedger) enforceCapacityLocked(incoming int) {
	if l.maxEntries <= 0 {
		return
	}
	target := l.maxEntries - incoming
	if target < 0 {
		target = 0
	}
	for len(l.records) > target {
		l.evictOldestLocked()
	}
}

func (l *MemoryDeliveryLedger) evictOldestLocked() {
	var oldestID string
	var oldestAt time.Time
	for id, record := range l.records {
		if oldestID == "" || record.ReceivedAt.Before(oldestAt) {
			oldestID = id
			oldestAt = record.ReceivedAt
		}
	}
	if oldestID != "" {
		delete(l.records, oldestID)
		return
	}
	for id := range l.records {
		delete(l.records, id)
		break
	}
}

package core

import (
	"context"
	"testing"
	"time"
)

func TestMemoryDeliveryLedger_RecordAndMembership(t *testing.T) {
	ledger := NewMemoryDeliveryLedger()
	ctx := context.Background()

	delivered, err := ledger.IsDelivered(ctx, "delivery-1")
	if err != nil {
		t.Fatalf("membership check: %v", err)
	}
	if delivered {
		t.Fatalf("expected unseen delivery id to be absent")
	}

	record, err := ledger.Record(ctx, RecordDeliveryInput{
		DeliveryID: "delivery-1",
		Repo:       "octo/widgets",
		EventName:  "push",
	})
	if err != nil {
		t.Fatalf("record delivery: %v", err)
	}
	if record.ID != "delivery-1" || record.Repo != "octo/widgets" {
		t.Fatalf("unexpected record: %#v", record)
	}

	delivered, err = ledger.IsDelivered(ctx, "delivery-1")
	if err != nil {
		t.Fatalf("membership check: %v", err)
	}
	if !delivered {
		t.Fatalf("expected recorded delivery id to be present")
	}
}

func TestMemoryDeliveryLedger_CleanupPrunesOlderThanCutoff(t *testing.T) {
	ledger := NewMemoryDeliveryLedger()
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	ledger.Now = func() time.Time { return now }
	ctx := context.Background()

	if _, err := ledger.Record(ctx, RecordDeliveryInput{DeliveryID: "old", Repo: "octo/widgets", EventName: "push"}); err != nil {
		t.Fatalf("record old delivery: %v", err)
	}
	now = now.Add(2 * time.Hour)
	if _, err := ledger.Record(ctx, RecordDeliveryInput{DeliveryID: "fresh", Repo: "octo/widgets", EventName: "push"}); err != nil {
		t.Fatalf("record fresh delivery: %v", err)
	}

	pruned, err := ledger.Cleanup(ctx, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if pruned != 1 {
		t.Fatalf("expected one pruned record, got %d", pruned)
	}

	delivered, err := ledger.IsDelivered(ctx, "fresh")
	if err != nil {
		t.Fatalf("membership check: %v", err)
	}
	if !delivered {
		t.Fatalf("expected fresh record to survive cleanup")
	}
	delivered, err = ledger.IsDelivered(ctx, "old")
	if err != nil {
		t.Fatalf("membership check: %v", err)
	}
	if delivered {
		t.Fatalf("expected old record to be pruned")
	}
}

func TestMemoryDeliveryLedger_EnforcesCapacity(t *testing.T) {
	ledger := NewMemoryDeliveryLedgerWithLimits(2)
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	ledger.Now = func() time.Time { return now }
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		now = now.Add(time.Minute)
		if _, err := ledger.Record(ctx, RecordDeliveryInput{DeliveryID: id, Repo: "octo/widgets", EventName: "push"}); err != nil {
			t.Fatalf("record %q: %v", id, err)
		}
	}

	delivered, err := ledger.IsDelivered(ctx, "a")
	if err != nil {
		t.Fatalf("membership check: %v", err)
	}
	if delivered {
		t.Fatalf("expected oldest record evicted at capacity")
	}
	delivered, err = ledger.IsDelivered(ctx, "c")
	if err != nil {
		t.Fatalf("membership check: %v", err)
	}
	if !delivered {
		t.Fatalf("expected newest record retained")
	}
}

func TestMemoryDeliveryLedger_RequiresDeliveryID(t *testing.T) {
	ledger := NewMemoryDeliveryLedger()
	if _, err := ledger.Record(context.Background(), RecordDeliveryInput{Repo: "octo/widgets"}); err == nil {
		t.Fatalf("expected missing delivery id error")
	}
	if _, err := ledger.IsDelivered(context.Background(), " "); err == nil {
		t.Fatalf("expected missing delivery id error")
	}
}

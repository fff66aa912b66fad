package storage

import (
	"context"
	"testing"
	"time"

	"github.com/example/swiftrun/internal/models"
)

func TestMemoryStoreOrderRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	o := &models.Order{ID: "o1", Number: "ORD-001", CustomerID: "c1", Status: "pending", Subtotal: 1000, DeliveryFee: 300, Tax: 50, Total: 1350}
	if err := m.SaveOrder(ctx, o); err != nil {
		t.Fatal(err)
	}
	got, err := m.GetOrder(ctx, "o1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Number != "ORD-001" || got.Status != "pending" {
		t.Fatalf("unexpected order: %+v", got)
	}
	// returned copy must not alias the stored record
	got.Status = "mutated"
	again, _ := m.GetOrder(ctx, "o1")
	if again.Status != "pending" {
		t.Fatal("store leaked internal pointer")
	}
}

func TestMemoryStoreStatusUpdateStampsTimestamp(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	_ = m.SaveOrder(ctx, &models.Order{ID: "o1", Status: "pending"})
	at := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	if err := m.UpdateOrderStatus(ctx, "o1", "accepted", "accepted_at", at); err != nil {
		t.Fatal(err)
	}
	got, _ := m.GetOrder(ctx, "o1")
	if got.Status != "accepted" || !got.UpdatedAt.Equal(at) {
		t.Fatalf("unexpected order after update: %+v", got)
	}
	stamp, ok := m.Stamp("o1", "accepted_at")
	if !ok || !stamp.Equal(at) {
		t.Fatalf("stamp not recorded: %v %v", stamp, ok)
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	if _, err := m.GetOrder(ctx, "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := m.UpdateErrandStatus(ctx, "missing", "accepted", "accepted_at", time.Now()); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreAssignOrderOnce(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	_ = m.SaveOrder(ctx, &models.Order{ID: "o1", Status: "pending"})
	if err := m.AssignOrder(ctx, "o1", "drv-1"); err != nil {
		t.Fatal(err)
	}
	// second assignment must fail like the conditional UPDATE does
	if err := m.AssignOrder(ctx, "o1", "drv-2"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound on second assign, got %v", err)
	}
	got, _ := m.GetOrder(ctx, "o1")
	if got.DriverID != "drv-1" {
		t.Fatalf("first assignment overwritten: %+v", got)
	}
}

func TestMemoryStoreAssignErrandOnce(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	_ = m.SaveErrand(ctx, &models.Errand{ID: "e1", Status: "pending"})
	if err := m.AssignErrand(ctx, "e1", "run-1"); err != nil {
		t.Fatal(err)
	}
	if err := m.AssignErrand(ctx, "e1", "run-2"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound on second assign, got %v", err)
	}
	got, _ := m.GetErrand(ctx, "e1")
	if got.RunnerID != "run-1" {
		t.Fatalf("first assignment overwritten: %+v", got)
	}
}

func TestMemoryStoreErrandAssign(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	_ = m.SaveErrand(ctx, &models.Errand{ID: "e1", Status: "pending"})
	if err := m.AssignErrand(ctx, "e1", "runner-9"); err != nil {
		t.Fatal(err)
	}
	got, _ := m.GetErrand(ctx, "e1")
	if got.RunnerID != "runner-9" {
		t.Fatalf("runner not assigned: %+v", got)
	}
	if got.Status != "pending" {
		t.Fatal("assignment must not change status")
	}
}

package queue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/okian/taper/internal/domain/model"
)

func loadObservation(id string, load float64) Observation {
	return Observation{
		ObservationID: id,
		AthleteID:     "ath-1",
		Kind:          model.KindLoad,
		Load:          &model.DailyLoad{Date: "2026-03-01", CompositeLoad: load},
	}
}

func TestMemoryQueue_BasicOperations(t *testing.T) {
	q := NewMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if !q.Enqueue(ctx, loadObservation("obs-1", 300)) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	out := q.Dequeue(ctx)
	o := <-out
	if o.ObservationID != "obs-1" {
		t.Errorf("expected obs-1, got %v", o.ObservationID)
	}
	if o.Load == nil || o.Load.CompositeLoad != 300 {
		t.Errorf("payload not preserved: %+v", o.Load)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestMemoryQueue_CapacityLimit(t *testing.T) {
	q := NewMemoryQueue(WithCapacity(2), WithBufferSize(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, loadObservation("obs-1", 1)) {
		t.Error("first enqueue should succeed")
	}
	if !q.Enqueue(ctx, loadObservation("obs-2", 2)) {
		t.Error("second enqueue should succeed")
	}
	if q.Enqueue(ctx, loadObservation("obs-3", 3)) {
		t.Error("enqueue beyond capacity should fail")
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestMemoryQueue_Close(t *testing.T) {
	q := NewMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	if !q.Enqueue(ctx, loadObservation("obs-1", 1)) {
		t.Error("enqueue before close should succeed")
	}
	if err := q.Close(); err != nil {
		t.Errorf("close failed: %v", err)
	}
	if !q.IsClosed() {
		t.Error("queue should report closed")
	}
	if q.Enqueue(ctx, loadObservation("obs-2", 2)) {
		t.Error("enqueue after close should fail")
	}
	// Closing twice is fine.
	if err := q.Close(); err != nil {
		t.Errorf("second close failed: %v", err)
	}

	// Pending observations drain, then the channel closes.
	out := q.Dequeue(ctx)
	o, ok := <-out
	if !ok || o.ObservationID != "obs-1" {
		t.Errorf("expected obs-1 before close, got %v ok=%v", o.ObservationID, ok)
	}
	select {
	case _, ok := <-out:
		if ok {
			t.Error("expected dequeue channel to close after drain")
		}
	case <-time.After(time.Second):
		t.Error("dequeue channel did not close")
	}
}

func TestMemoryQueue_DequeueRespectsContext(t *testing.T) {
	q := NewMemoryQueue(WithCapacity(10))
	ctx, cancel := context.WithCancel(context.Background())

	out := q.Dequeue(ctx)
	cancel()

	// Give the forwarding goroutine a chance to observe cancellation once an
	// observation becomes available.
	q.Enqueue(context.Background(), loadObservation("obs-1", 1))
	select {
	case _, ok := <-out:
		if ok {
			// A single in-flight observation may still be delivered; the
			// channel must close afterwards.
			if _, ok := <-out; ok {
				t.Error("expected channel to close after cancellation")
			}
		}
	case <-time.After(time.Second):
		t.Error("dequeue channel did not react to cancellation")
	}
}

func TestMemoryQueue_OrderPreserved(t *testing.T) {
	q := NewMemoryQueue(WithCapacity(100))
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if !q.Enqueue(ctx, loadObservation(fmt.Sprintf("obs-%d", i), float64(i))) {
			t.Fatalf("enqueue %d failed", i)
		}
	}
	out := q.Dequeue(ctx)
	for i := 0; i < 10; i++ {
		o := <-out
		if want := fmt.Sprintf("obs-%d", i); o.ObservationID != want {
			t.Errorf("expected %s, got %s", want, o.ObservationID)
		}
	}
}

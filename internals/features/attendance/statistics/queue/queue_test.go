package queue

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMemoryQueueRoundtrip(t *testing.T) {
	q := NewMemoryQueue(4)
	job := RecomputeJob{SessionID: uuid.New(), SectionID: uuid.New(), PeriodID: uuid.New()}

	if err := q.Enqueue(context.Background(), job); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	got, err := q.Dequeue(context.Background(), 50*time.Millisecond)
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if got == nil || got.SessionID != job.SessionID {
		t.Fatalf("job = %+v, want %+v", got, job)
	}
}

func TestMemoryQueueDequeueTimesOutEmpty(t *testing.T) {
	q := NewMemoryQueue(1)
	got, err := q.Dequeue(context.Background(), 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Dequeue kosong tidak boleh error, got %v", err)
	}
	if got != nil {
		t.Fatalf("queue kosong harus return nil, got %+v", got)
	}
}

func TestMemoryQueuePreservesOrder(t *testing.T) {
	q := NewMemoryQueue(8)
	first := RecomputeJob{SessionID: uuid.New()}
	second := RecomputeJob{SessionID: uuid.New()}

	_ = q.Enqueue(context.Background(), first)
	_ = q.Enqueue(context.Background(), second)

	got1, _ := q.Dequeue(context.Background(), 50*time.Millisecond)
	got2, _ := q.Dequeue(context.Background(), 50*time.Millisecond)
	if got1 == nil || got2 == nil || got1.SessionID != first.SessionID || got2.SessionID != second.SessionID {
		t.Fatal("memory queue harus FIFO")
	}
}

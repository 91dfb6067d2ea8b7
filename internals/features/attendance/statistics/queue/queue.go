// file: internals/features/attendance/statistics/queue/queue.go
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RecomputeJob dipublish saat transisi Open→Closed, satu job per sesi.
// Worker yang mengipas ke per-mahasiswa (lihat statistics/service).
type RecomputeJob struct {
	SessionID uuid.UUID `json:"session_id"`
	SectionID uuid.UUID `json:"section_id"`
	PeriodID  uuid.UUID `json:"period_id"`
}

// Queue: jalur event eksplisit, bukan hook tersembunyi — supaya trigger bisa
// dites terpisah dari state machine.
type Queue interface {
	Enqueue(ctx context.Context, job RecomputeJob) error
	// Dequeue blocking sampai timeout; (nil, nil) kalau kosong.
	Dequeue(ctx context.Context, timeout time.Duration) (*RecomputeJob, error)
}

/* =========================
   Redis (produksi, multi-instance)
========================= */

const redisKey = "attendance:stats:recompute"

type redisQueue struct {
	rdb *redis.Client
}

func NewRedisQueue(rdb *redis.Client) Queue {
	return &redisQueue{rdb: rdb}
}

func (q *redisQueue) Enqueue(ctx context.Context, job RecomputeJob) error {
	b, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.rdb.LPush(ctx, redisKey, b).Err()
}

func (q *redisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*RecomputeJob, error) {
	res, err := q.rdb.BRPop(ctx, timeout, redisKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var job RecomputeJob
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

/* =========================
   In-memory (dev / single instance / test)
========================= */

type memoryQueue struct {
	ch chan RecomputeJob
}

func NewMemoryQueue(size int) Queue {
	if size <= 0 {
		size = 1024
	}
	return &memoryQueue{ch: make(chan RecomputeJob, size)}
}

func (q *memoryQueue) Enqueue(_ context.Context, job RecomputeJob) error {
	select {
	case q.ch <- job:
		return nil
	default:
		return errors.New("recompute queue penuh")
	}
}

func (q *memoryQueue) Dequeue(ctx context.Context, timeout time.Duration) (*RecomputeJob, error) {
	select {
	case job := <-q.ch:
		return &job, nil
	case <-time.After(timeout):
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenDenylist: revoke dini (rotasi QR / sesi dibatalkan).
// Cek signature tetap offline; denylist hanya dicek saat validasi di server.
type TokenDenylist interface {
	Revoke(ctx context.Context, key string, ttl time.Duration) error
	IsRevoked(ctx context.Context, key string) (bool, error)
}

/* =========================
   Redis
========================= */

type redisDenylist struct {
	rdb *redis.Client
}

func NewRedisDenylist(rdb *redis.Client) TokenDenylist {
	return &redisDenylist{rdb: rdb}
}

func (d *redisDenylist) Revoke(ctx context.Context, key string, ttl time.Duration) error {
	return d.rdb.Set(ctx, "attendance:token:denylist:"+key, "1", ttl).Err()
}

func (d *redisDenylist) IsRevoked(ctx context.Context, key string) (bool, error) {
	err := d.rdb.Get(ctx, "attendance:token:denylist:"+key).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

/* =========================
   In-memory (dev / test)
========================= */

type memoryDenylist struct {
	mu      sync.Mutex
	entries map[string]time.Time // key -> expiry
}

func NewMemoryDenylist() TokenDenylist {
	return &memoryDenylist{entries: make(map[string]time.Time)}
}

func (d *memoryDenylist) Revoke(_ context.Context, key string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[key] = time.Now().Add(ttl)
	return nil
}

func (d *memoryDenylist) IsRevoked(_ context.Context, key string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	exp, ok := d.entries[key]
	if !ok {
		return false, nil
	}
	if time.Now().After(exp) {
		delete(d.entries, key)
		return false, nil
	}
	return true, nil
}

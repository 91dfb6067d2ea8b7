package database

import (
	"context"
	"log"
	"os"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

var (
	RedisClient *redis.Client
	RedisLocker *redislock.Client
)

// ConnectRedis: dipakai untuk denylist token + antrian recompute statistik.
// Redis opsional saat dev; komponen yang bergantung menerima nil dan fallback in-memory.
func ConnectRedis() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		log.Println("⚠️ REDIS_ADDR kosong, denylist & queue pakai in-memory (single instance saja)")
		return
	}

	RedisClient = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	if err := RedisClient.Ping(context.Background()).Err(); err != nil {
		log.Printf("❌ Redis ping gagal: %v", err)
		RedisClient = nil
		return
	}

	RedisLocker = redislock.New(RedisClient)
	log.Println("✅ Redis connected.")
}

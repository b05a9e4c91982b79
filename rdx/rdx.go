package rdx

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var Conn *redis.Client

func init() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	Conn = redis.NewClient(&redis.Options{Addr: addr})
}

func RdxSet(key, value string, ttl time.Duration) error {
	return Conn.Set(context.Background(), key, value, ttl).Err()
}

func RdxGet(key string) (string, error) {
	return Conn.Get(context.Background(), key).Result()
}

// RdxSetNX acquires key only if absent; used for per-user locks.
func RdxSetNX(key, value string, ttl time.Duration) (bool, error) {
	return Conn.SetNX(context.Background(), key, value, ttl).Result()
}

func RdxDel(key string) {
	if err := Conn.Del(context.Background(), key).Err(); err != nil {
		log.Printf("RdxDel: failed for key %s, err=%v\n", key, err)
	}
}

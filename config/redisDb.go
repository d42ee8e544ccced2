package config

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/bsm/redislock"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var rdb *redis.Client

// ConnectRedis connects when REDIS_ADDRESS is set. An empty address is not an error:
// the tools then run without the per-user lock.
func ConnectRedis(ctx context.Context) (*redislock.Client, error) {
	redisAddr := strings.TrimSpace(os.Getenv("REDIS_ADDRESS"))
	if redisAddr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
		PoolSize: 4,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "ping redis %s", redisAddr)
	}
	rdb = client
	log.Printf("connected to redis (addr=%s)", redisAddr)
	return redislock.New(rdb), nil
}

func CloseRedis() error {
	if rdb == nil {
		return nil
	}
	return rdb.Close()
}

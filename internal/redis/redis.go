package redis

import (
	"context"
	"fmt"
	"mower-core/internal/config"
	"mower-core/internal/utils"
	"time"

	"github.com/go-redis/redis/v8"
)

const pingTimeout = 3 * time.Second

// NewRedisClient 상태 캐시 연결. 응답이 없으면 클라이언트를 닫고 에러를 반환한다.
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	addr := redisAddr(cfg)
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: pingTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	utils.Logger.Infof("Connected to Redis at %s (db %d)", addr, cfg.RedisDB)
	return client, nil
}

func redisAddr(cfg *config.Config) string {
	return fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort)
}

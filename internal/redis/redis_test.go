package redis

import (
	"mower-core/internal/config"
	"strings"
	"testing"
)

func TestNewRedisClientUnreachable(t *testing.T) {
	// nothing listens on port 1
	cfg := &config.Config{RedisHost: "127.0.0.1", RedisPort: "1"}

	client, err := NewRedisClient(cfg)
	if err == nil {
		client.Close()
		t.Fatal("Expected connection error")
	}
	if client != nil {
		t.Error("Expected nil client on failure")
	}
	if !strings.Contains(err.Error(), "failed to connect to Redis at 127.0.0.1:1") {
		t.Errorf("Unexpected error: %v", err)
	}
}

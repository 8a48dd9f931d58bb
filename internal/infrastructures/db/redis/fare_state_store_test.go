package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestStateKey(t *testing.T) {
	if got := stateKey("southwest:LAX-EWR"); got != "fares:state:southwest:LAX-EWR" {
		t.Fatalf("unexpected key: %s", got)
	}
}

func TestLoad_UnreachableRedisIsNotStateNotFound(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	store := NewFareStateStore(client)
	_, err := store.Load(context.Background(), "southwest:LAX-EWR")
	if err == nil {
		t.Fatal("expected error from unreachable redis")
	}
	if errors.Is(err, redis.Nil) {
		t.Fatalf("connection failure must not look like a missing key: %v", err)
	}
}

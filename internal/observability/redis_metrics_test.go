package observability

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisMetricsHookCountsHashKeyspaceOutcomes(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	// warm the pool so connection handshake commands are not observed
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("ping: %v", err)
	}

	hook, err := newRedisMetricsHook(client)
	if err != nil {
		t.Fatalf("new hook: %v", err)
	}
	client.AddHook(hook)

	if err := client.HSet(ctx, "_users", "u1", "payload").Err(); err != nil {
		t.Fatalf("hset: %v", err)
	}
	if _, err := client.HMGet(ctx, "_users", "u1", "u2", "u3").Result(); err != nil {
		t.Fatalf("hmget: %v", err)
	}
	if err := client.HGet(ctx, "_users", "missing").Err(); err != redis.Nil {
		t.Fatalf("expected redis.Nil, got %v", err)
	}

	if got := hook.keyHitAtomic.Load(); got != 1 {
		t.Fatalf("expected 1 keyspace hit, got %d", got)
	}
	if got := hook.keyMissAtomic.Load(); got != 3 {
		t.Fatalf("expected 3 keyspace misses, got %d", got)
	}
	if got := hook.cmdErrorAtomic.Load(); got != 0 {
		t.Fatalf("redis.Nil must not count as an error, got %d", got)
	}
	if got := hook.cmdTotalAtomic.Load(); got != 3 {
		t.Fatalf("expected 3 commands observed, got %d", got)
	}
}

func TestRedisCommandStatus(t *testing.T) {
	if got := redisCommandStatus(nil); got != "success" {
		t.Fatalf("nil error status = %q", got)
	}
	if got := redisCommandStatus(redis.Nil); got != "miss" {
		t.Fatalf("redis.Nil status = %q", got)
	}
	if got := redisCommandStatus(context.DeadlineExceeded); got != "error" {
		t.Fatalf("deadline status = %q", got)
	}
}

func TestClassifyKeyspaceOutcomeTrustsReturnedError(t *testing.T) {
	ctx := context.Background()
	// the command's own error is still unset when the hook sees a nil reply
	cmd := redis.NewStringCmd(ctx, "hget", "_users", "missing")

	hits, misses, ok := classifyKeyspaceOutcome(cmd, redis.Nil)
	if !ok || hits != 0 || misses != 1 {
		t.Fatalf("redis.Nil reply: hits=%d misses=%d ok=%v", hits, misses, ok)
	}
	hits, misses, ok = classifyKeyspaceOutcome(cmd, nil)
	if !ok || hits != 1 || misses != 0 {
		t.Fatalf("value reply: hits=%d misses=%d ok=%v", hits, misses, ok)
	}
	if _, _, ok := classifyKeyspaceOutcome(cmd, context.DeadlineExceeded); ok {
		t.Fatal("transport errors must not be classified")
	}
}

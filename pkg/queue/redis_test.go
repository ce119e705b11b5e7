package queue

import (
	"context"
	"testing"
	"time"

	"FactPull/pkg/logger"

	"github.com/redis/go-redis/v9"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func testQueue(t *testing.T, mode QueueMode, opts ...RedisQueueOption) *RedisQueue {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	return NewRedisQueue(testLogger(t), nil, client, mode, opts...)
}

func TestKeyPrefixNamespacesAllKeys(t *testing.T) {
	q := testQueue(t, ModeProducerConsumer, WithKeyPrefix("factpull:refresh"))
	if got := q.readyKey(); got != "factpull:refresh:messages" {
		t.Fatalf("readyKey = %q", got)
	}
	if got := q.retryKey(); got != "factpull:refresh:retry" {
		t.Fatalf("retryKey = %q", got)
	}
	if got := q.deadKey(); got != "factpull:refresh:dlq" {
		t.Fatalf("deadKey = %q", got)
	}
}

func TestDefaultKeyPrefixAndConfig(t *testing.T) {
	q := testQueue(t, ModeProducerConsumer)
	if got := q.readyKey(); got != "factpull:queue:messages" {
		t.Fatalf("readyKey = %q", got)
	}
	if q.cfg.Workers != 1 {
		t.Fatalf("Workers default = %d, want 1", q.cfg.Workers)
	}
	if q.cfg.RetryDelay != 10*time.Second {
		t.Fatalf("RetryDelay default = %v, want 10s", q.cfg.RetryDelay)
	}
}

func TestEnqueueRejectedBeforeStart(t *testing.T) {
	q := testQueue(t, ModeProducerConsumer)
	if err := q.Enqueue(context.Background(), "facts_refresh", nil); err == nil {
		t.Fatal("enqueue on a stopped queue should fail")
	}
}

func TestModeString(t *testing.T) {
	cases := []struct {
		mode QueueMode
		want string
	}{
		{ModeProducerConsumer, "producer-consumer"},
		{ModeProducerOnly, "producer-only"},
		{ModeConsumerOnly, "consumer-only"},
	}
	for _, tc := range cases {
		if got := tc.mode.String(); got != tc.want {
			t.Fatalf("String(%d) = %q, want %q", tc.mode, got, tc.want)
		}
	}
}

func TestStopWithoutStartIsNoop(t *testing.T) {
	q := testQueue(t, ModeProducerConsumer)
	if err := q.Stop(context.Background()); err != nil {
		t.Fatalf("Stop on idle queue: %v", err)
	}
}

package kafka

import (
	"os"
	"testing"
	"time"

	applogger "FactPull/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
)

func TestMain(m *testing.M) {
	// keep consumer metrics off the default registry, so repeated runs in the
	// same process cannot collide
	SetConsumerMetricsRegisterer(prometheus.NewRegistry())
	os.Exit(m.Run())
}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func TestNewConsumerRequiresBrokers(t *testing.T) {
	if _, err := NewConsumer(testLogger(t)); err == nil {
		t.Fatal("consumer without brokers should be rejected")
	}
}

func TestNewConsumerRequiresLogger(t *testing.T) {
	if _, err := NewConsumer(nil, WithConsumerBrokers([]string{"localhost:9092"})); err == nil {
		t.Fatal("consumer without logger should be rejected")
	}
}

func TestDLQTopicEnablesDeadLetterWriter(t *testing.T) {
	c, err := NewConsumer(testLogger(t),
		WithConsumerBrokers([]string{"localhost:9092"}),
		WithConsumerDLQ("filings.dlq"),
	)
	if err != nil {
		t.Fatalf("NewConsumer: %v", err)
	}
	if c.dlq == nil {
		t.Fatal("dead-letter writer should be created when a DLQ topic is set")
	}
	if c.cfg.DLQTopic != "filings.dlq" {
		t.Fatalf("DLQTopic = %q, want filings.dlq", c.cfg.DLQTopic)
	}
}

func TestEmptyDLQTopicDisablesDeadLetterWriter(t *testing.T) {
	c, err := NewConsumer(testLogger(t),
		WithConsumerBrokers([]string{"localhost:9092"}),
		WithConsumerDLQ(""),
	)
	if err != nil {
		t.Fatalf("NewConsumer: %v", err)
	}
	if c.dlq != nil {
		t.Fatal("dead-letter writer should stay nil without a DLQ topic")
	}
}

func TestConsumerOptionDefaults(t *testing.T) {
	c, err := NewConsumer(testLogger(t), WithConsumerBrokers([]string{"localhost:9092"}))
	if err != nil {
		t.Fatalf("NewConsumer: %v", err)
	}
	if c.cfg.GroupID != "default" {
		t.Fatalf("GroupID = %q, want default", c.cfg.GroupID)
	}
	if c.cfg.AutoOffsetReset != "earliest" {
		t.Fatalf("AutoOffsetReset = %q, want earliest", c.cfg.AutoOffsetReset)
	}
	if c.cfg.WorkerCount != 1 || c.cfg.RetryMax != 3 {
		t.Fatalf("unexpected worker/retry defaults: %+v", c.cfg)
	}
}

func TestPartitionLockIsStable(t *testing.T) {
	c, err := NewConsumer(testLogger(t), WithConsumerBrokers([]string{"localhost:9092"}))
	if err != nil {
		t.Fatalf("NewConsumer: %v", err)
	}
	a := c.partitionLock("filings", 0)
	b := c.partitionLock("filings", 0)
	if a != b {
		t.Fatal("same topic/partition must share one lock")
	}
	if c.partitionLock("filings", 1) == a {
		t.Fatal("different partitions must not share a lock")
	}
	if c.partitionLock("other", 0) == a {
		t.Fatal("different topics must not share a lock")
	}
}

func TestBackoffWithJitterBounds(t *testing.T) {
	min := 50 * time.Millisecond
	max := 2 * time.Second
	for attempt := 1; attempt <= 8; attempt++ {
		for i := 0; i < 20; i++ {
			d := backoffWithJitter(min, max, attempt)
			if d <= 0 || d > max {
				t.Fatalf("attempt %d: backoff %v outside (0, %v]", attempt, d, max)
			}
		}
	}
}

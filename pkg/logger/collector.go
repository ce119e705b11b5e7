package logger

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"
)

const defaultCollectorCapacity = 256

// CollectedEntry is one retained warn/error log line, as served by the
// diagnostics endpoint.
type CollectedEntry struct {
	Time    time.Time              `json:"time"`
	Level   string                 `json:"level"`
	Message string                 `json:"message"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
	Caller  string                 `json:"caller"`
}

// Collector keeps the most recent warn/error entries in a fixed-size ring.
type Collector struct {
	mu      sync.Mutex
	entries []CollectedEntry
	next    int
	full    bool
}

func NewCollector(capacity int) *Collector {
	if capacity <= 0 {
		capacity = defaultCollectorCapacity
	}
	return &Collector{entries: make([]CollectedEntry, capacity)}
}

func (c *Collector) Add(level, message, caller string, fields []Field) {
	entry := CollectedEntry{
		Time:    time.Now(),
		Level:   level,
		Message: message,
		Caller:  caller,
	}
	if len(fields) > 0 {
		entry.Fields = make(map[string]interface{}, len(fields))
		for _, f := range fields {
			key, value := f.GetKeyValue()
			entry.Fields[key] = value
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[c.next] = entry
	c.next = (c.next + 1) % len(c.entries)
	if c.next == 0 {
		c.full = true
	}
}

// Recent returns retained entries, newest first.
func (c *Collector) Recent() []CollectedEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	size := c.next
	if c.full {
		size = len(c.entries)
	}
	out := make([]CollectedEntry, 0, size)
	for i := 1; i <= size; i++ {
		idx := (c.next - i + len(c.entries)) % len(c.entries)
		out = append(out, c.entries[idx])
	}
	return out
}

// CallerRef points at the log call site, path trimmed to the module.
func CallerRef(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	parts := strings.Split(file, "FactPull")
	return fmt.Sprintf("%s:%d", parts[len(parts)-1], line)
}

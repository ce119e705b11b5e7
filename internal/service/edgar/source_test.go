package edgar

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"FactPull/internal/domain/repository"
	"FactPull/pkg/cache"
	"FactPull/pkg/logger"
)

type recordingMetrics struct {
	hits, misses, fetchOK, fetchErr int64
}

func (m *recordingMetrics) RecordFetch(resource, outcome string) {
	if outcome == "ok" {
		atomic.AddInt64(&m.fetchOK, 1)
	} else {
		atomic.AddInt64(&m.fetchErr, 1)
	}
}
func (m *recordingMetrics) RecordCacheHit(resource string)  { atomic.AddInt64(&m.hits, 1) }
func (m *recordingMetrics) RecordCacheMiss(resource string) { atomic.AddInt64(&m.misses, 1) }
func (m *recordingMetrics) RecordExtraction(metric string, seconds float64) {}
func (m *recordingMetrics) RecordError(kind string)                         {}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

const appleFacts = `{
	"cik": 320193,
	"entityName": "Apple Inc.",
	"facts": {
		"us-gaap": {
			"Revenues": {
				"label": "Revenues",
				"units": {
					"USD": [
						{"start": "2023-10-01", "end": "2023-12-30", "val": 119575000000, "form": "10-Q", "filed": "2024-02-02"}
					]
				}
			}
		}
	}
}`

func newFactsServer(t *testing.T, hits *int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("request without User-Agent header")
		}
		atomic.AddInt64(hits, 1)
		switch r.URL.Path {
		case "/api/xbrl/companyfacts/CIK0000320193.json":
			w.Write([]byte(appleFacts))
		default:
			http.NotFound(w, r)
		}
	}))
}

func newSource(t *testing.T, baseURL string, m *recordingMetrics) *CachedFactSource {
	t.Helper()
	client, err := NewClient("test suite test@example.com", WithBaseURL(baseURL))
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { mc.Close() })
	return NewCachedFactSource(client, mc, time.Minute, m, testLogger(t))
}

func TestCompanyFactsFetchesOnMissThenServesFromCache(t *testing.T) {
	var upstream int64
	srv := newFactsServer(t, &upstream)
	defer srv.Close()

	m := &recordingMetrics{}
	src := newSource(t, srv.URL, m)
	ctx := context.Background()

	doc, err := src.CompanyFacts(ctx, 320193)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if doc.CIK != 320193 || doc.EntityName != "Apple Inc." {
		t.Fatalf("unexpected doc %+v", doc)
	}
	if items := doc.UnitItems("us-gaap", "Revenues", "USD"); len(items) != 1 {
		t.Fatalf("expected 1 revenue item, got %d", len(items))
	}

	if _, err := src.CompanyFacts(ctx, 320193); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if upstream != 1 {
		t.Fatalf("expected 1 upstream request, got %d", upstream)
	}
	if m.hits != 1 || m.misses != 1 || m.fetchOK != 1 {
		t.Fatalf("unexpected metrics hits=%d misses=%d fetchOK=%d", m.hits, m.misses, m.fetchOK)
	}
}

func TestCompanyFactsUnknownCIKIsNotFound(t *testing.T) {
	var upstream int64
	srv := newFactsServer(t, &upstream)
	defer srv.Close()

	src := newSource(t, srv.URL, &recordingMetrics{})
	_, err := src.CompanyFacts(context.Background(), 999)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEvictForcesRefetch(t *testing.T) {
	var upstream int64
	srv := newFactsServer(t, &upstream)
	defer srv.Close()

	src := newSource(t, srv.URL, &recordingMetrics{})
	ctx := context.Background()

	if _, err := src.CompanyFacts(ctx, 320193); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if err := src.Evict(ctx, 320193); err != nil {
		t.Fatalf("evict: %v", err)
	}
	if _, err := src.CompanyFacts(ctx, 320193); err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if upstream != 2 {
		t.Fatalf("expected 2 upstream requests after evict, got %d", upstream)
	}
}

func TestCompanyFactsURLPadsCIK(t *testing.T) {
	client, err := NewClient("test suite test@example.com", WithBaseURL("https://data.sec.gov"))
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	got := client.CompanyFactsURL(320193)
	want := "https://data.sec.gov/api/xbrl/companyfacts/CIK0000320193.json"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestNewClientRequiresUserAgent(t *testing.T) {
	if _, err := NewClient(""); err == nil {
		t.Fatal("expected error for empty user agent")
	}
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"FactPull/internal/domain/models"
	domrepo "FactPull/internal/domain/repository"
	xhttp "FactPull/pkg/http"
	applogger "FactPull/pkg/logger"
)

type fakeDirectory struct {
	entries map[string]domrepo.TickerEntry
}

func (d *fakeDirectory) Resolve(_ context.Context, ticker string) (domrepo.TickerEntry, error) {
	e, ok := d.entries[ticker]
	if !ok {
		return domrepo.TickerEntry{}, fmt.Errorf("ticker %q: %w", ticker, domrepo.ErrNotFound)
	}
	return e, nil
}

type fakeSource struct {
	docs    map[int]*models.CompanyFacts
	evicted []int
}

func (s *fakeSource) CompanyFacts(_ context.Context, cik int) (*models.CompanyFacts, error) {
	doc, ok := s.docs[cik]
	if !ok {
		return nil, fmt.Errorf("cik %d: %w", cik, domrepo.ErrNotFound)
	}
	return doc, nil
}

func (s *fakeSource) Evict(_ context.Context, cik int) error {
	s.evicted = append(s.evicted, cik)
	return nil
}

type nopMetrics struct{}

func (nopMetrics) RecordFetch(string, string)       {}
func (nopMetrics) RecordCacheHit(string)            {}
func (nopMetrics) RecordCacheMiss(string)           {}
func (nopMetrics) RecordExtraction(string, float64) {}
func (nopMetrics) RecordError(string)               {}

type memoryArchive struct {
	mu     sync.Mutex
	stored map[string][]models.PeriodPoint
	done   chan struct{}
}

func newMemoryArchive() *memoryArchive {
	return &memoryArchive{stored: map[string][]models.PeriodPoint{}, done: make(chan struct{}, 1)}
}

func (a *memoryArchive) Append(_ context.Context, ticker, metric string, points []models.PeriodPoint) error {
	a.mu.Lock()
	a.stored[ticker+"/"+metric] = points
	a.mu.Unlock()
	a.done <- struct{}{}
	return nil
}

func (a *memoryArchive) Health(context.Context) error { return nil }
func (a *memoryArchive) Close() error                 { return nil }

func quarterlyItems() []models.FactItem {
	return []models.FactItem{
		{Start: "2023-01-01", End: "2023-04-01", Val: 100, Form: "10-Q", Filed: "2023-05-01", Frame: "CY2023Q1"},
		{Start: "2023-04-02", End: "2023-07-01", Val: 110, Form: "10-Q", Filed: "2023-08-01", Frame: "CY2023Q2"},
		{Start: "2023-07-02", End: "2023-09-30", Val: 120, Form: "10-Q", Filed: "2023-11-01", Frame: "CY2023Q3"},
		{Start: "2023-10-01", End: "2023-12-30", Val: 130, Form: "10-Q", Filed: "2024-02-01", Frame: "CY2023Q4"},
	}
}

func testFacts(concept string) *models.CompanyFacts {
	return &models.CompanyFacts{
		CIK:        320193,
		EntityName: "Apple Inc.",
		Facts: map[string]map[string]models.ConceptFact{
			"us-gaap": {
				concept: {Units: map[string][]models.FactItem{"USD": quarterlyItems()}},
			},
		},
	}
}

func revenueMetric() models.Metric {
	for _, m := range models.DefaultMetrics() {
		if m.Name == "revenue" {
			return m
		}
	}
	panic("revenue metric missing")
}

func newTestService(t *testing.T, src *fakeSource) *SeriesService {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	dir := &fakeDirectory{entries: map[string]domrepo.TickerEntry{
		"AAPL": {CIK: 320193, Ticker: "AAPL", Title: "Apple Inc."},
	}}
	return NewSeriesService(dir, src, nopMetrics{}, l)
}

func TestQuarterlyExtractsSeries(t *testing.T) {
	src := &fakeSource{docs: map[int]*models.CompanyFacts{320193: testFacts("Revenues")}}
	svc := newTestService(t, src)

	points, err := svc.Quarterly(context.Background(), "AAPL", revenueMetric())
	if err != nil {
		t.Fatalf("quarterly: %v", err)
	}
	if len(points) != 4 {
		t.Fatalf("expected 4 points, got %d", len(points))
	}
	if points[0].Period != "2023-12-30" || points[0].Value != 130 {
		t.Fatalf("unexpected first point %+v", points[0])
	}
	if points[3].Period != "2023-04-01" || points[3].Value != 100 {
		t.Fatalf("unexpected last point %+v", points[3])
	}
}

func TestTTMSumsFourQuarters(t *testing.T) {
	src := &fakeSource{docs: map[int]*models.CompanyFacts{320193: testFacts("Revenues")}}
	svc := newTestService(t, src)

	points, err := svc.TTM(context.Background(), "AAPL", revenueMetric())
	if err != nil {
		t.Fatalf("ttm: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("expected 1 ttm point, got %d", len(points))
	}
	if points[0].Period != "2023-12-30" || points[0].Value != 460 {
		t.Fatalf("unexpected ttm point %+v", points[0])
	}
}

func TestUnknownTickerMapsToNotFound(t *testing.T) {
	src := &fakeSource{docs: map[int]*models.CompanyFacts{}}
	svc := newTestService(t, src)

	_, err := svc.Quarterly(context.Background(), "ZZZZ", revenueMetric())
	var appErr *xhttp.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Code != "ERR_NOT_FOUND" {
		t.Fatalf("expected ERR_NOT_FOUND, got %s", appErr.Code)
	}
}

func TestMissingFactsMapsToNotFound(t *testing.T) {
	src := &fakeSource{docs: map[int]*models.CompanyFacts{}}
	svc := newTestService(t, src)

	_, err := svc.Profile(context.Background(), "AAPL")
	var appErr *xhttp.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Code != "ERR_NOT_FOUND" {
		t.Fatalf("expected ERR_NOT_FOUND, got %s", appErr.Code)
	}
}

func TestProfileReturnsIdentity(t *testing.T) {
	src := &fakeSource{docs: map[int]*models.CompanyFacts{320193: testFacts("Revenues")}}
	svc := newTestService(t, src)

	profile, err := svc.Profile(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	want := models.CompanyProfile{Ticker: "AAPL", CIK: 320193, EntityName: "Apple Inc."}
	if profile != want {
		t.Fatalf("got %+v want %+v", profile, want)
	}
}

func TestQuarterlyArchivesAsync(t *testing.T) {
	src := &fakeSource{docs: map[int]*models.CompanyFacts{320193: testFacts("Revenues")}}
	svc := newTestService(t, src)
	archive := newMemoryArchive()
	svc.SetArchive(archive)

	if _, err := svc.Quarterly(context.Background(), "AAPL", revenueMetric()); err != nil {
		t.Fatalf("quarterly: %v", err)
	}

	<-archive.done
	archive.mu.Lock()
	defer archive.mu.Unlock()
	if got := len(archive.stored["AAPL/revenue"]); got != 4 {
		t.Fatalf("expected 4 archived points, got %d", got)
	}
}

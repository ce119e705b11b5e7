package usecase

import (
	"context"
	"testing"

	"FactPull/internal/domain/models"
	applogger "FactPull/pkg/logger"
)

type fakeQueue struct {
	published []RefreshPayload
}

func (q *fakeQueue) PublishMessage(_ context.Context, msgType string, payload interface{}) error {
	p, ok := payload.(RefreshPayload)
	if ok && msgType == RefreshMessageType {
		q.published = append(q.published, p)
	}
	return nil
}

func TestIsReportForm(t *testing.T) {
	cases := []struct {
		form string
		want bool
	}{
		{"10-K", true},
		{"10-Q", true},
		{"10-K/A", true},
		{"10-q/a", true},
		{"20-F", true},
		{"40-F", true},
		{" 10-Q ", true},
		{"8-K", false},
		{"DEF 14A", false},
		{"4", false},
		{"", false},
	}
	for _, c := range cases {
		if got := isReportForm(c.form); got != c.want {
			t.Errorf("isReportForm(%q) = %v, want %v", c.form, got, c.want)
		}
	}
}

func TestFilingsHandlerEvictsAndEnqueues(t *testing.T) {
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	src := &fakeSource{docs: map[int]*models.CompanyFacts{}}
	q := &fakeQueue{}
	h := NewFilingsHandler("edgar.filings", src, q, nopMetrics{}, l)

	ev := []byte(`{"cik": 320193, "ticker": "AAPL", "form": "10-Q", "filed": "2024-02-02"}`)
	if err := h.Handle(context.Background(), ev); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(src.evicted) != 1 || src.evicted[0] != 320193 {
		t.Fatalf("expected eviction for 320193, got %v", src.evicted)
	}
	if len(q.published) != 1 || q.published[0].CIK != 320193 || q.published[0].Ticker != "AAPL" {
		t.Fatalf("unexpected refresh jobs %v", q.published)
	}
}

func TestFilingsHandlerSkipsNonReportForms(t *testing.T) {
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	src := &fakeSource{docs: map[int]*models.CompanyFacts{}}
	q := &fakeQueue{}
	h := NewFilingsHandler("edgar.filings", src, q, nopMetrics{}, l)

	ev := []byte(`{"cik": 320193, "ticker": "AAPL", "form": "8-K", "filed": "2024-02-02"}`)
	if err := h.Handle(context.Background(), ev); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(src.evicted) != 0 || len(q.published) != 0 {
		t.Fatalf("8-K must be dropped, evicted=%v published=%v", src.evicted, q.published)
	}
}

package xbrl

import (
	"testing"

	"FactPull/internal/domain/models"
)

func TestCalculateMissingQuartersDerivesQ4(t *testing.T) {
	cumulative := []models.FactItem{
		{Start: "2023-01-01", End: "2023-12-31", Val: 360, Form: "10-K", Filed: "2024-02-15"},
		{Start: "2023-01-01", End: "2023-09-30", Val: 270, Form: "10-Q", Filed: "2023-10-25"},
	}
	got := CalculateMissingQuarters(cumulative, nil, true)
	if len(got) != 1 {
		t.Fatalf("expected 1 derived point, got %d", len(got))
	}
	if got[0].Period != "2023-12-31" || got[0].Value != 90 {
		t.Fatalf("unexpected point %+v", got[0])
	}
}

func TestCalculateMissingQuartersSkipsCoveredPeriods(t *testing.T) {
	cumulative := []models.FactItem{
		{Start: "2023-01-01", End: "2023-12-31", Val: 360, Form: "10-K", Filed: "2024-02-15"},
		{Start: "2023-01-01", End: "2023-09-30", Val: 270, Form: "10-Q", Filed: "2023-10-25"},
	}
	covered := map[string]bool{"2023-12-31": true}
	if got := CalculateMissingQuarters(cumulative, covered, true); len(got) != 0 {
		t.Fatalf("expected no points for covered period, got %+v", got)
	}
}

func TestCalculateMissingQuartersNegativePolicy(t *testing.T) {
	cumulative := []models.FactItem{
		{Start: "2023-01-01", End: "2023-12-31", Val: 300, Form: "10-K", Filed: "2024-02-15"},
		{Start: "2023-01-01", End: "2023-09-30", Val: 350, Form: "10-Q", Filed: "2023-10-25"},
	}
	// derived -50 is inconsistent input for revenue-like metrics
	if got := CalculateMissingQuarters(cumulative, nil, true); len(got) != 0 {
		t.Fatalf("expected negative derived Q4 discarded, got %+v", got)
	}
	// a Q4 net loss is kept
	got := CalculateMissingQuarters(cumulative, nil, false)
	if len(got) != 1 || got[0].Value != -50 {
		t.Fatalf("expected derived -50 kept, got %+v", got)
	}
}

func TestCalculateMissingQuartersRequiresNineMonthMatch(t *testing.T) {
	cases := []struct {
		name string
		pool []models.FactItem
	}{
		{"annual alone", []models.FactItem{
			{Start: "2023-01-01", End: "2023-12-31", Val: 360},
		}},
		{"different fiscal year start", []models.FactItem{
			{Start: "2023-01-01", End: "2023-12-31", Val: 360},
			{Start: "2022-10-01", End: "2023-06-30", Val: 270},
		}},
		{"six month is not nine month", []models.FactItem{
			{Start: "2023-01-01", End: "2023-12-31", Val: 360},
			{Start: "2023-01-01", End: "2023-06-30", Val: 180},
		}},
	}
	for _, c := range cases {
		if got := CalculateMissingQuarters(c.pool, nil, true); len(got) != 0 {
			t.Fatalf("%s: expected no derived points, got %+v", c.name, got)
		}
	}
}

func TestCalculateMissingQuartersOnePointPerFiscalYear(t *testing.T) {
	// the same annual reported under two overlapping concepts
	cumulative := []models.FactItem{
		{Start: "2023-01-01", End: "2023-12-31", Val: 360, Form: "10-K", Filed: "2024-02-15"},
		{Start: "2023-01-01", End: "2023-12-31", Val: 360, Form: "10-K", Filed: "2024-02-15"},
		{Start: "2023-01-01", End: "2023-09-30", Val: 270, Form: "10-Q", Filed: "2023-10-25"},
	}
	got := CalculateMissingQuarters(cumulative, nil, true)
	if len(got) != 1 {
		t.Fatalf("expected a single derived point, got %+v", got)
	}
}

package xbrl

import (
	"testing"

	"FactPull/internal/domain/models"
)

func TestDedupeQuarterlyAmendedWins(t *testing.T) {
	pool := []models.FactItem{
		{Start: "2024-04-01", End: "2024-06-30", Val: 90, Form: "10-Q", Filed: "2024-07-20", Frame: "CY2024Q2"},
		{Start: "2024-04-01", End: "2024-06-30", Val: 95, Form: "10-Q/A", Filed: "2024-08-01", Frame: "CY2024Q2"},
	}
	got := DedupeQuarterly(pool)
	if len(got) != 1 {
		t.Fatalf("expected 1 point, got %d", len(got))
	}
	if got[0].Period != "2024-06-30" || got[0].Value != 95 {
		t.Fatalf("unexpected point %+v", got[0])
	}
}

func TestDedupeQuarterlyAmendedWinsDespiteOlderFiling(t *testing.T) {
	// the amendment was filed before a later comparative restatement; it still wins
	pool := []models.FactItem{
		{Start: "2024-04-01", End: "2024-06-30", Val: 90, Form: "10-Q", Filed: "2024-10-25", Frame: "CY2024Q2"},
		{Start: "2024-04-01", End: "2024-06-30", Val: 95, Form: "10-Q/A", Filed: "2024-08-01", Frame: "CY2024Q2"},
	}
	got := DedupeQuarterly(pool)
	if len(got) != 1 || got[0].Value != 95 {
		t.Fatalf("expected amended value 95, got %+v", got)
	}
}

func TestDedupeQuarterlyLatestFiledWins(t *testing.T) {
	pool := []models.FactItem{
		{Start: "2024-01-01", End: "2024-03-31", Val: 80, Form: "10-Q", Filed: "2024-04-25", Frame: "CY2024Q1"},
		{Start: "2024-01-01", End: "2024-03-31", Val: 82, Form: "10-K", Filed: "2025-02-10", Frame: "CY2024Q1"},
	}
	got := DedupeQuarterly(pool)
	if len(got) != 1 || got[0].Value != 82 {
		t.Fatalf("expected restated value 82, got %+v", got)
	}
}

func TestDedupeQuarterlyDropsUnframedItems(t *testing.T) {
	pool := []models.FactItem{
		{Start: "2024-01-01", End: "2024-03-31", Val: 80, Form: "10-Q", Filed: "2024-04-25", Frame: "CY2024Q1"},
		// quarter-length window but framed as a calendar year: mis-tagged, excluded
		{Start: "2024-04-01", End: "2024-06-30", Val: 999, Form: "10-Q", Filed: "2024-07-20", Frame: "CY2024"},
		{Start: "2024-07-01", End: "2024-09-30", Val: 999, Form: "10-Q", Filed: "2024-10-20"},
	}
	got := DedupeQuarterly(pool)
	if len(got) != 1 {
		t.Fatalf("expected only the framed item, got %+v", got)
	}
	if got[0].Period != "2024-03-31" || got[0].Value != 80 {
		t.Fatalf("unexpected point %+v", got[0])
	}
}

func TestDedupeQuarterlyUniqueDescendingPeriods(t *testing.T) {
	pool := []models.FactItem{
		{Start: "2024-01-01", End: "2024-03-31", Val: 80, Form: "10-Q", Filed: "2024-04-25", Frame: "CY2024Q1"},
		{Start: "2024-07-01", End: "2024-09-30", Val: 100, Form: "10-Q", Filed: "2024-10-20", Frame: "CY2024Q3"},
		{Start: "2024-04-01", End: "2024-06-30", Val: 90, Form: "10-Q", Filed: "2024-07-20", Frame: "CY2024Q2"},
		{Start: "2024-04-01", End: "2024-06-30", Val: 91, Form: "10-Q", Filed: "2024-07-19", Frame: "CY2024Q2"},
	}
	got := DedupeQuarterly(pool)
	if len(got) != 3 {
		t.Fatalf("expected 3 points, got %d", len(got))
	}
	seen := map[string]bool{}
	for i, p := range got {
		if seen[p.Period] {
			t.Fatalf("duplicate period %s", p.Period)
		}
		seen[p.Period] = true
		if i > 0 && got[i-1].Period <= p.Period {
			t.Fatalf("not descending: %s before %s", got[i-1].Period, p.Period)
		}
	}
	if got[1].Value != 90 {
		t.Fatalf("expected later-filed 90 for Q2, got %v", got[1].Value)
	}
}

package xbrl

import (
	"testing"

	"FactPull/internal/domain/models"
)

func revenueMetric() models.Metric {
	return models.Metric{
		Name:     "revenue",
		Field:    "revenue",
		Taxonomy: "us-gaap",
		Unit:     "USD",
		Concepts: []string{
			"RevenueFromContractWithCustomerExcludingAssessedTax",
			"RevenueFromContractWithCustomer",
			"SalesRevenueNet",
			"Revenues",
		},
		NegativeIrrelevant:  true,
		PositiveDerivedOnly: true,
	}
}

func factsDoc(concept string, items []models.FactItem) *models.CompanyFacts {
	return &models.CompanyFacts{
		CIK:        320193,
		EntityName: "Test Co",
		Facts: map[string]map[string]models.ConceptFact{
			"us-gaap": {
				concept: {Units: map[string][]models.FactItem{"USD": items}},
			},
		},
	}
}

func TestExtractFillsMissingFourthQuarter(t *testing.T) {
	doc := factsDoc("Revenues", []models.FactItem{
		{Start: "2024-07-01", End: "2024-09-30", Val: 100, Form: "10-Q", Filed: "2024-10-25", Frame: "CY2024Q3"},
		{Start: "2024-04-01", End: "2024-06-30", Val: 90, Form: "10-Q", Filed: "2024-07-22", Frame: "CY2024Q2"},
		{Start: "2024-01-01", End: "2024-03-31", Val: 80, Form: "10-Q", Filed: "2024-04-24", Frame: "CY2024Q1"},
		// no direct Q4 2023; only the 10-K annual and the Q3 YTD figure
		{Start: "2023-01-01", End: "2023-12-31", Val: 360, Form: "10-K", Filed: "2024-02-15", Frame: "CY2023"},
		{Start: "2023-01-01", End: "2023-09-30", Val: 270, Form: "10-Q", Filed: "2023-10-25"},
	})

	got := Extract(doc, revenueMetric())
	want := []models.PeriodPoint{
		{Period: "2024-09-30", Value: 100},
		{Period: "2024-06-30", Value: 90},
		{Period: "2024-03-31", Value: 80},
		{Period: "2023-12-31", Value: 90},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d points, got %+v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("point %d: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestExtractFallsBackToAlternateConcept(t *testing.T) {
	// "Revenues" never filed; older issuers tag under "SalesRevenueNet"
	doc := factsDoc("SalesRevenueNet", []models.FactItem{
		{Start: "2016-01-01", End: "2016-03-31", Val: 55, Form: "10-Q", Filed: "2016-04-28", Frame: "CY2016Q1"},
		{Start: "2016-04-01", End: "2016-06-30", Val: 60, Form: "10-Q", Filed: "2016-07-27", Frame: "CY2016Q2"},
	})

	got := Extract(doc, revenueMetric())
	if len(got) != 2 {
		t.Fatalf("expected 2 points from fallback concept, got %+v", got)
	}
	if got[0].Period != "2016-06-30" || got[0].Value != 60 {
		t.Fatalf("unexpected first point %+v", got[0])
	}
}

func TestExtractDirectQuarterBeatsDerived(t *testing.T) {
	doc := factsDoc("Revenues", []models.FactItem{
		{Start: "2023-10-01", End: "2023-12-31", Val: 95, Form: "10-Q", Filed: "2024-01-30", Frame: "CY2023Q4"},
		{Start: "2023-01-01", End: "2023-12-31", Val: 360, Form: "10-K", Filed: "2024-02-15", Frame: "CY2023"},
		{Start: "2023-01-01", End: "2023-09-30", Val: 270, Form: "10-Q", Filed: "2023-10-25"},
	})

	got := Extract(doc, revenueMetric())
	if len(got) != 1 {
		t.Fatalf("expected 1 point, got %+v", got)
	}
	// the directly reported 95, not the derived 90
	if got[0].Period != "2023-12-31" || got[0].Value != 95 {
		t.Fatalf("unexpected point %+v", got[0])
	}
}

func TestExtractEmptyDocument(t *testing.T) {
	doc := &models.CompanyFacts{CIK: 1, EntityName: "Empty Co"}
	if got := Extract(doc, revenueMetric()); len(got) != 0 {
		t.Fatalf("expected empty series, got %+v", got)
	}
	if got := ExtractTTM(doc, revenueMetric()); len(got) != 0 {
		t.Fatalf("expected empty TTM series, got %+v", got)
	}
}

func TestExtractTTMFromDocument(t *testing.T) {
	doc := factsDoc("Revenues", []models.FactItem{
		{Start: "2024-10-01", End: "2024-12-31", Val: 110, Form: "10-Q", Filed: "2025-01-30", Frame: "CY2024Q4"},
		{Start: "2024-07-01", End: "2024-09-30", Val: 100, Form: "10-Q", Filed: "2024-10-25", Frame: "CY2024Q3"},
		{Start: "2024-04-01", End: "2024-06-30", Val: 90, Form: "10-Q", Filed: "2024-07-22", Frame: "CY2024Q2"},
		{Start: "2024-01-01", End: "2024-03-31", Val: 80, Form: "10-Q", Filed: "2024-04-24", Frame: "CY2024Q1"},
		{Start: "2023-10-01", End: "2023-12-31", Val: 70, Form: "10-Q", Filed: "2024-01-30", Frame: "CY2023Q4"},
	})

	got := ExtractTTM(doc, revenueMetric())
	if len(got) != 2 {
		t.Fatalf("expected 2 TTM points, got %+v", got)
	}
	if got[0].Period != "2024-12-31" || got[0].Value != 380 {
		t.Fatalf("unexpected first TTM point %+v", got[0])
	}
	if got[1].Period != "2024-09-30" || got[1].Value != 340 {
		t.Fatalf("unexpected second TTM point %+v", got[1])
	}
}

package xbrl

import (
	"FactPull/internal/domain/models"
)

// Extract runs the full normalization pipeline for one metric over a facts
// document: classify and pool every candidate item, dedupe the direct
// quarters, back-calculate missing Q4s from cumulative data, and finalize.
// Pure and synchronous; an empty document degrades to an empty series.
func Extract(doc *models.CompanyFacts, m models.Metric) []models.PeriodPoint {
	pools := MergePools(doc, m)

	direct := DedupeQuarterly(pools.Quarterly)
	covered := make(map[string]bool, len(direct))
	for _, p := range direct {
		covered[p.Period] = true
	}
	calculated := CalculateMissingQuarters(pools.Cumulative, covered, m.PositiveDerivedOnly)

	return Finalize(direct, calculated)
}

// ExtractTTM derives the trailing-twelve-month series for one metric. The TTM
// series has no lifecycle of its own; it is recomputed from the quarterly
// series on every call.
func ExtractTTM(doc *models.CompanyFacts, m models.Metric) []models.PeriodPoint {
	return ComputeTTM(Extract(doc, m))
}

package xbrl

import (
	"FactPull/internal/domain/models"
)

// Pools holds the classified candidate items for one metric.
type Pools struct {
	Quarterly  []models.FactItem
	Cumulative []models.FactItem
}

// MergePools collects items for every concept name the metric accepts, in
// priority order, and buckets them by duration class. Nothing is deduplicated
// here: overlapping concepts contribute overlapping items and the dedup stage
// resolves them. A concept absent from the document is skipped silently.
//
// Pool order is deterministic (concept order, then source order), which later
// first-match scans rely on.
func MergePools(doc *models.CompanyFacts, m models.Metric) Pools {
	var pools Pools
	for _, concept := range m.Concepts {
		for _, item := range doc.UnitItems(m.Taxonomy, concept, m.Unit) {
			switch Classify(item, m.NegativeIrrelevant) {
			case DurationQuarterly:
				pools.Quarterly = append(pools.Quarterly, item)
			case DurationCumulative:
				pools.Cumulative = append(pools.Cumulative, item)
			}
		}
	}
	return pools
}

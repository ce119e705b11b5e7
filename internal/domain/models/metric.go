package models

// Metric describes one logical financial series and how to extract it from a
// facts document. Issuers tag the same real-world figure under different XBRL
// concept names across years, so each metric carries a priority-ordered list of
// acceptable concepts.
type Metric struct {
	Name     string   `json:"name" yaml:"name"`
	Slug     string   `json:"slug" yaml:"slug"`
	Field    string   `json:"field" yaml:"field"`
	Taxonomy string   `json:"taxonomy" yaml:"taxonomy"`
	Unit     string   `json:"unit" yaml:"unit"`
	Concepts []string `json:"concepts" yaml:"concepts"`

	// NegativeIrrelevant drops negative reported values at classification.
	// Negative revenue is not a valid reported figure; net losses are.
	NegativeIrrelevant bool `json:"negativeIrrelevant" yaml:"negative_irrelevant"`
	// PositiveDerivedOnly discards derived Q4 values <= 0 in the gap-fill step.
	PositiveDerivedOnly bool `json:"positiveDerivedOnly" yaml:"positive_derived_only"`
}

// DefaultMetrics is the built-in metric table. Config may replace it wholesale.
func DefaultMetrics() []Metric {
	return []Metric{
		{
			Name:     "revenue",
			Slug:     "revenue",
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
		},
		{
			Name:     "earnings",
			Slug:     "earnings",
			Field:    "earnings",
			Taxonomy: "us-gaap",
			Unit:     "USD",
			Concepts: []string{
				"NetIncomeLoss",
				"ProfitLoss",
				"NetIncomeLossAvailableToCommonStockholdersBasic",
			},
		},
		{
			Name:     "operatingIncome",
			Slug:     "operating-income",
			Field:    "operatingIncome",
			Taxonomy: "us-gaap",
			Unit:     "USD",
			Concepts: []string{
				"OperatingIncomeLoss",
			},
			PositiveDerivedOnly: true,
		},
		{
			Name:     "grossProfit",
			Slug:     "gross-profit",
			Field:    "grossProfit",
			Taxonomy: "us-gaap",
			Unit:     "USD",
			Concepts: []string{
				"GrossProfit",
			},
			PositiveDerivedOnly: true,
		},
	}
}

// MetricTable resolves metrics by name or route slug.
type MetricTable struct {
	metrics []Metric
	byName  map[string]Metric
	bySlug  map[string]Metric
}

func NewMetricTable(metrics []Metric) *MetricTable {
	t := &MetricTable{
		metrics: metrics,
		byName:  make(map[string]Metric, len(metrics)),
		bySlug:  make(map[string]Metric, len(metrics)),
	}
	for _, m := range metrics {
		t.byName[m.Name] = m
		t.bySlug[m.Slug] = m
	}
	return t
}

func (t *MetricTable) ByName(name string) (Metric, bool) {
	m, ok := t.byName[name]
	return m, ok
}

func (t *MetricTable) BySlug(slug string) (Metric, bool) {
	m, ok := t.bySlug[slug]
	return m, ok
}

// All returns metrics in table order.
func (t *MetricTable) All() []Metric { return t.metrics }

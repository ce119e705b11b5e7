package models

// FactItem is one reported value from an EDGAR XBRL filing. Dates are
// zero-padded ISO strings (YYYY-MM-DD) so lexicographic order equals
// chronological order.
type FactItem struct {
	Start string  `json:"start"`
	End   string  `json:"end"`
	Val   float64 `json:"val"`
	Accn  string  `json:"accn,omitempty"`
	FY    int     `json:"fy,omitempty"`
	FP    string  `json:"fp,omitempty"`
	Form  string  `json:"form"`
	Filed string  `json:"filed"`
	Frame string  `json:"frame,omitempty"`
}

// ConceptFact holds every reported item for a single XBRL concept, keyed by unit.
type ConceptFact struct {
	Label       string                `json:"label"`
	Description string                `json:"description"`
	Units       map[string][]FactItem `json:"units"`
}

// CompanyFacts is the per-company document served by the EDGAR companyfacts API:
// taxonomy ("us-gaap", "dei") -> concept name -> reported items.
type CompanyFacts struct {
	CIK        int                               `json:"cik"`
	EntityName string                            `json:"entityName"`
	Facts      map[string]map[string]ConceptFact `json:"facts"`
}

// UnitItems returns the items reported for a concept under a unit, or nil when
// any level of the document is absent. Absence is normal, not an error.
func (cf *CompanyFacts) UnitItems(taxonomy, concept, unit string) []FactItem {
	if cf == nil {
		return nil
	}
	concepts, ok := cf.Facts[taxonomy]
	if !ok {
		return nil
	}
	fact, ok := concepts[concept]
	if !ok {
		return nil
	}
	return fact.Units[unit]
}

// CompanyProfile is the identity slice of a facts document exposed to clients.
type CompanyProfile struct {
	Ticker     string `json:"ticker"`
	CIK        int    `json:"cik"`
	EntityName string `json:"entityName"`
}

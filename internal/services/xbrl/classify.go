package xbrl

import (
	"FactPull/internal/domain/models"
	"FactPull/pkg/util"
)

// DurationClass buckets a reported item by the length of its reporting period.
type DurationClass int

const (
	DurationIrrelevant DurationClass = iota
	DurationQuarterly
	DurationCumulative
)

func (d DurationClass) String() string {
	switch d {
	case DurationQuarterly:
		return "quarterly"
	case DurationCumulative:
		return "cumulative"
	default:
		return "irrelevant"
	}
}

// Duration bounds in calendar days. All intervals are closed on both ends:
// a 70-day or 120-day period is quarterly, a 150-day or 380-day one cumulative.
const (
	quarterlyMinDays  = 70
	quarterlyMaxDays  = 120
	cumulativeMinDays = 150
	cumulativeMaxDays = 380
)

// Classify assigns a duration class to one reported item. Items with a zero
// value, an unparsable or missing date, or (when negativeIrrelevant is set) a
// negative value are irrelevant regardless of duration. Pure function.
func Classify(item models.FactItem, negativeIrrelevant bool) DurationClass {
	if item.Val == 0 {
		return DurationIrrelevant
	}
	if negativeIrrelevant && item.Val < 0 {
		return DurationIrrelevant
	}
	days, ok := util.DaysBetween(item.Start, item.End)
	if !ok {
		return DurationIrrelevant
	}
	switch {
	case days >= quarterlyMinDays && days <= quarterlyMaxDays:
		return DurationQuarterly
	case days >= cumulativeMinDays && days <= cumulativeMaxDays:
		return DurationCumulative
	default:
		return DurationIrrelevant
	}
}

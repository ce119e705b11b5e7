package xbrl

import (
	"FactPull/internal/domain/models"
	"FactPull/pkg/util"
)

// Annual and nine-month duration bounds for the gap-fill step, calendar days.
const (
	annualMinDays      = 330
	annualMaxDays      = 380
	nineMonthDays      = 270
	nineMonthSlackDays = 30
)

// CalculateMissingQuarters derives Q4 points for fiscal years that lack a
// discrete fourth-quarter filing. Many issuers only report the annual total in
// the 10-K, so Q4 = annual - nine-month cumulative for the same fiscal year.
//
// covered lists periods already satisfied by direct quarterly data; direct data
// always wins over a derived value. When positiveOnly is set, derived values
// <= 0 are discarded (a negative derived Q4 means the inputs disagree for
// revenue-like metrics, while a Q4 net loss is a legitimate figure).
func CalculateMissingQuarters(cumulative []models.FactItem, covered map[string]bool, positiveOnly bool) []models.PeriodPoint {
	var out []models.PeriodPoint
	emitted := make(map[string]bool)
	for _, annual := range cumulative {
		days, ok := util.DaysBetween(annual.Start, annual.End)
		if !ok || days < annualMinDays || days > annualMaxDays {
			continue
		}
		if covered[annual.End] || emitted[annual.End] {
			continue
		}
		nine, ok := findNineMonth(cumulative, annual)
		if !ok {
			continue
		}
		q4 := annual.Val - nine.Val
		if positiveOnly && q4 <= 0 {
			continue
		}
		emitted[annual.End] = true
		out = append(out, models.PeriodPoint{Period: annual.End, Value: q4})
	}
	return out
}

// findNineMonth scans the pool for the first cumulative item covering the
// first nine months of the annual item's fiscal year: same start, an earlier
// end, and a duration within 30 days of 270.
func findNineMonth(pool []models.FactItem, annual models.FactItem) (models.FactItem, bool) {
	for _, item := range pool {
		if item.Start != annual.Start || item.End >= annual.End {
			continue
		}
		days, ok := util.DaysBetween(item.Start, item.End)
		if !ok {
			continue
		}
		if days < nineMonthDays-nineMonthSlackDays || days > nineMonthDays+nineMonthSlackDays {
			continue
		}
		return item, true
	}
	return models.FactItem{}, false
}

package xbrl

import (
	"regexp"
	"sort"
	"strings"

	"FactPull/internal/domain/models"
)

// quarterFrame marks facts EDGAR framed as a discrete quarter (e.g. "CY2023Q2").
// Items without it merely happen to span a quarter-length window, typically
// mis-tagged cumulative data.
var quarterFrame = regexp.MustCompile(`Q[1-4]`)

// DedupeQuarterly selects exactly one value per reporting end date from the
// quarterly pool. The same quarter shows up in the original 10-Q, in later
// comparative figures, and in amendments; precedence is amended filings first,
// then latest filing date.
func DedupeQuarterly(pool []models.FactItem) []models.PeriodPoint {
	framed := make([]models.FactItem, 0, len(pool))
	for _, item := range pool {
		if quarterFrame.MatchString(item.Frame) {
			framed = append(framed, item)
		}
	}

	// ISO dates are zero-padded, so string order is date order.
	sort.SliceStable(framed, func(i, j int) bool {
		a, b := framed[i], framed[j]
		if a.End != b.End {
			return a.End > b.End
		}
		amendedA := isAmended(a.Form)
		amendedB := isAmended(b.Form)
		if amendedA != amendedB {
			return amendedA
		}
		return a.Filed > b.Filed
	})

	out := make([]models.PeriodPoint, 0, len(framed))
	seen := make(map[string]bool, len(framed))
	for _, item := range framed {
		if seen[item.End] {
			continue
		}
		seen[item.End] = true
		out = append(out, models.PeriodPoint{Period: item.End, Value: item.Val})
	}
	return out
}

func isAmended(form string) bool {
	return strings.Contains(form, "/A")
}

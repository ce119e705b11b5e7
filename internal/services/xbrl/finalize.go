package xbrl

import (
	"sort"

	"FactPull/internal/domain/models"
)

// Retention caps: 40 quarters keeps ten years; a full 40-quarter series yields
// at most 37 rolling four-quarter windows.
const (
	QuarterlySeriesCap = 40
	TTMSeriesCap       = 37
)

// Finalize merges direct and calculated quarters into the final series:
// sorted descending by period, unique periods, truncated to the retention
// window. direct must come first so the stable sort keeps it ahead of a
// calculated point for the same period.
func Finalize(direct, calculated []models.PeriodPoint) []models.PeriodPoint {
	merged := make([]models.PeriodPoint, 0, len(direct)+len(calculated))
	merged = append(merged, direct...)
	merged = append(merged, calculated...)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Period > merged[j].Period
	})

	out := make([]models.PeriodPoint, 0, len(merged))
	seen := make(map[string]bool, len(merged))
	for _, p := range merged {
		if seen[p.Period] {
			continue
		}
		seen[p.Period] = true
		out = append(out, p)
	}
	if len(out) > QuarterlySeriesCap {
		out = out[:QuarterlySeriesCap]
	}
	return out
}

// ComputeTTM rolls a four-quarter sum over a series sorted most-recent-first.
// Each window [i-3, i] is labeled with the period at i-3, the newest quarter
// inside the window, so the output stays descending. Fewer than four quarters
// yields an empty series.
func ComputeTTM(quarterly []models.PeriodPoint) []models.PeriodPoint {
	if len(quarterly) < 4 {
		return nil
	}
	out := make([]models.PeriodPoint, 0, len(quarterly)-3)
	for i := 3; i < len(quarterly); i++ {
		sum := quarterly[i-3].Value + quarterly[i-2].Value + quarterly[i-1].Value + quarterly[i].Value
		out = append(out, models.PeriodPoint{Period: quarterly[i-3].Period, Value: sum})
	}
	if len(out) > TTMSeriesCap {
		out = out[:TTMSeriesCap]
	}
	return out
}

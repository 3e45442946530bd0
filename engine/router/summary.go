package router

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/ClaimLensAI/claimlens-mvp/engine/domain"
	"github.com/ClaimLensAI/claimlens-mvp/engine/semantic"
)

// MonthlyTotals buckets search hits by calendar month and sums the insured
// amounts, keeping only hits dated in year. Hits with a missing or
// unparseable date or amount are skipped. Totals are rounded to two
// decimals and returned ascending by month.
func MonthlyTotals(results []semantic.SearchResult, year int) []MonthlyEntry {
	totals := make(map[int]float64)
	for _, r := range results {
		d, err := time.Parse(domain.DateLayout, r.Meta["date"])
		if err != nil || d.Year() != year {
			continue
		}
		amount, err := strconv.ParseFloat(r.Meta["amount_insured"], 64)
		if err != nil {
			continue
		}
		totals[int(d.Month())] += amount
	}

	months := make([]int, 0, len(totals))
	for m := range totals {
		months = append(months, m)
	}
	sort.Ints(months)

	entries := make([]MonthlyEntry, 0, len(months))
	for _, m := range months {
		entries = append(entries, MonthlyEntry{
			Year:          year,
			Month:         m,
			AmountInsured: round2(totals[m]),
		})
	}
	return entries
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

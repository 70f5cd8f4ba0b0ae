package schedule

import (
	"fmt"
	"log"
	"sort"

	"temposync/internal/models"
)

const maxSuggestions = 5

// BudgetReport summarizes total scheduled time against the daily cap.
// It is advisory only: the entries it was computed from are never
// mutated or dropped.
type BudgetReport struct {
	TotalSeconds int
	CapSeconds   int
	Fits         []*models.Entry
	Overruns     []*models.Entry
	Suggestions  []string
}

// Exceeded reports whether the total scheduled time is over the cap
func (r *BudgetReport) Exceeded() bool {
	return r.TotalSeconds > r.CapSeconds
}

// ExcessHours returns how far over the cap the total is, in hours
func (r *BudgetReport) ExcessHours() float64 {
	return float64(r.TotalSeconds-r.CapSeconds) / 3600.0
}

// ValidateBudget compares the total duration of all entries (fixed and
// derived, post-allocation) to the daily cap. When exceeded it greedily
// partitions entries by descending duration into a prefix that fits under
// the cap and a remainder, and derives reduction suggestions from the
// remainder. The greedy split is an approximation, not an optimal packing.
func ValidateBudget(entries []*models.Entry, capHours float64) *BudgetReport {
	report := &BudgetReport{CapSeconds: int(capHours * 3600)}
	for _, e := range entries {
		report.TotalSeconds += e.DurationSeconds
	}
	if !report.Exceeded() {
		return report
	}

	sorted := append([]*models.Entry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DurationSeconds > sorted[j].DurationSeconds
	})

	running := 0
	for _, e := range sorted {
		if running+e.DurationSeconds <= report.CapSeconds {
			report.Fits = append(report.Fits, e)
			running += e.DurationSeconds
		} else {
			report.Overruns = append(report.Overruns, e)
		}
	}

	remaining := report.CapSeconds - running
	for _, e := range report.Overruns {
		if len(report.Suggestions) == maxSuggestions {
			break
		}
		if e.DurationSeconds > remaining {
			report.Suggestions = append(report.Suggestions, fmt.Sprintf(
				"Reduce %s by %.1fh", e.Code, float64(e.DurationSeconds-remaining)/3600.0))
			break
		}
		report.Suggestions = append(report.Suggestions, fmt.Sprintf(
			"Remove %s (%.1fh)", e.Code, e.Hours()))
		remaining -= e.DurationSeconds
	}

	return report
}

// Log writes the report through the standard logger. Only exceeded
// budgets produce output.
func (r *BudgetReport) Log() {
	if !r.Exceeded() {
		return
	}

	log.Printf("Warning: total time (%.1fh) exceeds daily limit (%.1fh) by %.1fh",
		float64(r.TotalSeconds)/3600.0, float64(r.CapSeconds)/3600.0, r.ExcessHours())
	log.Printf("Warning: manual adjustment required in preview file before submission")

	log.Printf("Items that fit in daily limit (%.1fh):", float64(r.CapSeconds)/3600.0)
	for _, e := range r.Fits {
		log.Printf("  - %s: %.2fh", e.Code, e.Hours())
	}
	log.Printf("Items that exceed daily limit:")
	for _, e := range r.Overruns {
		log.Printf("  - %s: %.2fh", e.Code, e.Hours())
	}
	if len(r.Suggestions) > 0 {
		log.Printf("Suggested reductions:")
		for _, s := range r.Suggestions {
			log.Printf("  - %s", s)
		}
	}
}

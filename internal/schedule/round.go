package schedule

import (
	"log"

	"temposync/internal/models"
)

// RoundUp rounds a duration in seconds up to the next multiple of the
// billing granularity. Zero stays zero; any other remainder costs a full
// granularity unit.
func RoundUp(durationSeconds, granularityMinutes int) int {
	unit := granularityMinutes * 60
	if unit <= 0 {
		return durationSeconds
	}
	return (durationSeconds + unit - 1) / unit * unit
}

// RoundEntries applies billing-granularity rounding to every non-static
// entry. Static task durations pass through unchanged.
func RoundEntries(entries []*models.Entry, granularityMinutes int) {
	for _, e := range entries {
		if e.Static {
			continue
		}
		original := e.DurationSeconds
		e.DurationSeconds = RoundUp(e.DurationSeconds, granularityMinutes)
		if e.DurationSeconds != original {
			log.Printf("Rounded %s: %ds -> %ds", e.Code, original, e.DurationSeconds)
		}
	}
}

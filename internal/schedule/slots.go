package schedule

import (
	"fmt"
	"sort"
	"time"

	"temposync/internal/models"
)

// Slot is a contiguous free interval in the workday available for
// dynamic placement.
type Slot struct {
	Start time.Time
	End   time.Time
}

// Duration returns the length of the slot
func (s Slot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Seconds returns the length of the slot in whole seconds
func (s Slot) Seconds() int {
	return int(s.Duration() / time.Second)
}

type occupant struct {
	start    time.Time
	end      time.Time
	gapAfter bool
}

// ComputeSlots walks the workday and returns the free intervals left
// between fixed entries. The lunch window, when non-nil, blocks time like
// a fixed entry but directly abuts work on both sides: ordinary fixed
// entries push the cursor past their end plus the gap, lunch only past its
// end. Overlapping occupants are not resolved here; see OverlapWarnings.
func ComputeSlots(static []*models.Entry, lunch *Slot, workStart, workEnd time.Time, gap time.Duration) []Slot {
	occupants := make([]occupant, 0, len(static)+1)
	for _, e := range static {
		occupants = append(occupants, occupant{start: e.Start, end: e.End(), gapAfter: true})
	}
	if lunch != nil {
		occupants = append(occupants, occupant{start: lunch.Start, end: lunch.End})
	}

	sort.SliceStable(occupants, func(i, j int) bool {
		return occupants[i].start.Before(occupants[j].start)
	})

	var slots []Slot
	cursor := workStart

	for _, o := range occupants {
		if cursor.Before(o.start) {
			slots = append(slots, Slot{Start: cursor, End: o.start})
		}
		cursor = o.end
		if o.gapAfter {
			cursor = cursor.Add(gap)
		}
	}

	if cursor.Before(workEnd) {
		slots = append(slots, Slot{Start: cursor, End: workEnd})
	}

	return slots
}

// OverlapWarnings reports fixed entries whose scheduled times collide.
// The slot walk processes them in sorted order without resolution, so
// collisions are a configuration problem the user has to fix.
func OverlapWarnings(static []*models.Entry) []string {
	sorted := append([]*models.Entry(nil), static...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	var warnings []string
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if prev.End().After(cur.Start) {
			warnings = append(warnings, fmt.Sprintf(
				"fixed tasks %s (%s-%s) and %s (%s-%s) overlap",
				prev.Code, prev.Start.Format("15:04"), prev.End().Format("15:04"),
				cur.Code, cur.Start.Format("15:04"), cur.End().Format("15:04")))
		}
	}
	return warnings
}

package schedule

import (
	"log"
	"sort"
	"time"

	"temposync/internal/models"
)

// Allocate places non-static entries into free slots in chronological
// order of their original observation time, reassigning each entry's
// Start. Entries that fit nowhere are returned as overflow; an empty
// return means every entry was placed. Durations are never modified.
func Allocate(entries []*models.Entry, slots []Slot, gap time.Duration) []*models.Entry {
	if len(entries) == 0 {
		return nil
	}
	if len(slots) == 0 {
		log.Printf("Warning: no free slots available for %d entries", len(entries))
		return append([]*models.Entry(nil), entries...)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ObservedAt.Before(entries[j].ObservedAt)
	})

	slotIndex := 0
	cursor := slots[0].Start
	var overflow []*models.Entry

	for _, e := range entries {
		placed := false

		for slotIndex < len(slots) {
			slot := slots[slotIndex]
			if cursor.Before(slot.Start) {
				cursor = slot.Start
			}

			if !cursor.Add(e.Duration()).After(slot.End) {
				e.Start = cursor
				cursor = cursor.Add(e.Duration() + gap)
				placed = true
				break
			}

			slotIndex++
			if slotIndex < len(slots) {
				cursor = slots[slotIndex].Start
			}
		}

		if !placed {
			overflow = append(overflow, e)
		}
	}

	if len(overflow) > 0 {
		log.Printf("Warning: %d entries do not fit in the available slots", len(overflow))
	}
	return overflow
}

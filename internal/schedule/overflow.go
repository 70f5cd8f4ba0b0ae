package schedule

import (
	"log"
	"time"

	"temposync/internal/models"
)

// ResolveOverflow retries allocation after an overflow, escalating in two
// steps: first with the inter-entry gap halved (floored to whole minutes),
// then by extending the workday end by exactly the missing capacity. The
// gap compression is local to this call; the caller's gap setting is never
// touched. Any entries still unplaced after the second attempt are
// returned; no third attempt is made.
func ResolveOverflow(static, dynamic []*models.Entry, lunch *Slot, workStart, workEnd time.Time, gap time.Duration) []*models.Entry {
	compressed := gap / time.Minute / 2 * time.Minute
	log.Printf("Overflow: retrying allocation with compressed gap %v", compressed)

	slots := ComputeSlots(static, lunch, workStart, workEnd, compressed)
	overflow := Allocate(dynamic, slots, compressed)
	if len(overflow) == 0 {
		log.Printf("Overflow: entries fit after gap compression")
		return nil
	}

	var demand, capacity int
	for _, e := range dynamic {
		demand += e.DurationSeconds
	}
	for _, s := range slots {
		capacity += s.Seconds()
	}

	missing := demand - capacity
	if missing <= 0 {
		return overflow
	}

	extendedEnd := workEnd.Add(time.Duration(missing) * time.Second)
	log.Printf("Overflow: extending workday end to %s (+%dmin)",
		extendedEnd.Format("15:04"), missing/60)

	if len(slots) > 0 {
		slots[len(slots)-1].End = extendedEnd
	} else {
		slots = []Slot{{Start: workStart, End: extendedEnd}}
	}

	return Allocate(dynamic, slots, compressed)
}

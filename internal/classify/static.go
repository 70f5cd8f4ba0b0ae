package classify

import (
	"log"
	"time"

	"temposync/internal/models"
	"temposync/internal/schedule"
)

// StaticEntries instantiates the static tasks applicable on the given
// date into fixed entries. Tasks with an unparseable time of day are
// skipped with a warning.
func StaticEntries(tasks []models.StaticTask, date time.Time) []*models.Entry {
	var entries []*models.Entry

	for i := range tasks {
		task := &tasks[i]
		if !task.AppliesTo(date) {
			continue
		}

		start, err := schedule.ParseTimeOfDay(task.TimeOfDay, date)
		if err != nil {
			log.Printf("Warning: skipping static task %q: %v", task.Name, err)
			continue
		}

		entries = append(entries, &models.Entry{
			Code:            task.Code,
			DurationSeconds: task.DurationMinutes * 60,
			Start:           start,
			Description:     task.Description,
			Static:          true,
			ObservedAt:      start,
		})
		log.Printf("Added static task: %s (%dmin)", task.Name, task.DurationMinutes)
	}

	return entries
}

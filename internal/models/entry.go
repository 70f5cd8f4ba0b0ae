package models

import "time"

// Observation is a single window-activity record from the telemetry service
type Observation struct {
	Title           string
	App             string
	DurationSeconds int
	Timestamp       time.Time
}

// Entry is a billable time entry, either derived from observations or
// instantiated from a static task. Start is reassigned during allocation;
// DurationSeconds never changes after rounding, and ObservedAt never
// changes after creation.
type Entry struct {
	Code            string
	DurationSeconds int
	Start           time.Time
	Description     string
	Static          bool
	ObservedAt      time.Time
}

// Duration returns the entry duration as a time.Duration
func (e *Entry) Duration() time.Duration {
	return time.Duration(e.DurationSeconds) * time.Second
}

// End returns the scheduled end time of the entry
func (e *Entry) End() time.Time {
	return e.Start.Add(e.Duration())
}

// Hours returns the entry duration in fractional hours
func (e *Entry) Hours() float64 {
	return float64(e.DurationSeconds) / 3600.0
}

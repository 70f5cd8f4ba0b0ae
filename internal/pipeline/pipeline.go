package pipeline

import (
	"fmt"
	"log"
	"sort"
	"time"

	"temposync/internal/classify"
	"temposync/internal/config"
	"temposync/internal/history"
	"temposync/internal/models"
	"temposync/internal/preview"
	"temposync/internal/schedule"
	"temposync/internal/timesheet"
)

// Telemetry provides a day's window observations
type Telemetry interface {
	Events(date time.Time) ([]models.Observation, error)
}

// Manager coordinates the daily pipeline: observations are classified
// and aggregated, durations rounded, entries scheduled around fixed
// commitments, and the result validated against the daily cap. Each
// calendar date owns its own entry and slot lists; a failure on one date
// never aborts the others.
type Manager struct {
	cfg         *models.Config
	aggregator  *classify.Aggregator
	tasks       []models.StaticTask
	telemetry   Telemetry
	submitter   timesheet.Submitter
	store       *history.Store
	previewPath string
}

// New creates a pipeline manager. The history store may be nil, in which
// case no run ledger is kept.
func New(cfg *models.Config, rules []models.MappingRule, tasks []models.StaticTask,
	telemetry Telemetry, submitter timesheet.Submitter, store *history.Store) (*Manager, error) {

	classifier, err := classify.NewClassifier(rules, cfg.Activity.TicketPattern)
	if err != nil {
		return nil, err
	}

	previewPath, err := config.ExpandPath(cfg.Files.PreviewPath)
	if err != nil {
		return nil, err
	}

	return &Manager{
		cfg:         cfg,
		aggregator:  classify.NewAggregator(classifier, cfg.Activity.MinimumDurationSeconds),
		tasks:       tasks,
		telemetry:   telemetry,
		submitter:   submitter,
		store:       store,
		previewPath: previewPath,
	}, nil
}

// ProcessDate runs the full pipeline for one calendar date and returns
// the finalized entry list sorted by scheduled start.
func (m *Manager) ProcessDate(date time.Time) ([]*models.Entry, error) {
	return m.processDate(date, "daily")
}

func (m *Manager) processDate(date time.Time, mode string) ([]*models.Entry, error) {
	log.Printf("Processing activities for %s", date.Format("2006-01-02"))

	static := classify.StaticEntries(m.tasks, date)
	for _, w := range schedule.OverlapWarnings(static) {
		log.Printf("Warning: %s", w)
	}

	var observations []models.Observation
	if obs, err := m.telemetry.Events(date); err != nil {
		log.Printf("Warning: telemetry unavailable, proceeding with fixed entries only: %v", err)
	} else {
		observations = obs
	}

	dynamic := m.aggregator.Aggregate(observations)
	entries := append(append([]*models.Entry(nil), static...), dynamic...)
	if len(entries) == 0 {
		log.Printf("No time entries found for %s", date.Format("2006-01-02"))
		return nil, nil
	}

	schedule.RoundEntries(entries, m.cfg.Schedule.RoundingMinutes)

	unplaced, err := m.scheduleDay(static, dynamic, date)
	if err != nil {
		return nil, err
	}

	report := schedule.ValidateBudget(entries, m.cfg.Schedule.DailyCapHours)
	report.Log()

	if m.store != nil {
		if _, err := m.store.RecordRun(date, mode, entries, unplaced, report.Exceeded()); err != nil {
			log.Printf("Warning: failed to record run: %v", err)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Start.Before(entries[j].Start)
	})
	return entries, nil
}

// scheduleDay places the dynamic entries into the free slots left by the
// static ones, escalating through the overflow handler when they do not
// fit. It returns the number of entries still unplaced.
func (m *Manager) scheduleDay(static, dynamic []*models.Entry, date time.Time) (int, error) {
	if len(dynamic) == 0 {
		return 0, nil
	}

	sched := m.cfg.Schedule
	workStart, err := schedule.ParseTimeOfDay(sched.WorkStart, date)
	if err != nil {
		return 0, fmt.Errorf("invalid work_start: %w", err)
	}
	workEnd, err := schedule.ParseTimeOfDay(sched.WorkEnd, date)
	if err != nil {
		return 0, fmt.Errorf("invalid work_end: %w", err)
	}
	gap := time.Duration(sched.GapMinutes) * time.Minute

	var lunch *schedule.Slot
	if sched.Lunch.Enabled {
		lunchStart, err := schedule.ParseTimeOfDay(sched.Lunch.TimeOfDay, date)
		if err != nil {
			return 0, fmt.Errorf("invalid lunch time: %w", err)
		}
		lunch = &schedule.Slot{
			Start: lunchStart,
			End:   lunchStart.Add(time.Duration(sched.Lunch.DurationMinutes) * time.Minute),
		}
	}

	slots := schedule.ComputeSlots(static, lunch, workStart, workEnd, gap)
	if len(slots) == 0 {
		log.Printf("Warning: no free slots in the workday; entries keep their observed times")
		return len(dynamic), nil
	}

	overflow := schedule.Allocate(dynamic, slots, gap)
	if len(overflow) == 0 {
		return 0, nil
	}

	remaining := schedule.ResolveOverflow(static, dynamic, lunch, workStart, workEnd, gap)
	if len(remaining) > 0 {
		log.Printf("Warning: %d entries remain unplaced after overflow handling:", len(remaining))
		for _, e := range remaining {
			log.Printf("  - %s (%.2fh)", e.Code, e.Hours())
		}
	}
	return len(remaining), nil
}

// ProcessWeek runs the daily pipeline for Monday through Friday starting
// at the given Monday. A failed date is logged and skipped.
func (m *Manager) ProcessWeek(monday time.Time) []*models.Entry {
	log.Printf("Processing weekly activities starting %s", monday.Format("2006-01-02"))

	var all []*models.Entry
	for i := 0; i < 5; i++ {
		date := monday.AddDate(0, 0, i)
		entries, err := m.processDate(date, "weekly")
		if err != nil {
			log.Printf("Error processing %s: %v", date.Format("2006-01-02"), err)
			continue
		}
		all = append(all, entries...)
	}

	log.Printf("Processed %d total entries for the week", len(all))
	return all
}

// GeneratePreview runs the pipeline for the requested period and writes
// the preview artifact for manual review. A zero date selects the
// default period: yesterday for daily mode, the previous full week for
// weekly mode.
func (m *Manager) GeneratePreview(mode string, date time.Time) error {
	if mode == "" {
		mode = m.cfg.Schedule.DefaultMode
	}
	start, end := previewRange(mode, date, time.Now())

	log.Printf("Generating %s preview for %s to %s", mode,
		start.Format("2006-01-02"), end.Format("2006-01-02"))

	var entries []*models.Entry
	if mode == "weekly" {
		entries = m.ProcessWeek(start)
	} else {
		var err error
		entries, err = m.processDate(start, "daily")
		if err != nil {
			return err
		}
	}

	if len(entries) == 0 {
		log.Printf("No time entries found for the %s period", mode)
		return nil
	}

	return preview.Write(m.previewPath, entries, start, end, mode)
}

// previewRange resolves the processing window for a mode and optional
// explicit date. Weekly ranges always snap to Monday.
func previewRange(mode string, date, now time.Time) (start, end time.Time) {
	if date.IsZero() {
		if mode == "weekly" {
			daysSinceMonday := (int(now.Weekday()) + 6) % 7
			start = now.AddDate(0, 0, -daysSinceMonday-7)
		} else {
			start = now.AddDate(0, 0, -1)
		}
	} else {
		start = date
		if mode == "weekly" {
			daysSinceMonday := (int(date.Weekday()) + 6) % 7
			start = date.AddDate(0, 0, -daysSinceMonday)
		}
	}

	end = start
	if mode == "weekly" {
		end = start.AddDate(0, 0, 4)
	}
	return start, end
}

// SubmitPreview re-reads the preview artifact and submits its entries.
// The preview acts as a manual approval gate, so only what the reviewer
// saw on disk is submitted.
func (m *Manager) SubmitPreview() error {
	entries, err := preview.Read(m.previewPath)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no entries to submit from preview file")
	}

	successCount, failed := m.submitter.SubmitAll(entries)
	m.recordSubmissions(entries, failed)

	if len(failed) > 0 {
		return fmt.Errorf("failed to submit %d of %d entries", len(failed), len(entries))
	}

	if err := preview.Backup(m.previewPath); err != nil {
		log.Printf("Warning: %v", err)
	}
	log.Printf("Successfully submitted all %d entries from preview file", successCount)
	return nil
}

// Direct processes the requested period and submits immediately, without
// the preview approval gate.
func (m *Manager) Direct(mode string, date time.Time) error {
	if mode == "" {
		mode = m.cfg.Schedule.DefaultMode
	}
	start, _ := previewRange(mode, date, time.Now())

	var entries []*models.Entry
	if mode == "weekly" {
		entries = m.ProcessWeek(start)
	} else {
		var err error
		entries, err = m.processDate(start, "daily")
		if err != nil {
			return err
		}
	}

	if len(entries) == 0 {
		log.Printf("No time entries to submit")
		return nil
	}

	_, failed := m.submitter.SubmitAll(entries)
	m.recordSubmissions(entries, failed)

	if len(failed) > 0 {
		return fmt.Errorf("failed to submit %d of %d entries", len(failed), len(entries))
	}
	return nil
}

func (m *Manager) recordSubmissions(entries, failed []*models.Entry) {
	if m.store == nil {
		return
	}

	failedSet := make(map[*models.Entry]bool, len(failed))
	for _, e := range failed {
		failedSet[e] = true
	}
	for _, e := range entries {
		message := ""
		if failedSet[e] {
			message = "submission failed"
		}
		if err := m.store.RecordSubmission(e, !failedSet[e], message); err != nil {
			log.Printf("Warning: failed to record submission: %v", err)
		}
	}
}

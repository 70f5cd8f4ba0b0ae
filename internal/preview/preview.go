package preview

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"temposync/internal/models"
)

const timeLayout = "2006-01-02T15:04:05"

// Metadata summarizes a preview snapshot for the human reviewer
type Metadata struct {
	GeneratedAt  string  `json:"generated_at"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	Mode         string  `json:"mode"`
	TotalEntries int     `json:"total_entries"`
	TotalHours   float64 `json:"total_hours"`
}

type entryRecord struct {
	Code            string  `json:"code"`
	Start           string  `json:"start_time"`
	DurationSeconds int     `json:"duration_seconds"`
	DurationHours   float64 `json:"duration_hours"`
	Description     string  `json:"description"`
	Static          bool    `json:"is_static_task"`
}

// File is the serialized preview artifact written for manual review and
// re-read verbatim before submission.
type File struct {
	Metadata Metadata      `json:"metadata"`
	Entries  []entryRecord `json:"entries"`
}

// Write serializes the finalized entry list to the preview file, sorted
// by scheduled start time.
func Write(path string, entries []*models.Entry, start, end time.Time, mode string) error {
	sorted := append([]*models.Entry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	file := File{
		Metadata: Metadata{
			GeneratedAt:  time.Now().Format(timeLayout),
			StartDate:    start.Format("2006-01-02"),
			EndDate:      end.Format("2006-01-02"),
			Mode:         mode,
			TotalEntries: len(entries),
		},
	}
	for _, e := range sorted {
		file.Metadata.TotalHours += e.Hours()
		file.Entries = append(file.Entries, entryRecord{
			Code:            e.Code,
			Start:           e.Start.Format(timeLayout),
			DurationSeconds: e.DurationSeconds,
			DurationHours:   e.Hours(),
			Description:     e.Description,
			Static:          e.Static,
		})
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preview: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write preview file: %w", err)
	}

	log.Printf("Created preview file: %s", path)
	log.Printf("Total: %d entries, %.2f hours", len(entries), file.Metadata.TotalHours)
	return nil
}

// Read loads entries back from the preview file. Individual records with
// an unparseable start time are skipped with a warning.
func Read(path string) ([]*models.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preview file %s: %w", path, err)
	}

	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid preview file %s: %w", path, err)
	}

	var entries []*models.Entry
	for _, rec := range file.Entries {
		start, err := time.ParseInLocation(timeLayout, rec.Start, time.Local)
		if err != nil {
			log.Printf("Warning: skipping preview entry %s: %v", rec.Code, err)
			continue
		}
		entries = append(entries, &models.Entry{
			Code:            rec.Code,
			DurationSeconds: rec.DurationSeconds,
			Start:           start,
			Description:     rec.Description,
			Static:          rec.Static,
		})
	}

	log.Printf("Loaded %d entries from preview file", len(entries))
	return entries, nil
}

// Backup copies the preview file next to itself after a successful
// submission, so the submitted snapshot stays inspectable.
func Backup(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read preview file for backup: %w", err)
	}
	backupPath := path + ".backup"
	if err := os.WriteFile(backupPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	log.Printf("Backed up preview file to %s", backupPath)
	return nil
}

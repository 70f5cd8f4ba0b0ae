package classify

import (
	"testing"
	"time"

	"temposync/internal/models"
)

func TestStaticEntries(t *testing.T) {
	monday := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	tasks := []models.StaticTask{
		{Name: "Standup", Code: "SE-100", TimeOfDay: "09:00", DurationMinutes: 15, Description: "Daily standup", Enabled: true},
		{Name: "Planning", Code: "SE-101", TimeOfDay: "10:00", DurationMinutes: 60, Description: "Sprint planning", Enabled: true, Day: "monday"},
		{Name: "Retro", Code: "SE-102", TimeOfDay: "15:00", DurationMinutes: 45, Description: "Retro", Enabled: true, Day: "friday"},
		{Name: "Old", Code: "SE-103", TimeOfDay: "11:00", DurationMinutes: 30, Description: "Disabled", Enabled: false},
		{Name: "Broken", Code: "SE-104", TimeOfDay: "25:99", DurationMinutes: 30, Description: "Bad time", Enabled: true},
	}

	entries := StaticEntries(tasks, monday)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2 (daily + monday)", len(entries))
	}

	standup := entries[0]
	if standup.Code != "SE-100" || !standup.Static {
		t.Errorf("first entry = %+v", standup)
	}
	if standup.Start.Hour() != 9 || standup.Start.Minute() != 0 {
		t.Errorf("standup start = %v", standup.Start)
	}
	if standup.DurationSeconds != 15*60 {
		t.Errorf("standup duration = %d", standup.DurationSeconds)
	}
	if !standup.ObservedAt.Equal(standup.Start) {
		t.Errorf("ObservedAt %v differs from Start %v", standup.ObservedAt, standup.Start)
	}

	if entries[1].Code != "SE-101" {
		t.Errorf("second entry = %s, want the monday task", entries[1].Code)
	}

	friday := monday.AddDate(0, 0, 4)
	entries = StaticEntries(tasks, friday)
	if len(entries) != 2 || entries[1].Code != "SE-102" {
		t.Fatalf("friday entries = %+v", entries)
	}
}

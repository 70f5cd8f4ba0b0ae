package pipeline

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"temposync/internal/models"
	"temposync/internal/preview"
)

type fakeTelemetry struct {
	observations []models.Observation
	err          error
}

func (f *fakeTelemetry) Events(date time.Time) ([]models.Observation, error) {
	return f.observations, f.err
}

type fakeSubmitter struct {
	submitted []*models.Entry
	failCodes map[string]bool
}

func (f *fakeSubmitter) SubmitAll(entries []*models.Entry) (int, []*models.Entry) {
	f.submitted = append(f.submitted, entries...)
	var failed []*models.Entry
	for _, e := range entries {
		if f.failCodes[e.Code] {
			failed = append(failed, e)
		}
	}
	return len(entries) - len(failed), failed
}

func testConfig(t *testing.T) *models.Config {
	t.Helper()
	cfg := models.DefaultConfig()
	cfg.Tempo.PATToken = "test-token"
	cfg.Schedule.GapMinutes = 5
	cfg.Files.PreviewPath = filepath.Join(t.TempDir(), "preview.json")
	return cfg
}

func testManager(t *testing.T, cfg *models.Config, telemetry *fakeTelemetry, submitter *fakeSubmitter) *Manager {
	t.Helper()
	tasks := []models.StaticTask{
		{Name: "Standup", Code: "SE-100", TimeOfDay: "09:00", DurationMinutes: 15,
			Description: "Daily standup", Enabled: true},
	}
	m, err := New(cfg, nil, tasks, telemetry, submitter, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestProcessDate(t *testing.T) {
	date := time.Date(2025, 3, 3, 0, 0, 0, 0, time.Local)
	telemetry := &fakeTelemetry{observations: []models.Observation{
		{Title: "SE-1234 parser fix", App: "nvim", DurationSeconds: 3500, Timestamp: date.Add(10 * time.Hour)},
		{Title: "SE-1234 review", App: "firefox", DurationSeconds: 200, Timestamp: date.Add(11 * time.Hour)},
		{Title: "browsing", App: "firefox", DurationSeconds: 900, Timestamp: date.Add(12 * time.Hour)},
	}}

	entries, err := testManager(t, testConfig(t), telemetry, &fakeSubmitter{}).ProcessDate(date)
	if err != nil {
		t.Fatalf("ProcessDate: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2 (static + one bucket)", len(entries))
	}

	// The rounded 75min block does not fit the hour before the standup,
	// so it lands in the slot after it, gap included.
	static, dynamic := entries[0], entries[1]
	if static.Code != "SE-100" || dynamic.Code != "SE-1234" {
		t.Fatalf("entry order = %s, %s", static.Code, dynamic.Code)
	}

	if static.Start.Hour() != 9 || static.Start.Minute() != 0 {
		t.Errorf("static task moved to %v", static.Start)
	}
	if !dynamic.Start.Equal(date.Add(9*time.Hour + 20*time.Minute)) {
		t.Errorf("dynamic entry placed at %v, want 09:20", dynamic.Start)
	}
	// 3700s rounded up to the 15min billing grid.
	if dynamic.DurationSeconds != 4500 {
		t.Errorf("rounded duration = %d, want 4500", dynamic.DurationSeconds)
	}
}

func TestProcessDateTelemetryDown(t *testing.T) {
	date := time.Date(2025, 3, 3, 0, 0, 0, 0, time.Local)
	telemetry := &fakeTelemetry{err: errors.New("connection refused")}

	entries, err := testManager(t, testConfig(t), telemetry, &fakeSubmitter{}).ProcessDate(date)
	if err != nil {
		t.Fatalf("ProcessDate: %v", err)
	}
	if len(entries) != 1 || !entries[0].Static {
		t.Errorf("got %+v, want the static task only", entries)
	}
}

func TestProcessDateEmpty(t *testing.T) {
	date := time.Date(2025, 3, 8, 0, 0, 0, 0, time.Local)
	cfg := testConfig(t)
	m, err := New(cfg, nil, nil, &fakeTelemetry{}, &fakeSubmitter{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	entries, err := m.ProcessDate(date)
	if err != nil {
		t.Fatalf("ProcessDate: %v", err)
	}
	if entries != nil {
		t.Errorf("got %+v, want nil for an empty day", entries)
	}
}

func TestPreviewRange(t *testing.T) {
	wednesday := time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)
	monday := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		mode      string
		date      time.Time
		wantStart string
		wantEnd   string
	}{
		{"daily explicit", "daily", monday, "2025-03-03", "2025-03-03"},
		{"daily default is yesterday", "daily", time.Time{}, "2025-03-04", "2025-03-04"},
		{"weekly explicit snaps to monday", "weekly", wednesday, "2025-03-03", "2025-03-07"},
		{"weekly on a monday stays", "weekly", monday, "2025-03-03", "2025-03-07"},
		{"weekly default is previous week", "weekly", time.Time{}, "2025-02-24", "2025-02-28"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := previewRange(tt.mode, tt.date, wednesday)
			if got := start.Format("2006-01-02"); got != tt.wantStart {
				t.Errorf("start = %s, want %s", got, tt.wantStart)
			}
			if got := end.Format("2006-01-02"); got != tt.wantEnd {
				t.Errorf("end = %s, want %s", got, tt.wantEnd)
			}
		})
	}
}

func TestGeneratePreviewWritesArtifact(t *testing.T) {
	date := time.Date(2025, 3, 3, 0, 0, 0, 0, time.Local)
	cfg := testConfig(t)
	telemetry := &fakeTelemetry{observations: []models.Observation{
		{Title: "SE-42 feature", App: "nvim", DurationSeconds: 3600, Timestamp: date.Add(10 * time.Hour)},
	}}
	m := testManager(t, cfg, telemetry, &fakeSubmitter{})

	if err := m.GeneratePreview("daily", date); err != nil {
		t.Fatalf("GeneratePreview: %v", err)
	}

	entries, err := preview.Read(cfg.Files.PreviewPath)
	if err != nil {
		t.Fatalf("preview not readable: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("preview holds %d entries, want 2", len(entries))
	}
}

func TestSubmitPreview(t *testing.T) {
	date := time.Date(2025, 3, 3, 0, 0, 0, 0, time.Local)
	cfg := testConfig(t)
	telemetry := &fakeTelemetry{observations: []models.Observation{
		{Title: "SE-42 feature", App: "nvim", DurationSeconds: 3600, Timestamp: date.Add(10 * time.Hour)},
	}}
	submitter := &fakeSubmitter{}
	m := testManager(t, cfg, telemetry, submitter)

	if err := m.GeneratePreview("daily", date); err != nil {
		t.Fatalf("GeneratePreview: %v", err)
	}
	if err := m.SubmitPreview(); err != nil {
		t.Fatalf("SubmitPreview: %v", err)
	}

	if len(submitter.submitted) != 2 {
		t.Errorf("submitted %d entries, want 2", len(submitter.submitted))
	}
	if _, err := preview.Read(cfg.Files.PreviewPath + ".backup"); err != nil {
		t.Errorf("no backup after successful submission: %v", err)
	}
}

func TestSubmitPreviewPartialFailure(t *testing.T) {
	date := time.Date(2025, 3, 3, 0, 0, 0, 0, time.Local)
	cfg := testConfig(t)
	telemetry := &fakeTelemetry{observations: []models.Observation{
		{Title: "SE-42 feature", App: "nvim", DurationSeconds: 3600, Timestamp: date.Add(10 * time.Hour)},
	}}
	submitter := &fakeSubmitter{failCodes: map[string]bool{"SE-100": true}}
	m := testManager(t, cfg, telemetry, submitter)

	if err := m.GeneratePreview("daily", date); err != nil {
		t.Fatalf("GeneratePreview: %v", err)
	}

	if err := m.SubmitPreview(); err == nil {
		t.Fatal("expected error when a submission fails")
	}
}

func TestSubmitPreviewMissingFile(t *testing.T) {
	m := testManager(t, testConfig(t), &fakeTelemetry{}, &fakeSubmitter{})
	if err := m.SubmitPreview(); err == nil {
		t.Error("expected error for a missing preview file")
	}
}

package models

// Config represents the application configuration
type Config struct {
	Tempo     TempoConfig     `toml:"tempo"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Activity  ActivityConfig  `toml:"activity"`
	Schedule  ScheduleConfig  `toml:"schedule"`
	Files     FilesConfig     `toml:"files"`
}

// TempoConfig contains Jira Tempo API settings
type TempoConfig struct {
	BaseURL        string `toml:"base_url"`
	PATToken       string `toml:"pat_token"`
	WorkerID       string `toml:"worker_id"` // "auto" resolves via the Jira user endpoint
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// TelemetryConfig contains ActivityWatch connection settings
type TelemetryConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// ActivityConfig controls how raw window observations become entries
type ActivityConfig struct {
	MinimumDurationSeconds int    `toml:"minimum_duration_seconds"`
	TicketPattern          string `toml:"ticket_pattern"`
}

// ScheduleConfig controls the daily scheduling of entries
type ScheduleConfig struct {
	WorkStart       string      `toml:"work_start"` // HH:MM
	WorkEnd         string      `toml:"work_end"`   // HH:MM
	GapMinutes      int         `toml:"gap_minutes"`
	RoundingMinutes int         `toml:"rounding_minutes"`
	DailyCapHours   float64     `toml:"daily_cap_hours"`
	Lunch           LunchConfig `toml:"lunch"`
	DefaultMode     string      `toml:"default_mode"` // "daily" or "weekly"
}

// LunchConfig describes the optional lunch break blocked out of the workday
type LunchConfig struct {
	Enabled         bool   `toml:"enabled"`
	TimeOfDay       string `toml:"time_of_day"` // HH:MM
	DurationMinutes int    `toml:"duration_minutes"`
}

// FilesConfig contains on-disk file locations
type FilesConfig struct {
	PreviewPath     string `toml:"preview_path"`
	MappingsPath    string `toml:"mappings_path"`
	StaticTasksPath string `toml:"static_tasks_path"`
	HistoryPath     string `toml:"history_path"`
}

// ValidRoundingMinutes lists the billing granularities the rounder accepts.
var ValidRoundingMinutes = []int{1, 5, 10, 15, 30, 60}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Tempo: TempoConfig{
			BaseURL:        "https://jira.example.com",
			PATToken:       "",
			WorkerID:       "auto",
			TimeoutSeconds: 30,
		},
		Telemetry: TelemetryConfig{
			BaseURL:        "http://localhost:5600",
			TimeoutSeconds: 30,
		},
		Activity: ActivityConfig{
			MinimumDurationSeconds: 60,
			TicketPattern:          `SE-\d+`,
		},
		Schedule: ScheduleConfig{
			WorkStart:       "08:00",
			WorkEnd:         "17:30",
			GapMinutes:      5,
			RoundingMinutes: 15,
			DailyCapHours:   7.5,
			Lunch: LunchConfig{
				Enabled:         false,
				TimeOfDay:       "13:00",
				DurationMinutes: 30,
			},
			DefaultMode: "daily",
		},
		Files: FilesConfig{
			PreviewPath:     "~/.temposync/preview.json",
			MappingsPath:    "~/.temposync/mappings.toml",
			StaticTasksPath: "~/.temposync/static_tasks.toml",
			HistoryPath:     "~/.temposync/history.db",
		},
	}
}

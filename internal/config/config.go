package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"temposync/internal/models"
	"temposync/internal/schedule"
)

// ErrFirstRun is returned when no configuration existed and a default one
// was generated; the user has to fill in credentials before running again.
var ErrFirstRun = errors.New("default configuration generated")

// Manager handles configuration loading, validation, and generation
type Manager struct {
	config     *models.Config
	configPath string
}

// NewManager creates a new configuration manager
func NewManager() *Manager {
	return &Manager{}
}

// Load loads the configuration from the default or specified path
func (m *Manager) Load(configPath ...string) (*models.Config, error) {
	var path string
	if len(configPath) > 0 && configPath[0] != "" {
		path = configPath[0]
	} else {
		var err error
		path, err = m.getDefaultConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get default config path: %w", err)
		}
	}

	m.configPath = path

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return m.generateDefaultConfig(path)
	}

	return m.loadFromFile(path)
}

// loadFromFile loads configuration from the specified file
func (m *Manager) loadFromFile(path string) (*models.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := models.DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := m.validateConfig(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	m.config = config
	return config, nil
}

// generateDefaultConfig creates a default configuration file and tells the
// user to edit it before running again
func (m *Manager) generateDefaultConfig(path string) (*models.Config, error) {
	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory %s: %w", configDir, err)
	}

	config := models.DefaultConfig()
	if err := m.saveToFile(config, path); err != nil {
		return nil, fmt.Errorf("failed to save default config: %w", err)
	}

	fmt.Printf("Created default configuration file: %s\n", path)
	fmt.Printf("Please edit it to set your Jira URL and PAT token, then run again.\n")

	return nil, ErrFirstRun
}

// saveToFile saves configuration to the specified file
func (m *Manager) saveToFile(config *models.Config, path string) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// validateConfig validates the configuration for common issues
func (m *Manager) validateConfig(config *models.Config) error {
	var errs []string

	if !strings.HasPrefix(config.Tempo.BaseURL, "http://") && !strings.HasPrefix(config.Tempo.BaseURL, "https://") {
		errs = append(errs, "tempo base_url must start with http:// or https://")
	}
	if config.Tempo.PATToken == "" || config.Tempo.PATToken == "your-pat-token" {
		errs = append(errs, "tempo pat_token is required and cannot be the placeholder")
	}
	if config.Tempo.TimeoutSeconds <= 0 {
		errs = append(errs, "tempo timeout_seconds must be greater than 0")
	}
	if config.Telemetry.BaseURL == "" {
		errs = append(errs, "telemetry base_url cannot be empty")
	}
	if config.Telemetry.TimeoutSeconds <= 0 {
		errs = append(errs, "telemetry timeout_seconds must be greater than 0")
	}

	if config.Activity.MinimumDurationSeconds < 0 {
		errs = append(errs, "minimum_duration_seconds cannot be negative")
	}
	if config.Activity.TicketPattern == "" {
		errs = append(errs, "ticket_pattern cannot be empty")
	}

	sched := &config.Schedule
	ref := time.Now()
	start, err := schedule.ParseTimeOfDay(sched.WorkStart, ref)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid work_start: %v", err))
	}
	end, err := schedule.ParseTimeOfDay(sched.WorkEnd, ref)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid work_end: %v", err))
	} else if !start.IsZero() && !start.Before(end) {
		errs = append(errs, "work_start must be before work_end")
	}
	if sched.GapMinutes < 0 {
		errs = append(errs, "gap_minutes cannot be negative")
	}

	validGranularity := false
	for _, g := range models.ValidRoundingMinutes {
		if sched.RoundingMinutes == g {
			validGranularity = true
			break
		}
	}
	if !validGranularity {
		errs = append(errs, "rounding_minutes must be one of: 1, 5, 10, 15, 30, 60")
	}

	if sched.DailyCapHours <= 0 || sched.DailyCapHours > 24 {
		errs = append(errs, "daily_cap_hours must be between 0 and 24")
	}
	if sched.Lunch.Enabled {
		if _, err := schedule.ParseTimeOfDay(sched.Lunch.TimeOfDay, ref); err != nil {
			errs = append(errs, fmt.Sprintf("invalid lunch time_of_day: %v", err))
		}
		if sched.Lunch.DurationMinutes <= 0 {
			errs = append(errs, "lunch duration_minutes must be greater than 0")
		}
	}
	if sched.DefaultMode != "daily" && sched.DefaultMode != "weekly" {
		errs = append(errs, "default_mode must be either 'daily' or 'weekly'")
	}

	if config.Files.PreviewPath == "" {
		errs = append(errs, "preview_path cannot be empty")
	}
	if config.Files.HistoryPath == "" {
		errs = append(errs, "history_path cannot be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// getDefaultConfigPath returns the default configuration file path
func (m *Manager) getDefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".temposync", "config.toml"), nil
}

// GetConfig returns the loaded configuration
func (m *Manager) GetConfig() *models.Config {
	return m.config
}

// GetConfigPath returns the path to the configuration file
func (m *Manager) GetConfigPath() string {
	return m.configPath
}

// ExpandPath expands ~ in file paths to the user's home directory
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[2:]), nil
}

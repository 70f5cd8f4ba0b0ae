package config

import (
	"fmt"
	"log"
	"os"

	"github.com/pelletier/go-toml/v2"

	"temposync/internal/models"
)

// mappingRecord is the on-disk shape of a mapping rule. Enabled and scope
// are optional; absent means enabled, matching both fields.
type mappingRecord struct {
	Name        string `toml:"name"`
	Pattern     string `toml:"pattern"`
	Code        string `toml:"code"`
	Description string `toml:"description"`
	Scope       string `toml:"scope"`
	Enabled     *bool  `toml:"enabled"`
}

type mappingsFile struct {
	Mappings []mappingRecord `toml:"mapping"`
}

// taskRecord is the on-disk shape of a static task
type taskRecord struct {
	Name            string `toml:"name"`
	Code            string `toml:"code"`
	Time            string `toml:"time"`
	DurationMinutes int    `toml:"duration_minutes"`
	Description     string `toml:"description"`
	Day             string `toml:"day"`
	Enabled         *bool  `toml:"enabled"`
}

type staticTasksFile struct {
	Daily  []taskRecord `toml:"daily"`
	Weekly []taskRecord `toml:"weekly"`
}

// LoadMappings loads the ordered mapping rule list. A missing file is a
// warning, not an error; individual invalid records are skipped so one bad
// rule never aborts the whole load.
func LoadMappings(path string) ([]models.MappingRule, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Printf("Warning: mappings file %s not found", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read mappings file %s: %w", path, err)
	}

	var file mappingsFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse mappings file %s: %w", path, err)
	}

	rules := make([]models.MappingRule, 0, len(file.Mappings))
	for _, rec := range file.Mappings {
		rule := models.MappingRule{
			Name:        rec.Name,
			Pattern:     rec.Pattern,
			Code:        rec.Code,
			Description: rec.Description,
			Scope:       models.MatchScope(rec.Scope),
			Enabled:     rec.Enabled == nil || *rec.Enabled,
		}
		if err := rule.Compile(); err != nil {
			log.Printf("Warning: skipping invalid mapping %q: %v", rec.Name, err)
			continue
		}
		rules = append(rules, rule)
	}

	log.Printf("Loaded %d window mappings", len(rules))
	return rules, nil
}

// LoadStaticTasks loads the static task lists. Missing file and invalid
// individual records are handled the same way as for mappings.
func LoadStaticTasks(path string) ([]models.StaticTask, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Printf("Warning: static tasks file %s not found", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read static tasks file %s: %w", path, err)
	}

	var file staticTasksFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse static tasks file %s: %w", path, err)
	}

	var tasks []models.StaticTask
	appendTasks := func(records []taskRecord, weekly bool) {
		for _, rec := range records {
			task := models.StaticTask{
				Name:            rec.Name,
				Code:            rec.Code,
				TimeOfDay:       rec.Time,
				DurationMinutes: rec.DurationMinutes,
				Description:     rec.Description,
				Enabled:         rec.Enabled == nil || *rec.Enabled,
			}
			if weekly {
				task.Day = rec.Day
			}
			if err := task.Validate(); err != nil {
				log.Printf("Warning: skipping invalid static task %q: %v", rec.Name, err)
				continue
			}
			tasks = append(tasks, task)
		}
	}
	appendTasks(file.Daily, false)
	appendTasks(file.Weekly, true)

	log.Printf("Loaded %d static tasks", len(tasks))
	return tasks, nil
}

// UpdateFiles creates any missing configuration files with starter
// content. Existing files are left untouched.
func (m *Manager) UpdateFiles(cfg *models.Config) error {
	mappingsPath, err := ExpandPath(cfg.Files.MappingsPath)
	if err != nil {
		return err
	}
	if err := writeIfMissing(mappingsPath, defaultMappingsTOML); err != nil {
		return fmt.Errorf("failed to create mappings file: %w", err)
	}

	tasksPath, err := ExpandPath(cfg.Files.StaticTasksPath)
	if err != nil {
		return err
	}
	if err := writeIfMissing(tasksPath, defaultStaticTasksTOML); err != nil {
		return fmt.Errorf("failed to create static tasks file: %w", err)
	}

	return nil
}

func writeIfMissing(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return err
	}
	log.Printf("Created %s", path)
	return nil
}

const defaultMappingsTOML = `# Window-title / application mapping rules, evaluated in order.
# scope is "title", "app" or "both" (default "both").

[[mapping]]
name = "Team standup"
pattern = "standup|daily sync"
code = "SE-100"
description = "Daily standup"
scope = "title"
enabled = false
`

const defaultStaticTasksTOML = `# Fixed commitments placed before any dynamic scheduling.

[[daily]]
name = "Standup"
code = "SE-100"
time = "09:00"
duration_minutes = 15
description = "Daily standup"
enabled = false

[[weekly]]
name = "Sprint review"
code = "SE-101"
time = "14:00"
duration_minutes = 60
description = "Sprint review"
day = "friday"
enabled = false
`

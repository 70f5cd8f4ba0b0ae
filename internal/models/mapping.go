package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// MatchScope selects which observation fields a mapping rule is tested against
type MatchScope string

const (
	ScopeTitle MatchScope = "title"
	ScopeApp   MatchScope = "app"
	ScopeBoth  MatchScope = "both"
)

// MappingRule maps window observations to a billing code via a regular
// expression. Rules are evaluated in file order; the first match wins.
type MappingRule struct {
	Name        string
	Pattern     string
	Code        string
	Description string
	Scope       MatchScope
	Enabled     bool

	re *regexp.Regexp
}

// Compile validates the rule and prepares its pattern for matching.
// Matching is always case-insensitive.
func (r *MappingRule) Compile() error {
	if r.Name == "" || r.Pattern == "" || r.Code == "" || r.Description == "" {
		return fmt.Errorf("mapping rule must have name, pattern, code and description")
	}

	switch r.Scope {
	case ScopeTitle, ScopeApp, ScopeBoth:
	case "":
		r.Scope = ScopeBoth
	default:
		return fmt.Errorf("invalid match scope %q (must be title, app or both)", r.Scope)
	}

	re, err := regexp.Compile("(?i)" + r.Pattern)
	if err != nil {
		return fmt.Errorf("invalid pattern %q: %w", r.Pattern, err)
	}
	r.re = re
	return nil
}

// Matches reports whether the rule matches the given window title and
// application name according to its scope. Compile must have been called.
func (r *MappingRule) Matches(title, app string) bool {
	switch r.Scope {
	case ScopeTitle:
		return r.re.MatchString(title)
	case ScopeApp:
		return r.re.MatchString(app)
	default:
		return r.re.MatchString(title) || r.re.MatchString(app)
	}
}

// StaticTask is a recurring commitment with a pinned time of day. Day is
// empty for daily tasks, or a lowercase weekday name for weekly ones.
type StaticTask struct {
	Name            string
	Code            string
	TimeOfDay       string // HH:MM
	DurationMinutes int
	Description     string
	Enabled         bool
	Day             string
}

var weekdays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

// Validate checks the task for structural problems
func (t *StaticTask) Validate() error {
	if t.Name == "" || t.Code == "" || t.Description == "" {
		return fmt.Errorf("static task must have name, code and description")
	}
	if t.DurationMinutes <= 0 {
		return fmt.Errorf("duration must be positive")
	}
	if t.Day != "" && !weekdays[t.Day] {
		return fmt.Errorf("invalid day of week %q", t.Day)
	}
	return nil
}

// AppliesTo reports whether the task occurs on the given calendar date
func (t *StaticTask) AppliesTo(date time.Time) bool {
	if !t.Enabled {
		return false
	}
	if t.Day == "" {
		return true
	}
	return t.Day == strings.ToLower(date.Weekday().String())
}

package classify

import (
	"testing"

	"temposync/internal/models"
)

func compiledRule(t *testing.T, name, pattern, code, description string, scope models.MatchScope) models.MappingRule {
	t.Helper()
	rule := models.MappingRule{
		Name:        name,
		Pattern:     pattern,
		Code:        code,
		Description: description,
		Scope:       scope,
		Enabled:     true,
	}
	if err := rule.Compile(); err != nil {
		t.Fatalf("Compile(%q): %v", pattern, err)
	}
	return rule
}

func TestClassifyFirstMatchWins(t *testing.T) {
	rules := []models.MappingRule{
		compiledRule(t, "standup", "standup", "SE-100", "Daily standup", models.ScopeTitle),
		compiledRule(t, "meetings", "meet|zoom", "SE-200", "Meetings", models.ScopeBoth),
	}
	c, err := NewClassifier(rules, `SE-\d+`)
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}

	// "standup" also matches the meetings rule through the title scope
	// being broader, but the first rule in file order wins.
	code, description, ok := c.Classify("Standup meeting", "zoom")
	if !ok || code != "SE-100" || description != "Daily standup" {
		t.Errorf("got (%q, %q, %v), want (SE-100, Daily standup, true)", code, description, ok)
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	rules := []models.MappingRule{
		compiledRule(t, "email", "outlook", "SE-300", "Email", models.ScopeApp),
	}
	c, err := NewClassifier(rules, `SE-\d+`)
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}

	if code, _, ok := c.Classify("Inbox", "OUTLOOK.EXE"); !ok || code != "SE-300" {
		t.Errorf("got (%q, %v), want (SE-300, true)", code, ok)
	}
}

func TestClassifyScope(t *testing.T) {
	rules := []models.MappingRule{
		compiledRule(t, "vim", "nvim", "SE-400", "Editing", models.ScopeApp),
	}
	c, err := NewClassifier(rules, `XX-\d+`)
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}

	// App-scoped rule must not trigger on a title mention.
	if _, _, ok := c.Classify("notes about nvim", "firefox"); ok {
		t.Error("app-scoped rule matched on title")
	}
	if _, _, ok := c.Classify("main.go", "nvim"); !ok {
		t.Error("app-scoped rule did not match on app")
	}
}

func TestClassifyDisabledRuleSkipped(t *testing.T) {
	rule := compiledRule(t, "standup", "standup", "SE-100", "Daily standup", models.ScopeTitle)
	rule.Enabled = false
	c, err := NewClassifier([]models.MappingRule{rule}, `SE-\d+`)
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}

	if _, _, ok := c.Classify("Standup meeting", "zoom"); ok {
		t.Error("disabled rule matched")
	}
}

func TestClassifyTicketFallback(t *testing.T) {
	c, err := NewClassifier(nil, `SE-\d+`)
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}

	code, description, ok := c.Classify("Fixing se-1234 in the parser", "nvim")
	if !ok {
		t.Fatal("ticket fallback did not match")
	}
	if code != "SE-1234" {
		t.Errorf("code = %q, want SE-1234 (uppercased)", code)
	}
	if description != "" {
		t.Errorf("fallback description = %q, want empty", description)
	}

	if _, _, ok := c.Classify("random browsing", "firefox"); ok {
		t.Error("unclassifiable observation reported ok")
	}
}

func TestNewClassifierBadPattern(t *testing.T) {
	if _, err := NewClassifier(nil, `SE-[`); err == nil {
		t.Error("expected error for invalid ticket pattern")
	}
}

package schedule

import (
	"strings"
	"testing"

	"temposync/internal/models"
)

func TestValidateBudgetWithinCap(t *testing.T) {
	entries := []*models.Entry{
		{Code: "SE-1", DurationSeconds: 3 * 3600},
		{Code: "SE-2", DurationSeconds: 4 * 3600},
	}

	report := ValidateBudget(entries, 7.5)
	if report.Exceeded() {
		t.Fatalf("7h against a 7.5h cap reported as exceeded")
	}
	if report.TotalSeconds != 7*3600 {
		t.Errorf("TotalSeconds = %d, want %d", report.TotalSeconds, 7*3600)
	}
	if len(report.Fits) != 0 || len(report.Overruns) != 0 || len(report.Suggestions) != 0 {
		t.Errorf("within-cap report carries partition data: %+v", report)
	}
}

func TestValidateBudgetExceeded(t *testing.T) {
	entries := []*models.Entry{
		{Code: "SE-1", DurationSeconds: int(4.5 * 3600)},
		{Code: "SE-2", DurationSeconds: 4 * 3600},
	}

	report := ValidateBudget(entries, 7.5)
	if !report.Exceeded() {
		t.Fatal("8.5h against a 7.5h cap not reported as exceeded")
	}
	if got := report.ExcessHours(); got != 1.0 {
		t.Errorf("ExcessHours = %v, want 1.0", got)
	}

	// Greedy partition by descending duration: the 4.5h entry fits,
	// the 4h entry overruns and gets a reduce suggestion sized to the
	// 3h of remaining capacity.
	if len(report.Fits) != 1 || report.Fits[0].Code != "SE-1" {
		t.Errorf("Fits = %+v", report.Fits)
	}
	if len(report.Overruns) != 1 || report.Overruns[0].Code != "SE-2" {
		t.Errorf("Overruns = %+v", report.Overruns)
	}
	if len(report.Suggestions) != 1 || report.Suggestions[0] != "Reduce SE-2 by 1.0h" {
		t.Errorf("Suggestions = %v", report.Suggestions)
	}
}

func TestValidateBudgetRemoveSuggestions(t *testing.T) {
	entries := []*models.Entry{
		{Code: "SE-1", DurationSeconds: 7 * 3600},
		{Code: "SE-2", DurationSeconds: 2 * 3600},
		{Code: "SE-3", DurationSeconds: 1800},
	}

	report := ValidateBudget(entries, 7.5)
	if !report.Exceeded() {
		t.Fatal("9.5h against a 7.5h cap not reported as exceeded")
	}

	// SE-1 and SE-3 fill the cap exactly; SE-2 is the sole overrun and
	// gets a reduce suggestion for its full duration.
	var hasReduce bool
	for _, s := range report.Suggestions {
		if strings.HasPrefix(s, "Reduce SE-2") {
			hasReduce = true
		}
	}
	if !hasReduce {
		t.Errorf("expected a reduce suggestion for SE-2, got %v", report.Suggestions)
	}
}

func TestValidateBudgetNeverMutates(t *testing.T) {
	entries := []*models.Entry{
		{Code: "SE-1", DurationSeconds: 5 * 3600},
		{Code: "SE-2", DurationSeconds: 5 * 3600},
	}

	ValidateBudget(entries, 7.5)

	if entries[0].Code != "SE-1" || entries[1].Code != "SE-2" {
		t.Errorf("entry order changed: %s, %s", entries[0].Code, entries[1].Code)
	}
	for _, e := range entries {
		if e.DurationSeconds != 5*3600 {
			t.Errorf("%s duration changed to %d", e.Code, e.DurationSeconds)
		}
	}
}

package classify

import (
	"fmt"
	"regexp"
	"strings"

	"temposync/internal/models"
)

// Classifier maps window observations to billing codes. Configured
// mapping rules are tried in order, first match wins; when none match, a
// ticket-identifier pattern is searched for in the window title.
type Classifier struct {
	rules  []models.MappingRule
	ticket *regexp.Regexp
}

// NewClassifier creates a classifier from compiled mapping rules and the
// fallback ticket pattern.
func NewClassifier(rules []models.MappingRule, ticketPattern string) (*Classifier, error) {
	ticket, err := regexp.Compile("(?i)" + ticketPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid ticket pattern %q: %w", ticketPattern, err)
	}

	return &Classifier{
		rules:  rules,
		ticket: ticket,
	}, nil
}

// Classify returns the billing code for an observation. The description
// is non-empty only when a mapping rule matched; ok is false when the
// observation is unclassifiable and should be dropped.
func (c *Classifier) Classify(title, app string) (code, description string, ok bool) {
	for i := range c.rules {
		rule := &c.rules[i]
		if !rule.Enabled {
			continue
		}
		if rule.Matches(title, app) {
			return rule.Code, rule.Description, true
		}
	}

	if m := c.ticket.FindString(title); m != "" {
		return strings.ToUpper(m), "", true
	}

	return "", "", false
}

package timesheet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"temposync/internal/models"
)

// Submitter submits finalized entries to the timesheet service, one call
// per entry. SubmitAll returns the success count and the entries that
// failed; a partial failure never aborts the rest of the batch.
type Submitter interface {
	SubmitAll(entries []*models.Entry) (int, []*models.Entry)
}

// Client is a Jira Tempo worklog API client
type Client struct {
	baseURL    string
	workerID   string
	httpClient *http.Client

	token     string
	userCache map[string]interface{}
}

// NewClient creates a new Tempo API client
func NewClient(cfg *models.TempoConfig) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.PATToken == "" {
		return nil, fmt.Errorf("PAT token is required")
	}

	timeout := cfg.TimeoutSeconds
	if timeout == 0 {
		timeout = 30
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		workerID: cfg.WorkerID,
		token:    cfg.PATToken,
		httpClient: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
	}, nil
}

// worklog is the Tempo wire format for a single time entry
type worklog struct {
	Worker           string `json:"worker"`
	Comment          string `json:"comment"`
	Started          string `json:"started"`
	TimeSpentSeconds int    `json:"timeSpentSeconds"`
	OriginTaskID     string `json:"originTaskId"`
	OriginID         int    `json:"originId"`
}

// CurrentUser fetches the authenticated user's profile, caching it for
// the lifetime of the client.
func (c *Client) CurrentUser() (map[string]interface{}, error) {
	if c.userCache != nil {
		return c.userCache, nil
	}

	body, err := c.do(http.MethodGet, "/rest/api/2/myself", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	var user map[string]interface{}
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}

	c.userCache = user
	return user, nil
}

// WorkerID returns the worker identifier used on submitted worklogs.
// A configured value of "auto" (or empty) is resolved from the user
// profile once and reused.
func (c *Client) WorkerID() (string, error) {
	if c.workerID != "" && c.workerID != "auto" {
		return c.workerID, nil
	}

	user, err := c.CurrentUser()
	if err != nil {
		return "", err
	}

	for _, field := range []string{"key", "accountId", "name"} {
		if v, ok := user[field].(string); ok && v != "" {
			log.Printf("Auto-detected worker ID: %s", v)
			c.workerID = v
			return v, nil
		}
	}

	return "", fmt.Errorf("could not determine worker ID from user info")
}

// ValidateIssue reports whether the billing code refers to an existing issue
func (c *Client) ValidateIssue(code string) bool {
	_, err := c.do(http.MethodGet, "/rest/api/2/issue/"+code, nil)
	if err != nil {
		log.Printf("Error validating issue %s: %v", code, err)
		return false
	}
	return true
}

// SubmitEntry submits a single finalized entry as a Tempo worklog
func (c *Client) SubmitEntry(entry *models.Entry) error {
	if !c.ValidateIssue(entry.Code) {
		return fmt.Errorf("invalid issue key %s", entry.Code)
	}

	worker, err := c.WorkerID()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(worklog{
		Worker:           worker,
		Comment:          entry.Description,
		Started:          entry.Start.Format("2006-01-02T15:04:05.000"),
		TimeSpentSeconds: entry.DurationSeconds,
		OriginTaskID:     entry.Code,
		OriginID:         -1,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal worklog: %w", err)
	}

	if _, err := c.do(http.MethodPost, "/rest/tempo-timesheets/4/worklogs/", bytes.NewReader(payload)); err != nil {
		return fmt.Errorf("failed to submit worklog for %s: %w", entry.Code, err)
	}

	log.Printf("Logged %.2fh to %s", entry.Hours(), entry.Code)
	return nil
}

// SubmitAll submits entries one at a time and aggregates the outcomes
func (c *Client) SubmitAll(entries []*models.Entry) (int, []*models.Entry) {
	if len(entries) == 0 {
		return 0, nil
	}

	successCount := 0
	var failed []*models.Entry

	log.Printf("Submitting %d time entries", len(entries))
	for _, entry := range entries {
		if err := c.SubmitEntry(entry); err != nil {
			log.Printf("Error submitting entry: %v", err)
			failed = append(failed, entry)
			continue
		}
		successCount++
	}

	if len(failed) > 0 {
		log.Printf("Failed to submit %d entries:", len(failed))
		for _, entry := range failed {
			log.Printf("  - %s: %.2fh", entry.Code, entry.Hours())
		}
	}
	log.Printf("Successfully submitted %d/%d time entries", successCount, len(entries))

	return successCount, failed
}

// TestConnection verifies both the Jira API and Tempo worklog access
func (c *Client) TestConnection() error {
	if _, err := c.CurrentUser(); err != nil {
		return fmt.Errorf("jira connection failed: %w", err)
	}
	if _, err := c.do(http.MethodGet, "/rest/tempo-timesheets/4/worklogs/", nil); err != nil {
		return fmt.Errorf("tempo connection failed: %w", err)
	}
	return nil
}

func (c *Client) do(method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == 401:
		return nil, fmt.Errorf("authentication failed: check your PAT token")
	case resp.StatusCode == 403:
		return nil, fmt.Errorf("access denied: check your Jira permissions")
	case resp.StatusCode == 404:
		return nil, fmt.Errorf("resource not found: %s", path)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("request failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

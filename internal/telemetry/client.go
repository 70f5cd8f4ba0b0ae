package telemetry

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"temposync/internal/models"
)

// Client queries the local activity-tracking service for window
// observations. Results are read-only input to the pipeline; a failed or
// empty query means a day with zero observations, never a fatal error for
// the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client

	bucketCache string
}

// NewClient creates a new telemetry client
func NewClient(cfg *models.TelemetryConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:5600"
	}
	timeout := cfg.TimeoutSeconds
	if timeout == 0 {
		timeout = 30
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
	}
}

type event struct {
	Timestamp string  `json:"timestamp"`
	Duration  float64 `json:"duration"`
	Data      struct {
		Title string `json:"title"`
		App   string `json:"app"`
	} `json:"data"`
}

// WindowBucket returns the name of the window-watcher bucket, caching the
// result for the lifetime of the client.
func (c *Client) WindowBucket() (string, error) {
	if c.bucketCache != "" {
		return c.bucketCache, nil
	}

	body, err := c.get("/api/0/buckets", nil)
	if err != nil {
		return "", fmt.Errorf("failed to list buckets: %w", err)
	}

	var buckets map[string]json.RawMessage
	if err := json.Unmarshal(body, &buckets); err != nil {
		return "", fmt.Errorf("failed to parse bucket list: %w", err)
	}

	for name := range buckets {
		if strings.Contains(name, "window") {
			c.bucketCache = name
			return name, nil
		}
	}

	return "", fmt.Errorf("no window watcher bucket found")
}

// Events returns the window observations recorded on the given calendar
// date, in the date's location.
func (c *Client) Events(date time.Time) ([]models.Observation, error) {
	bucket, err := c.WindowBucket()
	if err != nil {
		return nil, err
	}

	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	end := start.AddDate(0, 0, 1)

	params := url.Values{}
	params.Set("start", start.Format(time.RFC3339))
	params.Set("end", end.Format(time.RFC3339))

	body, err := c.get("/api/0/buckets/"+url.PathEscape(bucket)+"/events", params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}

	var events []event
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("failed to parse events: %w", err)
	}

	observations := make([]models.Observation, 0, len(events))
	for _, ev := range events {
		ts, err := time.Parse(time.RFC3339, ev.Timestamp)
		if err != nil {
			continue
		}
		observations = append(observations, models.Observation{
			Title:           ev.Data.Title,
			App:             ev.Data.App,
			DurationSeconds: int(ev.Duration),
			Timestamp:       ts.In(date.Location()),
		})
	}

	return observations, nil
}

// TestConnection checks that the activity-tracking service is reachable
// and has a window bucket.
func (c *Client) TestConnection() error {
	_, err := c.WindowBucket()
	return err
}

func (c *Client) get(path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("request failed (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

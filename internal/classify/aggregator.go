package classify

import (
	"fmt"
	"log"
	"time"

	"temposync/internal/models"
)

// Aggregator groups classified observations into one candidate entry per
// billing code.
type Aggregator struct {
	classifier     *Classifier
	minimumSeconds int
}

// NewAggregator creates an aggregator. Buckets whose accumulated duration
// stays below minimumSeconds are discarded entirely.
func NewAggregator(classifier *Classifier, minimumSeconds int) *Aggregator {
	return &Aggregator{
		classifier:     classifier,
		minimumSeconds: minimumSeconds,
	}
}

type bucket struct {
	code         string
	description  string
	totalSeconds int
	earliest     time.Time
	count        int
}

// Aggregate turns a day's observations into candidate entries. Malformed
// and unclassifiable observations are counted and dropped, never errors.
// Each surviving bucket becomes one entry whose start and observed time
// are the earliest timestamp seen for its code.
func (a *Aggregator) Aggregate(observations []models.Observation) []*models.Entry {
	buckets := make(map[string]*bucket)
	var order []string
	skipped := 0

	for _, obs := range observations {
		if obs.Title == "" || obs.App == "" || obs.Timestamp.IsZero() {
			skipped++
			continue
		}

		code, description, ok := a.classifier.Classify(obs.Title, obs.App)
		if !ok {
			skipped++
			continue
		}

		b := buckets[code]
		if b == nil {
			b = &bucket{code: code, description: description, earliest: obs.Timestamp}
			buckets[code] = b
			order = append(order, code)
		}
		b.totalSeconds += obs.DurationSeconds
		b.count++
		if obs.Timestamp.Before(b.earliest) {
			b.earliest = obs.Timestamp
		}
	}

	var entries []*models.Entry
	dropped := 0

	for _, code := range order {
		b := buckets[code]
		if b.totalSeconds < a.minimumSeconds {
			dropped++
			log.Printf("Dropping short activity block %s: %ds (< %ds)",
				b.code, b.totalSeconds, a.minimumSeconds)
			continue
		}

		description := b.description
		if description == "" {
			description = fmt.Sprintf("Work on %s", b.code)
			if b.count > 1 {
				description += fmt.Sprintf(" (%d activities)", b.count)
			}
		}

		entries = append(entries, &models.Entry{
			Code:            b.code,
			DurationSeconds: b.totalSeconds,
			Start:           b.earliest,
			Description:     description,
			ObservedAt:      b.earliest,
		})
	}

	log.Printf("Aggregated %d observations into %d entries (%d skipped, %d below minimum)",
		len(observations), len(entries), skipped, dropped)
	return entries
}

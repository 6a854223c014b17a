package velocity

import (
	"fmt"
	"math"
	"time"

	"mnemo/internal/models"
)

// MinStudyDays is the minimum number of distinct study days required before
// a mastery prediction is reported at all.
const MinStudyDays = 5

// PredictionStatus tags a prediction result.
type PredictionStatus int

const (
	// PredictionAvailable means the estimate fields are meaningful.
	PredictionAvailable PredictionStatus = iota + 1
	// PredictionUnavailable means confidence was too low to report a
	// number. It is a typed result with a reason, never a fabricated zero.
	PredictionUnavailable
)

// String returns "Available" or "Unavailable".
func (s PredictionStatus) String() string {
	switch s {
	case PredictionAvailable:
		return "Available"
	case PredictionUnavailable:
		return "Unavailable"
	default:
		return fmt.Sprintf("PredictionStatus(%d)", int(s))
	}
}

// Prediction forecasts when the remaining unmastered cards will be mastered.
type Prediction struct {
	Status          PredictionStatus `json:"status"`
	EstimatedDays   float64          `json:"estimated_days"`
	ConfidenceLow   float64          `json:"confidence_low"`  // optimistic bound, days
	ConfidenceHigh  float64          `json:"confidence_high"` // pessimistic bound, days
	ConfidenceScore float64          `json:"confidence_score"`
	Reason          string           `json:"reason,omitempty"` // set when unavailable
}

func unavailable(reason string) Prediction {
	return Prediction{Status: PredictionUnavailable, Reason: reason}
}

// PredictMastery linearly extrapolates the mastery-per-day trend over the
// cards still unmastered. The confidence score shrinks as recent velocity
// gets noisier; with fewer than MinStudyDays distinct study days, or no
// mastery progress at all, the result is PredictionUnavailable rather than
// a guess. EstimatedDays is never negative.
func (t *Tracker) PredictMastery(deck *models.Deck, events []models.ReviewEvent) Prediction {
	studyDays := models.StudyDays(events)
	if studyDays < MinStudyDays {
		return unavailable(fmt.Sprintf("only %d study days recorded, need %d", studyDays, MinStudyDays))
	}

	remaining := 0
	for i := range deck.Cards {
		if deck.Cards[i].State() != models.StateMastered {
			remaining++
		}
	}
	if remaining == 0 {
		return Prediction{Status: PredictionAvailable, ConfidenceScore: 1}
	}

	daily := dailyMasteryCounts(events, t.now())
	if len(daily) == 0 {
		return unavailable("no study history")
	}

	mean, stddev := meanStddev(daily)
	if mean <= 0 {
		return unavailable("no mastery progress observed yet")
	}

	// Coefficient of variation drives both the confidence score and the
	// width of the reported interval.
	cv := stddev / mean
	estimate := float64(remaining) / mean

	low := float64(remaining) / (mean * (1 + cv))
	high := estimate * (1 + cv)

	return Prediction{
		Status:          PredictionAvailable,
		EstimatedDays:   estimate,
		ConfidenceLow:   low,
		ConfidenceHigh:  high,
		ConfidenceScore: 1 / (1 + cv),
	}
}

// dailyMasteryCounts buckets mastery crossings per calendar day (UTC) over
// the span from the first event to now. Days with no crossings count as
// zero, which is what makes the variance meaningful.
func dailyMasteryCounts(events []models.ReviewEvent, now time.Time) []float64 {
	if len(events) == 0 {
		return nil
	}
	sorted := append([]models.ReviewEvent(nil), events...)
	models.SortEventsByTime(sorted)

	first := day(sorted[0].Timestamp)
	last := day(now)
	span := int(last.Sub(first).Hours()/24) + 1
	if span < 1 {
		span = 1
	}

	counts := make([]float64, span)
	for _, at := range masteryCrossings(sorted) {
		idx := int(day(at).Sub(first).Hours() / 24)
		if idx >= 0 && idx < span {
			counts[idx]++
		}
	}
	return counts
}

func day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func meanStddev(values []float64) (mean, stddev float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}

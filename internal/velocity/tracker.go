// Package velocity quantifies learning speed and forecasts a mastery
// timeline. Everything here is an aggregation over the deck's review events
// and the card-state thresholds; snapshots are rebuilt on demand and
// superseded, never mutated in place.
package velocity

import (
	"time"

	"github.com/google/uuid"

	"mnemo/internal/models"
)

// Snapshot is a timestamped aggregate of study velocity over a rolling
// window.
type Snapshot struct {
	ComputedAt    time.Time `json:"computed_at"`
	WindowDays    int       `json:"window_days"`
	CardsPerDay   float64   `json:"cards_per_day"`   // distinct cards reviewed per day
	MasteryPerDay float64   `json:"mastery_per_day"` // cards crossing into mastery per day
	Efficiency    float64   `json:"efficiency"`      // correct reviews / total reviews
}

// Tracker computes velocity snapshots, mastery predictions and bottleneck
// rankings. The clock is injectable for tests.
type Tracker struct {
	now func() time.Time
}

// NewTracker creates a Tracker using the wall clock.
func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// ComputeVelocity aggregates review and mastery-crossing events within the
// trailing window. It reads the event history only; recomputing over the
// same inputs yields the same snapshot.
func (t *Tracker) ComputeVelocity(events []models.ReviewEvent, windowDays int) Snapshot {
	now := t.now()
	if windowDays <= 0 {
		windowDays = 7
	}
	cutoff := now.AddDate(0, 0, -windowDays)

	snap := Snapshot{ComputedAt: now, WindowDays: windowDays}

	cards := make(map[uuid.UUID]struct{})
	total, correct := 0, 0
	for _, e := range events {
		if e.Timestamp.Before(cutoff) || e.Timestamp.After(now) {
			continue
		}
		cards[e.CardID] = struct{}{}
		total++
		if e.Correct {
			correct++
		}
	}

	masteryEvents := 0
	for _, at := range masteryCrossings(events) {
		if !at.Before(cutoff) && !at.After(now) {
			masteryEvents++
		}
	}

	days := float64(windowDays)
	snap.CardsPerDay = float64(len(cards)) / days
	snap.MasteryPerDay = float64(masteryEvents) / days
	if total > 0 {
		snap.Efficiency = float64(correct) / float64(total)
	}
	return snap
}

// masteryCrossings replays the full event history in timestamp order and
// returns the instants at which a card first entered (or re-entered, after a
// relapse) the mastered state, using the same thresholds as the card state
// machine.
func masteryCrossings(events []models.ReviewEvent) []time.Time {
	sorted := append([]models.ReviewEvent(nil), events...)
	models.SortEventsByTime(sorted)

	type sim struct {
		repetitions int
		outcomes    models.History
		mastered    bool
	}
	state := make(map[uuid.UUID]*sim)
	var crossings []time.Time

	for _, e := range sorted {
		s, ok := state[e.CardID]
		if !ok {
			s = &sim{outcomes: models.NewHistory(models.DefaultHistorySize)}
			state[e.CardID] = s
		}
		if e.Correct {
			s.repetitions++
			s.outcomes.Push(1, e.Timestamp)
		} else {
			s.repetitions = 0
			s.outcomes.Push(0, e.Timestamp)
		}

		mastered := s.repetitions >= models.MasteredRepetitions && s.outcomes.Mean() >= models.MasteredAccuracy
		if mastered && !s.mastered {
			crossings = append(crossings, e.Timestamp)
		}
		s.mastered = mastered
	}
	return crossings
}

package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Scheduling defaults and bounds.
const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
	MinIntervalDays   = 1

	// Thresholds for the derived card state. A card enters the review
	// cycle after a few successful repetitions and counts as mastered
	// only with a sustained high rolling accuracy on top of that.
	ReviewingRepetitions = 3
	MasteredRepetitions  = 5
	MasteredAccuracy     = 0.9
)

// Card is the unit of truth for a single question/answer item and its
// scheduling state for one learner. Everything else in the engine (concept
// mastery, learning paths, velocity snapshots) is a derived view over cards
// and their review events.
type Card struct {
	ID       uuid.UUID `json:"id"`
	DeckID   uuid.UUID `json:"deck_id"`
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	Tags     []string  `json:"tags,omitempty"`

	Difficulty      float64 `json:"difficulty"`  // [0,1]
	EaseFactor      float64 `json:"ease_factor"` // >= 1.3
	IntervalDays    int     `json:"interval_days"`
	RepetitionCount int     `json:"repetition_count"`

	// Bounded histories, most recent DefaultHistorySize entries each.
	// Outcomes stores 1 for correct and 0 for incorrect.
	ResponseTimes History `json:"response_times"`
	Confidences   History `json:"confidences"`
	Difficulties  History `json:"difficulties"`
	Outcomes      History `json:"outcomes"`

	LastReviewed *time.Time `json:"last_reviewed,omitempty"`
	NextDue      *time.Time `json:"next_due,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// NewCard creates an unreviewed card with default scheduling state.
func NewCard(deckID uuid.UUID, question, answer string, tags []string) Card {
	return Card{
		ID:            uuid.New(),
		DeckID:        deckID,
		Question:      question,
		Answer:        answer,
		Tags:          tags,
		Difficulty:    0.3,
		EaseFactor:    DefaultEaseFactor,
		ResponseTimes: NewHistory(DefaultHistorySize),
		Confidences:   NewHistory(DefaultHistorySize),
		Difficulties:  NewHistory(DefaultHistorySize),
		Outcomes:      NewHistory(DefaultHistorySize),
		CreatedAt:     time.Now(),
	}
}

// Accuracy returns the rolling accuracy over the bounded outcome window,
// or 0 when the card has never been reviewed.
func (c *Card) Accuracy() float64 {
	return c.Outcomes.Mean()
}

// State derives the card's learning stage. An incorrect outcome resets the
// repetition count, which is how a mastered card relapses to Learning.
func (c *Card) State() CardState {
	if c.LastReviewed == nil {
		return StateNew
	}
	if c.RepetitionCount >= MasteredRepetitions && c.Accuracy() >= MasteredAccuracy {
		return StateMastered
	}
	if c.RepetitionCount >= ReviewingRepetitions {
		return StateReviewing
	}
	return StateLearning
}

// IsDue reports whether the card should be presented at the given time.
// Unreviewed cards are always due.
func (c *Card) IsDue(now time.Time) bool {
	if c.NextDue == nil {
		return true
	}
	return !c.NextDue.After(now)
}

// Validate checks the card's invariants. A violation means an upstream bug
// corrupted the card; it is surfaced, never repaired, since a silent repair
// could hide data loss.
func (c *Card) Validate() error {
	if c.LastReviewed != nil && c.NextDue != nil && c.NextDue.Before(*c.LastReviewed) {
		return fmt.Errorf("%w: card %s due %s before last review %s",
			ErrCorruptedCardState, c.ID, c.NextDue.Format(time.RFC3339), c.LastReviewed.Format(time.RFC3339))
	}
	if c.Difficulty < 0 || c.Difficulty > 1 {
		return fmt.Errorf("%w: card %s difficulty %.3f out of [0,1]", ErrCorruptedCardState, c.ID, c.Difficulty)
	}
	if c.LastReviewed != nil && c.EaseFactor < MinEaseFactor {
		return fmt.Errorf("%w: card %s ease factor %.3f below %.1f", ErrCorruptedCardState, c.ID, c.EaseFactor, MinEaseFactor)
	}
	if c.IntervalDays < 0 || c.RepetitionCount < 0 {
		return fmt.Errorf("%w: card %s negative interval or repetition count", ErrCorruptedCardState, c.ID)
	}
	return nil
}

// Clone returns a deep copy of the card.
func (c Card) Clone() Card {
	out := c
	out.Tags = append([]string(nil), c.Tags...)
	out.ResponseTimes = cloneHistory(c.ResponseTimes)
	out.Confidences = cloneHistory(c.Confidences)
	out.Difficulties = cloneHistory(c.Difficulties)
	out.Outcomes = cloneHistory(c.Outcomes)
	if c.LastReviewed != nil {
		v := *c.LastReviewed
		out.LastReviewed = &v
	}
	if c.NextDue != nil {
		v := *c.NextDue
		out.NextDue = &v
	}
	return out
}

func cloneHistory(h History) History {
	out := NewHistory(h.capacity)
	for _, s := range h.Samples() {
		out.Push(s.Value, s.At)
	}
	return out
}

// ClampDifficulty clamps a difficulty value to [0,1].
func ClampDifficulty(d float64) float64 {
	if d < 0 {
		return 0
	}
	if d > 1 {
		return 1
	}
	return d
}

// ClampEase clamps an ease factor to its lower bound of 1.3.
func ClampEase(e float64) float64 {
	if e < MinEaseFactor {
		return MinEaseFactor
	}
	return e
}

// Package scheduler decides when a card should next be reviewed and in what
// order due cards are presented. The interval/ease update follows the SM-2
// family: correct answers grow the interval by an ease-derived multiplier,
// failures reset the interval but only mildly penalize the ease factor.
package scheduler

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"mnemo/internal/difficulty"
	"mnemo/internal/models"
)

const (
	// secondIntervalDays is the interval after the second consecutive
	// correct answer; later intervals multiply by the ease factor.
	secondIntervalDays = 6

	// Small ease bonuses/penalties on top of the analyzer delta.
	fastResponseSecs = 5.0
	slowResponseSecs = 30.0
	responseEaseStep = 0.05
	confidenceStep   = 0.05

	// failEasePenalty is the mild ease reduction on an incorrect answer.
	failEasePenalty = 0.15
)

// Outcome is the caller's report of a single review.
type Outcome struct {
	Correct      bool
	ResponseTime float64 // seconds, >= 0
	Confidence   int     // 1-5, 0 when the learner gave no rating
	At           time.Time
}

// ReviewResult is the updated card plus its audit event and the analyzer's
// explanation of the difficulty adjustment.
type ReviewResult struct {
	Card        models.Card
	Event       models.ReviewEvent
	Explanation string
}

// Engine updates per-card scheduling state and builds study queues. It holds
// no deck state: every method takes the deck or card as explicit input, so
// callers may share one Engine as long as writes to a deck are serialized.
type Engine struct {
	analyzer *difficulty.Analyzer
	now      func() time.Time
	rng      *rand.Rand
}

// NewEngine creates a scheduling engine backed by the given analyzer.
func NewEngine(analyzer *difficulty.Analyzer) *Engine {
	return &Engine{
		analyzer: analyzer,
		now:      time.Now,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// RecordOutcome applies one review outcome to a card and returns the updated
// copy; the input card is not mutated and no other card is touched. The
// outcome is validated first: a negative response time or an out-of-range
// confidence rejects the call with ErrInvalidOutcome and leaves state
// untouched.
func (e *Engine) RecordOutcome(card models.Card, out Outcome) (ReviewResult, error) {
	if out.ResponseTime < 0 {
		return ReviewResult{}, fmt.Errorf("%w: response time %.2fs is negative", models.ErrInvalidOutcome, out.ResponseTime)
	}
	if out.Confidence != 0 && (out.Confidence < 1 || out.Confidence > 5) {
		return ReviewResult{}, fmt.Errorf("%w: confidence %d out of 1-5", models.ErrInvalidOutcome, out.Confidence)
	}
	if err := card.Validate(); err != nil {
		return ReviewResult{}, err
	}

	c := card.Clone()
	at := out.At
	if at.IsZero() {
		at = e.now()
	}

	c.ResponseTimes.Push(out.ResponseTime, at)
	if out.Confidence != 0 {
		c.Confidences.Push(float64(out.Confidence), at)
	}
	if out.Correct {
		c.Outcomes.Push(1, at)
	} else {
		c.Outcomes.Push(0, at)
	}

	analysis := e.analyzer.Analyze(&c)
	delta := analysis.Delta

	oldEase := c.EaseFactor
	oldDifficulty := c.Difficulty

	if out.Correct {
		// The analyzer delta moves difficulty; ease moves the other way,
		// with a small bonus for quick, confident answers.
		c.EaseFactor = models.ClampEase(c.EaseFactor - delta + responseBonus(out.ResponseTime) + confidenceBonus(out.Confidence))
		c.IntervalDays = nextInterval(c.IntervalDays, c.EaseFactor)
		c.RepetitionCount++
	} else {
		c.EaseFactor = models.ClampEase(c.EaseFactor - failEasePenalty)
		c.IntervalDays = models.MinIntervalDays
		c.RepetitionCount = 0
	}

	c.Difficulty = models.ClampDifficulty(c.Difficulty + delta)
	c.Difficulties.Push(c.Difficulty, at)

	c.LastReviewed = &at
	due := at.AddDate(0, 0, c.IntervalDays)
	c.NextDue = &due

	event := models.ReviewEvent{
		ID:              uuid.New(),
		CardID:          c.ID,
		Timestamp:       at,
		Correct:         out.Correct,
		ResponseTime:    out.ResponseTime,
		Confidence:      out.Confidence,
		DifficultyDelta: c.Difficulty - oldDifficulty,
		EaseDelta:       c.EaseFactor - oldEase,
	}

	return ReviewResult{Card: c, Event: event, Explanation: analysis.Explanation}, nil
}

// Replay rebuilds a card's scheduling state from its review events. Events
// are re-sorted into timestamp order first; an event belonging to another
// card fails with ErrEventCardMismatch. Replaying the same events over the
// same base card is idempotent.
func (e *Engine) Replay(card models.Card, events []models.ReviewEvent) (models.Card, error) {
	c := card.Clone()
	c.Difficulty = 0.3
	c.EaseFactor = models.DefaultEaseFactor
	c.IntervalDays = 0
	c.RepetitionCount = 0
	c.ResponseTimes = models.NewHistory(models.DefaultHistorySize)
	c.Confidences = models.NewHistory(models.DefaultHistorySize)
	c.Difficulties = models.NewHistory(models.DefaultHistorySize)
	c.Outcomes = models.NewHistory(models.DefaultHistorySize)
	c.LastReviewed = nil
	c.NextDue = nil

	sorted := append([]models.ReviewEvent(nil), events...)
	models.SortEventsByTime(sorted)

	for _, ev := range sorted {
		if ev.CardID != c.ID {
			return models.Card{}, fmt.Errorf("%w: card %s, event %s", models.ErrEventCardMismatch, c.ID, ev.CardID)
		}
		res, err := e.RecordOutcome(c, Outcome{
			Correct:      ev.Correct,
			ResponseTime: ev.ResponseTime,
			Confidence:   ev.Confidence,
			At:           ev.Timestamp,
		})
		if err != nil {
			return models.Card{}, err
		}
		c = res.Card
	}
	return c, nil
}

// nextInterval computes the next interval in days after a correct answer:
// 1 day for the first success, a fixed short second step, then growth by the
// ease factor. With the ease floor at 1.3 the interval never shrinks across
// consecutive correct answers.
func nextInterval(current int, ease float64) int {
	switch {
	case current < models.MinIntervalDays:
		return models.MinIntervalDays
	case current == models.MinIntervalDays:
		return secondIntervalDays
	default:
		return int(math.Round(float64(current) * ease))
	}
}

func responseBonus(seconds float64) float64 {
	if seconds <= fastResponseSecs {
		return responseEaseStep
	}
	if seconds >= slowResponseSecs {
		return -responseEaseStep
	}
	return 0
}

func confidenceBonus(confidence int) float64 {
	switch {
	case confidence >= 4:
		return confidenceStep
	case confidence == 0:
		return 0
	case confidence <= 2:
		return -confidenceStep
	default:
		return 0
	}
}

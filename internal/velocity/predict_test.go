package velocity

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"mnemo/internal/models"
)

// masteredOn returns five correct reviews for one card, all on the given day.
func masteredOn(cardID uuid.UUID, day time.Time) []models.ReviewEvent {
	var events []models.ReviewEvent
	for i := 0; i < 5; i++ {
		events = append(events, correctEvent(cardID, day.Add(time.Duration(i)*time.Minute)))
	}
	return events
}

func newCards(deckID uuid.UUID, n int) []models.Card {
	var cards []models.Card
	for i := 0; i < n; i++ {
		cards = append(cards, models.NewCard(deckID, "q", "a", nil))
	}
	return cards
}

func TestPredictMasteryNeedsEnoughStudyDays(t *testing.T) {
	tracker := newTestTracker()
	deck := models.NewDeck("test")
	deck.Cards = newCards(deck.ID, 3)

	// Two days of heavy studying is still only two study days.
	cardID := uuid.New()
	var events []models.ReviewEvent
	for i := 0; i < 30; i++ {
		events = append(events, correctEvent(cardID, velT0.AddDate(0, 0, -1-i%2)))
	}

	p := tracker.PredictMastery(deck, events)
	if p.Status != PredictionUnavailable {
		t.Fatalf("Status = %v, want PredictionUnavailable", p.Status)
	}
	if !strings.Contains(p.Reason, "2 study days") {
		t.Errorf("Reason = %q, want mention of the 2 recorded study days", p.Reason)
	}
}

func TestPredictMasteryNeedsProgress(t *testing.T) {
	tracker := newTestTracker()
	deck := models.NewDeck("test")
	deck.Cards = newCards(deck.ID, 3)

	// Six study days, every answer wrong: no mastery trend to extrapolate.
	cardID := uuid.New()
	var events []models.ReviewEvent
	for i := 0; i < 6; i++ {
		events = append(events, incorrectEvent(cardID, velT0.AddDate(0, 0, -i)))
	}

	p := tracker.PredictMastery(deck, events)
	if p.Status != PredictionUnavailable {
		t.Fatalf("Status = %v, want PredictionUnavailable", p.Status)
	}
	if p.EstimatedDays != 0 {
		t.Errorf("EstimatedDays = %v, want 0 on an unavailable prediction", p.EstimatedDays)
	}
}

func TestPredictMasterySteadyTrend(t *testing.T) {
	tracker := newTestTracker()
	deck := models.NewDeck("test")
	deck.Cards = newCards(deck.ID, 3)

	// One card mastered per day for six days, up to "today".
	var events []models.ReviewEvent
	for i := 5; i >= 0; i-- {
		events = append(events, masteredOn(uuid.New(), velT0.AddDate(0, 0, -i))...)
	}

	p := tracker.PredictMastery(deck, events)
	if p.Status != PredictionAvailable {
		t.Fatalf("Status = %v (%s), want PredictionAvailable", p.Status, p.Reason)
	}
	// Perfectly steady trend: one per day, three cards left.
	if p.EstimatedDays != 3 {
		t.Errorf("EstimatedDays = %v, want 3", p.EstimatedDays)
	}
	if p.ConfidenceScore != 1 {
		t.Errorf("ConfidenceScore = %v, want 1 for zero variance", p.ConfidenceScore)
	}
	if p.ConfidenceLow != p.EstimatedDays || p.ConfidenceHigh != p.EstimatedDays {
		t.Errorf("bounds = [%v, %v], want both equal to the estimate", p.ConfidenceLow, p.ConfidenceHigh)
	}
}

func TestPredictMasteryNoisyTrendWidensBounds(t *testing.T) {
	tracker := newTestTracker()
	deck := models.NewDeck("test")
	deck.Cards = newCards(deck.ID, 4)

	// Crossings on only two of six days.
	events := masteredOn(uuid.New(), velT0.AddDate(0, 0, -5))
	events = append(events, masteredOn(uuid.New(), velT0.AddDate(0, 0, -1))...)
	for i := 0; i < 6; i++ {
		events = append(events, incorrectEvent(uuid.New(), velT0.AddDate(0, 0, -i)))
	}

	p := tracker.PredictMastery(deck, events)
	if p.Status != PredictionAvailable {
		t.Fatalf("Status = %v (%s), want PredictionAvailable", p.Status, p.Reason)
	}
	if p.EstimatedDays < 0 {
		t.Errorf("EstimatedDays = %v, must never be negative", p.EstimatedDays)
	}
	if p.ConfidenceScore <= 0 || p.ConfidenceScore >= 1 {
		t.Errorf("ConfidenceScore = %v, want within (0, 1) for a noisy trend", p.ConfidenceScore)
	}
	if !(p.ConfidenceLow < p.EstimatedDays && p.EstimatedDays < p.ConfidenceHigh) {
		t.Errorf("bounds = [%v, %v] around %v, want a widened interval", p.ConfidenceLow, p.ConfidenceHigh, p.EstimatedDays)
	}
}

func TestPredictMasteryNothingLeft(t *testing.T) {
	tracker := newTestTracker()
	deck := models.NewDeck("test")

	card := models.NewCard(deck.ID, "q", "a", nil)
	card.RepetitionCount = 5
	last := velT0.AddDate(0, 0, -1)
	card.LastReviewed = &last
	for i := 0; i < 5; i++ {
		card.Outcomes.Push(1, last)
	}
	deck.Cards = []models.Card{card}

	var events []models.ReviewEvent
	for i := 0; i < 6; i++ {
		events = append(events, correctEvent(card.ID, velT0.AddDate(0, 0, -i)))
	}

	p := tracker.PredictMastery(deck, events)
	if p.Status != PredictionAvailable || p.EstimatedDays != 0 {
		t.Errorf("prediction = %+v, want available with zero days remaining", p)
	}
}

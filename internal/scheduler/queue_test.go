package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"mnemo/internal/models"
)

func queueCard(deckID uuid.UUID, difficulty float64, due *time.Time, ease float64, outcomes []float64) models.Card {
	card := models.NewCard(deckID, "q", "a", nil)
	card.Difficulty = difficulty
	card.EaseFactor = ease
	card.NextDue = due
	at := schedT0.Add(-24 * time.Hour)
	for _, o := range outcomes {
		card.Outcomes.Push(o, at)
		at = at.Add(time.Minute)
	}
	return card
}

func timePtr(t time.Time) *time.Time { return &t }

func TestSelectQueueSpaced(t *testing.T) {
	e := newTestEngine()
	deck := models.NewDeck("test")

	mostOverdue := queueCard(deck.ID, 0.3, timePtr(schedT0.Add(-5*time.Hour)), 2.5, nil)
	tieLowEase := queueCard(deck.ID, 0.3, timePtr(schedT0.Add(-2*time.Hour)), 1.5, nil)
	tieHighEase := queueCard(deck.ID, 0.3, timePtr(schedT0.Add(-2*time.Hour)), 2.5, nil)
	notDue := queueCard(deck.ID, 0.3, timePtr(schedT0.Add(3*time.Hour)), 2.5, nil)
	deck.Cards = []models.Card{tieHighEase, notDue, mostOverdue, tieLowEase}

	got, err := e.SelectQueue(deck, ModeSpaced, 10)
	if err != nil {
		t.Fatalf("SelectQueue: %v", err)
	}

	want := []uuid.UUID{mostOverdue.ID, tieLowEase.ID, tieHighEase.ID}
	if len(got) != len(want) {
		t.Fatalf("queue length = %d, want %d (future card must be excluded)", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("queue[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestSelectQueueDifficult(t *testing.T) {
	e := newTestEngine()
	deck := models.NewDeck("test")

	hardLowAcc := queueCard(deck.ID, 0.9, nil, 2.5, []float64{0, 0, 1})
	hardHighAcc := queueCard(deck.ID, 0.9, nil, 2.5, []float64{1, 1, 1})
	easy := queueCard(deck.ID, 0.2, nil, 2.5, []float64{1, 1, 1})
	deck.Cards = []models.Card{easy, hardHighAcc, hardLowAcc}

	got, err := e.SelectQueue(deck, ModeDifficult, 10)
	if err != nil {
		t.Fatalf("SelectQueue: %v", err)
	}

	want := []uuid.UUID{hardLowAcc.ID, hardHighAcc.ID, easy.ID}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("queue[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestSelectQueueSequential(t *testing.T) {
	e := newTestEngine()
	deck := models.NewDeck("test")
	for i := 0; i < 4; i++ {
		deck.Cards = append(deck.Cards, queueCard(deck.ID, 0.3, nil, 2.5, nil))
	}

	got, err := e.SelectQueue(deck, ModeSequential, 10)
	if err != nil {
		t.Fatalf("SelectQueue: %v", err)
	}
	for i, c := range deck.Cards {
		if got[i] != c.ID {
			t.Errorf("queue[%d] = %s, want insertion order %s", i, got[i], c.ID)
		}
	}
}

func TestSelectQueueRandomIsAPermutation(t *testing.T) {
	e := newTestEngine()
	deck := models.NewDeck("test")
	for i := 0; i < 8; i++ {
		deck.Cards = append(deck.Cards, queueCard(deck.ID, 0.3, nil, 2.5, nil))
	}

	got, err := e.SelectQueue(deck, ModeRandom, len(deck.Cards))
	if err != nil {
		t.Fatalf("SelectQueue: %v", err)
	}
	seen := make(map[uuid.UUID]bool)
	for _, id := range got {
		if seen[id] {
			t.Fatalf("duplicate card %s in random queue", id)
		}
		seen[id] = true
	}
	for _, c := range deck.Cards {
		if !seen[c.ID] {
			t.Errorf("card %s missing from full random queue", c.ID)
		}
	}
}

func TestSelectQueueSizeClamp(t *testing.T) {
	e := newTestEngine()
	deck := models.NewDeck("test")
	for i := 0; i < 3; i++ {
		deck.Cards = append(deck.Cards, queueCard(deck.ID, 0.3, nil, 2.5, nil))
	}

	tests := []struct {
		name string
		size int
		want int
	}{
		{"more than available", 10, 3},
		{"fewer than available", 2, 2},
		{"zero", 0, 0},
		{"negative", -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.SelectQueue(deck, ModeSequential, tt.size)
			if err != nil {
				t.Fatalf("SelectQueue: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestSelectQueueUnknownMode(t *testing.T) {
	e := newTestEngine()
	deck := models.NewDeck("test")

	if _, err := e.SelectQueue(deck, Mode(99), 5); !errors.Is(err, models.ErrUnknownMode) {
		t.Errorf("err = %v, want ErrUnknownMode", err)
	}
}

func TestSelectMixed(t *testing.T) {
	e := newTestEngine()
	deck := models.NewDeck("test")
	for i := 0; i < 6; i++ {
		outcomes := []float64{1, 1, 1}
		if i%2 == 0 {
			outcomes = nil // never attempted
		}
		deck.Cards = append(deck.Cards, queueCard(deck.ID, 0.3, nil, 2.5, outcomes))
	}

	got := e.SelectMixed(deck, 4)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	seen := make(map[uuid.UUID]bool)
	valid := make(map[uuid.UUID]bool)
	for _, c := range deck.Cards {
		valid[c.ID] = true
	}
	for _, id := range got {
		if seen[id] {
			t.Fatalf("duplicate card %s in mixed queue", id)
		}
		if !valid[id] {
			t.Fatalf("card %s not in deck", id)
		}
		seen[id] = true
	}

	if got := e.SelectMixed(deck, 100); len(got) != len(deck.Cards) {
		t.Errorf("oversized request returned %d cards, want %d", len(got), len(deck.Cards))
	}
	if got := e.SelectMixed(deck, 0); got != nil {
		t.Errorf("zero-size request returned %v, want nil", got)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"spaced", ModeSpaced, false},
		{"random", ModeRandom, false},
		{"sequential", ModeSequential, false},
		{"difficult", ModeDifficult, false},
		{"cramming", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			if !errors.Is(err, models.ErrUnknownMode) {
				t.Errorf("ParseMode(%q) err = %v, want ErrUnknownMode", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseMode(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

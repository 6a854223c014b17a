package scheduler

import (
	"encoding"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"mnemo/internal/models"
)

// Mode selects the ordering of a study queue. The set is closed and every
// switch over it is exhaustive.
type Mode int

const (
	ModeSpaced     Mode = iota + 1 // Due cards, most overdue first.
	ModeRandom                     // Uniform shuffle of the whole deck.
	ModeSequential                 // Deck insertion order.
	ModeDifficult                  // Hardest cards first.
)

var (
	modeNames = [...]string{
		ModeSpaced:     "spaced",
		ModeRandom:     "random",
		ModeSequential: "sequential",
		ModeDifficult:  "difficult",
	}
	modeByName = map[string]Mode{
		"spaced":     ModeSpaced,
		"random":     ModeRandom,
		"sequential": ModeSequential,
		"difficult":  ModeDifficult,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = Mode(0)
	_ encoding.TextMarshaler   = Mode(0)
	_ encoding.TextUnmarshaler = (*Mode)(nil)
)

// IsValid reports whether m is a recognized study mode.
func (m Mode) IsValid() bool {
	return m >= ModeSpaced && m <= ModeDifficult
}

// String returns the mode name ("spaced", "random", "sequential",
// "difficult"). For invalid values it returns "Mode(n)".
func (m Mode) String() string {
	if m.IsValid() {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.IsValid() {
		return nil, fmt.Errorf("%w: %d", models.ErrUnknownMode, int(m))
	}
	return []byte(modeNames[m]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	v, ok := modeByName[string(text)]
	if !ok {
		return fmt.Errorf("%w: %q", models.ErrUnknownMode, text)
	}
	*m = v
	return nil
}

// ParseMode converts a mode name to a Mode.
func ParseMode(name string) (Mode, error) {
	var m Mode
	if err := m.UnmarshalText([]byte(name)); err != nil {
		return 0, err
	}
	return m, nil
}

// SelectQueue returns an ordered queue of up to size card identities for the
// given study mode. It is a pure function of the deck snapshot, the mode and
// the clock (plus the engine's RNG for the random mode): when fewer cards
// qualify than requested, all qualifying cards are returned.
func (e *Engine) SelectQueue(deck *models.Deck, mode Mode, size int) ([]uuid.UUID, error) {
	if !mode.IsValid() {
		return nil, fmt.Errorf("%w: %d", models.ErrUnknownMode, int(mode))
	}
	if size <= 0 {
		return nil, nil
	}

	now := e.now()
	var cards []models.Card

	switch mode {
	case ModeSpaced:
		cards = deck.DueCards(now)
		sort.SliceStable(cards, func(i, j int) bool {
			oi, oj := overdue(cards[i], now), overdue(cards[j], now)
			if oi != oj {
				return oi > oj
			}
			return cards[i].EaseFactor < cards[j].EaseFactor
		})
	case ModeRandom:
		cards = append(cards, deck.Cards...)
		e.rng.Shuffle(len(cards), func(i, j int) {
			cards[i], cards[j] = cards[j], cards[i]
		})
	case ModeSequential:
		cards = append(cards, deck.Cards...)
	case ModeDifficult:
		cards = append(cards, deck.Cards...)
		sort.SliceStable(cards, func(i, j int) bool {
			if cards[i].Difficulty != cards[j].Difficulty {
				return cards[i].Difficulty > cards[j].Difficulty
			}
			return cards[i].Accuracy() < cards[j].Accuracy()
		})
	}

	if size > len(cards) {
		size = len(cards)
	}
	ids := make([]uuid.UUID, 0, size)
	for _, c := range cards[:size] {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

// SelectMixed draws up to size cards with weighted randomization: the lower
// a card's rolling accuracy, the more likely it is to be drawn, and cards
// never attempted get a medium-high weight so new material still surfaces.
func (e *Engine) SelectMixed(deck *models.Deck, size int) []uuid.UUID {
	if size <= 0 || len(deck.Cards) == 0 {
		return nil
	}
	type weighted struct {
		id     uuid.UUID
		weight float64
	}
	remaining := make([]weighted, 0, len(deck.Cards))
	for _, c := range deck.Cards {
		w := 0.7 // never attempted
		if c.Outcomes.Len() > 0 {
			w = 1.0 - c.Accuracy()*0.9
		}
		remaining = append(remaining, weighted{id: c.ID, weight: w})
	}

	if size > len(remaining) {
		size = len(remaining)
	}
	selected := make([]uuid.UUID, 0, size)
	for len(selected) < size {
		total := 0.0
		for _, w := range remaining {
			total += w.weight
		}
		r := e.rng.Float64() * total
		cum := 0.0
		idx := 0
		for i, w := range remaining {
			cum += w.weight
			if r <= cum {
				idx = i
				break
			}
		}
		selected = append(selected, remaining[idx].id)
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return selected
}

// overdue returns how long past due a card is at the given time. Unreviewed
// cards count as due since their creation.
func overdue(c models.Card, now time.Time) time.Duration {
	if c.NextDue == nil {
		return now.Sub(c.CreatedAt)
	}
	return now.Sub(*c.NextDue)
}

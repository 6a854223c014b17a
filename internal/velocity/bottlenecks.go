package velocity

import (
	"sort"

	"github.com/google/uuid"

	"mnemo/internal/models"
)

// Bottleneck thresholds: a card is a bottleneck when its repetition count is
// in the high tail while its accuracy is in the low tail, meaning repeated
// effort that is not converting into retention.
const (
	repetitionPercentile = 0.75
	accuracyPercentile   = 0.25
)

// FindBottlenecks returns the cards dragging down mastery progress, worst
// first. Ranking weighs how much review effort each card soaks up against
// how little of it sticks; ties resolve by card ID for determinism.
func (t *Tracker) FindBottlenecks(deck *models.Deck) []uuid.UUID {
	type reviewed struct {
		id       uuid.UUID
		reps     int
		accuracy float64
	}
	var cards []reviewed
	for i := range deck.Cards {
		c := &deck.Cards[i]
		if c.Outcomes.Len() == 0 {
			continue
		}
		cards = append(cards, reviewed{id: c.ID, reps: c.RepetitionCount, accuracy: c.Accuracy()})
	}
	if len(cards) == 0 {
		return nil
	}

	reps := make([]float64, len(cards))
	accs := make([]float64, len(cards))
	for i, c := range cards {
		reps[i] = float64(c.reps)
		accs[i] = c.accuracy
	}
	repCut := percentile(reps, repetitionPercentile)
	accCut := percentile(accs, accuracyPercentile)

	var out []reviewed
	for _, c := range cards {
		if float64(c.reps) >= repCut && c.accuracy <= accCut {
			out = append(out, c)
		}
	}

	drag := func(c reviewed) float64 {
		return float64(c.reps) * (1 - c.accuracy)
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := drag(out[i]), drag(out[j])
		if di != dj {
			return di > dj
		}
		return out[i].id.String() < out[j].id.String()
	})

	ids := make([]uuid.UUID, len(out))
	for i, c := range out {
		ids[i] = c.id
	}
	return ids
}

// percentile returns the value at the given rank in [0,1] using the
// nearest-rank method over a sorted copy.
func percentile(values []float64, p float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}

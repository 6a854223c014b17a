package models

import (
	"time"

	"github.com/google/uuid"
)

// Deck is an ordered collection of cards for one learner. Card order is
// insertion order, which the sequential study mode preserves.
type Deck struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Cards     []Card    `json:"cards"`
	CreatedAt time.Time `json:"created_at"`
}

// NewDeck creates an empty deck.
func NewDeck(name string) *Deck {
	return &Deck{ID: uuid.New(), Name: name, CreatedAt: time.Now()}
}

// CardByID returns a pointer to the card with the given ID, or
// ErrCardNotFound.
func (d *Deck) CardByID(id uuid.UUID) (*Card, error) {
	for i := range d.Cards {
		if d.Cards[i].ID == id {
			return &d.Cards[i], nil
		}
	}
	return nil, ErrCardNotFound
}

// DueCards returns the cards due at the given time, in deck order.
func (d *Deck) DueCards(now time.Time) []Card {
	var due []Card
	for _, c := range d.Cards {
		if c.IsDue(now) {
			due = append(due, c)
		}
	}
	return due
}

// Tags returns the distinct tags used across the deck, in first-seen order.
func (d *Deck) Tags() []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, c := range d.Cards {
		for _, t := range c.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	return tags
}

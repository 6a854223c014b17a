// Package repository implements the persistence collaborators over the SQL
// store. The engine consumes these through its store interfaces and only
// ever sees validated domain objects.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mnemo/internal/database"
	"mnemo/internal/models"
)

// CardRepository handles deck and card persistence.
type CardRepository struct {
	db *database.DB
}

// NewCardRepository creates a card repository.
func NewCardRepository(db *database.DB) *CardRepository {
	return &CardRepository{db: db}
}

// CreateDeck persists a new deck.
func (r *CardRepository) CreateDeck(ctx context.Context, deck *models.Deck) error {
	_, err := r.db.Exec(`
		INSERT INTO decks (id, name, created_at)
		VALUES (?, ?, ?)
	`, deck.ID.String(), deck.Name, deck.CreatedAt)
	if err != nil {
		return fmt.Errorf("create deck: %w", err)
	}
	for i := range deck.Cards {
		if err := r.insertCard(ctx, &deck.Cards[i], i); err != nil {
			return err
		}
	}
	return nil
}

// AddCard appends a card to its deck, preserving insertion order.
func (r *CardRepository) AddCard(ctx context.Context, card *models.Card) error {
	var position int
	err := r.db.QueryRow(`
		SELECT COALESCE(MAX(position) + 1, 0) FROM cards WHERE deck_id = ?
	`, card.DeckID.String()).Scan(&position)
	if err != nil {
		return fmt.Errorf("add card: next position: %w", err)
	}
	return r.insertCard(ctx, card, position)
}

func (r *CardRepository) insertCard(_ context.Context, card *models.Card, position int) error {
	tags, times, confs, diffs, outcomes, err := encodeCardColumns(card)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`
		INSERT INTO cards (
			id, deck_id, position, question, answer, tags,
			difficulty, ease_factor, interval_days, repetition_count,
			response_times, confidences, difficulties, outcomes,
			last_reviewed, next_due, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, card.ID.String(), card.DeckID.String(), position, card.Question, card.Answer, tags,
		card.Difficulty, card.EaseFactor, card.IntervalDays, card.RepetitionCount,
		times, confs, diffs, outcomes,
		nullableTime(card.LastReviewed), nullableTime(card.NextDue), card.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert card: %w", err)
	}
	return nil
}

// SaveCard persists the updated scheduling state of an existing card.
func (r *CardRepository) SaveCard(_ context.Context, card *models.Card) error {
	tags, times, confs, diffs, outcomes, err := encodeCardColumns(card)
	if err != nil {
		return err
	}
	result, err := r.db.Exec(`
		UPDATE cards SET
			question = ?, answer = ?, tags = ?,
			difficulty = ?, ease_factor = ?, interval_days = ?, repetition_count = ?,
			response_times = ?, confidences = ?, difficulties = ?, outcomes = ?,
			last_reviewed = ?, next_due = ?
		WHERE id = ?
	`, card.Question, card.Answer, tags,
		card.Difficulty, card.EaseFactor, card.IntervalDays, card.RepetitionCount,
		times, confs, diffs, outcomes,
		nullableTime(card.LastReviewed), nullableTime(card.NextDue), card.ID.String())
	if err != nil {
		return fmt.Errorf("save card: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("save card: %w", err)
	}
	if n == 0 {
		return models.ErrCardNotFound
	}
	return nil
}

// LoadDeck loads a deck and its cards in insertion order.
func (r *CardRepository) LoadDeck(_ context.Context, id uuid.UUID) (*models.Deck, error) {
	deck := &models.Deck{}
	var deckID string
	err := r.db.QueryRow(`
		SELECT id, name, created_at FROM decks WHERE id = ?
	`, id.String()).Scan(&deckID, &deck.Name, &deck.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrDeckNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load deck: %w", err)
	}
	deck.ID, err = uuid.Parse(deckID)
	if err != nil {
		return nil, fmt.Errorf("load deck: %w", err)
	}

	rows, err := r.db.Query(`
		SELECT id, deck_id, question, answer, tags,
		       difficulty, ease_factor, interval_days, repetition_count,
		       response_times, confidences, difficulties, outcomes,
		       last_reviewed, next_due, created_at
		FROM cards
		WHERE deck_id = ?
		ORDER BY position
	`, id.String())
	if err != nil {
		return nil, fmt.Errorf("load deck cards: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		deck.Cards = append(deck.Cards, *card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load deck cards: %w", err)
	}
	return deck, nil
}

// ListDecks returns all deck IDs and names, oldest first.
func (r *CardRepository) ListDecks(_ context.Context) (map[uuid.UUID]string, error) {
	rows, err := r.db.Query(`SELECT id, name FROM decks ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("list decks: %w", err)
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("list decks: %w", err)
		}
		out[parsed] = name
	}
	return out, rows.Err()
}

func scanCard(rows *sql.Rows) (*models.Card, error) {
	var (
		card                      models.Card
		cardID, deckID            string
		tags                      string
		times, confs, diffs, outs []byte
		lastReviewed, nextDue     sql.NullTime
	)
	err := rows.Scan(&cardID, &deckID, &card.Question, &card.Answer, &tags,
		&card.Difficulty, &card.EaseFactor, &card.IntervalDays, &card.RepetitionCount,
		&times, &confs, &diffs, &outs,
		&lastReviewed, &nextDue, &card.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan card: %w", err)
	}
	if card.ID, err = uuid.Parse(cardID); err != nil {
		return nil, fmt.Errorf("scan card id: %w", err)
	}
	if card.DeckID, err = uuid.Parse(deckID); err != nil {
		return nil, fmt.Errorf("scan card deck id: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &card.Tags); err != nil {
		return nil, fmt.Errorf("decode card tags: %w", err)
	}
	for _, col := range []struct {
		data []byte
		dst  *models.History
	}{
		{times, &card.ResponseTimes},
		{confs, &card.Confidences},
		{diffs, &card.Difficulties},
		{outs, &card.Outcomes},
	} {
		if err := json.Unmarshal(col.data, col.dst); err != nil {
			return nil, fmt.Errorf("decode card history: %w", err)
		}
	}
	if lastReviewed.Valid {
		card.LastReviewed = &lastReviewed.Time
	}
	if nextDue.Valid {
		card.NextDue = &nextDue.Time
	}
	return &card, nil
}

func encodeCardColumns(card *models.Card) (tags, times, confs, diffs, outcomes []byte, err error) {
	if card.Tags == nil {
		tags = []byte("[]")
	} else if tags, err = json.Marshal(card.Tags); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("encode card tags: %w", err)
	}
	for _, col := range []struct {
		src models.History
		dst *[]byte
	}{
		{card.ResponseTimes, &times},
		{card.Confidences, &confs},
		{card.Difficulties, &diffs},
		{card.Outcomes, &outcomes},
	} {
		if *col.dst, err = json.Marshal(col.src); err != nil {
			return nil, nil, nil, nil, nil, fmt.Errorf("encode card history: %w", err)
		}
	}
	return tags, times, confs, diffs, outcomes, nil
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"mnemo/internal/database"
	"mnemo/internal/models"
)

// ReviewRepository handles the append-only review-event log.
type ReviewRepository struct {
	db *database.DB
}

// NewReviewRepository creates a review repository.
func NewReviewRepository(db *database.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// AppendReviewEvent inserts one immutable review event. There is no update
// path: events form the audit trail and are only ever appended.
func (r *ReviewRepository) AppendReviewEvent(_ context.Context, event models.ReviewEvent) error {
	var confidence interface{}
	if event.Confidence != 0 {
		confidence = event.Confidence
	}
	_, err := r.db.Exec(`
		INSERT INTO review_events (
			id, card_id, reviewed_at, correct, response_time,
			confidence, difficulty_delta, ease_delta
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, event.ID.String(), event.CardID.String(), event.Timestamp, event.Correct,
		event.ResponseTime, confidence, event.DifficultyDelta, event.EaseDelta)
	if err != nil {
		return fmt.Errorf("append review event: %w", err)
	}
	return nil
}

// ListDeckEvents returns all review events for a deck's cards in timestamp
// order.
func (r *ReviewRepository) ListDeckEvents(_ context.Context, deckID uuid.UUID) ([]models.ReviewEvent, error) {
	rows, err := r.db.Query(`
		SELECT e.id, e.card_id, e.reviewed_at, e.correct, e.response_time,
		       e.confidence, e.difficulty_delta, e.ease_delta
		FROM review_events e
		JOIN cards c ON c.id = e.card_id
		WHERE c.deck_id = ?
		ORDER BY e.reviewed_at
	`, deckID.String())
	if err != nil {
		return nil, fmt.Errorf("list deck events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListCardEvents returns all review events for one card in timestamp order.
func (r *ReviewRepository) ListCardEvents(_ context.Context, cardID uuid.UUID) ([]models.ReviewEvent, error) {
	rows, err := r.db.Query(`
		SELECT id, card_id, reviewed_at, correct, response_time,
		       confidence, difficulty_delta, ease_delta
		FROM review_events
		WHERE card_id = ?
		ORDER BY reviewed_at
	`, cardID.String())
	if err != nil {
		return nil, fmt.Errorf("list card events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]models.ReviewEvent, error) {
	var events []models.ReviewEvent
	for rows.Next() {
		var (
			e              models.ReviewEvent
			eventID, cardID string
			confidence     sql.NullInt64
		)
		err := rows.Scan(&eventID, &cardID, &e.Timestamp, &e.Correct, &e.ResponseTime,
			&confidence, &e.DifficultyDelta, &e.EaseDelta)
		if err != nil {
			return nil, fmt.Errorf("scan review event: %w", err)
		}
		if e.ID, err = uuid.Parse(eventID); err != nil {
			return nil, fmt.Errorf("scan review event id: %w", err)
		}
		if e.CardID, err = uuid.Parse(cardID); err != nil {
			return nil, fmt.Errorf("scan review event card id: %w", err)
		}
		if confidence.Valid {
			e.Confidence = int(confidence.Int64)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// ReviewEvent records one review of one card. Events are immutable once
// created: they are appended to the audit trail and never mutated, and the
// resulting difficulty/ease deltas let the scheduling state be rebuilt by
// replay.
type ReviewEvent struct {
	ID           uuid.UUID `json:"id"`
	CardID       uuid.UUID `json:"card_id"`
	Timestamp    time.Time `json:"timestamp"`
	Correct      bool      `json:"correct"`
	ResponseTime float64   `json:"response_time"`        // seconds, >= 0
	Confidence   int       `json:"confidence,omitempty"` // 1-5, 0 when unset

	// Deltas applied by this review, kept for the audit trail.
	DifficultyDelta float64 `json:"difficulty_delta"`
	EaseDelta       float64 `json:"ease_delta"`
}

// SortEventsByTime sorts events chronologically, in place. Interval and ease
// computation is sequential, so events for a card must be applied in
// timestamp order; callers re-sort before replay rather than rejecting.
func SortEventsByTime(events []ReviewEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
}

// StudyDays returns the number of distinct calendar days (UTC) on which at
// least one of the given events occurred.
func StudyDays(events []ReviewEvent) int {
	days := make(map[string]struct{})
	for _, e := range events {
		days[e.Timestamp.UTC().Format("2006-01-02")] = struct{}{}
	}
	return len(days)
}

package models

import "errors"

// Sentinel errors for the engine core.
// Use errors.Is to check: errors.Is(err, models.ErrInvalidOutcome)
var (
	// ErrInvalidOutcome rejects a review outcome with a negative response
	// time or a confidence rating outside 1-5. Card state is unchanged.
	ErrInvalidOutcome = errors.New("mnemo: invalid review outcome")

	// ErrCorruptedCardState reports a violated card invariant (for example
	// next_due before last_reviewed). It indicates an upstream bug and is
	// the one fatal condition for this core: callers must not repair it.
	ErrCorruptedCardState = errors.New("mnemo: corrupted card state")

	// ErrUnknownMode rejects an unrecognized study mode.
	ErrUnknownMode = errors.New("mnemo: unknown study mode")

	// ErrCardNotFound reports a card identity missing from its deck.
	ErrCardNotFound = errors.New("mnemo: card not found")

	// ErrEventCardMismatch reports a review event replayed against the
	// wrong card.
	ErrEventCardMismatch = errors.New("mnemo: review event card mismatch")

	// ErrDeckNotFound reports a deck identity missing from storage.
	ErrDeckNotFound = errors.New("mnemo: deck not found")
)

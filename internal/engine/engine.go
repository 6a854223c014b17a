// Package engine wires the scheduler, difficulty analyzer, knowledge graph
// and velocity tracker behind the operations exposed to collaborators (CLI,
// analytics, export tooling). Persistence is consumed through narrow store
// interfaces: the engine receives already-validated domain objects and never
// parses files itself.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mnemo/internal/difficulty"
	"mnemo/internal/knowledge"
	"mnemo/internal/models"
	"mnemo/internal/scheduler"
	"mnemo/internal/velocity"
)

// CardStore loads decks and persists card updates.
type CardStore interface {
	LoadDeck(ctx context.Context, id uuid.UUID) (*models.Deck, error)
	SaveCard(ctx context.Context, card *models.Card) error
}

// ReviewStore appends to and reads the immutable review-event log.
type ReviewStore interface {
	AppendReviewEvent(ctx context.Context, event models.ReviewEvent) error
	ListDeckEvents(ctx context.Context, deckID uuid.UUID) ([]models.ReviewEvent, error)
}

// TagStore supplies the explicit tag hierarchy used to seed graph edges.
type TagStore interface {
	GetTagHierarchy(ctx context.Context) (map[string]string, error)
}

// Engine is the adaptive learning engine facade. It holds no deck state of
// its own; each operation loads a consistent snapshot, so concurrent use is
// safe as long as writes to a given deck are serialized by the caller.
type Engine struct {
	cards   CardStore
	reviews ReviewStore
	tags    TagStore
	sched   *scheduler.Engine
	tracker *velocity.Tracker
	log     *zap.Logger
}

// New creates an engine over the given stores.
func New(cards CardStore, reviews ReviewStore, tags TagStore, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		cards:   cards,
		reviews: reviews,
		tags:    tags,
		sched:   scheduler.NewEngine(difficulty.NewAnalyzer()),
		tracker: velocity.NewTracker(),
		log:     log,
	}
}

// PlanSession returns an ordered queue of up to size card identities for a
// study session in the given mode.
func (e *Engine) PlanSession(ctx context.Context, deckID uuid.UUID, mode scheduler.Mode, size int) ([]uuid.UUID, error) {
	deck, err := e.cards.LoadDeck(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("plan session: %w", err)
	}
	return e.sched.SelectQueue(deck, mode, size)
}

// PlanMixedSession returns a weighted-random queue that favors cards with
// low accuracy while still surfacing never-attempted material.
func (e *Engine) PlanMixedSession(ctx context.Context, deckID uuid.UUID, size int) ([]uuid.UUID, error) {
	deck, err := e.cards.LoadDeck(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("plan mixed session: %w", err)
	}
	return e.sched.SelectMixed(deck, size), nil
}

// AnswerResult is the updated card state after recording an answer.
type AnswerResult struct {
	Card        models.Card
	State       models.CardState
	Explanation string
}

// RecordAnswer applies a review outcome to one card, persists the updated
// card and appends the audit event. Only the reviewed card is touched.
func (e *Engine) RecordAnswer(ctx context.Context, deckID, cardID uuid.UUID, outcome scheduler.Outcome) (*AnswerResult, error) {
	deck, err := e.cards.LoadDeck(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("record answer: %w", err)
	}
	card, err := deck.CardByID(cardID)
	if err != nil {
		return nil, fmt.Errorf("record answer: %w", err)
	}

	res, err := e.sched.RecordOutcome(*card, outcome)
	if err != nil {
		return nil, err
	}

	if err := e.cards.SaveCard(ctx, &res.Card); err != nil {
		return nil, fmt.Errorf("record answer: save card: %w", err)
	}
	if err := e.reviews.AppendReviewEvent(ctx, res.Event); err != nil {
		return nil, fmt.Errorf("record answer: append event: %w", err)
	}

	e.log.Debug("recorded answer",
		zap.String("card", cardID.String()),
		zap.Bool("correct", outcome.Correct),
		zap.Int("interval_days", res.Card.IntervalDays))

	return &AnswerResult{
		Card:        res.Card,
		State:       res.Card.State(),
		Explanation: res.Explanation,
	}, nil
}

// VelocityReport bundles the rolling velocity snapshot with the mastery
// prediction for a deck.
type VelocityReport struct {
	Snapshot   velocity.Snapshot
	Prediction velocity.Prediction
}

// GetVelocityReport computes study velocity over the trailing window plus a
// mastery forecast.
func (e *Engine) GetVelocityReport(ctx context.Context, deckID uuid.UUID, windowDays int) (*VelocityReport, error) {
	deck, err := e.cards.LoadDeck(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("velocity report: %w", err)
	}
	events, err := e.reviews.ListDeckEvents(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("velocity report: %w", err)
	}
	return &VelocityReport{
		Snapshot:   e.tracker.ComputeVelocity(events, windowDays),
		Prediction: e.tracker.PredictMastery(deck, events),
	}, nil
}

// FindBottlenecks returns the cards dragging down mastery progress.
func (e *Engine) FindBottlenecks(ctx context.Context, deckID uuid.UUID) ([]uuid.UUID, error) {
	deck, err := e.cards.LoadDeck(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("find bottlenecks: %w", err)
	}
	return e.tracker.FindBottlenecks(deck), nil
}

// GetKnowledgeGraph rebuilds the concept graph for a deck from the current
// card snapshot and the explicit tag hierarchy.
func (e *Engine) GetKnowledgeGraph(ctx context.Context, deckID uuid.UUID) (*knowledge.Graph, error) {
	deck, err := e.cards.LoadDeck(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("knowledge graph: %w", err)
	}
	hierarchy, err := e.tags.GetTagHierarchy(ctx)
	if err != nil {
		return nil, fmt.Errorf("knowledge graph: %w", err)
	}
	g, err := knowledge.Build(ctx, deck, hierarchy)
	if err != nil {
		return nil, err
	}
	for _, d := range g.Diagnostics {
		e.log.Warn("graph diagnostic", zap.String("kind", d.Kind.String()), zap.String("detail", d.Detail))
	}
	return g, nil
}

// ReplayCard rebuilds a card's scheduling state from its event log and
// persists the result, enforcing timestamp order.
func (e *Engine) ReplayCard(ctx context.Context, deckID, cardID uuid.UUID) (*models.Card, error) {
	deck, err := e.cards.LoadDeck(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("replay card: %w", err)
	}
	card, err := deck.CardByID(cardID)
	if err != nil {
		return nil, fmt.Errorf("replay card: %w", err)
	}
	events, err := e.reviews.ListDeckEvents(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("replay card: %w", err)
	}
	var own []models.ReviewEvent
	for _, ev := range events {
		if ev.CardID == cardID {
			own = append(own, ev)
		}
	}
	rebuilt, err := e.sched.Replay(*card, own)
	if err != nil {
		return nil, err
	}
	if err := e.cards.SaveCard(ctx, &rebuilt); err != nil {
		return nil, fmt.Errorf("replay card: save: %w", err)
	}
	return &rebuilt, nil
}

// DeckStats is a per-deck aggregate summary.
type DeckStats struct {
	TotalCards        int
	DueCards          int
	AverageEase       float64
	AverageDifficulty float64
	States            map[models.CardState]int
}

// GetDeckStats summarizes a deck's scheduling state.
func (e *Engine) GetDeckStats(ctx context.Context, deckID uuid.UUID) (*DeckStats, error) {
	deck, err := e.cards.LoadDeck(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("deck stats: %w", err)
	}
	stats := &DeckStats{
		TotalCards: len(deck.Cards),
		States:     make(map[models.CardState]int),
	}
	now := time.Now()
	for i := range deck.Cards {
		c := &deck.Cards[i]
		if c.IsDue(now) {
			stats.DueCards++
		}
		stats.AverageEase += c.EaseFactor
		stats.AverageDifficulty += c.Difficulty
		stats.States[c.State()]++
	}
	if stats.TotalCards > 0 {
		stats.AverageEase /= float64(stats.TotalCards)
		stats.AverageDifficulty /= float64(stats.TotalCards)
	}
	return stats, nil
}

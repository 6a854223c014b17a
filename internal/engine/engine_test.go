package engine

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mnemo/internal/models"
	"mnemo/internal/scheduler"
	"mnemo/internal/velocity"
)

type fakeCardStore struct {
	deck  *models.Deck
	saved []models.Card
}

func (s *fakeCardStore) LoadDeck(ctx context.Context, id uuid.UUID) (*models.Deck, error) {
	if s.deck == nil || s.deck.ID != id {
		return nil, models.ErrDeckNotFound
	}
	return s.deck, nil
}

func (s *fakeCardStore) SaveCard(ctx context.Context, card *models.Card) error {
	s.saved = append(s.saved, card.Clone())
	for i := range s.deck.Cards {
		if s.deck.Cards[i].ID == card.ID {
			s.deck.Cards[i] = card.Clone()
			return nil
		}
	}
	return models.ErrCardNotFound
}

type fakeReviewStore struct {
	events []models.ReviewEvent
}

func (s *fakeReviewStore) AppendReviewEvent(ctx context.Context, event models.ReviewEvent) error {
	s.events = append(s.events, event)
	return nil
}

func (s *fakeReviewStore) ListDeckEvents(ctx context.Context, deckID uuid.UUID) ([]models.ReviewEvent, error) {
	return append([]models.ReviewEvent(nil), s.events...), nil
}

type fakeTagStore struct {
	hierarchy map[string]string
}

func (s *fakeTagStore) GetTagHierarchy(ctx context.Context) (map[string]string, error) {
	return s.hierarchy, nil
}

func newTestEngine(t *testing.T, deck *models.Deck) (*Engine, *fakeCardStore, *fakeReviewStore) {
	t.Helper()
	cards := &fakeCardStore{deck: deck}
	reviews := &fakeReviewStore{}
	tags := &fakeTagStore{hierarchy: map[string]string{"quadratics": "algebra"}}
	return New(cards, reviews, tags, zap.NewNop()), cards, reviews
}

func testDeck(tags ...string) *models.Deck {
	deck := models.NewDeck("test")
	for _, tag := range tags {
		deck.Cards = append(deck.Cards, models.NewCard(deck.ID, "q "+tag, "a", []string{tag}))
	}
	return deck
}

func TestRecordAnswerPersistsCardAndEvent(t *testing.T) {
	deck := testDeck("algebra")
	e, cards, reviews := newTestEngine(t, deck)
	cardID := deck.Cards[0].ID

	res, err := e.RecordAnswer(context.Background(), deck.ID, cardID, scheduler.Outcome{
		Correct:      true,
		ResponseTime: 3,
		Confidence:   4,
	})
	require.NoError(t, err)

	assert.Equal(t, models.StateLearning, res.State)
	assert.Equal(t, 1, res.Card.RepetitionCount)
	assert.NotEmpty(t, res.Explanation)

	require.Len(t, cards.saved, 1)
	assert.Equal(t, cardID, cards.saved[0].ID)
	require.Len(t, reviews.events, 1)
	assert.Equal(t, cardID, reviews.events[0].CardID)
	assert.True(t, reviews.events[0].Correct)

	// The stored deck reflects the update.
	stored, err := deck.CardByID(cardID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.RepetitionCount)
}

func TestRecordAnswerRejectsBadInput(t *testing.T) {
	deck := testDeck("algebra")
	e, cards, reviews := newTestEngine(t, deck)

	_, err := e.RecordAnswer(context.Background(), deck.ID, deck.Cards[0].ID, scheduler.Outcome{
		Correct:      true,
		ResponseTime: -2,
	})
	assert.ErrorIs(t, err, models.ErrInvalidOutcome)
	assert.Empty(t, cards.saved, "nothing may be persisted on a rejected outcome")
	assert.Empty(t, reviews.events)

	_, err = e.RecordAnswer(context.Background(), deck.ID, uuid.New(), scheduler.Outcome{ResponseTime: 1})
	assert.ErrorIs(t, err, models.ErrCardNotFound)

	_, err = e.RecordAnswer(context.Background(), uuid.New(), deck.Cards[0].ID, scheduler.Outcome{ResponseTime: 1})
	assert.ErrorIs(t, err, models.ErrDeckNotFound)
}

func TestPlanSession(t *testing.T) {
	deck := testDeck("algebra", "algebra", "quadratics")
	e, _, _ := newTestEngine(t, deck)

	queue, err := e.PlanSession(context.Background(), deck.ID, scheduler.ModeSequential, 2)
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, deck.Cards[0].ID, queue[0])
	assert.Equal(t, deck.Cards[1].ID, queue[1])

	_, err = e.PlanSession(context.Background(), deck.ID, scheduler.Mode(42), 2)
	assert.ErrorIs(t, err, models.ErrUnknownMode)
}

func TestPlanMixedSession(t *testing.T) {
	deck := testDeck("a", "b", "c", "d")
	e, _, _ := newTestEngine(t, deck)

	queue, err := e.PlanMixedSession(context.Background(), deck.ID, 3)
	require.NoError(t, err)
	assert.Len(t, queue, 3)

	seen := make(map[uuid.UUID]bool)
	for _, id := range queue {
		assert.False(t, seen[id], "mixed session repeated a card")
		seen[id] = true
	}
}

func TestGetVelocityReport(t *testing.T) {
	deck := testDeck("algebra")
	e, _, reviews := newTestEngine(t, deck)

	// A single study day cannot support a forecast.
	reviews.events = append(reviews.events, models.ReviewEvent{
		ID:        uuid.New(),
		CardID:    deck.Cards[0].ID,
		Timestamp: time.Now().Add(-time.Hour),
		Correct:   true,
	})

	report, err := e.GetVelocityReport(context.Background(), deck.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, report.Snapshot.WindowDays)
	assert.Greater(t, report.Snapshot.CardsPerDay, 0.0)
	assert.Equal(t, velocity.PredictionUnavailable, report.Prediction.Status)
	assert.NotEmpty(t, report.Prediction.Reason)
}

func TestGetKnowledgeGraph(t *testing.T) {
	deck := testDeck("algebra", "quadratics")
	e, _, _ := newTestEngine(t, deck)

	g, err := e.GetKnowledgeGraph(context.Background(), deck.ID)
	require.NoError(t, err)
	require.Len(t, g.Nodes, 2)
	require.Len(t, g.Edges, 1)
	assert.Equal(t, "algebra", g.Edges[0].From)
	assert.Equal(t, "quadratics", g.Edges[0].To)
}

func TestReplayCard(t *testing.T) {
	deck := testDeck("algebra")
	e, cards, _ := newTestEngine(t, deck)
	cardID := deck.Cards[0].ID

	at := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := e.RecordAnswer(context.Background(), deck.ID, cardID, scheduler.Outcome{
			Correct:      true,
			ResponseTime: 4,
			At:           at.AddDate(0, 0, i*7),
		})
		require.NoError(t, err)
	}
	live, err := deck.CardByID(cardID)
	require.NoError(t, err)
	wantReps, wantInterval := live.RepetitionCount, live.IntervalDays

	rebuilt, err := e.ReplayCard(context.Background(), deck.ID, cardID)
	require.NoError(t, err)
	assert.Equal(t, wantReps, rebuilt.RepetitionCount)
	assert.Equal(t, wantInterval, rebuilt.IntervalDays)
	assert.NotEmpty(t, cards.saved)
}

func TestGetDeckStats(t *testing.T) {
	deck := testDeck("algebra", "algebra", "quadratics")
	e, _, _ := newTestEngine(t, deck)

	_, err := e.RecordAnswer(context.Background(), deck.ID, deck.Cards[0].ID, scheduler.Outcome{
		Correct:      true,
		ResponseTime: 3,
	})
	require.NoError(t, err)

	stats, err := e.GetDeckStats(context.Background(), deck.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalCards)
	assert.Equal(t, 2, stats.DueCards, "unreviewed cards are due, the just-reviewed one is not")
	assert.Equal(t, 2, stats.States[models.StateNew])
	assert.Equal(t, 1, stats.States[models.StateLearning])
	assert.InDelta(t, 0.3, stats.AverageDifficulty, 0.01)
	assert.Greater(t, stats.AverageEase, 0.0)
}

func TestRefresherPublishesGenerations(t *testing.T) {
	deck := testDeck("algebra", "quadratics")
	e, _, _ := newTestEngine(t, deck)

	r := NewRefresher(e, deck.ID, time.Minute)

	_, _, ok := r.Snapshot()
	assert.False(t, ok, "no snapshot before the first build")

	r.refresh(context.Background())
	g1, gen1, ok := r.Snapshot()
	require.True(t, ok)
	assert.Equal(t, uint64(1), gen1)
	assert.Equal(t, gen1, g1.Generation)
	require.Len(t, g1.Nodes, 2)

	r.refresh(context.Background())
	g2, gen2, ok := r.Snapshot()
	require.True(t, ok)
	assert.Equal(t, uint64(2), gen2)
	assert.NotSame(t, g1, g2, "each build publishes a fresh snapshot")
}

func TestRefresherKeepsLastSnapshotOnFailure(t *testing.T) {
	deck := testDeck("algebra")
	e, cards, _ := newTestEngine(t, deck)

	r := NewRefresher(e, deck.ID, time.Minute)
	r.refresh(context.Background())
	_, gen, ok := r.Snapshot()
	require.True(t, ok)

	// Simulate the deck disappearing; the old snapshot must survive.
	cards.deck = nil
	r.refresh(context.Background())
	g, gen2, ok := r.Snapshot()
	require.True(t, ok)
	assert.Equal(t, gen, gen2)
	assert.NotNil(t, g)
}

package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mnemo/internal/knowledge"
)

// Refresher periodically rebuilds the knowledge graph for one deck in the
// background and publishes each build as an immutable snapshot with a
// generation counter. Readers never observe a partially built graph: they
// get the previous generation until the swap, and simply see stale data if a
// rebuild was cancelled mid-flight.
type Refresher struct {
	engine   *Engine
	deckID   uuid.UUID
	interval time.Duration
	log      *zap.Logger

	mu         sync.RWMutex
	graph      *knowledge.Graph
	generation uint64
}

// NewRefresher creates a refresher for the given deck. Intervals below one
// second are raised to one second.
func NewRefresher(engine *Engine, deckID uuid.UUID, interval time.Duration) *Refresher {
	if interval < time.Second {
		interval = time.Second
	}
	return &Refresher{
		engine:   engine,
		deckID:   deckID,
		interval: interval,
		log:      engine.log,
	}
}

// Snapshot returns the latest published graph and its generation. ok is
// false before the first successful build.
func (r *Refresher) Snapshot() (graph *knowledge.Graph, generation uint64, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.graph, r.generation, r.graph != nil
}

// Run rebuilds the graph immediately and then on every tick until the
// context is cancelled. Each rebuild reads a fresh deck snapshot; failures
// are logged and the previous snapshot stays published.
func (r *Refresher) Run(ctx context.Context) {
	r.refresh(ctx)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	graph, err := r.engine.GetKnowledgeGraph(ctx, r.deckID)
	if err != nil {
		if ctx.Err() == nil {
			r.log.Warn("graph refresh failed", zap.Error(err))
		}
		return
	}
	r.mu.Lock()
	r.generation++
	graph.Generation = r.generation
	r.graph = graph
	r.mu.Unlock()
	r.log.Debug("graph refreshed", zap.Uint64("generation", graph.Generation))
}

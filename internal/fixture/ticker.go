package fixture

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"
)

const (
	priceStep  = 0.5
	volumeStep = 2500
)

func formatQuote(q Quote) string {
	return fmt.Sprintf("%.2f / %d", q.Price, q.Volume)
}

// ticker publishes a random-walk quote. Readers wait on the changed channel,
// which is closed and replaced on every tick.
type ticker struct {
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	quote   Quote
	changed chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newTicker(cfg Config, logger *slog.Logger) *ticker {
	return &ticker{
		interval: cfg.TickInterval,
		logger:   logger,
		quote:    Quote{Price: cfg.StartPrice, Volume: cfg.StartVolume},
		changed:  make(chan struct{}),
	}
}

// start begins the tick loop.
func (t *ticker) start(ctx context.Context) {
	t.ctx, t.cancel = context.WithCancel(ctx)

	t.wg.Add(1)
	go t.run()

	t.logger.Debug("ticker started", "interval", t.interval)
}

// stop ends the tick loop and waits for it to exit.
func (t *ticker) stop() {
	if t.cancel != nil {
		t.cancel()
	}
	t.wg.Wait()
}

func (t *ticker) run() {
	defer t.wg.Done()

	tk := time.NewTicker(t.interval)
	defer tk.Stop()

	for {
		select {
		case <-t.ctx.Done():
			return
		case <-tk.C:
			t.tick()
		}
	}
}

func (t *ticker) tick() {
	t.mu.Lock()
	t.quote = step(t.quote)
	close(t.changed)
	t.changed = make(chan struct{})
	q := t.quote
	t.mu.Unlock()

	t.logger.Debug("tick", "quote", formatQuote(q))
}

// step moves price by one price step and volume by one volume step, each in
// a random direction. Price never drops below one step.
func step(q Quote) Quote {
	if rand.IntN(2) == 0 && q.Price > priceStep {
		q.Price -= priceStep
	} else {
		q.Price += priceStep
	}
	if rand.IntN(2) == 0 && q.Volume > volumeStep {
		q.Volume -= volumeStep
	} else {
		q.Volume += volumeStep
	}
	return q
}

// current returns the latest quote and a channel closed on the next tick.
func (t *ticker) current() (Quote, <-chan struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.quote, t.changed
}

// next blocks until the next tick and returns the new quote.
func (t *ticker) next(ctx context.Context) (Quote, error) {
	_, changed := t.current()
	select {
	case <-changed:
		q, _ := t.current()
		return q, nil
	case <-ctx.Done():
		return Quote{}, ctx.Err()
	}
}

package poller

import (
	"context"
	"time"

	"github.com/realmwatch/salesbot/internal/market"
	"github.com/realmwatch/salesbot/internal/sales"
	"go.uber.org/zap"
)

// Poller wakes on a fixed interval and sequentially runs the fetch ->
// pipeline -> notify cycle for every tracked collection. One collection
// failing never stops the others or the loop.
type Poller struct {
	fetchers  map[market.Kind]market.SaleFetcher
	processor *sales.Processor
	trackers  []*sales.CollectionTracker
	interval  time.Duration
	fetchSize int
}

func NewPoller(
	fetchers map[market.Kind]market.SaleFetcher,
	processor *sales.Processor,
	trackers []*sales.CollectionTracker,
	interval time.Duration,
	fetchSize int,
) *Poller {
	return &Poller{
		fetchers:  fetchers,
		processor: processor,
		trackers:  trackers,
		interval:  interval,
		fetchSize: fetchSize,
	}
}

func (p *Poller) Run(ctx context.Context) {
	zap.L().Info("Starting sales poller",
		zap.Int("collections", len(p.trackers)),
		zap.Duration("interval", p.interval))
	for {
		p.runCycle(ctx)
		if sleepInterrupted(ctx, p.interval) {
			zap.L().Info("Sales poller stopped")
			return
		}
	}
}

func (p *Poller) runCycle(ctx context.Context) {
	for _, tracker := range p.trackers {
		if ctx.Err() != nil {
			return
		}

		fetcher, ok := p.fetchers[tracker.Market]
		if !ok {
			zap.L().Error("No fetcher for market",
				zap.String("collection", tracker.Name),
				zap.String("market", string(tracker.Market)))
			continue
		}

		rawSales, err := fetcher.FetchSales(ctx, tracker.ContractOrSlug(), tracker.LastTimestamp(), p.fetchSize)
		if err != nil {
			zap.L().Warn("Skipping collection for this cycle",
				zap.String("collection", tracker.Name),
				zap.String("market", string(tracker.Market)),
				zap.Error(err))
			continue
		}

		notified, err := p.processor.Process(ctx, tracker, rawSales)
		if err != nil {
			zap.L().Warn("Sale processing interrupted",
				zap.String("collection", tracker.Name),
				zap.Int("notified", notified),
				zap.Error(err))
			continue
		}
		if notified > 0 {
			zap.L().Info("Notified new sales",
				zap.String("collection", tracker.Name),
				zap.Int("count", notified),
				zap.Int64("lastTimestamp", tracker.LastTimestamp()))
		}
	}
}

func sleepInterrupted(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return true
	case <-time.After(d):
		return false
	}
}

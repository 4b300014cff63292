package workers

import (
	"context"
	"log/slog"
	"time"

	"proc-lab/contract"
)

// RebalanceWorker triggers periodic sweeps. It never advances usage timers
// itself; it only re-evaluates whatever samples have already been injected,
// so running it changes when transitions are noticed, not what they are.
// The worker is opt-in: interval 0 means the operator only rebalances
// through the admin endpoint.
type RebalanceWorker struct {
	log        *slog.Logger
	rebalancer contract.IRebalancer
	interval   time.Duration
}

func NewRebalanceWorker(log *slog.Logger, rebalancer contract.IRebalancer, interval time.Duration) *RebalanceWorker {
	return &RebalanceWorker{log: log, rebalancer: rebalancer, interval: interval}
}

func (w *RebalanceWorker) Run(ctx context.Context) error {
	if w.interval <= 0 {
		w.log.Info("Periodic rebalancing disabled")
		return nil
	}

	w.log.Info("Starting rebalance worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			report, err := w.rebalancer.Rebalance()
			if err != nil {
				w.log.Error("Rebalance sweep failed", "err", err)
				continue
			}
			if report.Upgrades+report.Downgrades > 0 {
				w.log.Info("Periodic sweep moved processes",
					"upgrades", report.Upgrades,
					"downgrades", report.Downgrades,
				)
			}
		}
	}
}

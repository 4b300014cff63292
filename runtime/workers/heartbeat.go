package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"proc-lab/observability"
)

// HeartbeatWorker observes the manager's own process (CPU, RSS) and feeds
// the monitoring snapshot. Observation only: nothing here touches the
// managed records or enforces any limit.
type HeartbeatWorker struct {
	log        *slog.Logger
	monitoring *observability.MonitoringManager
	interval   time.Duration
}

func NewHeartbeatWorker(log *slog.Logger, monitoring *observability.MonitoringManager, interval time.Duration) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, monitoring: monitoring, interval: interval}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting heartbeat worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, err := getSelfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			w.monitoring.ReportSelf(cpu, rss)
		}
	}
}

func getSelfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}

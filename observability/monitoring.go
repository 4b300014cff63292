package observability

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// ManagerStats aggregates the service counters for the admin endpoint.
type ManagerStats struct {
	Creations    uint64 `json:"creations"`
	Terminations uint64 `json:"terminations"`
	Purges       uint64 `json:"purges"`
	UsageUpdates uint64 `json:"usage_updates"`
	LimitBreach  uint64 `json:"limit_breaches"`

	Sweeps     uint64 `json:"rebalance_sweeps"`
	Upgrades   uint64 `json:"upgrades"`
	Downgrades uint64 `json:"downgrades"`

	// Self-observation, fed by the heartbeat worker.
	SelfCPUPercent float64 `json:"self_cpu_percent"`
	SelfRSSBytes   uint64  `json:"self_rss_bytes"`
	AllocMemMb     uint64  `json:"alloc_mem_mb"`
	NumGC          uint32  `json:"num_gc"`

	UpdatedAt string `json:"updated_at"`
}

// MonitoringManager collects live telemetry. Counters are atomics so the hot
// paths never block; the snapshot is rebuilt under the mutex on read.
type MonitoringManager struct {
	log         *slog.Logger
	mu          sync.RWMutex
	latestStats ManagerStats

	creations    uint64
	terminations uint64
	purges       uint64
	usageUpdates uint64
	limitBreach  uint64
	sweeps       uint64
	upgrades     uint64
	downgrades   uint64
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	return &MonitoringManager{log: log}
}

func (mm *MonitoringManager) IncrCreations()     { atomic.AddUint64(&mm.creations, 1) }
func (mm *MonitoringManager) IncrTerminations()  { atomic.AddUint64(&mm.terminations, 1) }
func (mm *MonitoringManager) IncrPurges()        { atomic.AddUint64(&mm.purges, 1) }
func (mm *MonitoringManager) IncrUsageUpdates()  { atomic.AddUint64(&mm.usageUpdates, 1) }
func (mm *MonitoringManager) IncrLimitBreaches() { atomic.AddUint64(&mm.limitBreach, 1) }
func (mm *MonitoringManager) IncrSweeps()        { atomic.AddUint64(&mm.sweeps, 1) }
func (mm *MonitoringManager) IncrUpgrades()      { atomic.AddUint64(&mm.upgrades, 1) }
func (mm *MonitoringManager) IncrDowngrades()    { atomic.AddUint64(&mm.downgrades, 1) }

// ReportSelf stores the latest self-observation from the heartbeat worker.
func (mm *MonitoringManager) ReportSelf(cpuPercent float64, rssBytes uint64) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.latestStats.SelfCPUPercent = cpuPercent
	mm.latestStats.SelfRSSBytes = rssBytes
}

// GetLatest rebuilds and returns the full snapshot.
func (mm *MonitoringManager) GetLatest() ManagerStats {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	mm.latestStats.Creations = atomic.LoadUint64(&mm.creations)
	mm.latestStats.Terminations = atomic.LoadUint64(&mm.terminations)
	mm.latestStats.Purges = atomic.LoadUint64(&mm.purges)
	mm.latestStats.UsageUpdates = atomic.LoadUint64(&mm.usageUpdates)
	mm.latestStats.LimitBreach = atomic.LoadUint64(&mm.limitBreach)
	mm.latestStats.Sweeps = atomic.LoadUint64(&mm.sweeps)
	mm.latestStats.Upgrades = atomic.LoadUint64(&mm.upgrades)
	mm.latestStats.Downgrades = atomic.LoadUint64(&mm.downgrades)
	mm.latestStats.AllocMemMb = mem.Alloc / 1024 / 1024
	mm.latestStats.NumGC = mem.NumGC
	mm.latestStats.UpdatedAt = time.Now().Format(time.RFC3339)

	return mm.latestStats
}

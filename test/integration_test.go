package test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"proc-lab/domain"
	"proc-lab/observability"
	"proc-lab/registry"
	"proc-lab/repositories"
	"proc-lab/runtime"
	"proc-lab/runtime/workers"
	"proc-lab/services"
)

type stack struct {
	store      *registry.Registry
	journal    repositories.TransitionRepository
	processes  *services.ProcessService
	rebalancer *services.RebalancerService
	stats      *services.StatsService
	log        *slog.Logger
}

func newStack(t *testing.T) *stack {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	classifier, err := domain.NewClassifier()
	req.NoError(err)

	store := registry.NewRegistry(log)
	journal := repositories.NewTransitionRepository(db, log)
	monitoring := observability.NewMonitoringManager(log)

	return &stack{
		store:      store,
		journal:    journal,
		processes:  services.NewProcessService(store, classifier, journal, monitoring, log),
		rebalancer: services.NewRebalancerService(store, journal, monitoring, services.DefaultRebalancePolicy(), log),
		stats:      services.NewStatsService(store, log),
		log:        log,
	}
}

// Full lifecycle: a mixed fleet is created, usage is injected, sweeps move
// classes around, and the journal plus stats reflect every step.
func Test_Scenario_Fleet_Lifecycle(t *testing.T) {
	req := require.New(t)
	s := newStack(t)

	web, err := s.processes.Create(services.CreateProcessRequest{
		Name: "webserver", Command: "nginx", ResourceClass: "STANDARD",
	})
	req.NoError(err)
	db, err := s.processes.Create(services.CreateProcessRequest{
		Name: "postgres-main", Command: "postgres -D /data", ResourceClass: "CRITICAL",
	})
	req.NoError(err)
	sys, err := s.processes.Create(services.CreateProcessRequest{
		Name: "kernel_SYSTEM_watchdog", Command: "watch", ResourceClass: "STANDARD",
	})
	req.NoError(err)

	req.Equal(domain.CRITICAL, sys.ResourceClass)
	req.Equal(int64(16384), db.EffectiveMemMB)

	// The webserver burns CPU for six minutes, the database idles for
	// eleven, the watchdog spikes too.
	_, err = s.processes.UpdateUsage(web.ID, services.UpdateUsageRequest{
		CPUPercent: 85, MemoryMB: 100, DurationMinutes: 6,
	})
	req.NoError(err)
	_, err = s.processes.UpdateUsage(db.ID, services.UpdateUsageRequest{
		CPUPercent: 10, MemoryMB: 4000, DurationMinutes: 11,
	})
	req.NoError(err)
	_, err = s.processes.UpdateUsage(sys.ID, services.UpdateUsageRequest{
		CPUPercent: 95, MemoryMB: 100, DurationMinutes: 30,
	})
	req.NoError(err)

	report, err := s.rebalancer.Rebalance()
	req.NoError(err)
	req.Equal(3, report.TotalEvaluated)
	req.Equal(2, report.Downgrades)
	req.Equal(0, report.Upgrades)

	webAfter, err := s.processes.Get(web.ID)
	req.NoError(err)
	req.Equal(domain.BEST_EFFORT, webAfter.ResourceClass)
	req.Equal(int64(512), webAfter.EffectiveMemMB)

	dbAfter, err := s.processes.Get(db.ID)
	req.NoError(err)
	req.Equal(domain.STANDARD, dbAfter.ResourceClass)
	req.Equal(int64(4096), dbAfter.EffectiveMemMB)

	sysAfter, err := s.processes.Get(sys.ID)
	req.NoError(err)
	req.Equal(domain.CRITICAL, sysAfter.ResourceClass)

	// The webserver picks activity back up and gets reactivated.
	_, err = s.processes.UpdateUsage(web.ID, services.UpdateUsageRequest{
		CPUPercent: 70, MemoryMB: 100, DurationMinutes: 1,
	})
	req.NoError(err)
	report, err = s.rebalancer.Rebalance()
	req.NoError(err)
	req.Equal(1, report.Upgrades)

	events, err := s.journal.History(web.ID)
	req.NoError(err)
	req.Len(events, 3)
	req.Equal(domain.ReasonCreated, events[0].Reason)
	req.Equal(domain.ReasonHighCPU, events[1].Reason)
	req.Equal(domain.ReasonReactivated, events[2].Reason)

	// Soft delete keeps the record visible; stats only count the living.
	req.NoError(s.processes.Delete(web.ID))
	stats := s.stats.Stats()
	req.Equal(2, stats.TotalProcesses)
	req.Equal(1, stats.ByState[domain.TERMINATED])

	req.NoError(s.processes.Purge(web.ID))
	req.Equal(2, s.store.Len())
}

// The supervisor drives a periodic sweep worker; an already-injected sample
// gets acted upon without any further API call.
func Test_Scenario_Periodic_Sweep_Worker(t *testing.T) {
	req := require.New(t)
	s := newStack(t)

	record, err := s.processes.Create(services.CreateProcessRequest{
		Name: "batcher", Command: "batch", ResourceClass: "STANDARD",
	})
	req.NoError(err)
	_, err = s.processes.UpdateUsage(record.ID, services.UpdateUsageRequest{
		CPUPercent: 90, MemoryMB: 100, DurationMinutes: 10,
	})
	req.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	supervisor := runtime.NewSupervisor(s.log)
	supervisor.Add(workers.NewRebalanceWorker(s.log, s.rebalancer, 10*time.Millisecond))
	go supervisor.Run(ctx)

	req.Eventually(func() bool {
		updated, err := s.processes.Get(record.ID)
		return err == nil && updated.ResourceClass == domain.BEST_EFFORT
	}, 2*time.Second, 10*time.Millisecond)

	supervisor.Stop()
}

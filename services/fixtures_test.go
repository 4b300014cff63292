package services

import (
	"log/slog"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"proc-lab/domain"
	"proc-lab/observability"
	"proc-lab/registry"
	"proc-lab/repositories"
)

type fixture struct {
	store      *registry.Registry
	journal    repositories.TransitionRepository
	processes  *ProcessService
	rebalancer *RebalancerService
	stats      *StatsService
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithPolicy(t, DefaultRebalancePolicy())
}

func newFixtureWithPolicy(t *testing.T, policy RebalancePolicy) *fixture {
	req := require.New(t)
	log := slog.Default()

	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	classifier, err := domain.NewClassifier()
	req.NoError(err)

	store := registry.NewRegistry(log)
	journal := repositories.NewTransitionRepository(db, log)
	monitoring := observability.NewMonitoringManager(log)

	return &fixture{
		store:      store,
		journal:    journal,
		processes:  NewProcessService(store, classifier, journal, monitoring, log),
		rebalancer: NewRebalancerService(store, journal, monitoring, policy, log),
		stats:      NewStatsService(store, log),
	}
}

func (f *fixture) create(t *testing.T, name, command, class string) domain.ProcessRecord {
	record, err := f.processes.Create(CreateProcessRequest{
		Name:          name,
		Command:       command,
		ResourceClass: class,
	})
	require.NoError(t, err)
	return record
}

func (f *fixture) inject(t *testing.T, id string, cpu float64, memoryMB int64, minutes int) {
	_, err := f.processes.UpdateUsage(id, UpdateUsageRequest{
		CPUPercent:      cpu,
		MemoryMB:        memoryMB,
		DurationMinutes: minutes,
	})
	require.NoError(t, err)
}

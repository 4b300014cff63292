package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"proc-lab/domain"
)

func Test_Sustained_High_CPU_Jumps_To_Best_Effort(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	record := f.create(t, "webserver", "nginx", "STANDARD")
	f.inject(t, record.ID, 85, 1000, 6)

	report, err := f.rebalancer.Rebalance()
	req.NoError(err)
	req.Equal(1, report.Downgrades)
	req.Equal(0, report.Upgrades)

	updated, err := f.processes.Get(record.ID)
	req.NoError(err)
	req.Equal(domain.BEST_EFFORT, updated.ResourceClass)
	req.Equal(int64(512), updated.EffectiveMemMB)
}

func Test_High_CPU_Jump_Skips_Intermediate_Class(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	record := f.create(t, "heavy_task", "compute", "CRITICAL")
	f.inject(t, record.ID, 90, 1000, 6)

	_, err := f.rebalancer.Rebalance()
	req.NoError(err)

	updated, err := f.processes.Get(record.ID)
	req.NoError(err)
	req.Equal(domain.BEST_EFFORT, updated.ResourceClass)
}

func Test_High_CPU_Timer_Reset_Prevents_Downgrade(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	record := f.create(t, "oscillator", "sleep", "STANDARD")

	f.inject(t, record.ID, 85, 100, 4)
	_, err := f.rebalancer.Rebalance()
	req.NoError(err)

	// A single mid-range dip wipes the 4 accumulated minutes.
	f.inject(t, record.ID, 50, 100, 1)
	f.inject(t, record.ID, 85, 100, 4)
	_, err = f.rebalancer.Rebalance()
	req.NoError(err)

	updated, err := f.processes.Get(record.ID)
	req.NoError(err)
	req.Equal(domain.STANDARD, updated.ResourceClass)
}

func Test_Sustained_Low_CPU_Downgrades_One_Step(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	record := f.create(t, "chain-down-proc", "sleep", "CRITICAL")

	f.inject(t, record.ID, 10, 100, 11)
	_, err := f.rebalancer.Rebalance()
	req.NoError(err)
	updated, err := f.processes.Get(record.ID)
	req.NoError(err)
	req.Equal(domain.STANDARD, updated.ResourceClass)

	f.inject(t, record.ID, 10, 100, 11)
	_, err = f.rebalancer.Rebalance()
	req.NoError(err)
	updated, err = f.processes.Get(record.ID)
	req.NoError(err)
	req.Equal(domain.BEST_EFFORT, updated.ResourceClass)
}

func Test_Low_CPU_At_Floor_Stays_Put(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	record := f.create(t, "idler", "sleep", "BEST_EFFORT")
	f.inject(t, record.ID, 5, 10, 30)

	report, err := f.rebalancer.Rebalance()
	req.NoError(err)
	req.Equal(0, report.Downgrades)

	updated, err := f.processes.Get(record.ID)
	req.NoError(err)
	req.Equal(domain.BEST_EFFORT, updated.ResourceClass)
}

func Test_Reactivation_Threshold_Is_Strict(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	atThreshold := f.create(t, "borderline", "job", "BEST_EFFORT")
	f.inject(t, atThreshold.ID, 50, 100, 1)

	aboveThreshold := f.create(t, "busy", "job", "BEST_EFFORT")
	f.inject(t, aboveThreshold.ID, 50.0001, 100, 1)

	report, err := f.rebalancer.Rebalance()
	req.NoError(err)
	req.Equal(1, report.Upgrades)

	still, err := f.processes.Get(atThreshold.ID)
	req.NoError(err)
	req.Equal(domain.BEST_EFFORT, still.ResourceClass)

	upgraded, err := f.processes.Get(aboveThreshold.ID)
	req.NoError(err)
	req.Equal(domain.STANDARD, upgraded.ResourceClass)
}

func Test_Best_Effort_Dead_Zone_Stays_Throttled(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	// Between the low threshold and the reactivation threshold no rule
	// applies: the process stays throttled however long it sits there.
	record := f.create(t, "starved", "job", "BEST_EFFORT")
	for i := 0; i < 10; i++ {
		f.inject(t, record.ID, 35, 100, 60)
		report, err := f.rebalancer.Rebalance()
		req.NoError(err)
		req.Equal(0, report.Upgrades+report.Downgrades)
	}

	updated, err := f.processes.Get(record.ID)
	req.NoError(err)
	req.Equal(domain.BEST_EFFORT, updated.ResourceClass)
}

func Test_System_Process_Never_Leaves_Critical(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	record := f.create(t, "kernel_SYSTEM_watchdog", "watch", "STANDARD")
	req.Equal(domain.CRITICAL, record.ResourceClass)

	f.inject(t, record.ID, 95, 1000, 60)
	_, err := f.rebalancer.Rebalance()
	req.NoError(err)
	updated, err := f.processes.Get(record.ID)
	req.NoError(err)
	req.Equal(domain.CRITICAL, updated.ResourceClass)

	f.inject(t, record.ID, 5, 10, 60)
	_, err = f.rebalancer.Rebalance()
	req.NoError(err)
	updated, err = f.processes.Get(record.ID)
	req.NoError(err)
	req.Equal(domain.CRITICAL, updated.ResourceClass)
}

func Test_Database_Limit_Follows_Class_On_Transition(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	record := f.create(t, "postgres-main", "postgres", "STANDARD")
	req.Equal(int64(4096), record.EffectiveMemMB)

	f.inject(t, record.ID, 90, 1000, 6)
	_, err := f.rebalancer.Rebalance()
	req.NoError(err)

	updated, err := f.processes.Get(record.ID)
	req.NoError(err)
	req.Equal(domain.BEST_EFFORT, updated.ResourceClass)
	req.Equal(int64(1024), updated.EffectiveMemMB)
}

func Test_Preserve_Limit_Policy_Keeps_Prior_Ceiling(t *testing.T) {
	req := require.New(t)
	policy := DefaultRebalancePolicy()
	policy.PreserveLimitOnTransition = true
	f := newFixtureWithPolicy(t, policy)

	record := f.create(t, "postgres-main", "postgres", "STANDARD")
	req.Equal(int64(4096), record.EffectiveMemMB)

	f.inject(t, record.ID, 90, 1000, 6)
	_, err := f.rebalancer.Rebalance()
	req.NoError(err)

	updated, err := f.processes.Get(record.ID)
	req.NoError(err)
	req.Equal(domain.BEST_EFFORT, updated.ResourceClass)
	req.Equal(int64(4096), updated.EffectiveMemMB)
}

func Test_Rebalance_Skips_Terminated_Processes(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	record := f.create(t, "doomed", "job", "STANDARD")
	f.inject(t, record.ID, 90, 100, 10)
	req.NoError(f.processes.Delete(record.ID))

	report, err := f.rebalancer.Rebalance()
	req.NoError(err)
	req.Equal(0, report.TotalEvaluated)

	updated, err := f.processes.Get(record.ID)
	req.NoError(err)
	req.Equal(domain.STANDARD, updated.ResourceClass)
}

func Test_Rebalance_Report_Counts(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	busy := f.create(t, "busy", "job", "BEST_EFFORT")
	f.inject(t, busy.ID, 75, 100, 1)

	idle := f.create(t, "idle", "job", "STANDARD")
	f.inject(t, idle.ID, 5, 10, 15)

	steady := f.create(t, "steady", "job", "STANDARD")
	f.inject(t, steady.ID, 45, 100, 15)

	report, err := f.rebalancer.Rebalance()
	req.NoError(err)
	req.Equal(3, report.TotalEvaluated)
	req.Equal(1, report.Upgrades)
	req.Equal(1, report.Downgrades)
}

func Test_Evaluate_Single_Process_On_Demand(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	record := f.create(t, "spiky", "job", "STANDARD")
	f.inject(t, record.ID, 90, 100, 6)

	evaluated, err := f.rebalancer.EvaluateProcess(record.ID)
	req.NoError(err)
	req.Equal(domain.BEST_EFFORT, evaluated.ResourceClass)
}

func Test_Transitions_Are_Journaled(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	record := f.create(t, "journaled", "job", "STANDARD")
	f.inject(t, record.ID, 90, 100, 6)
	_, err := f.rebalancer.Rebalance()
	req.NoError(err)

	events, err := f.journal.History(record.ID)
	req.NoError(err)
	req.Len(events, 2)
	req.Equal(domain.ReasonCreated, events[0].Reason)
	req.Equal(domain.ReasonHighCPU, events[1].Reason)
	req.Equal(domain.STANDARD, events[1].From)
	req.Equal(domain.BEST_EFFORT, events[1].To)
}

package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"proc-lab/contract"
	"proc-lab/domain"
	procerr "proc-lab/errors"
	"proc-lab/observability"
)

// RebalancePolicy carries the thresholds of the five transition rules.
// Values are the documented defaults; an operator can override them through
// the policy file.
type RebalancePolicy struct {
	HighCPUThreshold       float64 `yaml:"high_cpu_threshold"`
	HighCPUMinutes         int     `yaml:"high_cpu_minutes"`
	LowCPUThreshold        float64 `yaml:"low_cpu_threshold"`
	LowCPUMinutes          int     `yaml:"low_cpu_minutes"`
	ReactivateCPUThreshold float64 `yaml:"reactivate_cpu_threshold"`

	// PreserveLimitOnTransition keeps the absolute effective memory limit a
	// record had before a class change instead of recomputing it from the
	// new class's base profile. Off by default: the rule text says the limit
	// follows the class.
	PreserveLimitOnTransition bool `yaml:"preserve_limit_on_transition"`
}

func DefaultRebalancePolicy() RebalancePolicy {
	return RebalancePolicy{
		HighCPUThreshold:       80,
		HighCPUMinutes:         5,
		LowCPUThreshold:        20,
		LowCPUMinutes:          10,
		ReactivateCPUThreshold: 50,
	}
}

type IRebalancerService interface {
	Rebalance() (domain.RebalanceReport, error)
	EvaluateProcess(id string) (domain.ProcessRecord, error)
}

// RebalancerService applies the class transition rules to the store.
// Per-record evaluation happens under the store lock; journal writes and
// counters happen after the record is released.
type RebalancerService struct {
	store      contract.IProcessStore
	journal    contract.ITransitionJournal
	monitoring *observability.MonitoringManager
	policy     RebalancePolicy
	log        *slog.Logger
	now        func() time.Time
}

func NewRebalancerService(
	store contract.IProcessStore,
	journal contract.ITransitionJournal,
	monitoring *observability.MonitoringManager,
	policy RebalancePolicy,
	log *slog.Logger,
) *RebalancerService {
	return &RebalancerService{
		store:      store,
		journal:    journal,
		monitoring: monitoring,
		policy:     policy,
		log:        log,
		now:        time.Now,
	}
}

type transition struct {
	from   domain.ResourceClass
	to     domain.ResourceClass
	reason domain.TransitionReason
}

// evaluate runs the rules in precedence order against a live record and
// applies the transition if one matched. Precedence:
//  1. system processes are pinned to CRITICAL, nothing else applies
//  2. sustained high CPU jumps straight to BEST_EFFORT
//  3. sustained low CPU downgrades exactly one step
//  4. a busy BEST_EFFORT process (strictly above the reactivation
//     threshold) comes back to STANDARD
//  5. otherwise the class stays put
//
// A BEST_EFFORT process sitting between the low and reactivation thresholds
// matches no rule and stays throttled. That gap is part of the documented
// policy, not something evaluate papers over.
func (s *RebalancerService) evaluate(record *domain.ProcessRecord) *transition {
	usage := record.Usage

	if record.Class.System {
		if record.ResourceClass != domain.CRITICAL {
			return s.apply(record, domain.CRITICAL, domain.ReasonSystemPinned)
		}
		return nil
	}

	if usage.CPUPercent > s.policy.HighCPUThreshold && usage.HighCPUMinutes >= s.policy.HighCPUMinutes {
		if record.ResourceClass != domain.BEST_EFFORT {
			return s.apply(record, domain.BEST_EFFORT, domain.ReasonHighCPU)
		}
		return nil
	}

	if usage.CPUPercent < s.policy.LowCPUThreshold && usage.LowCPUMinutes >= s.policy.LowCPUMinutes {
		if record.ResourceClass != domain.BEST_EFFORT {
			return s.apply(record, record.ResourceClass.Downgraded(), domain.ReasonLowCPU)
		}
		return nil
	}

	if record.ResourceClass == domain.BEST_EFFORT && usage.CPUPercent > s.policy.ReactivateCPUThreshold {
		return s.apply(record, domain.STANDARD, domain.ReasonReactivated)
	}

	return nil
}

func (s *RebalancerService) apply(record *domain.ProcessRecord, to domain.ResourceClass, reason domain.TransitionReason) *transition {
	from := record.ResourceClass
	prior := record.EffectiveMemMB
	record.ApplyClass(to, s.now())
	if s.policy.PreserveLimitOnTransition {
		record.EffectiveMemMB = prior
	}
	return &transition{from: from, to: to, reason: reason}
}

// Rebalance sweeps every record present when the sweep starts. Records
// deleted between snapshot and lock acquisition are skipped; terminated
// records are not evaluated.
func (s *RebalancerService) Rebalance() (domain.RebalanceReport, error) {
	var report domain.RebalanceReport

	for _, id := range s.store.SnapshotIDs() {
		var result *transition
		record, err := s.store.Mutate(id, func(r *domain.ProcessRecord) error {
			if !r.Running() {
				return procerr.ErrProcessTerminated
			}
			result = s.evaluate(r)
			return nil
		})
		switch {
		case errors.Is(err, procerr.ErrProcessNotFound):
			continue
		case errors.Is(err, procerr.ErrProcessTerminated):
			continue
		case err != nil:
			return report, err
		}

		report.TotalEvaluated++
		if result == nil {
			continue
		}
		if result.to.Above(result.from) {
			report.Upgrades++
			s.monitoring.IncrUpgrades()
		} else {
			report.Downgrades++
			s.monitoring.IncrDowngrades()
		}
		s.record(record, *result)
	}

	s.monitoring.IncrSweeps()
	s.log.Info("Rebalance sweep finished",
		"evaluated", report.TotalEvaluated,
		"upgrades", report.Upgrades,
		"downgrades", report.Downgrades,
	)
	return report, nil
}

// EvaluateProcess runs the rules against a single record on demand and
// returns its resulting state.
func (s *RebalancerService) EvaluateProcess(id string) (domain.ProcessRecord, error) {
	var result *transition
	record, err := s.store.Mutate(id, func(r *domain.ProcessRecord) error {
		if !r.Running() {
			return fmt.Errorf("%w: %s", procerr.ErrProcessTerminated, id)
		}
		result = s.evaluate(r)
		return nil
	})
	if err != nil {
		return domain.ProcessRecord{}, err
	}
	if result != nil {
		if result.to.Above(result.from) {
			s.monitoring.IncrUpgrades()
		} else {
			s.monitoring.IncrDowngrades()
		}
		s.record(record, *result)
	}
	return record, nil
}

func (s *RebalancerService) record(record domain.ProcessRecord, t transition) {
	event := domain.TransitionEvent{
		ID:        uuid.NewString(),
		ProcessID: record.ID,
		Name:      record.Name,
		From:      t.from,
		To:        t.to,
		Reason:    t.reason,
		At:        record.LastRebalancedAt,
	}
	if err := s.journal.Append(event); err != nil {
		s.log.Warn("Failed to journal transition", "process_id", record.ID, "err", err)
	}
}

package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"proc-lab/contract"
	"proc-lab/domain"
	procerr "proc-lab/errors"
	"proc-lab/observability"
)

var validate = validator.New()

type CreateProcessRequest struct {
	Name          string `json:"name" validate:"required"`
	Command       string `json:"command" validate:"required"`
	// ResourceClass is parsed by ToClass so an unknown value maps to its own
	// error, distinct from missing-field validation.
	ResourceClass string `json:"resource_class"`
}

type UpdateUsageRequest struct {
	CPUPercent          float64 `json:"cpu_percent" validate:"min=0"`
	MemoryMB            int64   `json:"memory_mb" validate:"min=0"`
	DurationMinutes     int     `json:"duration_minutes" validate:"min=0"`
	OpenFileDescriptors int     `json:"open_file_descriptors" validate:"min=0"`
	ProcessCount        int     `json:"process_count" validate:"min=0"`
	IOOperations        int64   `json:"io_operations" validate:"min=0"`
}

// ResourceView is the detailed per-process usage report, with utilization
// ratios against the record's current limits.
type ResourceView struct {
	ProcessID      string                 `json:"process_id"`
	ResourceClass  domain.ResourceClass   `json:"resource_class"`
	Limits         domain.ResourceProfile `json:"limits"`
	EffectiveMemMB int64                  `json:"effective_memory_limit_mb"`
	Usage          domain.ResourceUsage   `json:"usage"`
	Utilization    map[string]string      `json:"utilization"`
}

type IProcessService interface {
	Create(request CreateProcessRequest) (domain.ProcessRecord, error)
	Get(id string) (domain.ProcessRecord, error)
	Resources(id string) (ResourceView, error)
	Delete(id string) error
	Purge(id string) error
	UpdateUsage(id string, request UpdateUsageRequest) (domain.ProcessRecord, error)
}

// ProcessService owns the lifecycle of records: creation, lookups, usage
// injection and (soft) deletion. Class transitions belong to the rebalancer.
type ProcessService struct {
	store      contract.IProcessStore
	classifier *domain.Classifier
	journal    contract.ITransitionJournal
	monitoring *observability.MonitoringManager
	log        *slog.Logger
	now        func() time.Time
}

func NewProcessService(
	store contract.IProcessStore,
	classifier *domain.Classifier,
	journal contract.ITransitionJournal,
	monitoring *observability.MonitoringManager,
	log *slog.Logger,
) *ProcessService {
	return &ProcessService{
		store:      store,
		classifier: classifier,
		journal:    journal,
		monitoring: monitoring,
		log:        log,
		now:        time.Now,
	}
}

// Create builds and registers a record. The classification tag is computed
// here, once; a system process is forced to CRITICAL whatever class the
// request asked for. Nothing is stored until the record is complete.
func (s *ProcessService) Create(request CreateProcessRequest) (domain.ProcessRecord, error) {
	if err := validate.Struct(request); err != nil {
		return domain.ProcessRecord{}, fmt.Errorf("%w: %v", procerr.ErrValidation, err)
	}

	class := domain.STANDARD
	if request.ResourceClass != "" {
		parsed, err := domain.ToClass(request.ResourceClass)
		if err != nil {
			return domain.ProcessRecord{}, fmt.Errorf("%w: %v", procerr.ErrUnknownClass, err)
		}
		class = parsed
	}

	classification := s.classifier.Classify(request.Name, request.Command)
	if classification.System {
		class = domain.CRITICAL
	}

	now := s.now()
	record := domain.ProcessRecord{
		ID:             uuid.NewString(),
		Name:           request.Name,
		Command:        request.Command,
		Class:          classification,
		ResourceClass:  class,
		State:          domain.RUNNING,
		Profile:        domain.ProfileFor(class),
		EffectiveMemMB: domain.EffectiveMemoryLimitMB(class, classification),
		CreatedAt:      now,
		LastUpdated:    now,
	}
	s.store.Put(record)
	s.monitoring.IncrCreations()

	if err := s.journal.Append(domain.TransitionEvent{
		ID:        uuid.NewString(),
		ProcessID: record.ID,
		Name:      record.Name,
		To:        record.ResourceClass,
		Reason:    domain.ReasonCreated,
		At:        now,
	}); err != nil {
		s.log.Warn("Failed to journal creation", "process_id", record.ID, "err", err)
	}

	s.log.Info("Process created",
		"process_id", record.ID,
		"name", record.Name,
		"class", record.ResourceClass,
		"system", classification.System,
		"database", classification.Database,
	)
	return record, nil
}

// Get returns the record with its uptime recomputed at read time.
func (s *ProcessService) Get(id string) (domain.ProcessRecord, error) {
	record, err := s.store.Get(id)
	if err != nil {
		return domain.ProcessRecord{}, err
	}
	if record.Running() {
		record.UptimeSeconds = int64(s.now().Sub(record.CreatedAt).Seconds())
	}
	return record, nil
}

// Resources reports usage against limits for one process.
func (s *ProcessService) Resources(id string) (ResourceView, error) {
	record, err := s.store.Get(id)
	if err != nil {
		return ResourceView{}, err
	}
	usage := record.Usage
	limits := record.Profile
	return ResourceView{
		ProcessID:      record.ID,
		ResourceClass:  record.ResourceClass,
		Limits:         limits,
		EffectiveMemMB: record.EffectiveMemMB,
		Usage:          usage,
		Utilization: map[string]string{
			"cpu_utilization":     fmt.Sprintf("%.1f%%", usage.CPUPercent),
			"memory_utilization":  fmt.Sprintf("%.1f%%", percentOf(float64(usage.MemoryMB), float64(record.EffectiveMemMB))),
			"fd_utilization":      fmt.Sprintf("%.1f%%", percentOf(float64(usage.OpenFileDescriptors), float64(limits.MaxFileDescriptors))),
			"process_utilization": fmt.Sprintf("%.1f%%", percentOf(float64(usage.ProcessCount), float64(limits.MaxProcesses))),
		},
	}, nil
}

func percentOf(value, limit float64) float64 {
	if limit == 0 {
		return 0
	}
	return value / limit * 100
}

// Delete terminates a process. The record stays queryable until purged.
// Deleting an already terminated process is a no-op, not an error; deleting
// an unknown id is ErrProcessNotFound.
func (s *ProcessService) Delete(id string) error {
	var already bool
	record, err := s.store.Mutate(id, func(r *domain.ProcessRecord) error {
		if r.State == domain.TERMINATED {
			already = true
			return nil
		}
		r.State = domain.TERMINATED
		r.LastUpdated = s.now()
		return nil
	})
	if err != nil {
		return err
	}
	if already {
		return nil
	}
	s.monitoring.IncrTerminations()

	if err := s.journal.Append(domain.TransitionEvent{
		ID:        uuid.NewString(),
		ProcessID: record.ID,
		Name:      record.Name,
		From:      record.ResourceClass,
		To:        record.ResourceClass,
		Reason:    domain.ReasonTerminated,
		At:        record.LastUpdated,
	}); err != nil {
		s.log.Warn("Failed to journal termination", "process_id", record.ID, "err", err)
	}
	return nil
}

// Purge removes a terminated record from the store entirely.
func (s *ProcessService) Purge(id string) error {
	if err := s.store.Purge(id); err != nil {
		return err
	}
	s.monitoring.IncrPurges()
	return nil
}

// UpdateUsage injects a simulated observation. The memory check runs before
// anything is written: a rejected sample leaves the record untouched.
func (s *ProcessService) UpdateUsage(id string, request UpdateUsageRequest) (domain.ProcessRecord, error) {
	if err := validate.Struct(request); err != nil {
		return domain.ProcessRecord{}, fmt.Errorf("%w: %v", procerr.ErrValidation, err)
	}

	record, err := s.store.Mutate(id, func(r *domain.ProcessRecord) error {
		if !r.Running() {
			return fmt.Errorf("%w: %s", procerr.ErrProcessTerminated, id)
		}
		if request.MemoryMB > r.EffectiveMemMB {
			return fmt.Errorf("%w: memory usage %dMB exceeds limit %dMB",
				procerr.ErrLimitExceeded, request.MemoryMB, r.EffectiveMemMB)
		}
		r.Usage.Observe(request.CPUPercent, request.MemoryMB, request.DurationMinutes)
		r.Usage.OpenFileDescriptors = request.OpenFileDescriptors
		r.Usage.ProcessCount = request.ProcessCount
		r.Usage.IOOperations = request.IOOperations
		r.LastUpdated = s.now()
		return nil
	})
	if err != nil {
		if errors.Is(err, procerr.ErrLimitExceeded) {
			s.monitoring.IncrLimitBreaches()
		}
		return domain.ProcessRecord{}, err
	}
	s.monitoring.IncrUsageUpdates()
	return record, nil
}

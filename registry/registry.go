package registry

import (
	"log/slog"
	"sync"

	"proc-lab/domain"
	"proc-lab/errors"
)

// Registry is the in-memory process store. It owns the only mutable copies of
// ProcessRecords; callers read value copies and mutate through Mutate so that
// class, band timers and effective limit always change under one lock.
type Registry struct {
	mu        sync.RWMutex
	processes map[string]*domain.ProcessRecord
	log       *slog.Logger
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		processes: make(map[string]*domain.ProcessRecord),
		log:       log,
	}
}

// Put inserts a fully built record. Creation is all-or-nothing: the record is
// only visible once it is complete, so a failed create never leaves a partial
// entry behind.
func (r *Registry) Put(record domain.ProcessRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := record
	r.processes[record.ID] = &copied
}

// Get returns a value copy of the record, terminated ones included.
func (r *Registry) Get(id string) (domain.ProcessRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.processes[id]
	if !ok {
		return domain.ProcessRecord{}, errors.ErrProcessNotFound
	}
	return *record, nil
}

// Mutate applies fn to the live record under the store lock. If fn returns an
// error the record keeps whatever state fn left it in, so fn must only write
// after its checks pass. Returns ErrProcessNotFound for unknown ids.
func (r *Registry) Mutate(id string, fn func(*domain.ProcessRecord) error) (domain.ProcessRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.processes[id]
	if !ok {
		return domain.ProcessRecord{}, errors.ErrProcessNotFound
	}
	if err := fn(record); err != nil {
		return domain.ProcessRecord{}, err
	}
	return *record, nil
}

// Purge removes a terminated record entirely. Purging a RUNNING record is
// refused; the caller must terminate it first.
func (r *Registry) Purge(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.processes[id]
	if !ok {
		return errors.ErrProcessNotFound
	}
	if record.State != domain.TERMINATED {
		return errors.ErrNotTerminated
	}
	delete(r.processes, id)
	return nil
}

// SnapshotIDs returns the ids present at one instant. Rebalance sweeps iterate
// over this snapshot and treat ids deleted in the meantime as no-ops.
func (r *Registry) SnapshotIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.processes))
	for id := range r.processes {
		ids = append(ids, id)
	}
	return ids
}

// List returns value copies of every record, for aggregation.
func (r *Registry) List() []domain.ProcessRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	records := make([]domain.ProcessRecord, 0, len(r.processes))
	for _, record := range r.processes {
		records = append(records, *record)
	}
	return records
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.processes)
}

// Clear empties the store. Test lifecycle hook.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processes = make(map[string]*domain.ProcessRecord)
}

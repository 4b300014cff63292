package domain

import "time"

type ProcessState string

const (
	RUNNING    ProcessState = "RUNNING"
	TERMINATED ProcessState = "TERMINATED"
)

// ProcessRecord is the managed view of one process. Records are mutated only
// under the store's lock: class, band timers and effective memory limit form
// one consistent unit and must never be observed half-updated.
type ProcessRecord struct {
	ID      string `json:"process_id"`
	Name    string `json:"name"`
	Command string `json:"command"`

	Class          Classification  `json:"classification"`
	ResourceClass  ResourceClass   `json:"resource_class"`
	State          ProcessState    `json:"state"`
	Profile        ResourceProfile `json:"limits"`
	EffectiveMemMB int64           `json:"effective_memory_limit_mb"`

	Usage ResourceUsage `json:"usage"`

	CreatedAt        time.Time `json:"created_at"`
	LastUpdated      time.Time `json:"last_updated"`
	LastRebalancedAt time.Time `json:"last_rebalanced_at"`
	UptimeSeconds    int64     `json:"uptime_seconds"`
}

// EffectiveMemoryLimitMB derives the enforced memory ceiling for a class and
// classification: the class base limit, doubled for database workloads. The
// doubled value deliberately exceeds the class's nominal cgroup ceiling; see
// the transition policy for the alternative clamping behavior.
func EffectiveMemoryLimitMB(class ResourceClass, classification Classification) int64 {
	limit := ProfileFor(class).MemoryLimitMB
	if classification.Database {
		limit *= 2
	}
	return limit
}

// ApplyClass moves the record to a class and recomputes the dependent limit
// fields from the new class's profile.
func (p *ProcessRecord) ApplyClass(class ResourceClass, now time.Time) {
	p.ResourceClass = class
	p.Profile = ProfileFor(class)
	p.EffectiveMemMB = EffectiveMemoryLimitMB(class, p.Class)
	p.LastRebalancedAt = now
	p.LastUpdated = now
}

func (p *ProcessRecord) Running() bool {
	return p.State == RUNNING
}

package domain

// UsageBand partitions CPU readings for the rebalancing timers.
// High is >80%, Low is <20%, everything else is Normal.
type UsageBand string

const (
	BandHigh   UsageBand = "HIGH"
	BandLow    UsageBand = "LOW"
	BandNormal UsageBand = "NORMAL"
)

func BandOf(cpuPercent float64) UsageBand {
	switch {
	case cpuPercent > 80:
		return BandHigh
	case cpuPercent < 20:
		return BandLow
	default:
		return BandNormal
	}
}

// ResourceUsage is the latest reported observation for a process, plus the
// band timers the rebalancing rules evaluate. The timers only move when a
// new sample is injected; there is no wall-clock decay.
type ResourceUsage struct {
	CPUPercent          float64 `json:"cpu_percent"`
	MemoryMB            int64   `json:"memory_mb"`
	OpenFileDescriptors int     `json:"open_file_descriptors"`
	ProcessCount        int     `json:"process_count"`
	IOOperations        int64   `json:"io_operations"`

	// HighCPUMinutes and LowCPUMinutes track how long the current band has
	// been sustained. A sample outside a band zeroes that band's timer, so
	// brief spikes or dips never accumulate across interruptions.
	HighCPUMinutes int `json:"high_cpu_duration_minutes"`
	LowCPUMinutes  int `json:"low_cpu_duration_minutes"`
}

// Observe folds a new sample into the usage state. A sample in the same band
// as the previous one advances that band's timer by durationMinutes; a band
// change restarts the timer at durationMinutes; a normal-range sample zeroes
// both timers.
func (u *ResourceUsage) Observe(cpuPercent float64, memoryMB int64, durationMinutes int) {
	previous := BandOf(u.CPUPercent)
	current := BandOf(cpuPercent)

	u.CPUPercent = cpuPercent
	u.MemoryMB = memoryMB

	switch current {
	case BandHigh:
		if previous == BandHigh {
			u.HighCPUMinutes += durationMinutes
		} else {
			u.HighCPUMinutes = durationMinutes
		}
		u.LowCPUMinutes = 0
	case BandLow:
		if previous == BandLow {
			u.LowCPUMinutes += durationMinutes
		} else {
			u.LowCPUMinutes = durationMinutes
		}
		u.HighCPUMinutes = 0
	default:
		u.HighCPUMinutes = 0
		u.LowCPUMinutes = 0
	}
}

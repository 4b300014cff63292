package domain

import "fmt"

// ResourceProfile is the immutable set of limits attached to a resource class.
// Values mirror what the corresponding cgroup/ulimit knobs would be set to.
type ResourceProfile struct {
	CPUSharePercent    int   `json:"cpu_share_percent"`
	MemoryLimitMB      int64 `json:"memory_limit_mb"`
	MaxFileDescriptors int   `json:"max_file_descriptors"`
	MaxProcesses       int   `json:"max_processes"`
	IOWeight           int   `json:"io_weight"`
}

var classProfiles = map[ResourceClass]ResourceProfile{
	CRITICAL: {
		CPUSharePercent:    80,
		MemoryLimitMB:      8192,
		MaxFileDescriptors: 65535,
		MaxProcesses:       4096,
		IOWeight:           1000,
	},
	STANDARD: {
		CPUSharePercent:    50,
		MemoryLimitMB:      2048,
		MaxFileDescriptors: 8192,
		MaxProcesses:       1024,
		IOWeight:           500,
	},
	BEST_EFFORT: {
		CPUSharePercent:    20,
		MemoryLimitMB:      512,
		MaxFileDescriptors: 1024,
		MaxProcesses:       256,
		IOWeight:           100,
	},
}

// ProfileFor returns the limit profile of a class.
// An unknown class is a programming error, not caller input: panic loudly.
func ProfileFor(class ResourceClass) ResourceProfile {
	profile, ok := classProfiles[class]
	if !ok {
		panic(fmt.Sprintf("no resource profile registered for class %q", class))
	}
	return profile
}

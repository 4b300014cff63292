package internal

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"proc-lab/services"
)

// LoadPolicy returns the default rebalancing thresholds, overlaid with the
// YAML file at path when one is given. Unknown keys are rejected so a typo in
// an override does not silently run with defaults.
func LoadPolicy(path string) (services.RebalancePolicy, error) {
	policy := services.DefaultRebalancePolicy()
	if path == "" {
		return policy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return policy, fmt.Errorf("reading policy file: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&policy); err != nil {
		return policy, fmt.Errorf("parsing policy file %s: %w", path, err)
	}

	if policy.LowCPUThreshold >= policy.ReactivateCPUThreshold ||
		policy.ReactivateCPUThreshold >= policy.HighCPUThreshold {
		return policy, fmt.Errorf("policy thresholds must satisfy low < reactivate < high, got %v/%v/%v",
			policy.LowCPUThreshold, policy.ReactivateCPUThreshold, policy.HighCPUThreshold)
	}
	if policy.HighCPUMinutes <= 0 || policy.LowCPUMinutes <= 0 {
		return policy, fmt.Errorf("policy durations must be positive")
	}
	return policy, nil
}

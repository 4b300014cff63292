package domain

import "fmt"

type ResourceClass string

const (
	CRITICAL    ResourceClass = "CRITICAL"
	STANDARD    ResourceClass = "STANDARD"
	BEST_EFFORT ResourceClass = "BEST_EFFORT"
)

// AllClasses is ordered from the highest tier to the lowest.
var AllClasses = []ResourceClass{CRITICAL, STANDARD, BEST_EFFORT}

func ToClass(value string) (ResourceClass, error) {
	switch value {
	case string(CRITICAL):
		return CRITICAL, nil
	case string(STANDARD):
		return STANDARD, nil
	case string(BEST_EFFORT):
		return BEST_EFFORT, nil
	default:
		return "", fmt.Errorf("unknown resource class %q", value)
	}
}

// Downgraded returns the class one step below the receiver.
// BEST_EFFORT is the floor and downgrades to itself.
func (c ResourceClass) Downgraded() ResourceClass {
	switch c {
	case CRITICAL:
		return STANDARD
	case STANDARD:
		return BEST_EFFORT
	default:
		return BEST_EFFORT
	}
}

// Above reports whether c is a strictly higher tier than other.
func (c ResourceClass) Above(other ResourceClass) bool {
	return c.rank() > other.rank()
}

func (c ResourceClass) rank() int {
	switch c {
	case CRITICAL:
		return 2
	case STANDARD:
		return 1
	default:
		return 0
	}
}

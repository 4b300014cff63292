package domain

import "time"

// TransitionReason names what drove a class change or lifecycle event.
type TransitionReason string

const (
	ReasonCreated      TransitionReason = "CREATED"
	ReasonHighCPU      TransitionReason = "SUSTAINED_HIGH_CPU"
	ReasonLowCPU       TransitionReason = "SUSTAINED_LOW_CPU"
	ReasonReactivated  TransitionReason = "REACTIVATED"
	ReasonSystemPinned TransitionReason = "SYSTEM_PINNED"
	ReasonTerminated   TransitionReason = "TERMINATED"
)

// TransitionEvent is one entry of the transition journal.
// From is empty for creation events.
type TransitionEvent struct {
	ID        string           `json:"id"`
	ProcessID string           `json:"process_id"`
	Name      string           `json:"name"`
	From      ResourceClass    `json:"from,omitempty"`
	To        ResourceClass    `json:"to"`
	Reason    TransitionReason `json:"reason"`
	At        time.Time        `json:"at"`
}

// RebalanceReport is the outcome of one sweep over the store.
type RebalanceReport struct {
	TotalEvaluated int `json:"total_evaluated"`
	Upgrades       int `json:"upgrades"`
	Downgrades     int `json:"downgrades"`
}

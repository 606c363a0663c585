package quota

import "time"

// State is the gate state of a user's quota record.
type State string

const (
	StateHasQuota  State = "HAS_QUOTA"
	StateExhausted State = "EXHAUSTED"
)

// Record is the per-user generation counter.
type Record struct {
	UserID               string     `json:"userId"`
	RemainingGenerations int        `json:"remainingGenerations"`
	LastGenerationAt     *time.Time `json:"lastGenerationAt"`
	CreatedAt            time.Time  `json:"createdAt"`
}

// Status is the read-only view returned by GET /me/quota.
type Status struct {
	Remaining        int        `json:"remaining"`
	State            State      `json:"state"`
	LastGenerationAt *time.Time `json:"lastGenerationAt"`
	ReplenishesAt    *time.Time `json:"replenishesAt"`
	Floor            int        `json:"floor"`
}

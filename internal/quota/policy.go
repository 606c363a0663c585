package quota

import "time"

const (
	DefaultFloor    = 10
	DefaultCooldown = 8 * time.Hour
)

// Policy holds the replenishment rules. The zero value is not usable; start
// from DefaultPolicy.
type Policy struct {
	Floor    int
	Cooldown time.Duration
}

func DefaultPolicy() Policy {
	return Policy{Floor: DefaultFloor, Cooldown: DefaultCooldown}
}

func (p Policy) seed(userID string, now time.Time) Record {
	return Record{UserID: userID, RemainingGenerations: p.Floor, CreatedAt: now}
}

func (p Policy) cooledDown(r Record, now time.Time) bool {
	if r.LastGenerationAt == nil {
		return true
	}
	return now.Sub(*r.LastGenerationAt) >= p.Cooldown
}

// Replenish raises the remaining count to the floor once the cooldown has
// elapsed. A count above the floor is left alone.
func (p Policy) Replenish(r Record, now time.Time) Record {
	if p.cooledDown(r, now) && r.RemainingGenerations < p.Floor {
		r.RemainingGenerations = p.Floor
	}
	return r
}

// State reports the gate state the record would be in at now.
func (p Policy) State(r Record, now time.Time) State {
	if p.Replenish(r, now).RemainingGenerations > 0 {
		return StateHasQuota
	}
	return StateExhausted
}

// Consume admits one generation. On rejection the record is returned unchanged.
func (p Policy) Consume(r Record, now time.Time) (Record, error) {
	next := p.Replenish(r, now)
	if next.RemainingGenerations <= 0 {
		return r, ErrQuotaExhausted
	}
	next.RemainingGenerations--
	at := now
	next.LastGenerationAt = &at
	return next, nil
}

// Status builds the externally visible view of r.
func (p Policy) Status(r Record, now time.Time) Status {
	eff := p.Replenish(r, now)
	st := Status{
		Remaining:        eff.RemainingGenerations,
		State:            p.State(r, now),
		LastGenerationAt: r.LastGenerationAt,
		Floor:            p.Floor,
	}
	if r.LastGenerationAt != nil && !p.cooledDown(r, now) {
		at := r.LastGenerationAt.Add(p.Cooldown)
		st.ReplenishesAt = &at
	}
	return st
}

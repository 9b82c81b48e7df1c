package core

import "errors"

// ErrPlanNotFound is returned when a plan id does not exist in the
// underlying store.
var ErrPlanNotFound = errors.New("plan not found")

// PlanStore persists execution plan snapshots keyed by plan id.
//
// The only invariant required of an implementation is durability-on-save:
// once Save returns, a subsequent Load with the same or a freshly constructed
// store backed by the same medium returns an equivalent plan (same id, same
// step statuses, same overall status). A single orchestrator driver calls the
// store per plan; concurrent plans use distinct keys.
type PlanStore interface {
	Save(plan *ExecutionPlan) error
	Load(planID string) (*ExecutionPlan, error)
	List() ([]*ExecutionPlan, error)
	Delete(planID string) error
}

package washrequest

import (
	"fmt"
	"time"

	xerrors "fleetwash-service/internal/pkg/errors"
)

// AllowedTransitions is the directed graph of legal status moves.
// Terminal statuses map to an empty set.
var AllowedTransitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusPending, StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// CanTransition reports whether from -> to is a legal status move.
func CanTransition(from, to Status) bool {
	allowed, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Patch is a partial mutation of a wash request. Nil fields are left
// untouched; ClearTechnician unsets the assignment (cancel-acceptance).
type Patch struct {
	Status          *Status
	Technician      *string
	ClearTechnician bool
	PreferredStart  *time.Time
	PreferredEnd    *time.Time
	Notes           *string
	LocationID      *string
}

// Apply mutates r in place, validating any status move against the
// transition graph. updatedAt is bumped on every successful apply.
func (p Patch) Apply(r *WashRequest, now time.Time) error {
	if r == nil {
		return fmt.Errorf("wash request is nil")
	}
	if p.Status != nil && *p.Status != r.Status {
		if !CanTransition(r.Status, *p.Status) {
			return fmt.Errorf("%w: %s -> %s", xerrors.ErrInvalidTransition, r.Status, *p.Status)
		}
		r.Status = *p.Status
	}
	if p.Technician != nil {
		r.Technician = clonePtr(p.Technician)
	}
	if p.ClearTechnician {
		r.Technician = nil
	}
	if p.PreferredStart != nil {
		r.PreferredDates.Start = *p.PreferredStart
	}
	if p.PreferredEnd != nil {
		end := *p.PreferredEnd
		r.PreferredDates.End = &end
	}
	if p.Notes != nil {
		r.Notes = clonePtr(p.Notes)
	}
	if p.LocationID != nil {
		r.LocationID = clonePtr(p.LocationID)
	}
	r.UpdatedAt = now
	return nil
}

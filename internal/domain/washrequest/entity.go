package washrequest

// internal/domain/washrequest/entity.go
import (
	"time"

	"fleetwash-service/internal/domain/location"
	"fleetwash-service/internal/domain/vehicle"
)

type Status string

const (
	StatusPending    Status = "pending"     // created, waiting for a technician
	StatusConfirmed  Status = "confirmed"   // technician accepted or scheduled
	StatusInProgress Status = "in_progress" // wash underway
	StatusCompleted  Status = "completed"   // terminal
	StatusCancelled  Status = "cancelled"   // terminal
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// DateRange is the customer's acceptable scheduling window.
type DateRange struct {
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
}

// Recurring is an optional recurrence policy. Occurrences are not
// materialized as separate requests.
type Recurring struct {
	Frequency string `json:"frequency"` // weekly, biweekly, monthly
	Count     int    `json:"count"`
}

// WashRequest is a customer's service order for washing one or more vehicles.
type WashRequest struct {
	ID             string             `json:"id" db:"id"`
	CustomerID     string             `json:"customer_id" db:"customer_id"`
	Vehicles       []string           `json:"vehicles" db:"vehicles"`
	VehicleDetails []vehicle.Vehicle  `json:"vehicle_details,omitempty"` // denormalized snapshot, may be stale
	PreferredDates DateRange          `json:"preferred_dates"`
	Status         Status             `json:"status" db:"status"`
	Technician     *string            `json:"technician,omitempty" db:"technician_id"`
	Price          int64              `json:"price" db:"price"` // cents
	Notes          *string            `json:"notes,omitempty" db:"notes"`
	OrganizationID *string            `json:"organization_id,omitempty" db:"organization_id"`
	LocationID     *string            `json:"location_id,omitempty" db:"location_id"`
	Location       *location.Location `json:"location,omitempty"`
	Recurring      *Recurring         `json:"recurring,omitempty"`
	CreatedAt      time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" db:"updated_at"`
}

// Clone returns a deep copy. The container relies on this for its
// rollback snapshots, so every reference field must be copied.
func (r WashRequest) Clone() WashRequest {
	out := r
	out.Vehicles = append([]string(nil), r.Vehicles...)
	if r.VehicleDetails != nil {
		out.VehicleDetails = append([]vehicle.Vehicle(nil), r.VehicleDetails...)
	}
	out.Technician = clonePtr(r.Technician)
	out.Notes = clonePtr(r.Notes)
	out.OrganizationID = clonePtr(r.OrganizationID)
	out.LocationID = clonePtr(r.LocationID)
	if r.PreferredDates.End != nil {
		end := *r.PreferredDates.End
		out.PreferredDates.End = &end
	}
	if r.Location != nil {
		loc := *r.Location
		out.Location = &loc
	}
	if r.Recurring != nil {
		rec := *r.Recurring
		out.Recurring = &rec
	}
	return out
}

// CloneList deep-copies a whole request list.
func CloneList(reqs []WashRequest) []WashRequest {
	if reqs == nil {
		return nil
	}
	out := make([]WashRequest, len(reqs))
	for i, r := range reqs {
		out[i] = r.Clone()
	}
	return out
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

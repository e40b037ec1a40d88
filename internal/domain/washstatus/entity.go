package washstatus

// internal/domain/washstatus/entity.go
import "time"

// VehicleWashStatus is the per-(vehicle, wash request) completion record.
// One logical record per pair; writes upsert by existing id when present.
type VehicleWashStatus struct {
	ID            string    `json:"id" db:"id"`
	WashRequestID string    `json:"wash_request_id" db:"wash_request_id"`
	VehicleID     string    `json:"vehicle_id" db:"vehicle_id"`
	TechnicianID  string    `json:"technician_id" db:"technician_id"`
	Completed     bool      `json:"completed" db:"completed"`
	Notes         *string   `json:"notes,omitempty" db:"notes"`
	PhotoURL      *string   `json:"photo_url,omitempty" db:"photo_url"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

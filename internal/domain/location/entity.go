package location

// internal/domain/location/entity.go
import "time"

// Location is a service location belonging to an organization.
type Location struct {
	ID             string    `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Address        string    `json:"address" db:"address"`
	City           string    `json:"city" db:"city"`
	State          string    `json:"state" db:"state"`
	ZipCode        string    `json:"zip_code" db:"zip_code"`
	Latitude       *float64  `json:"latitude,omitempty" db:"latitude"`
	Longitude      *float64  `json:"longitude,omitempty" db:"longitude"`
	Notes          *string   `json:"notes,omitempty" db:"notes"`
	IsDefault      bool      `json:"is_default" db:"is_default"`
	OrganizationID *string   `json:"organization_id,omitempty" db:"organization_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

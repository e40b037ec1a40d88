package vehicle

// internal/domain/vehicle/entity.go
import (
	"fmt"
	"time"

	xerrors "fleetwash-service/internal/pkg/errors"
)

// Vehicle represents a customer vehicle in the fleet.
type Vehicle struct {
	ID             string    `json:"id" db:"id"`
	CustomerID     string    `json:"customer_id" db:"customer_id"`
	Make           string    `json:"make" db:"make"`
	Model          string    `json:"model" db:"model"`
	Year           int       `json:"year" db:"year"`
	LicensePlate   string    `json:"license_plate" db:"license_plate"`
	Color          string    `json:"color" db:"color"`
	Type           string    `json:"type" db:"type"` // sedan, suv, truck, van, ...
	VINNumber      *string   `json:"vin_number,omitempty" db:"vin_number"`
	ImageURL       *string   `json:"image_url,omitempty" db:"image_url"`
	OrganizationID *string   `json:"organization_id,omitempty" db:"organization_id"`
	AssetNumber    *string   `json:"asset_number,omitempty" db:"asset_number"`
	DateAdded      time.Time `json:"date_added" db:"date_added"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// Row is the raw persisted shape before validation.
type Row struct {
	ID             string
	CustomerID     string
	Make           string
	Model          string
	Year           int
	LicensePlate   string
	Color          string
	Type           string
	VINNumber      *string
	ImageURL       *string
	OrganizationID *string
	AssetNumber    *string
	DateAdded      time.Time
	UpdatedAt      time.Time
}

// Decode validates a raw row; it fails closed on missing identity fields.
func (row Row) Decode() (Vehicle, error) {
	if row.ID == "" {
		return Vehicle{}, fmt.Errorf("%w: missing vehicle id", xerrors.ErrDecode)
	}
	if row.CustomerID == "" {
		return Vehicle{}, fmt.Errorf("%w: vehicle %s has no customer", xerrors.ErrDecode, row.ID)
	}
	return Vehicle{
		ID:             row.ID,
		CustomerID:     row.CustomerID,
		Make:           row.Make,
		Model:          row.Model,
		Year:           row.Year,
		LicensePlate:   row.LicensePlate,
		Color:          row.Color,
		Type:           row.Type,
		VINNumber:      row.VINNumber,
		ImageURL:       row.ImageURL,
		OrganizationID: row.OrganizationID,
		AssetNumber:    row.AssetNumber,
		DateAdded:      row.DateAdded,
		UpdatedAt:      row.UpdatedAt,
	}, nil
}

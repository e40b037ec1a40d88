// internal/repository/postgres/vehicle_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fleetwash-service/internal/domain/vehicle"
	xerrors "fleetwash-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const vehicleColumns = `
	id, customer_id, make, model, year, license_plate, color, type,
	vin_number, image_url, organization_id, asset_number, date_added, updated_at`

type VehicleRepository struct {
	db *pgxpool.Pool
}

func NewVehicleRepository(db *pgxpool.Pool) *VehicleRepository {
	return &VehicleRepository{db: db}
}

func (r *VehicleRepository) Create(ctx context.Context, v *vehicle.Vehicle) error {
	query := `
		INSERT INTO vehicles (
			id, customer_id, make, model, year, license_plate, color, type,
			vin_number, image_url, organization_id, asset_number
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING date_added, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		v.ID, v.CustomerID, v.Make, v.Model, v.Year, v.LicensePlate, v.Color, v.Type,
		v.VINNumber, v.ImageURL, v.OrganizationID, v.AssetNumber,
	).Scan(&v.DateAdded, &v.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create vehicle: %w", err)
	}
	return nil
}

func (r *VehicleRepository) FindByID(ctx context.Context, id string) (*vehicle.Vehicle, error) {
	query := fmt.Sprintf(`SELECT %s FROM vehicles WHERE id = $1`, vehicleColumns)
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// FindByIDs loads a batch of vehicles keyed by id. Unknown ids are
// simply absent from the result.
func (r *VehicleRepository) FindByIDs(ctx context.Context, ids []string) (map[string]vehicle.Vehicle, error) {
	out := map[string]vehicle.Vehicle{}
	if len(ids) == 0 {
		return out, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM vehicles WHERE id = ANY($1)`, vehicleColumns)
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load vehicles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		v, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out[v.ID] = *v
	}
	return out, rows.Err()
}

func (r *VehicleRepository) ListByCustomer(ctx context.Context, customerID string) ([]vehicle.Vehicle, error) {
	query := fmt.Sprintf(`SELECT %s FROM vehicles WHERE customer_id = $1 ORDER BY date_added DESC`, vehicleColumns)
	return r.list(ctx, query, customerID)
}

func (r *VehicleRepository) ListByOrganization(ctx context.Context, organizationID string) ([]vehicle.Vehicle, error) {
	query := fmt.Sprintf(`SELECT %s FROM vehicles WHERE organization_id = $1 ORDER BY date_added DESC`, vehicleColumns)
	return r.list(ctx, query, organizationID)
}

func (r *VehicleRepository) Update(ctx context.Context, v *vehicle.Vehicle) error {
	query := `
		UPDATE vehicles
		SET make = $1, model = $2, year = $3, license_plate = $4, color = $5,
		    type = $6, vin_number = $7, image_url = $8, asset_number = $9,
		    updated_at = $10
		WHERE id = $11
	`
	result, err := r.db.Exec(ctx, query,
		v.Make, v.Model, v.Year, v.LicensePlate, v.Color,
		v.Type, v.VINNumber, v.ImageURL, v.AssetNumber,
		time.Now(), v.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update vehicle: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *VehicleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete vehicle: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *VehicleRepository) list(ctx context.Context, query string, args ...interface{}) ([]vehicle.Vehicle, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	vehicles := []vehicle.Vehicle{}
	for rows.Next() {
		v, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, *v)
	}
	return vehicles, rows.Err()
}

func (r *VehicleRepository) scanOne(row pgx.Row) (*vehicle.Vehicle, error) {
	var raw vehicle.Row
	err := row.Scan(
		&raw.ID, &raw.CustomerID, &raw.Make, &raw.Model, &raw.Year,
		&raw.LicensePlate, &raw.Color, &raw.Type, &raw.VINNumber,
		&raw.ImageURL, &raw.OrganizationID, &raw.AssetNumber,
		&raw.DateAdded, &raw.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan vehicle: %w", err)
	}

	v, err := raw.Decode()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

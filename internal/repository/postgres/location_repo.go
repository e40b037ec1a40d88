// internal/repository/postgres/location_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fleetwash-service/internal/domain/location"
	xerrors "fleetwash-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const locationColumns = `
	id, name, address, city, state, zip_code, latitude, longitude,
	notes, is_default, organization_id, created_at, updated_at`

type LocationRepository struct {
	db *pgxpool.Pool
}

func NewLocationRepository(db *pgxpool.Pool) *LocationRepository {
	return &LocationRepository{db: db}
}

func (r *LocationRepository) Create(ctx context.Context, l *location.Location) error {
	query := `
		INSERT INTO locations (
			id, name, address, city, state, zip_code, latitude, longitude,
			notes, is_default, organization_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(
		ctx, query,
		l.ID, l.Name, l.Address, l.City, l.State, l.ZipCode,
		l.Latitude, l.Longitude, l.Notes, l.IsDefault, l.OrganizationID,
	).Scan(&l.CreatedAt, &l.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create location: %w", err)
	}
	return nil
}

func (r *LocationRepository) FindByID(ctx context.Context, id string) (*location.Location, error) {
	query := fmt.Sprintf(`SELECT %s FROM locations WHERE id = $1`, locationColumns)
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *LocationRepository) FindByIDs(ctx context.Context, ids []string) (map[string]location.Location, error) {
	out := map[string]location.Location{}
	if len(ids) == 0 {
		return out, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM locations WHERE id = ANY($1)`, locationColumns)
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load locations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		l, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out[l.ID] = *l
	}
	return out, rows.Err()
}

func (r *LocationRepository) ListByOrganization(ctx context.Context, organizationID string) ([]location.Location, error) {
	query := fmt.Sprintf(`SELECT %s FROM locations WHERE organization_id = $1 ORDER BY name`, locationColumns)

	rows, err := r.db.Query(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer rows.Close()

	locations := []location.Location{}
	for rows.Next() {
		l, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		locations = append(locations, *l)
	}
	return locations, rows.Err()
}

func (r *LocationRepository) Update(ctx context.Context, l *location.Location) error {
	query := `
		UPDATE locations
		SET name = $1, address = $2, city = $3, state = $4, zip_code = $5,
		    latitude = $6, longitude = $7, notes = $8, updated_at = $9
		WHERE id = $10
	`
	result, err := r.db.Exec(ctx, query,
		l.Name, l.Address, l.City, l.State, l.ZipCode,
		l.Latitude, l.Longitude, l.Notes, time.Now(), l.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update location: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// SetDefault marks one location as the organization's default and clears
// the previous default in the same transaction, so at most one default
// exists per organization.
func (r *LocationRepository) SetDefault(ctx context.Context, organizationID, locationID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE locations SET is_default = FALSE, updated_at = $1
		 WHERE organization_id = $2 AND is_default`,
		time.Now(), organizationID,
	); err != nil {
		return fmt.Errorf("failed to clear previous default: %w", err)
	}

	result, err := tx.Exec(ctx,
		`UPDATE locations SET is_default = TRUE, updated_at = $1
		 WHERE id = $2 AND organization_id = $3`,
		time.Now(), locationID, organizationID,
	)
	if err != nil {
		return fmt.Errorf("failed to set default location: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return tx.Commit(ctx)
}

func (r *LocationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *LocationRepository) scanOne(row pgx.Row) (*location.Location, error) {
	var l location.Location
	err := row.Scan(
		&l.ID, &l.Name, &l.Address, &l.City, &l.State, &l.ZipCode,
		&l.Latitude, &l.Longitude, &l.Notes, &l.IsDefault, &l.OrganizationID,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan location: %w", err)
	}
	return &l, nil
}

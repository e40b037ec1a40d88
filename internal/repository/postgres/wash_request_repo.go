// internal/repository/postgres/wash_request_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fleetwash-service/internal/domain/identity"
	"fleetwash-service/internal/domain/vehicle"
	"fleetwash-service/internal/domain/washrequest"
	xerrors "fleetwash-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const washRequestColumns = `
	id, customer_id, vehicles, preferred_start, preferred_end, status,
	technician_id, price, notes, organization_id, location_id,
	recurring_frequency, recurring_count, created_at, updated_at`

type WashRequestRepository struct {
	db           *pgxpool.Pool
	vehicleRepo  *VehicleRepository
	locationRepo *LocationRepository
}

func NewWashRequestRepository(db *pgxpool.Pool, vehicleRepo *VehicleRepository, locationRepo *LocationRepository) *WashRequestRepository {
	return &WashRequestRepository{db: db, vehicleRepo: vehicleRepo, locationRepo: locationRepo}
}

// Insert persists a new wash request.
func (r *WashRequestRepository) Insert(ctx context.Context, req *washrequest.WashRequest) error {
	query := `
		INSERT INTO wash_requests (
			id, customer_id, vehicles, preferred_start, preferred_end, status,
			technician_id, price, notes, organization_id, location_id,
			recurring_frequency, recurring_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`

	var recFreq *string
	var recCount *int
	if req.Recurring != nil {
		recFreq = &req.Recurring.Frequency
		recCount = &req.Recurring.Count
	}

	err := r.db.QueryRow(
		ctx, query,
		req.ID, req.CustomerID, pq.StringArray(req.Vehicles),
		req.PreferredDates.Start, req.PreferredDates.End, req.Status,
		req.Technician, req.Price, req.Notes, req.OrganizationID, req.LocationID,
		recFreq, recCount,
	).Scan(&req.CreatedAt, &req.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert wash request: %w", err)
	}
	return nil
}

// FindByID retrieves a single wash request with its relations attached.
func (r *WashRequestRepository) FindByID(ctx context.Context, id string) (*washrequest.WashRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM wash_requests WHERE id = $1`, washRequestColumns)

	req, err := r.scanOne(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	reqs := []washrequest.WashRequest{*req}
	if err := r.attachRelations(ctx, reqs); err != nil {
		return nil, err
	}
	return &reqs[0], nil
}

// UpdatePatch applies a partial patch remotely. A nil pointer leaves the
// column untouched; ClearTechnician nulls the assignment.
func (r *WashRequestRepository) UpdatePatch(ctx context.Context, id string, patch washrequest.Patch) error {
	sets := []string{"updated_at = $1"}
	args := []interface{}{time.Now()}
	argPos := 2

	add := func(col string, val interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, argPos))
		args = append(args, val)
		argPos++
	}

	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.ClearTechnician {
		sets = append(sets, "technician_id = NULL")
	} else if patch.Technician != nil {
		add("technician_id", *patch.Technician)
	}
	if patch.PreferredStart != nil {
		add("preferred_start", *patch.PreferredStart)
	}
	if patch.PreferredEnd != nil {
		add("preferred_end", *patch.PreferredEnd)
	}
	if patch.Notes != nil {
		add("notes", *patch.Notes)
	}
	if patch.LocationID != nil {
		add("location_id", *patch.LocationID)
	}

	query := fmt.Sprintf("UPDATE wash_requests SET %s WHERE id = $%d", strings.Join(sets, ", "), argPos)
	args = append(args, id)

	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update wash request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// Delete removes a wash request row. The service layer never calls this
// for cancellation; it exists for admin cleanup.
func (r *WashRequestRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM wash_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete wash request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// ListVisible fetches the set of requests the actor may see, per role:
// technicians see their organization's requests plus their own
// assignments (or, with no organization, unassigned pending requests
// plus their own assignments); customers and fleet managers see their
// organization's requests, or only their own when unaffiliated.
func (r *WashRequestRepository) ListVisible(ctx context.Context, actor identity.Actor) ([]washrequest.WashRequest, error) {
	var (
		where string
		args  []interface{}
	)

	switch {
	case actor.IsTechnician() && actor.HasOrganization():
		where = "organization_id = $1 OR technician_id = $2"
		args = []interface{}{actor.OrganizationID, actor.ID}
	case actor.IsTechnician():
		where = "(technician_id IS NULL AND status = 'pending') OR technician_id = $1"
		args = []interface{}{actor.ID}
	case actor.HasOrganization():
		where = "organization_id = $1"
		args = []interface{}{actor.OrganizationID}
	default:
		where = "customer_id = $1"
		args = []interface{}{actor.ID}
	}

	query := fmt.Sprintf(`SELECT %s FROM wash_requests WHERE %s ORDER BY created_at DESC`,
		washRequestColumns, where)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list wash requests: %w", err)
	}
	defer rows.Close()

	requests := []washrequest.WashRequest{}
	for rows.Next() {
		req, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read wash requests: %w", err)
	}

	if err := r.attachRelations(ctx, requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// GetStats aggregates request counts and completed revenue, optionally
// scoped to one organization.
func (r *WashRequestRepository) GetStats(ctx context.Context, organizationID string) (*washrequest.Stats, error) {
	where := "TRUE"
	args := []interface{}{}
	if organizationID != "" {
		where = "organization_id = $1"
		args = append(args, organizationID)
	}

	query := fmt.Sprintf(`
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending,
			COUNT(*) FILTER (WHERE status = 'confirmed') AS confirmed,
			COUNT(*) FILTER (WHERE status = 'in_progress') AS in_progress,
			COUNT(*) FILTER (WHERE status = 'completed') AS completed,
			COUNT(*) FILTER (WHERE status = 'cancelled') AS cancelled,
			COALESCE(SUM(price) FILTER (WHERE status = 'completed'), 0) AS revenue
		FROM wash_requests
		WHERE %s
	`, where)

	var stats washrequest.Stats
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&stats.TotalRequests,
		&stats.PendingRequests,
		&stats.ConfirmedRequests,
		&stats.InProgress,
		&stats.CompletedRequests,
		&stats.CancelledRequests,
		&stats.CompletedRevenue,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get wash request stats: %w", err)
	}

	byTech := fmt.Sprintf(`
		SELECT technician_id, COUNT(*)
		FROM wash_requests
		WHERE technician_id IS NOT NULL AND %s
		GROUP BY technician_id
	`, where)

	rows, err := r.db.Query(ctx, byTech, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get per-technician stats: %w", err)
	}
	defer rows.Close()

	stats.ByTechnician = map[string]int64{}
	for rows.Next() {
		var tech string
		var count int64
		if err := rows.Scan(&tech, &count); err != nil {
			return nil, fmt.Errorf("failed to scan technician stats: %w", err)
		}
		stats.ByTechnician[tech] = count
	}
	return &stats, rows.Err()
}

// scanOne decodes a single row through the fail-closed domain decoder.
func (r *WashRequestRepository) scanOne(row pgx.Row) (*washrequest.WashRequest, error) {
	var raw washrequest.Row
	var vehicles pq.StringArray

	err := row.Scan(
		&raw.ID, &raw.CustomerID, &vehicles, &raw.PreferredStart, &raw.PreferredEnd,
		&raw.Status, &raw.TechnicianID, &raw.Price, &raw.Notes, &raw.OrganizationID,
		&raw.LocationID, &raw.RecurringFrequency, &raw.RecurringCount,
		&raw.CreatedAt, &raw.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan wash request: %w", err)
	}

	raw.Vehicles = []string(vehicles)
	req, err := raw.Decode()
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// attachRelations denormalizes vehicle details and locations onto the
// fetched requests. Missing relations are tolerated and left nil.
func (r *WashRequestRepository) attachRelations(ctx context.Context, reqs []washrequest.WashRequest) error {
	if len(reqs) == 0 {
		return nil
	}

	vehicleIDs := map[string]struct{}{}
	locationIDs := map[string]struct{}{}
	for i := range reqs {
		for _, v := range reqs[i].Vehicles {
			vehicleIDs[v] = struct{}{}
		}
		if reqs[i].LocationID != nil {
			locationIDs[*reqs[i].LocationID] = struct{}{}
		}
	}

	vehiclesByID, err := r.vehicleRepo.FindByIDs(ctx, keys(vehicleIDs))
	if err != nil {
		return err
	}
	locationsByID, err := r.locationRepo.FindByIDs(ctx, keys(locationIDs))
	if err != nil {
		return err
	}

	for i := range reqs {
		details := make([]vehicle.Vehicle, 0, len(reqs[i].Vehicles))
		for _, vid := range reqs[i].Vehicles {
			if v, ok := vehiclesByID[vid]; ok {
				details = append(details, v)
			}
		}
		if len(details) > 0 {
			reqs[i].VehicleDetails = details
		}
		if reqs[i].LocationID != nil {
			if loc, ok := locationsByID[*reqs[i].LocationID]; ok {
				l := loc
				reqs[i].Location = &l
			}
		}
	}
	return nil
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}

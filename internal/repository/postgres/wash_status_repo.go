// internal/repository/postgres/wash_status_repo.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"fleetwash-service/internal/domain/washstatus"

	"github.com/jackc/pgx/v5"
)

type WashStatusRepository struct {
	db *DB
}

func NewWashStatusRepository(db *DB) *WashStatusRepository {
	return &WashStatusRepository{db: db}
}

// UpsertWithTx writes one per-vehicle wash status inside a transaction.
// The (wash_request_id, vehicle_id) pair is the logical key; a second
// submission for the same vehicle updates the existing record.
func (r *WashStatusRepository) UpsertWithTx(ctx context.Context, tx pgx.Tx, s *washstatus.VehicleWashStatus) error {
	query := `
		INSERT INTO vehicle_wash_statuses (
			id, wash_request_id, vehicle_id, technician_id, completed, notes, photo_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (wash_request_id, vehicle_id) DO UPDATE
		SET technician_id = EXCLUDED.technician_id,
		    completed = EXCLUDED.completed,
		    notes = EXCLUDED.notes,
		    photo_url = EXCLUDED.photo_url,
		    updated_at = $8
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		s.ID, s.WashRequestID, s.VehicleID, s.TechnicianID,
		s.Completed, s.Notes, s.PhotoURL, time.Now(),
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert wash status: %w", err)
	}
	return nil
}

// UpsertBatch writes a set of per-vehicle statuses atomically.
func (r *WashStatusRepository) UpsertBatch(ctx context.Context, statuses []*washstatus.VehicleWashStatus) error {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, s := range statuses {
		if err := r.UpsertWithTx(ctx, tx, s); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// ListByRequest returns all per-vehicle statuses for one wash request.
func (r *WashStatusRepository) ListByRequest(ctx context.Context, washRequestID string) ([]washstatus.VehicleWashStatus, error) {
	query := `
		SELECT id, wash_request_id, vehicle_id, technician_id, completed,
		       notes, photo_url, created_at, updated_at
		FROM vehicle_wash_statuses
		WHERE wash_request_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Pool().Query(ctx, query, washRequestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wash statuses: %w", err)
	}
	defer rows.Close()

	statuses := []washstatus.VehicleWashStatus{}
	for rows.Next() {
		var s washstatus.VehicleWashStatus
		if err := rows.Scan(
			&s.ID, &s.WashRequestID, &s.VehicleID, &s.TechnicianID,
			&s.Completed, &s.Notes, &s.PhotoURL, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan wash status: %w", err)
		}
		statuses = append(statuses, s)
	}
	return statuses, rows.Err()
}

// internal/repository/postgres/identity_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fleetwash-service/internal/domain/identity"
	xerrors "fleetwash-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const identityColumns = `
	id, email, full_name, phone, role, organization_id, password_hash,
	is_active, created_at, updated_at`

type IdentityRepository struct {
	db *pgxpool.Pool
}

func NewIdentityRepository(db *pgxpool.Pool) *IdentityRepository {
	return &IdentityRepository{db: db}
}

func (r *IdentityRepository) Create(ctx context.Context, ident *identity.Identity) error {
	query := `
		INSERT INTO identities (
			id, email, full_name, phone, role, organization_id, password_hash, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		ident.ID, ident.Email, ident.FullName, ident.Phone,
		ident.Role, ident.OrganizationID, ident.PasswordHash, ident.IsActive,
	).Scan(&ident.CreatedAt, &ident.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return xerrors.ErrConflict
		}
		return fmt.Errorf("failed to create identity: %w", err)
	}
	return nil
}

func (r *IdentityRepository) FindByID(ctx context.Context, id string) (*identity.Identity, error) {
	query := fmt.Sprintf(`SELECT %s FROM identities WHERE id = $1`, identityColumns)
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *IdentityRepository) FindByEmail(ctx context.Context, email string) (*identity.Identity, error) {
	query := fmt.Sprintf(`SELECT %s FROM identities WHERE email = $1`, identityColumns)
	return r.scanOne(r.db.QueryRow(ctx, query, email))
}

func (r *IdentityRepository) UpdateProfile(ctx context.Context, ident *identity.Identity) error {
	query := `
		UPDATE identities
		SET full_name = $1, phone = $2, organization_id = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := r.db.Exec(ctx, query,
		ident.FullName, ident.Phone, ident.OrganizationID, time.Now(), ident.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update identity: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *IdentityRepository) scanOne(row pgx.Row) (*identity.Identity, error) {
	var ident identity.Identity
	err := row.Scan(
		&ident.ID, &ident.Email, &ident.FullName, &ident.Phone, &ident.Role,
		&ident.OrganizationID, &ident.PasswordHash, &ident.IsActive,
		&ident.CreatedAt, &ident.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan identity: %w", err)
	}
	return &ident, nil
}

func isUniqueViolation(err error) bool {
	// 23505 is the postgres unique_violation code.
	var pgErr interface{ SQLState() string }
	return errors.As(err, &pgErr) && pgErr.SQLState() == "23505"
}

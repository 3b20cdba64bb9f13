package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"solicitud-system/internal/entities"
	apperrors "solicitud-system/pkg/errors"
)

type UserRepositoryInterface interface {
	FindActorProfile(ctx context.Context, actorID uuid.UUID) (*entities.User, error)
	FindActorGrants(ctx context.Context, actorID uuid.UUID) (roles []string, centerIDs []uuid.UUID, comiteIDs []uuid.UUID, err error)
	FindRoleHoldersByCenter(ctx context.Context, centerID uuid.UUID, role string) ([]uuid.UUID, error)
}

type UserRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &UserRepository{storage: storage, logger: logger}
}

func (r *UserRepository) FindActorProfile(ctx context.Context, actorID uuid.UUID) (*entities.User, error) {
	var u entities.User
	err := r.storage.QueryRow(ctx,
		`SELECT id, email, full_name, created_at FROM profiles WHERE id = $1`, actorID,
	).Scan(&u.ID, &u.Email, &u.FullName, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("consultando perfil: %w", err)
	}
	return &u, nil
}

// FindActorGrants collects the actor's role rows, center memberships and
// committee memberships. Duplicate role rows exist in the legacy data and are
// returned as-is; the resolver deduplicates.
func (r *UserRepository) FindActorGrants(ctx context.Context, actorID uuid.UUID) ([]string, []uuid.UUID, []uuid.UUID, error) {
	roleRows, err := r.storage.Query(ctx, `
		SELECT r.name
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1`, actorID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("consultando roles: %w", err)
	}
	defer roleRows.Close()

	var roles []string
	for roleRows.Next() {
		var name string
		if err := roleRows.Scan(&name); err != nil {
			return nil, nil, nil, err
		}
		roles = append(roles, name)
	}
	if err := roleRows.Err(); err != nil {
		return nil, nil, nil, err
	}

	centerIDs, err := r.scanIDs(ctx, `SELECT center_id FROM user_centers WHERE user_id = $1`, actorID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("consultando centros: %w", err)
	}

	comiteIDs, err := r.scanIDs(ctx, `
		SELECT m.group_id
		FROM user_group_members m
		JOIN user_groups g ON g.id = m.group_id
		WHERE m.user_id = $1 AND g.tipo = 'comite' AND g.activo`, actorID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("consultando comités: %w", err)
	}

	return roles, centerIDs, comiteIDs, nil
}

// FindRoleHoldersByCenter returns the users holding a role within a center.
// The aprobar edge uses it to resolve the center's coordinador; the
// dispatcher uses it for director notifications.
func (r *UserRepository) FindRoleHoldersByCenter(ctx context.Context, centerID uuid.UUID, role string) ([]uuid.UUID, error) {
	return r.scanIDs(ctx, `
		SELECT ur.user_id
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		JOIN user_centers uc ON uc.user_id = ur.user_id
		WHERE uc.center_id = $1 AND r.name = $2`, centerID, role)
}

func (r *UserRepository) scanIDs(ctx context.Context, query string, args ...any) ([]uuid.UUID, error) {
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

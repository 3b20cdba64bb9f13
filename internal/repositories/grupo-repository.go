package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"solicitud-system/internal/entities"
	apperrors "solicitud-system/pkg/errors"
)

type GrupoRepositoryInterface interface {
	Find(ctx context.Context, id uuid.UUID) (*entities.Grupo, error)
	// CountMiembros returns the number of participants in a group. A missing
	// or inactive group yields ErrNotFound.
	CountMiembros(ctx context.Context, grupoID uuid.UUID) (int, error)
	FindMiembros(ctx context.Context, grupoID uuid.UUID) ([]uuid.UUID, error)
	FindGrupoNotificacion(ctx context.Context, centroID uuid.UUID) (*entities.Grupo, error)
}

type GrupoRepository struct {
	storage *pgxpool.Pool
}

func NewGrupoRepository(storage *pgxpool.Pool) GrupoRepositoryInterface {
	return &GrupoRepository{storage: storage}
}

const grupoColumns = `id, nombre, tipo, centro_id, activo`

func (r *GrupoRepository) Find(ctx context.Context, id uuid.UUID) (*entities.Grupo, error) {
	var g entities.Grupo
	err := r.storage.QueryRow(ctx,
		`SELECT `+grupoColumns+` FROM user_groups WHERE id = $1`, id,
	).Scan(&g.ID, &g.Nombre, &g.Tipo, &g.CentroID, &g.Activo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("consultando grupo: %w", err)
	}
	return &g, nil
}

func (r *GrupoRepository) CountMiembros(ctx context.Context, grupoID uuid.UUID) (int, error) {
	var count int
	err := r.storage.QueryRow(ctx, `
		SELECT count(m.user_id)
		FROM user_groups g
		LEFT JOIN user_group_members m ON m.group_id = g.id
		WHERE g.id = $1 AND g.activo
		GROUP BY g.id`, grupoID,
	).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrNotFound
		}
		return 0, fmt.Errorf("contando miembros del grupo: %w", err)
	}
	return count, nil
}

func (r *GrupoRepository) FindMiembros(ctx context.Context, grupoID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.storage.Query(ctx,
		`SELECT user_id FROM user_group_members WHERE group_id = $1`, grupoID)
	if err != nil {
		return nil, fmt.Errorf("consultando miembros del grupo: %w", err)
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

// FindGrupoNotificacion returns the active notification group of a center,
// or ErrNotFound when the center has none configured.
func (r *GrupoRepository) FindGrupoNotificacion(ctx context.Context, centroID uuid.UUID) (*entities.Grupo, error) {
	var g entities.Grupo
	err := r.storage.QueryRow(ctx, `
		SELECT `+grupoColumns+`
		FROM user_groups
		WHERE centro_id = $1 AND tipo = $2 AND activo
		LIMIT 1`, centroID, entities.GrupoTipoNotificacion,
	).Scan(&g.ID, &g.Nombre, &g.Tipo, &g.CentroID, &g.Activo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("consultando grupo de notificación: %w", err)
	}
	return &g, nil
}

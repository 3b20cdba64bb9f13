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

type HistorialRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, entry *entities.HistorialEntry) error
	Append(ctx context.Context, entry *entities.HistorialEntry) error
	FindBySolicitudID(ctx context.Context, solicitudID uuid.UUID) ([]entities.HistorialEntry, error)
	AmendLastComment(ctx context.Context, solicitudID uuid.UUID, comentario string) error
}

type HistorialRepository struct {
	storage *pgxpool.Pool
}

func NewHistorialRepository(storage *pgxpool.Pool) HistorialRepositoryInterface {
	return &HistorialRepository{storage: storage}
}

const historialInsertQuery = `
	INSERT INTO solicitud_historial (solicitud_id, estado_anterior, estado_nuevo, actor_id, actor_rol, comentario)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, created_at`

// CreateInTx appends an entry inside the caller's transaction. The entity
// store uses this so a state commit and its history entry are one atomic unit.
func (r *HistorialRepository) CreateInTx(ctx context.Context, tx pgx.Tx, entry *entities.HistorialEntry) error {
	err := tx.QueryRow(ctx, historialInsertQuery,
		entry.SolicitudID, entry.EstadoAnterior, entry.EstadoNuevo,
		entry.ActorID, entry.ActorRol, entry.Comentario,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insertando entrada de historial: %w", err)
	}
	return nil
}

// Append writes an entry in its own transaction. Used by operations that do
// not change the estado (modification requests record identical from/to).
func (r *HistorialRepository) Append(ctx context.Context, entry *entities.HistorialEntry) error {
	err := r.storage.QueryRow(ctx, historialInsertQuery,
		entry.SolicitudID, entry.EstadoAnterior, entry.EstadoNuevo,
		entry.ActorID, entry.ActorRol, entry.Comentario,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insertando entrada de historial: %w", err)
	}
	return nil
}

// FindBySolicitudID returns the full trail, oldest first. Ties on created_at
// break on the insertion sequence, so replays are stable.
func (r *HistorialRepository) FindBySolicitudID(ctx context.Context, solicitudID uuid.UUID) ([]entities.HistorialEntry, error) {
	query := `
		SELECT id, solicitud_id, estado_anterior, estado_nuevo, actor_id, actor_rol, comentario, created_at
		FROM solicitud_historial
		WHERE solicitud_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := r.storage.Query(ctx, query, solicitudID)
	if err != nil {
		return nil, fmt.Errorf("consultando historial: %w", err)
	}
	defer rows.Close()

	var historial []entities.HistorialEntry
	for rows.Next() {
		var h entities.HistorialEntry
		if err := rows.Scan(
			&h.ID, &h.SolicitudID, &h.EstadoAnterior, &h.EstadoNuevo,
			&h.ActorID, &h.ActorRol, &h.Comentario, &h.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("leyendo entrada de historial: %w", err)
		}
		historial = append(historial, h)
	}
	return historial, rows.Err()
}

// AmendLastComment patches the comentario of the most recent entry for a
// solicitud. This is the single documented exception to append-only: a
// director may attach a remark right after the transition that created the
// entry. No other field is ever updated.
func (r *HistorialRepository) AmendLastComment(ctx context.Context, solicitudID uuid.UUID, comentario string) error {
	query := `
		UPDATE solicitud_historial
		SET comentario = $2
		WHERE id = (
			SELECT id FROM solicitud_historial
			WHERE solicitud_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		)
		RETURNING id`

	var id uint64
	if err := r.storage.QueryRow(ctx, query, solicitudID, comentario).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("actualizando comentario de historial: %w", err)
	}
	return nil
}

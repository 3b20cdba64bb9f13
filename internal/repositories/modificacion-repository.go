package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"solicitud-system/internal/entities"
)

type ModificacionRepositoryInterface interface {
	Create(ctx context.Context, m *entities.Modificacion) error
}

type ModificacionRepository struct {
	storage *pgxpool.Pool
}

func NewModificacionRepository(storage *pgxpool.Pool) ModificacionRepositoryInterface {
	return &ModificacionRepository{storage: storage}
}

func (r *ModificacionRepository) Create(ctx context.Context, m *entities.Modificacion) error {
	err := r.storage.QueryRow(ctx, `
		INSERT INTO modificaciones (centro_id, tipo, accion, descripcion, usuario_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		m.CentroID, m.Tipo, m.Accion, m.Descripcion, m.UsuarioID,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("registrando modificación: %w", err)
	}
	return nil
}

package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"solicitud-system/internal/entities"
)

type NotificacionRepositoryInterface interface {
	CreateBatch(ctx context.Context, items []entities.Notificacion) error
}

type NotificacionRepository struct {
	storage *pgxpool.Pool
}

func NewNotificacionRepository(storage *pgxpool.Pool) NotificacionRepositoryInterface {
	return &NotificacionRepository{storage: storage}
}

// CreateBatch inserts notification intents in a single round trip. Intents are
// advisory: the dispatcher logs failures and never blocks a transition on them.
func (r *NotificacionRepository) CreateBatch(ctx context.Context, items []entities.Notificacion) error {
	if len(items) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, n := range items {
		batch.Queue(`
			INSERT INTO notifications (user_id, kind, title, message, solicitud_id)
			VALUES ($1, $2, $3, $4, $5)`,
			n.UserID, n.Kind, n.Title, n.Message, n.SolicitudID)
	}

	results := r.storage.SendBatch(ctx, batch)
	defer results.Close()

	for range items {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insertando notificaciones: %w", err)
		}
	}
	return nil
}

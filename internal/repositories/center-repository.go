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

type CenterRepositoryInterface interface {
	Find(ctx context.Context, id uuid.UUID) (*entities.Center, error)
	FindBySlug(ctx context.Context, slug string) (*entities.Center, error)
}

type CenterRepository struct {
	storage *pgxpool.Pool
}

func NewCenterRepository(storage *pgxpool.Pool) CenterRepositoryInterface {
	return &CenterRepository{storage: storage}
}

func (r *CenterRepository) Find(ctx context.Context, id uuid.UUID) (*entities.Center, error) {
	return r.scanOne(ctx, `SELECT id, name, slug FROM centers WHERE id = $1`, id)
}

func (r *CenterRepository) FindBySlug(ctx context.Context, slug string) (*entities.Center, error) {
	return r.scanOne(ctx, `SELECT id, name, slug FROM centers WHERE slug = $1`, slug)
}

func (r *CenterRepository) scanOne(ctx context.Context, query string, arg any) (*entities.Center, error) {
	var c entities.Center
	err := r.storage.QueryRow(ctx, query, arg).Scan(&c.ID, &c.Name, &c.Slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("consultando centro: %w", err)
	}
	return &c, nil
}

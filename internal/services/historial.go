package services

import (
	"context"

	"github.com/google/uuid"

	"solicitud-system/internal/authz"
	"solicitud-system/internal/entities"
	"solicitud-system/internal/repositories"
	apperrors "solicitud-system/pkg/errors"
)

type HistorialServiceInterface interface {
	Timeline(ctx context.Context, actor *authz.ActorContext, solicitudID uuid.UUID) ([]entities.HistorialEntry, error)
	AmendLastComment(ctx context.Context, actor *authz.ActorContext, solicitudID uuid.UUID, comentario string) error
}

type HistorialService struct {
	historialRepo repositories.HistorialRepositoryInterface
	solicitudRepo repositories.SolicitudRepositoryInterface
}

func NewHistorialService(historialRepo repositories.HistorialRepositoryInterface, solicitudRepo repositories.SolicitudRepositoryInterface) HistorialServiceInterface {
	return &HistorialService{historialRepo: historialRepo, solicitudRepo: solicitudRepo}
}

func (s *HistorialService) Timeline(ctx context.Context, actor *authz.ActorContext, solicitudID uuid.UUID) ([]entities.HistorialEntry, error) {
	sol, err := s.solicitudRepo.Find(ctx, solicitudID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdministrador() && !actor.IsCreator(sol) && !actor.IsMemberOfCenter(sol.CenterID) {
		if sol.GrupoID == nil || !actor.IsComiteMemberOf(*sol.GrupoID) {
			return nil, apperrors.ErrForbidden
		}
	}
	return s.historialRepo.FindBySolicitudID(ctx, solicitudID)
}

// AmendLastComment lets a director attach a remark to the most recent history
// entry. This is the only mutation the trail permits; states, actors and
// timestamps are immutable once written.
func (s *HistorialService) AmendLastComment(ctx context.Context, actor *authz.ActorContext, solicitudID uuid.UUID, comentario string) error {
	sol, err := s.solicitudRepo.Find(ctx, solicitudID)
	if err != nil {
		return err
	}
	if !actor.IsDirectorOf(sol.CenterID) {
		return apperrors.ErrForbidden
	}
	return s.historialRepo.AmendLastComment(ctx, solicitudID, comentario)
}

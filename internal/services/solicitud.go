package services

import (
	"context"
	"fmt"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"solicitud-system/internal/authz"
	"solicitud-system/internal/dto"
	"solicitud-system/internal/entities"
	"solicitud-system/internal/events"
	"solicitud-system/internal/repositories"
	"solicitud-system/pkg/constants"
	apperrors "solicitud-system/pkg/errors"
	"solicitud-system/pkg/eventbus"
)

type SolicitudServiceInterface interface {
	Crear(ctx context.Context, actor *authz.ActorContext, payload dto.CreateSolicitudDTO) (*entities.Solicitud, error)
	Find(ctx context.Context, actor *authz.ActorContext, id uuid.UUID) (*entities.Solicitud, error)
	List(ctx context.Context, actor *authz.ActorContext, filter repositories.SolicitudFilter) ([]entities.Solicitud, uint64, error)
	Delete(ctx context.Context, actor *authz.ActorContext, id uuid.UUID) error
	RegistrarDocumento(ctx context.Context, actor *authz.ActorContext, id uuid.UUID, payload dto.RegistrarDocumentoDTO) error

	Recibir(ctx context.Context, actor *authz.ActorContext, id uuid.UUID, payload dto.RecibirDTO) (*entities.Solicitud, error)
	EnviarComite(ctx context.Context, actor *authz.ActorContext, id uuid.UUID, payload dto.EnviarComiteDTO) (*entities.Solicitud, error)
	Observar(ctx context.Context, actor *authz.ActorContext, id uuid.UUID, payload dto.ObservarDTO) (*entities.Solicitud, error)
	Devolver(ctx context.Context, actor *authz.ActorContext, id uuid.UUID, payload dto.DevolverDTO) (*entities.Solicitud, error)
	Aprobar(ctx context.Context, actor *authz.ActorContext, id uuid.UUID, payload dto.AprobarDTO) (*entities.Solicitud, error)
	Rechazar(ctx context.Context, actor *authz.ActorContext, id uuid.UUID, payload dto.RechazarDTO) (*entities.Solicitud, error)
	Cancelar(ctx context.Context, actor *authz.ActorContext, id uuid.UUID, payload dto.CancelarDTO) (*entities.Solicitud, error)
	SolicitarModificacion(ctx context.Context, actor *authz.ActorContext, id uuid.UUID, payload dto.SolicitarModificacionDTO) error

	Revisar(ctx context.Context, actor *authz.ActorContext, id uuid.UUID, payload dto.RevisarDTO) (*entities.Solicitud, error)
	Resolver(ctx context.Context, actor *authz.ActorContext, id uuid.UUID, payload dto.ResolverDTO) (*entities.Solicitud, error)
}

// SolicitudService is the transition engine. Every estado change funnels
// through commit(), which enforces the edge table before handing the write to
// the entity store's compare-and-update. Role guards and payload preconditions
// run per edge, before the commit, in that order.
type SolicitudService struct {
	solicitudRepo    repositories.SolicitudRepositoryInterface
	historialRepo    repositories.HistorialRepositoryInterface
	grupoRepo        repositories.GrupoRepositoryInterface
	centerRepo       repositories.CenterRepositoryInterface
	userRepo         repositories.UserRepositoryInterface
	modificacionRepo repositories.ModificacionRepositoryInterface
	bus              *eventbus.Bus
	servicesSlug     string
	logger           *zap.Logger
}

func NewSolicitudService(
	solicitudRepo repositories.SolicitudRepositoryInterface,
	historialRepo repositories.HistorialRepositoryInterface,
	grupoRepo repositories.GrupoRepositoryInterface,
	centerRepo repositories.CenterRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	modificacionRepo repositories.ModificacionRepositoryInterface,
	bus *eventbus.Bus,
	servicesSlug string,
	logger *zap.Logger,
) SolicitudServiceInterface {
	return &SolicitudService{
		solicitudRepo:    solicitudRepo,
		historialRepo:    historialRepo,
		grupoRepo:        grupoRepo,
		centerRepo:       centerRepo,
		userRepo:         userRepo,
		modificacionRepo: modificacionRepo,
		bus:              bus,
		servicesSlug:     servicesSlug,
		logger:           logger,
	}
}

func optionalComment(s string) null.String {
	if s == "" {
		return null.String{}
	}
	return null.StringFrom(s)
}

// commit validates the edge against the state machine, applies the mutation
// through the entity store and publishes the transition event after the write
// lands. The expected estado read here is what the compare-and-update pins;
// a concurrent winner surfaces as ErrStaleState from the store.
func (s *SolicitudService) commit(ctx context.Context, actor *authz.ActorContext, sol *entities.Solicitud, mut repositories.TransitionMutation) (*entities.Solicitud, error) {
	if sol.Estado.IsFinal() {
		return nil, fmt.Errorf("%w: %s es un estado final", apperrors.ErrInvalidTransition, sol.Estado)
	}
	if !constants.CanTransition(sol.Estado, mut.NuevoEstado) {
		return nil, fmt.Errorf("%w: %s → %s", apperrors.ErrInvalidTransition, sol.Estado, mut.NuevoEstado)
	}

	mut.ActorID = actor.ActorID
	mut.ActorRol = string(actor.PrimaryRole())

	updated, entry, err := s.solicitudRepo.CommitTransition(ctx, sol.ID, sol.Estado, mut)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.SolicitudTransitionedEvent{
		Solicitud: updated,
		Entry:     entry,
		Actor:     actor,
	})
	return updated, nil
}

// Crear registers a new solicitud in the initial state of its flow. Creation
// writes no history entry; the trail starts with the first transition.
func (s *SolicitudService) Crear(ctx context.Context, actor *authz.ActorContext, payload dto.CreateSolicitudDTO) (*entities.Solicitud, error) {
	if actor.HasRole(authz.RoleConsulta) && len(actor.Roles) == 1 {
		return nil, apperrors.ErrForbidden
	}
	if !actor.IsAdministrador() && !actor.IsMemberOfCenter(payload.CenterID) {
		return nil, fmt.Errorf("%w: el actor no pertenece al centro", apperrors.ErrForbidden)
	}

	tipo := constants.TipoSolicitud(payload.Tipo)
	sol := &entities.Solicitud{
		ID:               uuid.New(),
		Titulo:           payload.Titulo,
		Tipo:             tipo,
		Estado:           constants.InitialEstado(tipo),
		CenterID:         payload.CenterID,
		CreatedBy:        actor.ActorID,
		FichaTecnicaPath: optionalComment(payload.FichaTecnicaPath),
	}
	return s.solicitudRepo.Create(ctx, sol)
}

func (s *SolicitudService) Find(ctx context.Context, actor *authz.ActorContext, id uuid.UUID) (*entities.Solicitud, error) {
	sol, err := s.solicitudRepo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canView(actor, sol) {
		return nil, apperrors.ErrForbidden
	}
	return sol, nil
}

// canView: administrators see everything; everyone else sees solicitudes of
// their centers, their committees, or their own.
func (s *SolicitudService) canView(actor *authz.ActorContext, sol *entities.Solicitud) bool {
	if actor.IsAdministrador() || actor.IsCreator(sol) {
		return true
	}
	if actor.IsMemberOfCenter(sol.CenterID) {
		return true
	}
	if sol.AssignedCenterID != nil && actor.IsMemberOfCenter(*sol.AssignedCenterID) {
		return true
	}
	if sol.GrupoID != nil && actor.IsComiteMemberOf(*sol.GrupoID) {
		return true
	}
	return false
}

func (s *SolicitudService) List(ctx context.Context, actor *authz.ActorContext, filter repositories.SolicitudFilter) ([]entities.Solicitud, uint64, error) {
	// Non-administrators are scoped to their own records when they do not
	// belong to the requested center.
	if !actor.IsAdministrador() {
		if filter.CenterID == nil || !actor.IsMemberOfCenter(*filter.CenterID) {
			creator := actor.ActorID
			filter.CreatedBy = &creator
			filter.CenterID = nil
		}
	}
	return s.solicitudRepo.List(ctx, filter)
}

// Delete is the escape hatch for drafts created by mistake. Only the creator
// or an administrator may use it, and only while the solicitud has not
// advanced past its initial state. The removal is audited in modificaciones
// because the record itself disappears.
func (s *SolicitudService) Delete(ctx context.Context, actor *authz.ActorContext, id uuid.UUID) error {
	sol, err := s.solicitudRepo.Find(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsCreator(sol) && !actor.IsAdministrador() {
		return apperrors.ErrForbidden
	}
	if !sol.Estado.IsInitial() {
		return fmt.Errorf("%w: sólo se puede eliminar una solicitud que no ha avanzado", apperrors.ErrPreconditionFailed)
	}

	if err := s.solicitudRepo.Delete(ctx, id); err != nil {
		return err
	}

	audit := &entities.Modificacion{
		CentroID:    sol.CenterID,
		Tipo:        "solicitud",
		Accion:      "eliminacion",
		Descripcion: fmt.Sprintf("solicitud %q eliminada en estado %s", sol.Titulo, sol.Estado),
		UsuarioID:   actor.ActorID,
	}
	if err := s.modificacionRepo.Create(ctx, audit); err != nil {
		s.logger.Error("no se pudo auditar la eliminación", zap.String("solicitudID", id.String()), zap.Error(err))
	}
	return nil
}

func (s *SolicitudService) RegistrarDocumento(ctx context.Context, actor *authz.ActorContext, id uuid.UUID, payload dto.RegistrarDocumentoDTO) error {
	sol, err := s.solicitudRepo.Find(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsCreator(sol) && !actor.IsDirectorOf(sol.CenterID) {
		return apperrors.ErrForbidden
	}
	if sol.Estado.IsFinal() {
		return fmt.Errorf("%w: los documentos de una solicitud en estado final son inmutables", apperrors.ErrPreconditionFailed)
	}
	return s.solicitudRepo.SetDocumento(ctx, id, payload.Slot, payload.Path)
}

// / Recibir moves nuevo→recibido: the acting director takes ownership and the
// solicitud is assigned to the services center resolved by slug.
func (s *SolicitudService) Recibir(ctx context.Context, actor *authz.ActorContext, id uuid.UUID, payload dto.RecibirDTO) (*entities.Solicitud, error) {
	sol, err := s.solicitudRepo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsDirectorOf(sol.CenterID) {
		return nil, apperrors.ErrForbidden
	}

	servicesCenter, err := s.centerRepo.FindBySlug(ctx, s.servicesSlug)
	if err != nil {
		return nil, fmt.Errorf("%w: centro de servicios no configurado", apperrors.ErrPreconditionFailed)
	}

	directorID := actor.ActorID
	return s.commit(ctx, actor, sol, repositories.TransitionMutation{
		NuevoEstado:         constants.EstadoRecibido,
		Comentario:          optionalComment(payload.Comentario),
		SetDirectorID:       &directorID,
		SetAssignedCenterID: &servicesCenter.ID,
		MarkRecibido:        true,
	})
}

// EnviarComite moves recibido→en_comite. The committee must exist, be active
// and have at least one participant; an empty committee would strand the
// solicitud with nobody able to act on it.
func (s *SolicitudService) EnviarComite(ctx context.Context, actor *authz.ActorContext, id uuid.UUID, payload dto.EnviarComiteDTO) (*entities.Solicitud, error) {
	sol, err := s.solicitudRepo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsDirectorOf(sol.CenterID) {
		return nil, apperrors.ErrForbidden
	}

	grupo, err := s.grupoRepo.Find(ctx, payload.GrupoID)
	if err != nil {
		return nil, fmt.Errorf("%w: el comité no existe", apperrors.ErrInvalidCommittee)
	}
	if grupo.Tipo != entities.GrupoTipoComite || !grupo.Activo {
		return nil, fmt.Errorf("%w: el grupo no es un comité activo", apperrors.ErrInvalidCommittee)
	}
	count, err := s.grupoRepo.CountMiembros(ctx, payload.GrupoID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: el comité no tiene participantes", apperrors.ErrInvalidCommittee)
	}

	grupoID := payload.GrupoID
	return s.commit(ctx, actor, sol, repositories.TransitionMutation{
		NuevoEstado: constants.EstadoEnComite,
		Comentario:  optionalComment(payload.Comentario),
		SetGrupoID:  &grupoID,
	})
}

// Observar moves en_comite→observado with mandatory observaciones from a
// member of the assigned committee.
func (s *SolicitudService) Observar(ctx context.Context, actor *authz.ActorContext, id uuid.UUID, payload dto.ObservarDTO) (*entities.Solicitud, error) {
	sol, err := s.solicitudRepo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdministrador() {
		if sol.GrupoID == nil || !actor.IsComiteMemberOf(*sol.GrupoID) {
			return nil, apperrors.ErrForbidden
		}
	}

	return s.commit(ctx, actor, sol, repositories.TransitionMutation{
		NuevoEstado:      constants.EstadoObservado,
		Comentario:       null.StringFrom(payload.Observaciones),
		SetObservaciones: null.StringFrom(payload.Observaciones),
	})
}

// Devolver moves observado→nuevo: the director returns the solicitud to the
// requester with the committee's observations still readable on the record.
func (s *SolicitudService) Devolver(ctx context.Context, actor *authz.ActorContext, id uuid.UUID, payload dto.DevolverDTO) (*entities.Solicitud, error) {
	sol, err := s.solicitudRepo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsDirectorOf(sol.CenterID) {
		return nil, apperrors.ErrForbidden
	}

	return s.commit(ctx, actor, sol, repositories.TransitionMutation{
		NuevoEstado: constants.EstadoNuevo,
		Comentario:  optionalComment(payload.Comentario),
	})
}

// Aprobar moves en_comite→aprobado, decided by the assigned committee. The
// acta de comité must be on record (or arrive with the payload), and the
// coordinador of the assigned center is resolved and pinned on the record for
// follow-up.
func (s *SolicitudService) Aprobar(ctx context.Context, actor *authz.ActorContext, id uuid.UUID, payload dto.AprobarDTO) (*entities.Solicitud, error) {
	sol, err := s.solicitudRepo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdministrador() {
		if sol.GrupoID == nil || !actor.IsComiteMemberOf(*sol.GrupoID) {
			return nil, apperrors.ErrForbidden
		}
	}

	mut := repositories.TransitionMutation{
		NuevoEstado:  constants.EstadoAprobado,
		Comentario:   optionalComment(payload.Comentario),
		MarkAprobado: true,
	}

	if payload.ActaComitePath != "" {
		mut.SetActaComitePath = null.StringFrom(payload.ActaComitePath)
	} else if !sol.ActaComitePath.Valid {
		return nil, fmt.Errorf("%w: falta el acta de comité", apperrors.ErrPreconditionFailed)
	}

	coordCenter := sol.CenterID
	if sol.AssignedCenterID != nil {
		coordCenter = *sol.AssignedCenterID
	}
	coordinadores, err := s.userRepo.FindRoleHoldersByCenter(ctx, coordCenter, string(authz.RoleCoordinador))
	if err != nil {
		return nil, fmt.Errorf("resolviendo coordinador del centro: %w", err)
	}
	if len(coordinadores) > 0 {
		mut.SetCoordinadorID = &coordinadores[0]
	} else {
		s.logger.Warn("centro sin coordinador al aprobar", zap.String("centerID", coordCenter.String()))
	}

	return s.commit(ctx, actor, sol, mut)
}

// Rechazar is valid from nuevo, recibido and en_comite; the motivo is
// mandatory and lands both on the record and in the history entry. Before the
// committee it is the director's call; once in committee, the committee's.
func (s *SolicitudService) Rechazar(ctx context.Context, actor *authz.ActorContext, id uuid.UUID, payload dto.RechazarDTO) (*entities.Solicitud, error) {
	sol, err := s.solicitudRepo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdministrador() {
		if sol.Estado == constants.EstadoEnComite {
			if sol.GrupoID == nil || !actor.IsComiteMemberOf(*sol.GrupoID) {
				return nil, apperrors.ErrForbidden
			}
		} else if !actor.IsDirectorOf(sol.CenterID) {
			return nil, apperrors.ErrForbidden
		}
	}

	return s.commit(ctx, actor, sol, repositories.TransitionMutation{
		NuevoEstado:      constants.EstadoRechazado,
		Comentario:       null.StringFrom(payload.Motivo),
		SetMotivoRechazo: null.StringFrom(payload.Motivo),
		MarkRechazado:    true,
	})
}

// Cancelar is the creator's withdrawal, valid from any non-terminal state.
func (s *SolicitudService) Cancelar(ctx context.Context, actor *authz.ActorContext, id uuid.UUID, payload dto.CancelarDTO) (*entities.Solicitud, error) {
	sol, err := s.solicitudRepo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsCreator(sol) && !actor.IsAdministrador() {
		return nil, apperrors.ErrForbidden
	}

	return s.commit(ctx, actor, sol, repositories.TransitionMutation{
		NuevoEstado:          constants.EstadoCancelado,
		Comentario:           null.StringFrom(payload.Motivo),
		SetMotivoCancelacion: null.StringFrom(payload.Motivo),
	})
}

// SolicitarModificacion records a change request against a live solicitud.
// The estado does not move; the history entry carries identical from/to
// states so the trail shows the request at its point in time, and the
// modificaciones log keeps the auditable detail.
func (s *SolicitudService) SolicitarModificacion(ctx context.Context, actor *authz.ActorContext, id uuid.UUID, payload dto.SolicitarModificacionDTO) error {
	sol, err := s.solicitudRepo.Find(ctx, id)
	if err != nil {
		return err
	}
	if sol.Estado.IsFinal() {
		return fmt.Errorf("%w: una solicitud en estado final no admite solicitudes de modificación", apperrors.ErrPreconditionFailed)
	}
	if !actor.IsCreator(sol) && !actor.IsMemberOfCenter(sol.CenterID) && !actor.IsAdministrador() {
		return apperrors.ErrForbidden
	}

	entry := &entities.HistorialEntry{
		SolicitudID:    sol.ID,
		EstadoAnterior: sol.Estado,
		EstadoNuevo:    sol.Estado,
		ActorID:        actor.ActorID,
		ActorRol:       string(actor.PrimaryRole()),
		Comentario:     null.StringFrom(fmt.Sprintf("solicitud de modificación: %s", payload.Motivo)),
	}
	if err := s.historialRepo.Append(ctx, entry); err != nil {
		return err
	}

	audit := &entities.Modificacion{
		CentroID:    sol.CenterID,
		Tipo:        "solicitud",
		Accion:      "solicitud_modificacion",
		Descripcion: fmt.Sprintf("%s: %s", payload.Motivo, payload.Descripcion),
		UsuarioID:   actor.ActorID,
	}
	if err := s.modificacionRepo.Create(ctx, audit); err != nil {
		return err
	}

	s.bus.Publish(ctx, events.SolicitudModificacionSolicitadaEvent{
		Solicitud: sol,
		Motivo:    payload.Motivo,
		Actor:     actor,
	})
	return nil
}

// Revisar moves pendiente→en_revision in the short flow.
func (s *SolicitudService) Revisar(ctx context.Context, actor *authz.ActorContext, id uuid.UUID, payload dto.RevisarDTO) (*entities.Solicitud, error) {
	sol, err := s.solicitudRepo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdministrador() && !actor.HasRole(authz.RoleCoordinador) && !actor.HasRole(authz.RoleDirector) {
		return nil, apperrors.ErrForbidden
	}

	return s.commit(ctx, actor, sol, repositories.TransitionMutation{
		NuevoEstado: constants.EstadoEnRevision,
		Comentario:  optionalComment(payload.Comentario),
	})
}

// Resolver closes the short flow as aprobada or rechazada. Rejection demands
// a comment, mirroring the full flow's motivo rule.
func (s *SolicitudService) Resolver(ctx context.Context, actor *authz.ActorContext, id uuid.UUID, payload dto.ResolverDTO) (*entities.Solicitud, error) {
	sol, err := s.solicitudRepo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsDirectorOf(sol.CenterID) {
		return nil, apperrors.ErrForbidden
	}

	mut := repositories.TransitionMutation{
		Comentario: optionalComment(payload.Comentario),
	}
	if payload.Aprobar {
		mut.NuevoEstado = constants.EstadoAprobada
		mut.MarkAprobado = true
	} else {
		if payload.Comentario == "" {
			return nil, fmt.Errorf("%w: el rechazo requiere un motivo", apperrors.ErrPreconditionFailed)
		}
		mut.NuevoEstado = constants.EstadoRechazada
		mut.SetMotivoRechazo = null.StringFrom(payload.Comentario)
		mut.MarkRechazado = true
	}

	return s.commit(ctx, actor, sol, mut)
}

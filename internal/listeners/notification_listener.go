package listeners

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"solicitud-system/internal/entities"
	"solicitud-system/internal/events"
	"solicitud-system/internal/repositories"
	"solicitud-system/pkg/constants"
	apperrors "solicitud-system/pkg/errors"
	"solicitud-system/pkg/eventbus"
)

// NotificationListener turns committed transitions into notification intent
// rows and, where the edge calls for it, modificaciones audit rows. It runs
// after commit on the event bus: the transition already happened, so every
// failure here is logged and swallowed. A lost notification is recoverable;
// a rolled-back transition because of one is not.
type NotificationListener struct {
	notificacionRepo repositories.NotificacionRepositoryInterface
	modificacionRepo repositories.ModificacionRepositoryInterface
	grupoRepo        repositories.GrupoRepositoryInterface
	logger           *zap.Logger
}

func NewNotificationListener(
	notificacionRepo repositories.NotificacionRepositoryInterface,
	modificacionRepo repositories.ModificacionRepositoryInterface,
	grupoRepo repositories.GrupoRepositoryInterface,
	logger *zap.Logger,
) *NotificationListener {
	return &NotificationListener{
		notificacionRepo: notificacionRepo,
		modificacionRepo: modificacionRepo,
		grupoRepo:        grupoRepo,
		logger:           logger,
	}
}

func (l *NotificationListener) Handle(ctx context.Context, event eventbus.Event) error {
	transition, ok := event.(events.SolicitudTransitionedEvent)
	if !ok {
		return fmt.Errorf("evento inesperado: %s", event.Name())
	}

	sol := transition.Solicitud
	intents := l.deriveIntents(ctx, transition)

	if err := l.notificacionRepo.CreateBatch(ctx, intents); err != nil {
		l.logger.Error("no se pudieron registrar las notificaciones",
			zap.String("solicitudID", sol.ID.String()),
			zap.String("estado", string(sol.Estado)),
			zap.Error(err),
		)
	}

	if sol.Estado == constants.EstadoCancelado {
		audit := &entities.Modificacion{
			CentroID:    sol.CenterID,
			Tipo:        "solicitud",
			Accion:      "cancelacion",
			Descripcion: fmt.Sprintf("solicitud %q cancelada: %s", sol.Titulo, transition.Entry.Comentario.String),
			UsuarioID:   transition.Actor.ActorID,
		}
		if err := l.modificacionRepo.Create(ctx, audit); err != nil {
			l.logger.Error("no se pudo registrar la cancelación",
				zap.String("solicitudID", sol.ID.String()),
				zap.Error(err),
			)
		}
	}

	return nil
}

// HandleModificacionSolicitada lets the creator know a change was requested
// against their solicitud.
func (l *NotificationListener) HandleModificacionSolicitada(ctx context.Context, event eventbus.Event) error {
	req, ok := event.(events.SolicitudModificacionSolicitadaEvent)
	if !ok {
		return fmt.Errorf("evento inesperado: %s", event.Name())
	}

	sol := req.Solicitud
	intent := entities.Notificacion{
		UserID:      sol.CreatedBy,
		Kind:        entities.NotificacionInfo,
		Title:       "Modificación solicitada",
		Message:     fmt.Sprintf("Se solicitó una modificación de %q: %s", sol.Titulo, req.Motivo),
		SolicitudID: sol.ID,
	}
	if err := l.notificacionRepo.CreateBatch(ctx, []entities.Notificacion{intent}); err != nil {
		l.logger.Error("no se pudo registrar la notificación de modificación",
			zap.String("solicitudID", sol.ID.String()),
			zap.Error(err),
		)
	}
	return nil
}

// deriveIntents maps the landed estado to its recipients. Recipient lookups
// that fail shrink the intent set instead of aborting the rest.
func (l *NotificationListener) deriveIntents(ctx context.Context, transition events.SolicitudTransitionedEvent) []entities.Notificacion {
	sol := transition.Solicitud
	var intents []entities.Notificacion

	add := func(userID uuid.UUID, kind, title, message string) {
		intents = append(intents, entities.Notificacion{
			UserID:      userID,
			Kind:        kind,
			Title:       title,
			Message:     message,
			SolicitudID: sol.ID,
		})
	}

	switch sol.Estado {
	case constants.EstadoRecibido:
		add(sol.CreatedBy, entities.NotificacionInfo,
			"Solicitud recibida",
			fmt.Sprintf("Tu solicitud %q fue recibida y asignada al centro de servicios.", sol.Titulo))
		if sol.AssignedCenterID != nil {
			l.addGroupIntents(ctx, &intents, *sol.AssignedCenterID, sol,
				"Solicitud asignada",
				fmt.Sprintf("La solicitud %q fue asignada a tu centro.", sol.Titulo))
		}

	case constants.EstadoEnComite:
		add(sol.CreatedBy, entities.NotificacionInfo,
			"Solicitud en comité",
			fmt.Sprintf("Tu solicitud %q fue enviada al comité.", sol.Titulo))
		if sol.GrupoID != nil {
			miembros, err := l.grupoRepo.FindMiembros(ctx, *sol.GrupoID)
			if err != nil {
				l.logger.Warn("no se pudieron resolver los miembros del comité",
					zap.String("grupoID", sol.GrupoID.String()), zap.Error(err))
			}
			for _, miembro := range miembros {
				add(miembro, entities.NotificacionInfo,
					"Solicitud en comité",
					fmt.Sprintf("La solicitud %q espera la evaluación del comité.", sol.Titulo))
			}
		}
		if sol.AssignedCenterID != nil {
			l.addGroupIntents(ctx, &intents, *sol.AssignedCenterID, sol,
				"Solicitud en comité",
				fmt.Sprintf("La solicitud %q de tu centro fue enviada al comité.", sol.Titulo))
		}

	case constants.EstadoObservado:
		add(sol.CreatedBy, entities.NotificacionWarning,
			"Solicitud observada",
			fmt.Sprintf("El comité dejó observaciones sobre %q.", sol.Titulo))

	case constants.EstadoNuevo:
		// Only reachable via devolver; let the director know the corrected
		// version is back.
		if sol.DirectorID != nil {
			add(*sol.DirectorID, entities.NotificacionInfo,
				"Solicitud devuelta",
				fmt.Sprintf("La solicitud %q fue corregida y reenviada.", sol.Titulo))
		}

	case constants.EstadoAprobado, constants.EstadoAprobada:
		add(sol.CreatedBy, entities.NotificacionInfo,
			"Solicitud aprobada",
			fmt.Sprintf("Tu solicitud %q fue aprobada.", sol.Titulo))
		if sol.CoordinadorID != nil {
			add(*sol.CoordinadorID, entities.NotificacionInfo,
				"Solicitud aprobada",
				fmt.Sprintf("La solicitud %q fue aprobada y quedó a tu cargo.", sol.Titulo))
		}
		if sol.DirectorID != nil && transition.Actor.ActorID != *sol.DirectorID {
			add(*sol.DirectorID, entities.NotificacionInfo,
				"Solicitud aprobada",
				fmt.Sprintf("La solicitud %q fue aprobada.", sol.Titulo))
		}

	case constants.EstadoRechazado, constants.EstadoRechazada:
		add(sol.CreatedBy, entities.NotificacionWarning,
			"Solicitud rechazada",
			fmt.Sprintf("Tu solicitud %q fue rechazada.", sol.Titulo))

	case constants.EstadoCancelado:
		if sol.DirectorID != nil {
			add(*sol.DirectorID, entities.NotificacionWarning,
				"Solicitud cancelada",
				fmt.Sprintf("La solicitud %q fue cancelada por el solicitante.", sol.Titulo))
		}
		l.addGroupIntents(ctx, &intents, sol.CenterID, sol,
			"Solicitud cancelada",
			fmt.Sprintf("La solicitud %q fue cancelada.", sol.Titulo))

	case constants.EstadoEnRevision:
		add(sol.CreatedBy, entities.NotificacionInfo,
			"Solicitud en revisión",
			fmt.Sprintf("Tu solicitud %q entró en revisión.", sol.Titulo))
	}

	return intents
}

// addGroupIntents fans an intent out to the center's notification group.
// Centers without a configured group simply get nothing.
func (l *NotificationListener) addGroupIntents(ctx context.Context, intents *[]entities.Notificacion, centroID uuid.UUID, sol *entities.Solicitud, title, message string) {
	grupo, err := l.grupoRepo.FindGrupoNotificacion(ctx, centroID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			l.logger.Warn("no se pudo resolver el grupo de notificación",
				zap.String("centroID", centroID.String()), zap.Error(err))
		}
		return
	}
	miembros, err := l.grupoRepo.FindMiembros(ctx, grupo.ID)
	if err != nil {
		l.logger.Warn("no se pudieron resolver los miembros del grupo",
			zap.String("grupoID", grupo.ID.String()), zap.Error(err))
		return
	}
	for _, miembro := range miembros {
		*intents = append(*intents, entities.Notificacion{
			UserID:      miembro,
			Kind:        entities.NotificacionInfo,
			Title:       title,
			Message:     message,
			SolicitudID: sol.ID,
		})
	}
}

package events

import (
	"solicitud-system/internal/authz"
	"solicitud-system/internal/entities"
)

const SolicitudTransitionedEventName = "solicitud.transitioned"

// SolicitudTransitionedEvent is published after a transition commits. The
// solicitud carries post-commit values; the entry is the history row written
// in the same transaction.
type SolicitudTransitionedEvent struct {
	Solicitud *entities.Solicitud
	Entry     *entities.HistorialEntry
	Actor     *authz.ActorContext
}

func (e SolicitudTransitionedEvent) Name() string {
	return SolicitudTransitionedEventName
}

const SolicitudModificacionSolicitadaEventName = "solicitud.modificacion_solicitada"

// SolicitudModificacionSolicitadaEvent is published when a change request is
// recorded against a solicitud. The estado does not move.
type SolicitudModificacionSolicitadaEvent struct {
	Solicitud *entities.Solicitud
	Motivo    string
	Actor     *authz.ActorContext
}

func (e SolicitudModificacionSolicitadaEvent) Name() string {
	return SolicitudModificacionSolicitadaEventName
}

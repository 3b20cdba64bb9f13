package entities

import (
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"

	"solicitud-system/pkg/constants"
)

// HistorialEntry is one committed transition. Entries are append-only; the
// single allowed mutation after creation is amending Comentario on the most
// recent entry of a solicitud.
type HistorialEntry struct {
	ID             uint64           `db:"id"`
	SolicitudID    uuid.UUID        `db:"solicitud_id"`
	EstadoAnterior constants.Estado `db:"estado_anterior"`
	EstadoNuevo    constants.Estado `db:"estado_nuevo"`
	ActorID        uuid.UUID        `db:"actor_id"`
	ActorRol       string           `db:"actor_rol"`
	Comentario     null.String      `db:"comentario"`
	CreatedAt      time.Time        `db:"created_at"`
}

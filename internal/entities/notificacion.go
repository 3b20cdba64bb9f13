package entities

import (
	"time"

	"github.com/google/uuid"
)

// Notificacion is a delivery intent. Writing the row is the whole contract;
// actual delivery belongs to an external layer and is never awaited.
type Notificacion struct {
	ID          uint64    `db:"id"`
	UserID      uuid.UUID `db:"user_id"`
	Kind        string    `db:"kind"`
	Title       string    `db:"title"`
	Message     string    `db:"message"`
	SolicitudID uuid.UUID `db:"solicitud_id"`
	Read        bool      `db:"read"`
	CreatedAt   time.Time `db:"created_at"`
}

const (
	NotificacionInfo    = "info"
	NotificacionWarning = "warning"
)

package entities

import (
	"time"

	"github.com/google/uuid"
)

// Modificacion is an audit record for actions outside the state machine
// proper: cancellations, modification requests and hard deletions.
type Modificacion struct {
	ID          uint64    `db:"id"`
	CentroID    uuid.UUID `db:"centro_id"`
	Tipo        string    `db:"tipo"`
	Accion      string    `db:"accion"`
	Descripcion string    `db:"descripcion"`
	UsuarioID   uuid.UUID `db:"usuario_id"`
	CreatedAt   time.Time `db:"created_at"`
}

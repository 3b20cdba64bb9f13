package entities

import "github.com/google/uuid"

// Grupo is a user group. Committees (tipo "comite") back the en_comite review;
// notification groups (tipo "notificacion") receive center-wide intents.
type Grupo struct {
	ID       uuid.UUID `db:"id"`
	Nombre   string    `db:"nombre"`
	Tipo     string    `db:"tipo"`
	CentroID uuid.UUID `db:"centro_id"`
	Activo   bool      `db:"activo"`
}

const (
	GrupoTipoComite       = "comite"
	GrupoTipoNotificacion = "notificacion"
)

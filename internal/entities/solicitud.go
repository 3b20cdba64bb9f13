package entities

import (
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"

	"solicitud-system/pkg/constants"
)

// Solicitud is the request record under workflow control. The estado column is
// the single source of truth for workflow position and is only ever written
// through the entity store's compare-and-update commit.
type Solicitud struct {
	ID               uuid.UUID               `db:"id"`
	Titulo           string                  `db:"titulo"`
	Tipo             constants.TipoSolicitud `db:"tipo"`
	Estado           constants.Estado        `db:"estado"`
	CenterID         uuid.UUID               `db:"center_id"`
	AssignedCenterID *uuid.UUID              `db:"assigned_center_id"`
	CreatedBy        uuid.UUID               `db:"created_by"`
	DirectorID       *uuid.UUID              `db:"director_id"`
	CoordinadorID    *uuid.UUID              `db:"coordinador_id"`

	// GrupoID references the assigned committee. Set if and only if the
	// solicitud is in en_comite or a state reached through it.
	GrupoID *uuid.UUID `db:"grupo_id"`

	Observaciones     null.String `db:"observaciones"`
	MotivoRechazo     null.String `db:"motivo_rechazo"`
	MotivoCancelacion null.String `db:"motivo_cancelacion"`

	// Document slots: storage path references only, never file contents.
	FichaTecnicaPath null.String `db:"ficha_tecnica_path"`
	ActaComitePath   null.String `db:"acta_comite_path"`
	ResolucionPath   null.String `db:"resolucion_path"`

	// Milestone timestamps, each set exactly once by its transition.
	FechaRecibido  *time.Time `db:"fecha_recibido"`
	FechaAprobado  *time.Time `db:"fecha_aprobado"`
	FechaRechazado *time.Time `db:"fecha_rechazado"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

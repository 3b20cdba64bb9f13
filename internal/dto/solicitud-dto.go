package dto

import (
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"

	"solicitud-system/internal/entities"
	"solicitud-system/pkg/constants"
)

type CreateSolicitudDTO struct {
	Titulo           string    `json:"titulo" validate:"required,notblank,max=255"`
	Tipo             string    `json:"tipo" validate:"required,oneof=proyecto convocatoria"`
	CenterID         uuid.UUID `json:"center_id" validate:"required"`
	FichaTecnicaPath string    `json:"ficha_tecnica_path" validate:"omitempty,max=512"`
}

type ListSolicitudesDTO struct {
	Estado   string `query:"estado" validate:"omitempty,estado"`
	CenterID string `query:"center_id" validate:"omitempty,uuid"`
	Search   string `query:"search" validate:"omitempty,max=255"`
	Page     int    `query:"page" validate:"omitempty,min=1"`
	Limit    int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

// Per-edge payloads. Optional comments travel as plain strings and are
// converted to null.String at the service boundary.

type RecibirDTO struct {
	Comentario string `json:"comentario" validate:"omitempty,max=1000"`
}

type EnviarComiteDTO struct {
	GrupoID    uuid.UUID `json:"grupo_id" validate:"required"`
	Comentario string    `json:"comentario" validate:"omitempty,max=1000"`
}

type ObservarDTO struct {
	Observaciones string `json:"observaciones" validate:"required,notblank,max=2000"`
}

type DevolverDTO struct {
	Comentario string `json:"comentario" validate:"omitempty,max=1000"`
}

type AprobarDTO struct {
	ActaComitePath string `json:"acta_comite_path" validate:"omitempty,max=512"`
	Comentario     string `json:"comentario" validate:"omitempty,max=1000"`
}

type RechazarDTO struct {
	Motivo string `json:"motivo" validate:"required,notblank,max=2000"`
}

type CancelarDTO struct {
	Motivo string `json:"motivo" validate:"required,notblank,max=2000"`
}

type SolicitarModificacionDTO struct {
	Motivo      string `json:"motivo" validate:"required,notblank,max=255"`
	Descripcion string `json:"descripcion" validate:"required,notblank,max=2000"`
}

type RevisarDTO struct {
	Comentario string `json:"comentario" validate:"omitempty,max=1000"`
}

type ResolverDTO struct {
	Aprobar    bool   `json:"aprobar"`
	Comentario string `json:"comentario" validate:"omitempty,max=2000"`
}

type RegistrarDocumentoDTO struct {
	Slot string `json:"slot" validate:"required,oneof=ficha_tecnica acta_comite resolucion"`
	Path string `json:"path" validate:"required,notblank,max=512"`
}

type AmendComentarioDTO struct {
	Comentario string `json:"comentario" validate:"required,notblank,max=1000"`
}

type SolicitudResponse struct {
	ID                uuid.UUID               `json:"id"`
	Titulo            string                  `json:"titulo"`
	Tipo              constants.TipoSolicitud `json:"tipo"`
	Estado            constants.Estado        `json:"estado"`
	CenterID          uuid.UUID               `json:"center_id"`
	AssignedCenterID  *uuid.UUID              `json:"assigned_center_id,omitempty"`
	CreatedBy         uuid.UUID               `json:"created_by"`
	DirectorID        *uuid.UUID              `json:"director_id,omitempty"`
	CoordinadorID     *uuid.UUID              `json:"coordinador_id,omitempty"`
	GrupoID           *uuid.UUID              `json:"grupo_id,omitempty"`
	Observaciones     null.String             `json:"observaciones,omitempty"`
	MotivoRechazo     null.String             `json:"motivo_rechazo,omitempty"`
	MotivoCancelacion null.String             `json:"motivo_cancelacion,omitempty"`
	FichaTecnicaPath  null.String             `json:"ficha_tecnica_path,omitempty"`
	ActaComitePath    null.String             `json:"acta_comite_path,omitempty"`
	ResolucionPath    null.String             `json:"resolucion_path,omitempty"`
	FechaRecibido     *time.Time              `json:"fecha_recibido,omitempty"`
	FechaAprobado     *time.Time              `json:"fecha_aprobado,omitempty"`
	FechaRechazado    *time.Time              `json:"fecha_rechazado,omitempty"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
}

func ToSolicitudResponse(s *entities.Solicitud) SolicitudResponse {
	return SolicitudResponse{
		ID:                s.ID,
		Titulo:            s.Titulo,
		Tipo:              s.Tipo,
		Estado:            s.Estado,
		CenterID:          s.CenterID,
		AssignedCenterID:  s.AssignedCenterID,
		CreatedBy:         s.CreatedBy,
		DirectorID:        s.DirectorID,
		CoordinadorID:     s.CoordinadorID,
		GrupoID:           s.GrupoID,
		Observaciones:     s.Observaciones,
		MotivoRechazo:     s.MotivoRechazo,
		MotivoCancelacion: s.MotivoCancelacion,
		FichaTecnicaPath:  s.FichaTecnicaPath,
		ActaComitePath:    s.ActaComitePath,
		ResolucionPath:    s.ResolucionPath,
		FechaRecibido:     s.FechaRecibido,
		FechaAprobado:     s.FechaAprobado,
		FechaRechazado:    s.FechaRechazado,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

type HistorialEntryResponse struct {
	ID             uint64           `json:"id"`
	EstadoAnterior constants.Estado `json:"estado_anterior"`
	EstadoNuevo    constants.Estado `json:"estado_nuevo"`
	ActorID        uuid.UUID        `json:"actor_id"`
	ActorRol       string           `json:"actor_rol"`
	Comentario     null.String      `json:"comentario,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

func ToHistorialResponse(entries []entities.HistorialEntry) []HistorialEntryResponse {
	out := make([]HistorialEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, HistorialEntryResponse{
			ID:             e.ID,
			EstadoAnterior: e.EstadoAnterior,
			EstadoNuevo:    e.EstadoNuevo,
			ActorID:        e.ActorID,
			ActorRol:       e.ActorRol,
			Comentario:     e.Comentario,
			CreatedAt:      e.CreatedAt,
		})
	}
	return out
}

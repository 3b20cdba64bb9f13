package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"solicitud-system/internal/entities"
	"solicitud-system/pkg/constants"
	apperrors "solicitud-system/pkg/errors"
)

// TransitionMutation describes everything a committed transition writes
// besides the estado itself: derived fields, document slots and the history
// entry data. The entity store applies it atomically against the expected
// current state.
type TransitionMutation struct {
	NuevoEstado constants.Estado

	ActorID    uuid.UUID
	ActorRol   string
	Comentario null.String

	SetDirectorID       *uuid.UUID
	SetAssignedCenterID *uuid.UUID
	SetGrupoID          *uuid.UUID
	SetCoordinadorID    *uuid.UUID

	SetObservaciones     null.String
	SetMotivoRechazo     null.String
	SetMotivoCancelacion null.String
	SetActaComitePath    null.String

	MarkRecibido  bool
	MarkAprobado  bool
	MarkRechazado bool
}

type SolicitudFilter struct {
	Estado    string
	CenterID  *uuid.UUID
	CreatedBy *uuid.UUID
	Search    string
	Page      int
	Limit     int
}

type SolicitudRepositoryInterface interface {
	Create(ctx context.Context, s *entities.Solicitud) (*entities.Solicitud, error)
	Find(ctx context.Context, id uuid.UUID) (*entities.Solicitud, error)
	List(ctx context.Context, filter SolicitudFilter) ([]entities.Solicitud, uint64, error)
	CommitTransition(ctx context.Context, id uuid.UUID, expected constants.Estado, mut TransitionMutation) (*entities.Solicitud, *entities.HistorialEntry, error)
	SetDocumento(ctx context.Context, id uuid.UUID, slot string, path string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type SolicitudRepository struct {
	storage       *pgxpool.Pool
	historialRepo HistorialRepositoryInterface
	logger        *zap.Logger
}

func NewSolicitudRepository(storage *pgxpool.Pool, historialRepo HistorialRepositoryInterface, logger *zap.Logger) SolicitudRepositoryInterface {
	return &SolicitudRepository{
		storage:       storage,
		historialRepo: historialRepo,
		logger:        logger,
	}
}

const solicitudColumns = `
	id, titulo, tipo, estado, center_id, assigned_center_id, created_by,
	director_id, coordinador_id, grupo_id,
	observaciones, motivo_rechazo, motivo_cancelacion,
	ficha_tecnica_path, acta_comite_path, resolucion_path,
	fecha_recibido, fecha_aprobado, fecha_rechazado,
	created_at, updated_at`

func scanSolicitud(row pgx.Row) (*entities.Solicitud, error) {
	var s entities.Solicitud
	err := row.Scan(
		&s.ID, &s.Titulo, &s.Tipo, &s.Estado, &s.CenterID, &s.AssignedCenterID, &s.CreatedBy,
		&s.DirectorID, &s.CoordinadorID, &s.GrupoID,
		&s.Observaciones, &s.MotivoRechazo, &s.MotivoCancelacion,
		&s.FichaTecnicaPath, &s.ActaComitePath, &s.ResolucionPath,
		&s.FechaRecibido, &s.FechaAprobado, &s.FechaRechazado,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SolicitudRepository) Create(ctx context.Context, s *entities.Solicitud) (*entities.Solicitud, error) {
	query := `
		INSERT INTO solicitudes (id, titulo, tipo, estado, center_id, created_by, ficha_tecnica_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING ` + solicitudColumns

	created, err := scanSolicitud(r.storage.QueryRow(ctx, query,
		s.ID, s.Titulo, s.Tipo, s.Estado, s.CenterID, s.CreatedBy, s.FichaTecnicaPath,
	))
	if err != nil {
		return nil, fmt.Errorf("insertando solicitud: %w", err)
	}
	return created, nil
}

func (r *SolicitudRepository) Find(ctx context.Context, id uuid.UUID) (*entities.Solicitud, error) {
	query := `SELECT ` + solicitudColumns + ` FROM solicitudes WHERE id = $1`
	s, err := scanSolicitud(r.storage.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("consultando solicitud: %w", err)
	}
	return s, nil
}

func (r *SolicitudRepository) List(ctx context.Context, filter SolicitudFilter) ([]entities.Solicitud, uint64, error) {
	applyFilters := func(b sq.SelectBuilder) sq.SelectBuilder {
		if filter.Estado != "" {
			b = b.Where(sq.Eq{"estado": filter.Estado})
		}
		if filter.CenterID != nil {
			b = b.Where(sq.Eq{"center_id": *filter.CenterID})
		}
		if filter.CreatedBy != nil {
			b = b.Where(sq.Eq{"created_by": *filter.CreatedBy})
		}
		if filter.Search != "" {
			b = b.Where(sq.Expr("titulo ILIKE ?", "%"+filter.Search+"%"))
		}
		return b
	}

	countSQL, countArgs, err := applyFilters(
		sq.Select("COUNT(*)").From("solicitudes").PlaceholderFormat(sq.Dollar),
	).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("construyendo consulta de conteo: %w", err)
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("contando solicitudes: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	listSQL, listArgs, err := applyFilters(
		sq.Select(solicitudColumns).From("solicitudes").PlaceholderFormat(sq.Dollar),
	).OrderBy("created_at DESC").Limit(uint64(limit)).Offset(uint64(offset)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("construyendo consulta de listado: %w", err)
	}

	rows, err := r.storage.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("listando solicitudes: %w", err)
	}
	defer rows.Close()

	solicitudes := make([]entities.Solicitud, 0)
	for rows.Next() {
		s, err := scanSolicitud(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("leyendo solicitud: %w", err)
		}
		solicitudes = append(solicitudes, *s)
	}
	return solicitudes, total, rows.Err()
}

// CommitTransition is the sole write path for estado. The UPDATE carries the
// expected current state in its WHERE clause, so under concurrent attempts
// exactly one writer succeeds; the history entry is inserted in the same
// transaction, making "state change without history" impossible.
//
// Zero rows updated means either the record is gone (ErrNotFound) or another
// committer won the race (ErrStaleState). Callers must not retry with the new
// state on their own.
func (r *SolicitudRepository) CommitTransition(ctx context.Context, id uuid.UUID, expected constants.Estado, mut TransitionMutation) (*entities.Solicitud, *entities.HistorialEntry, error) {
	builder := sq.Update("solicitudes").
		PlaceholderFormat(sq.Dollar).
		Set("estado", mut.NuevoEstado).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id, "estado": expected}).
		Suffix("RETURNING " + solicitudColumns)

	if mut.SetDirectorID != nil {
		builder = builder.Set("director_id", *mut.SetDirectorID)
	}
	if mut.SetAssignedCenterID != nil {
		builder = builder.Set("assigned_center_id", *mut.SetAssignedCenterID)
	}
	if mut.SetGrupoID != nil {
		builder = builder.Set("grupo_id", *mut.SetGrupoID)
	}
	if mut.SetCoordinadorID != nil {
		builder = builder.Set("coordinador_id", *mut.SetCoordinadorID)
	}
	if mut.SetObservaciones.Valid {
		builder = builder.Set("observaciones", mut.SetObservaciones)
	}
	if mut.SetMotivoRechazo.Valid {
		builder = builder.Set("motivo_rechazo", mut.SetMotivoRechazo)
	}
	if mut.SetMotivoCancelacion.Valid {
		builder = builder.Set("motivo_cancelacion", mut.SetMotivoCancelacion)
	}
	if mut.SetActaComitePath.Valid {
		builder = builder.Set("acta_comite_path", mut.SetActaComitePath)
	}
	if mut.MarkRecibido {
		builder = builder.Set("fecha_recibido", sq.Expr("NOW()"))
	}
	if mut.MarkAprobado {
		builder = builder.Set("fecha_aprobado", sq.Expr("NOW()"))
	}
	if mut.MarkRechazado {
		builder = builder.Set("fecha_rechazado", sq.Expr("NOW()"))
	}

	updateSQL, updateArgs, err := builder.ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("construyendo actualización de transición: %w", err)
	}

	var updated *entities.Solicitud
	entry := &entities.HistorialEntry{
		SolicitudID:    id,
		EstadoAnterior: expected,
		EstadoNuevo:    mut.NuevoEstado,
		ActorID:        mut.ActorID,
		ActorRol:       mut.ActorRol,
		Comentario:     mut.Comentario,
	}

	err = WithTx(ctx, r.storage, func(tx pgx.Tx) error {
		var scanErr error
		updated, scanErr = scanSolicitud(tx.QueryRow(ctx, updateSQL, updateArgs...))
		if scanErr != nil {
			if errors.Is(scanErr, pgx.ErrNoRows) {
				var current constants.Estado
				probeErr := tx.QueryRow(ctx, `SELECT estado FROM solicitudes WHERE id = $1`, id).Scan(&current)
				if errors.Is(probeErr, pgx.ErrNoRows) {
					return apperrors.ErrNotFound
				}
				if probeErr != nil {
					return fmt.Errorf("verificando estado actual: %w", probeErr)
				}
				r.logger.Warn("transición perdida por estado obsoleto",
					zap.String("solicitudID", id.String()),
					zap.String("esperado", string(expected)),
					zap.String("actual", string(current)),
				)
				return fmt.Errorf("%w (estado actual: %s)", apperrors.ErrStaleState, current)
			}
			return fmt.Errorf("aplicando transición: %w", scanErr)
		}

		return r.historialRepo.CreateInTx(ctx, tx, entry)
	})
	if err != nil {
		return nil, nil, err
	}
	return updated, entry, nil
}

var documentoSlots = map[string]string{
	"ficha_tecnica": "ficha_tecnica_path",
	"acta_comite":   "acta_comite_path",
	"resolucion":    "resolucion_path",
}

// SetDocumento records a storage path into one of the fixed document slots.
func (r *SolicitudRepository) SetDocumento(ctx context.Context, id uuid.UUID, slot string, path string) error {
	column, ok := documentoSlots[slot]
	if !ok {
		return fmt.Errorf("%w: slot de documento desconocido %q", apperrors.ErrPreconditionFailed, slot)
	}

	tag, err := r.storage.Exec(ctx,
		fmt.Sprintf(`UPDATE solicitudes SET %s = $2, updated_at = NOW() WHERE id = $1`, column),
		id, path,
	)
	if err != nil {
		return fmt.Errorf("registrando documento: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *SolicitudRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.storage.Exec(ctx, `DELETE FROM solicitudes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("eliminando solicitud: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"solicitud-system/internal/entities"
	"solicitud-system/internal/repositories"
	"solicitud-system/pkg/constants"
	apperrors "solicitud-system/pkg/errors"
)

// In-memory doubles for the repository interfaces. The solicitud fake mirrors
// the production compare-and-update contract: the estado must still match what
// the caller read, and the history entry lands in the same critical section.

type fakeHistorialRepo struct {
	mu      sync.Mutex
	nextID  uint64
	entries []entities.HistorialEntry
}

func newFakeHistorialRepo() *fakeHistorialRepo {
	return &fakeHistorialRepo{}
}

func (f *fakeHistorialRepo) append(entry *entities.HistorialEntry) {
	f.nextID++
	entry.ID = f.nextID
	entry.CreatedAt = time.Now()
	f.entries = append(f.entries, *entry)
}

func (f *fakeHistorialRepo) CreateInTx(ctx context.Context, tx pgx.Tx, entry *entities.HistorialEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.append(entry)
	return nil
}

func (f *fakeHistorialRepo) Append(ctx context.Context, entry *entities.HistorialEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.append(entry)
	return nil
}

func (f *fakeHistorialRepo) FindBySolicitudID(ctx context.Context, solicitudID uuid.UUID) ([]entities.HistorialEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entities.HistorialEntry
	for _, e := range f.entries {
		if e.SolicitudID == solicitudID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeHistorialRepo) AmendLastComment(ctx context.Context, solicitudID uuid.UUID, comentario string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.entries) - 1; i >= 0; i-- {
		if f.entries[i].SolicitudID == solicitudID {
			f.entries[i].Comentario.SetValid(comentario)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

type fakeSolicitudRepo struct {
	mu         sync.Mutex
	data       map[uuid.UUID]*entities.Solicitud
	historial  *fakeHistorialRepo
	lastFilter repositories.SolicitudFilter
}

func newFakeSolicitudRepo(historial *fakeHistorialRepo) *fakeSolicitudRepo {
	return &fakeSolicitudRepo{
		data:      make(map[uuid.UUID]*entities.Solicitud),
		historial: historial,
	}
}

func (f *fakeSolicitudRepo) Create(ctx context.Context, s *entities.Solicitud) (*entities.Solicitud, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	clone := *s
	f.data[s.ID] = &clone
	result := clone
	return &result, nil
}

func (f *fakeSolicitudRepo) Find(ctx context.Context, id uuid.UUID) (*entities.Solicitud, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.data[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	clone := *s
	return &clone, nil
}

func (f *fakeSolicitudRepo) List(ctx context.Context, filter repositories.SolicitudFilter) ([]entities.Solicitud, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter
	var out []entities.Solicitud
	for _, s := range f.data {
		if filter.Estado != "" && string(s.Estado) != filter.Estado {
			continue
		}
		if filter.CreatedBy != nil && s.CreatedBy != *filter.CreatedBy {
			continue
		}
		if filter.CenterID != nil && s.CenterID != *filter.CenterID {
			continue
		}
		out = append(out, *s)
	}
	return out, uint64(len(out)), nil
}

func (f *fakeSolicitudRepo) CommitTransition(ctx context.Context, id uuid.UUID, expected constants.Estado, mut repositories.TransitionMutation) (*entities.Solicitud, *entities.HistorialEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.data[id]
	if !ok {
		return nil, nil, apperrors.ErrNotFound
	}
	if s.Estado != expected {
		return nil, nil, fmt.Errorf("%w (estado actual: %s)", apperrors.ErrStaleState, s.Estado)
	}

	s.Estado = mut.NuevoEstado
	s.UpdatedAt = time.Now()
	if mut.SetDirectorID != nil {
		v := *mut.SetDirectorID
		s.DirectorID = &v
	}
	if mut.SetAssignedCenterID != nil {
		v := *mut.SetAssignedCenterID
		s.AssignedCenterID = &v
	}
	if mut.SetGrupoID != nil {
		v := *mut.SetGrupoID
		s.GrupoID = &v
	}
	if mut.SetCoordinadorID != nil {
		v := *mut.SetCoordinadorID
		s.CoordinadorID = &v
	}
	if mut.SetObservaciones.Valid {
		s.Observaciones = mut.SetObservaciones
	}
	if mut.SetMotivoRechazo.Valid {
		s.MotivoRechazo = mut.SetMotivoRechazo
	}
	if mut.SetMotivoCancelacion.Valid {
		s.MotivoCancelacion = mut.SetMotivoCancelacion
	}
	if mut.SetActaComitePath.Valid {
		s.ActaComitePath = mut.SetActaComitePath
	}
	now := time.Now()
	if mut.MarkRecibido {
		s.FechaRecibido = &now
	}
	if mut.MarkAprobado {
		s.FechaAprobado = &now
	}
	if mut.MarkRechazado {
		s.FechaRechazado = &now
	}

	entry := &entities.HistorialEntry{
		SolicitudID:    id,
		EstadoAnterior: expected,
		EstadoNuevo:    mut.NuevoEstado,
		ActorID:        mut.ActorID,
		ActorRol:       mut.ActorRol,
		Comentario:     mut.Comentario,
	}
	f.historial.mu.Lock()
	f.historial.append(entry)
	f.historial.mu.Unlock()

	clone := *s
	return &clone, entry, nil
}

func (f *fakeSolicitudRepo) SetDocumento(ctx context.Context, id uuid.UUID, slot string, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.data[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	switch slot {
	case "ficha_tecnica":
		s.FichaTecnicaPath.SetValid(path)
	case "acta_comite":
		s.ActaComitePath.SetValid(path)
	case "resolucion":
		s.ResolucionPath.SetValid(path)
	default:
		return apperrors.ErrPreconditionFailed
	}
	return nil
}

func (f *fakeSolicitudRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(f.data, id)
	return nil
}

type fakeGrupoRepo struct {
	grupos   map[uuid.UUID]*entities.Grupo
	miembros map[uuid.UUID][]uuid.UUID
}

func newFakeGrupoRepo() *fakeGrupoRepo {
	return &fakeGrupoRepo{
		grupos:   make(map[uuid.UUID]*entities.Grupo),
		miembros: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (f *fakeGrupoRepo) Find(ctx context.Context, id uuid.UUID) (*entities.Grupo, error) {
	g, ok := f.grupos[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return g, nil
}

func (f *fakeGrupoRepo) CountMiembros(ctx context.Context, grupoID uuid.UUID) (int, error) {
	if _, ok := f.grupos[grupoID]; !ok {
		return 0, apperrors.ErrNotFound
	}
	return len(f.miembros[grupoID]), nil
}

func (f *fakeGrupoRepo) FindMiembros(ctx context.Context, grupoID uuid.UUID) ([]uuid.UUID, error) {
	return f.miembros[grupoID], nil
}

func (f *fakeGrupoRepo) FindGrupoNotificacion(ctx context.Context, centroID uuid.UUID) (*entities.Grupo, error) {
	for _, g := range f.grupos {
		if g.CentroID == centroID && g.Tipo == entities.GrupoTipoNotificacion && g.Activo {
			return g, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

type fakeCenterRepo struct {
	centers map[string]*entities.Center
}

func newFakeCenterRepo() *fakeCenterRepo {
	return &fakeCenterRepo{centers: make(map[string]*entities.Center)}
}

func (f *fakeCenterRepo) Find(ctx context.Context, id uuid.UUID) (*entities.Center, error) {
	for _, c := range f.centers {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeCenterRepo) FindBySlug(ctx context.Context, slug string) (*entities.Center, error) {
	c, ok := f.centers[slug]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return c, nil
}

type fakeUserRepo struct {
	roleHolders map[uuid.UUID]map[string][]uuid.UUID
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{roleHolders: make(map[uuid.UUID]map[string][]uuid.UUID)}
}

func (f *fakeUserRepo) FindActorProfile(ctx context.Context, actorID uuid.UUID) (*entities.User, error) {
	return &entities.User{ID: actorID}, nil
}

func (f *fakeUserRepo) FindActorGrants(ctx context.Context, actorID uuid.UUID) ([]string, []uuid.UUID, []uuid.UUID, error) {
	return nil, nil, nil, nil
}

func (f *fakeUserRepo) FindRoleHoldersByCenter(ctx context.Context, centerID uuid.UUID, role string) ([]uuid.UUID, error) {
	return f.roleHolders[centerID][role], nil
}

type fakeModificacionRepo struct {
	mu      sync.Mutex
	created []entities.Modificacion
}

func newFakeModificacionRepo() *fakeModificacionRepo {
	return &fakeModificacionRepo{}
}

func (f *fakeModificacionRepo) Create(ctx context.Context, m *entities.Modificacion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = uint64(len(f.created) + 1)
	m.CreatedAt = time.Now()
	f.created = append(f.created, *m)
	return nil
}

package constants

// Estado is the closed set of workflow states a solicitud can be in.
// The column in the database stores the string value; nothing outside
// this file may invent a new one.
type Estado string

const (
	// Full flow (solicitudes de proyecto).
	EstadoNuevo     Estado = "nuevo"
	EstadoRecibido  Estado = "recibido"
	EstadoEnComite  Estado = "en_comite"
	EstadoObservado Estado = "observado"
	EstadoAprobado  Estado = "aprobado"
	EstadoRechazado Estado = "rechazado"
	EstadoCancelado Estado = "cancelado"

	// Short flow (solicitudes de convocatoria).
	EstadoPendiente  Estado = "pendiente"
	EstadoEnRevision Estado = "en_revision"
	EstadoAprobada   Estado = "aprobada"
	EstadoRechazada  Estado = "rechazada"
)

// TipoSolicitud selects which flow a solicitud runs through.
type TipoSolicitud string

const (
	TipoProyecto     TipoSolicitud = "proyecto"
	TipoConvocatoria TipoSolicitud = "convocatoria"
)

var allEstados = map[Estado]struct{}{
	EstadoNuevo:      {},
	EstadoRecibido:   {},
	EstadoEnComite:   {},
	EstadoObservado:  {},
	EstadoAprobado:   {},
	EstadoRechazado:  {},
	EstadoCancelado:  {},
	EstadoPendiente:  {},
	EstadoEnRevision: {},
	EstadoAprobada:   {},
	EstadoRechazada:  {},
}

// Estados terminales: una vez alcanzados no se permite ninguna transición.
var finalEstados = map[Estado]struct{}{
	EstadoAprobado:  {},
	EstadoRechazado: {},
	EstadoCancelado: {},
	EstadoAprobada:  {},
	EstadoRechazada: {},
}

func IsValidEstado(s string) bool {
	_, ok := allEstados[Estado(s)]
	return ok
}

func (e Estado) IsFinal() bool {
	_, ok := finalEstados[e]
	return ok
}

// IsInitial reports whether a solicitud in this state has not advanced yet.
// Hard deletion is only allowed here.
func (e Estado) IsInitial() bool {
	return e == EstadoNuevo || e == EstadoPendiente
}

type edge struct {
	from Estado
	to   Estado
}

// Edges of the state machine. The engine checks role and payload guards
// separately; this table only answers "does this arrow exist".
var transiciones = map[edge]struct{}{
	{EstadoNuevo, EstadoRecibido}:     {},
	{EstadoRecibido, EstadoEnComite}:  {},
	{EstadoEnComite, EstadoObservado}: {},
	{EstadoEnComite, EstadoAprobado}:  {},
	{EstadoObservado, EstadoNuevo}:    {},
	{EstadoNuevo, EstadoRechazado}:    {},
	{EstadoRecibido, EstadoRechazado}: {},
	{EstadoEnComite, EstadoRechazado}: {},

	{EstadoPendiente, EstadoEnRevision}: {},
	{EstadoPendiente, EstadoAprobada}:   {},
	{EstadoEnRevision, EstadoAprobada}:  {},
	{EstadoPendiente, EstadoRechazada}:  {},
	{EstadoEnRevision, EstadoRechazada}: {},
}

// CanTransition reports whether the edge from→to exists in the state machine.
// Cancellation is allowed from every non-terminal state and is handled here so
// that callers have a single source of truth.
func CanTransition(from, to Estado) bool {
	if from.IsFinal() {
		return false
	}
	if to == EstadoCancelado {
		return true
	}
	_, ok := transiciones[edge{from, to}]
	return ok
}

// InitialEstado returns the state a freshly created solicitud starts in.
func InitialEstado(tipo TipoSolicitud) Estado {
	if tipo == TipoConvocatoria {
		return EstadoPendiente
	}
	return EstadoNuevo
}

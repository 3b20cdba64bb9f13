package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	testCases := []struct {
		name string
		from Estado
		to   Estado
		want bool
	}{
		{"nuevo a recibido", EstadoNuevo, EstadoRecibido, true},
		{"recibido a en_comite", EstadoRecibido, EstadoEnComite, true},
		{"en_comite a observado", EstadoEnComite, EstadoObservado, true},
		{"en_comite a aprobado", EstadoEnComite, EstadoAprobado, true},
		{"observado de vuelta a nuevo", EstadoObservado, EstadoNuevo, true},
		{"rechazo desde nuevo", EstadoNuevo, EstadoRechazado, true},
		{"rechazo desde recibido", EstadoRecibido, EstadoRechazado, true},
		{"rechazo desde en_comite", EstadoEnComite, EstadoRechazado, true},

		{"no se salta el comité", EstadoRecibido, EstadoAprobado, false},
		{"no se aprueba desde nuevo", EstadoNuevo, EstadoAprobado, false},
		{"no se retrocede", EstadoRecibido, EstadoNuevo, false},
		{"no se rechaza lo observado", EstadoObservado, EstadoRechazado, false},

		{"cancelación desde nuevo", EstadoNuevo, EstadoCancelado, true},
		{"cancelación desde recibido", EstadoRecibido, EstadoCancelado, true},
		{"cancelación desde en_comite", EstadoEnComite, EstadoCancelado, true},
		{"cancelación desde observado", EstadoObservado, EstadoCancelado, true},

		{"aprobado es final", EstadoAprobado, EstadoCancelado, false},
		{"rechazado es final", EstadoRechazado, EstadoNuevo, false},
		{"cancelado es final", EstadoCancelado, EstadoNuevo, false},

		{"flujo corto: pendiente a en_revision", EstadoPendiente, EstadoEnRevision, true},
		{"flujo corto: pendiente directo a aprobada", EstadoPendiente, EstadoAprobada, true},
		{"flujo corto: en_revision a aprobada", EstadoEnRevision, EstadoAprobada, true},
		{"flujo corto: en_revision a rechazada", EstadoEnRevision, EstadoRechazada, true},
		{"flujo corto: aprobada es final", EstadoAprobada, EstadoEnRevision, false},
		{"los flujos no se cruzan", EstadoPendiente, EstadoRecibido, false},
		{"los flujos no se cruzan al revés", EstadoNuevo, EstadoEnRevision, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanTransition(tc.from, tc.to))
		})
	}
}

func TestIsFinal(t *testing.T) {
	finales := []Estado{EstadoAprobado, EstadoRechazado, EstadoCancelado, EstadoAprobada, EstadoRechazada}
	for _, e := range finales {
		assert.True(t, e.IsFinal(), "esperaba que %s fuera final", e)
	}

	activos := []Estado{EstadoNuevo, EstadoRecibido, EstadoEnComite, EstadoObservado, EstadoPendiente, EstadoEnRevision}
	for _, e := range activos {
		assert.False(t, e.IsFinal(), "esperaba que %s no fuera final", e)
	}
}

func TestIsValidEstado(t *testing.T) {
	assert.True(t, IsValidEstado("nuevo"))
	assert.True(t, IsValidEstado("en_revision"))
	assert.False(t, IsValidEstado("archivado"))
	assert.False(t, IsValidEstado(""))
	assert.False(t, IsValidEstado("Nuevo"))
}

func TestInitialEstado(t *testing.T) {
	assert.Equal(t, EstadoNuevo, InitialEstado(TipoProyecto))
	assert.Equal(t, EstadoPendiente, InitialEstado(TipoConvocatoria))
}

func TestIsInitial(t *testing.T) {
	assert.True(t, EstadoNuevo.IsInitial())
	assert.True(t, EstadoPendiente.IsInitial())
	assert.False(t, EstadoRecibido.IsInitial())
	assert.False(t, EstadoEnRevision.IsInitial())
}

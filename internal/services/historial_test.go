package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solicitud-system/internal/authz"
	"solicitud-system/internal/dto"
	apperrors "solicitud-system/pkg/errors"
)

func TestTimelineOrderAndAccess(t *testing.T) {
	fx := newEngineFixture(t)
	historialService := NewHistorialService(fx.historialRepo, fx.solicitudRepo)

	sol := fx.crear(t, "proyecto")
	ctx := context.Background()
	_, err := fx.service.Recibir(ctx, fx.director, sol.ID, dto.RecibirDTO{})
	require.NoError(t, err)
	_, err = fx.service.Rechazar(ctx, fx.director, sol.ID, dto.RechazarDTO{Motivo: "sin fondos"})
	require.NoError(t, err)

	entries, err := historialService.Timeline(ctx, fx.funcionario, sol.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].CreatedAt.Before(entries[1].CreatedAt) || entries[0].CreatedAt.Equal(entries[1].CreatedAt))
	assert.Equal(t, entries[0].EstadoNuevo, entries[1].EstadoAnterior, "la cadena de estados es contigua")

	extrano := &authz.ActorContext{ActorID: uuid.New(), Roles: []authz.Role{authz.RoleFuncionario}}
	_, err = historialService.Timeline(ctx, extrano, sol.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestAmendLastComment(t *testing.T) {
	fx := newEngineFixture(t)
	historialService := NewHistorialService(fx.historialRepo, fx.solicitudRepo)

	sol := fx.crear(t, "proyecto")
	ctx := context.Background()
	_, err := fx.service.Recibir(ctx, fx.director, sol.ID, dto.RecibirDTO{})
	require.NoError(t, err)

	// Only a director of the center may amend.
	err = historialService.AmendLastComment(ctx, fx.funcionario, sol.ID, "nota tardía")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	err = historialService.AmendLastComment(ctx, fx.director, sol.ID, "nota tardía")
	require.NoError(t, err)

	entries, err := historialService.Timeline(ctx, fx.director, sol.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "nota tardía", entries[0].Comentario.String)

	// Amending the trail of a nonexistent solicitud is a lookup failure.
	err = historialService.AmendLastComment(ctx, fx.director, uuid.New(), "x")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

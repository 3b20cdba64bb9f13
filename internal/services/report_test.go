package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"solicitud-system/internal/dto"
	"solicitud-system/internal/repositories"
	apperrors "solicitud-system/pkg/errors"
)

func TestExportSolicitudesAuthorization(t *testing.T) {
	fx := newEngineFixture(t)
	reportService := NewReportService(fx.solicitudRepo)

	_, err := reportService.ExportSolicitudes(context.Background(), fx.funcionario, repositories.SolicitudFilter{})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestExportSolicitudesProducesWorkbook(t *testing.T) {
	fx := newEngineFixture(t)
	reportService := NewReportService(fx.solicitudRepo)

	sol := fx.crear(t, "proyecto")
	_, err := fx.service.Recibir(context.Background(), fx.director, sol.ID, dto.RecibirDTO{})
	require.NoError(t, err)

	buf, err := reportService.ExportSolicitudes(context.Background(), fx.director, repositories.SolicitudFilter{})
	require.NoError(t, err)

	wb, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("Solicitudes")
	require.NoError(t, err)
	require.Len(t, rows, 2, "cabecera más una fila de datos")
	assert.Equal(t, "Título", rows[0][1])
	assert.Equal(t, "Mejoras de riego", rows[1][1])
	assert.Equal(t, "recibido", rows[1][3])
}

package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"solicitud-system/internal/authz"
	"solicitud-system/internal/entities"
	"solicitud-system/internal/repositories"
	apperrors "solicitud-system/pkg/errors"
)

type ReportServiceInterface interface {
	ListSolicitudes(ctx context.Context, actor *authz.ActorContext, filter repositories.SolicitudFilter) ([]entities.Solicitud, uint64, error)
	ExportSolicitudes(ctx context.Context, actor *authz.ActorContext, filter repositories.SolicitudFilter) (*bytes.Buffer, error)
}

type ReportService struct {
	solicitudRepo repositories.SolicitudRepositoryInterface
}

func NewReportService(solicitudRepo repositories.SolicitudRepositoryInterface) ReportServiceInterface {
	return &ReportService{solicitudRepo: solicitudRepo}
}

// ListSolicitudes is the JSON face of the report: the same filtered listing
// the export renders, without the per-actor scoping of the regular list.
func (s *ReportService) ListSolicitudes(ctx context.Context, actor *authz.ActorContext, filter repositories.SolicitudFilter) ([]entities.Solicitud, uint64, error) {
	if !actor.IsAdministrador() && !actor.HasRole(authz.RoleDirector) {
		return nil, 0, apperrors.ErrForbidden
	}
	return s.solicitudRepo.List(ctx, filter)
}

var reportHeaders = []string{
	"ID", "Título", "Tipo", "Estado", "Creado por", "Fecha recibido", "Fecha aprobado", "Fecha rechazado", "Creado",
}

// ExportSolicitudes renders the filtered listing as an xlsx workbook.
// Restricted to directors and administrators.
func (s *ReportService) ExportSolicitudes(ctx context.Context, actor *authz.ActorContext, filter repositories.SolicitudFilter) (*bytes.Buffer, error) {
	if !actor.IsAdministrador() && !actor.HasRole(authz.RoleDirector) {
		return nil, apperrors.ErrForbidden
	}

	filter.Limit = 100
	if filter.Page <= 0 {
		filter.Page = 1
	}
	solicitudes, _, err := s.solicitudRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Solicitudes"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("creando hoja de reporte: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for col, header := range reportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	const timeLayout = "2006-01-02 15:04"
	for i, sol := range solicitudes {
		row := i + 2
		values := []interface{}{
			sol.ID.String(),
			sol.Titulo,
			string(sol.Tipo),
			string(sol.Estado),
			sol.CreatedBy.String(),
			"", "", "",
			sol.CreatedAt.Format(timeLayout),
		}
		if sol.FechaRecibido != nil {
			values[5] = sol.FechaRecibido.Format(timeLayout)
		}
		if sol.FechaAprobado != nil {
			values[6] = sol.FechaAprobado.Format(timeLayout)
		}
		if sol.FechaRechazado != nil {
			values[7] = sol.FechaRechazado.Format(timeLayout)
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("generando reporte: %w", err)
	}
	return buf, nil
}

package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"solicitud-system/internal/authz"
	"solicitud-system/internal/dto"
	"solicitud-system/internal/repositories"
	"solicitud-system/internal/services"
	"solicitud-system/pkg/api"
	apperrors "solicitud-system/pkg/errors"
)

type ReportController struct {
	service  services.ReportServiceInterface
	resolver *authz.Resolver
	logger   *zap.Logger
}

func NewReportController(service services.ReportServiceInterface, resolver *authz.Resolver, logger *zap.Logger) *ReportController {
	return &ReportController{service: service, resolver: resolver, logger: logger}
}

func reportFilter(c echo.Context) (repositories.SolicitudFilter, error) {
	var query dto.ListSolicitudesDTO
	if err := c.Bind(&query); err != nil {
		return repositories.SolicitudFilter{}, apperrors.NewHttpError(http.StatusBadRequest, "parámetros inválidos", err, nil)
	}
	if err := c.Validate(&query); err != nil {
		return repositories.SolicitudFilter{}, err
	}

	filter := repositories.SolicitudFilter{
		Estado: query.Estado,
		Search: query.Search,
		Page:   query.Page,
		Limit:  query.Limit,
	}
	if query.CenterID != "" {
		if centerID, err := uuid.Parse(query.CenterID); err == nil {
			filter.CenterID = &centerID
		}
	}
	return filter, nil
}

func (ctrl *ReportController) ListSolicitudes(c echo.Context) error {
	ctx := c.Request().Context()
	actor, err := actorFromRequest(ctx, ctrl.resolver)
	if err != nil {
		return api.ErrorResponse(c, err, ctrl.logger)
	}
	filter, err := reportFilter(c)
	if err != nil {
		return api.ErrorResponse(c, err, ctrl.logger)
	}

	solicitudes, total, err := ctrl.service.ListSolicitudes(ctx, actor, filter)
	if err != nil {
		return api.ErrorResponse(c, err, ctrl.logger)
	}

	list := make([]dto.SolicitudResponse, 0, len(solicitudes))
	for i := range solicitudes {
		list = append(list, dto.ToSolicitudResponse(&solicitudes[i]))
	}
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	return api.SuccessList(c, "reporte de solicitudes", list, total, page, limit)
}

func (ctrl *ReportController) ExportSolicitudes(c echo.Context) error {
	ctx := c.Request().Context()
	actor, err := actorFromRequest(ctx, ctrl.resolver)
	if err != nil {
		return api.ErrorResponse(c, err, ctrl.logger)
	}
	filter, err := reportFilter(c)
	if err != nil {
		return api.ErrorResponse(c, err, ctrl.logger)
	}

	buf, err := ctrl.service.ExportSolicitudes(ctx, actor, filter)
	if err != nil {
		return api.ErrorResponse(c, err, ctrl.logger)
	}

	filename := "solicitudes-" + time.Now().Format("2006-01-02") + ".xlsx"
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"solicitud-system/internal/authz"
	"solicitud-system/internal/dto"
	"solicitud-system/internal/services"
	"solicitud-system/pkg/api"
	apperrors "solicitud-system/pkg/errors"
)

type HistorialController struct {
	service  services.HistorialServiceInterface
	resolver *authz.Resolver
	logger   *zap.Logger
}

func NewHistorialController(service services.HistorialServiceInterface, resolver *authz.Resolver, logger *zap.Logger) *HistorialController {
	return &HistorialController{service: service, resolver: resolver, logger: logger}
}

func (ctrl *HistorialController) Timeline(c echo.Context) error {
	ctx := c.Request().Context()
	actor, err := actorFromRequest(ctx, ctrl.resolver)
	if err != nil {
		return api.ErrorResponse(c, err, ctrl.logger)
	}
	id, err := parseIDParam(c)
	if err != nil {
		return api.ErrorResponse(c, err, ctrl.logger)
	}

	entries, err := ctrl.service.Timeline(ctx, actor, id)
	if err != nil {
		return api.ErrorResponse(c, err, ctrl.logger)
	}
	return api.SuccessOne(c, http.StatusOK, "historial", dto.ToHistorialResponse(entries))
}

func (ctrl *HistorialController) AmendComentario(c echo.Context) error {
	ctx := c.Request().Context()
	actor, err := actorFromRequest(ctx, ctrl.resolver)
	if err != nil {
		return api.ErrorResponse(c, err, ctrl.logger)
	}
	id, err := parseIDParam(c)
	if err != nil {
		return api.ErrorResponse(c, err, ctrl.logger)
	}

	var payload dto.AmendComentarioDTO
	if err := c.Bind(&payload); err != nil {
		return api.ErrorResponse(c, apperrors.NewHttpError(http.StatusBadRequest, "cuerpo de la petición inválido", err, nil), ctrl.logger)
	}
	if err := c.Validate(&payload); err != nil {
		return api.ErrorResponse(c, err, ctrl.logger)
	}

	if err := ctrl.service.AmendLastComment(ctx, actor, id, payload.Comentario); err != nil {
		return api.ErrorResponse(c, err, ctrl.logger)
	}
	return api.SuccessOne(c, http.StatusOK, "comentario actualizado", struct{}{})
}

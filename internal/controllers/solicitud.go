package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"solicitud-system/internal/authz"
	"solicitud-system/internal/dto"
	"solicitud-system/internal/entities"
	"solicitud-system/internal/repositories"
	"solicitud-system/internal/services"
	"solicitud-system/pkg/api"
	"solicitud-system/pkg/contextkeys"
	apperrors "solicitud-system/pkg/errors"
)

type SolicitudController struct {
	service  services.SolicitudServiceInterface
	resolver *authz.Resolver
	logger   *zap.Logger
}

func NewSolicitudController(service services.SolicitudServiceInterface, resolver *authz.Resolver, logger *zap.Logger) *SolicitudController {
	return &SolicitudController{service: service, resolver: resolver, logger: logger}
}

// actorFromRequest resolves the full actor context for the authenticated id
// the middleware stored. Every handler runs this; authorization is never
// decided from the token alone.
func actorFromRequest(ctx context.Context, resolver *authz.Resolver) (*authz.ActorContext, error) {
	actorID, ok := ctx.Value(contextkeys.ActorIDKey).(uuid.UUID)
	if !ok {
		return nil, apperrors.ErrUnauthenticated
	}
	return resolver.Resolve(ctx, actorID)
}

func parseIDParam(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperrors.NewHttpError(http.StatusBadRequest, "identificador inválido", err, nil)
	}
	return id, nil
}

func (ctrl *SolicitudController) Create(c echo.Context) error {
	ctx := c.Request().Context()
	actor, err := actorFromRequest(ctx, ctrl.resolver)
	if err != nil {
		return api.ErrorResponse(c, err, ctrl.logger)
	}

	var payload dto.CreateSolicitudDTO
	if err := c.Bind(&payload); err != nil {
		return api.ErrorResponse(c, apperrors.NewHttpError(http.StatusBadRequest, "cuerpo de la petición inválido", err, nil), ctrl.logger)
	}
	if err := c.Validate(&payload); err != nil {
		return api.ErrorResponse(c, err, ctrl.logger)
	}

	created, err := ctrl.service.Crear(ctx, actor, payload)
	if err != nil {
		return api.ErrorResponse(c, err, ctrl.logger)
	}
	return api.SuccessOne(c, http.StatusCreated, "solicitud creada", dto.ToSolicitudResponse(created))
}

func (ctrl *SolicitudController) Get(c echo.Context) error {
	ctx := c.Request().Context()
	actor, err := actorFromRequest(ctx, ctrl.resolver)
	if err != nil {
		return api.ErrorResponse(c, err, ctrl.logger)
	}
	id, err := parseIDParam(c)
	if err != nil {
		return api.ErrorResponse(c, err, ctrl.logger)
	}

	sol, err := ctrl.service.Find(ctx, actor, id)
	if err != nil {
		return api.ErrorResponse(c, err, ctrl.logger)
	}
	return api.SuccessOne(c, http.StatusOK, "solicitud encontrada", dto.ToSolicitudResponse(sol))
}

func (ctrl *SolicitudController) List(c echo.Context) error {
	ctx := c.Request().Context()
	actor, err := actorFromRequest(ctx, ctrl.resolver)
	if err != nil {
		return api.ErrorResponse(c, err, ctrl.logger)
	}

	var query dto.ListSolicitudesDTO
	if err := c.Bind(&query); err != nil {
		return api.ErrorResponse(c, apperrors.NewHttpError(http.StatusBadRequest, "parámetros inválidos", err, nil), ctrl.logger)
	}
	if err := c.Validate(&query); err != nil {
		return api.ErrorResponse(c, err, ctrl.logger)
	}

	filter := repositories.SolicitudFilter{
		Estado: query.Estado,
		Search: query.Search,
		Page:   query.Page,
		Limit:  query.Limit,
	}
	if query.CenterID != "" {
		centerID, err := uuid.Parse(query.CenterID)
		if err == nil {
			filter.CenterID = &centerID
		}
	}

	solicitudes, total, err := ctrl.service.List(ctx, actor, filter)
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
	return api.SuccessList(c, "solicitudes", list, total, page, limit)
}

func (ctrl *SolicitudController) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	actor, err := actorFromRequest(ctx, ctrl.resolver)
	if err != nil {
		return api.ErrorResponse(c, err, ctrl.logger)
	}
	id, err := parseIDParam(c)
	if err != nil {
		return api.ErrorResponse(c, err, ctrl.logger)
	}

	if err := ctrl.service.Delete(ctx, actor, id); err != nil {
		return api.ErrorResponse(c, err, ctrl.logger)
	}
	return api.SuccessOne(c, http.StatusOK, "solicitud eliminada", struct{}{})
}

func (ctrl *SolicitudController) RegistrarDocumento(c echo.Context) error {
	ctx := c.Request().Context()
	actor, err := actorFromRequest(ctx, ctrl.resolver)
	if err != nil {
		return api.ErrorResponse(c, err, ctrl.logger)
	}
	id, err := parseIDParam(c)
	if err != nil {
		return api.ErrorResponse(c, err, ctrl.logger)
	}

	var payload dto.RegistrarDocumentoDTO
	if err := c.Bind(&payload); err != nil {
		return api.ErrorResponse(c, apperrors.NewHttpError(http.StatusBadRequest, "cuerpo de la petición inválido", err, nil), ctrl.logger)
	}
	if err := c.Validate(&payload); err != nil {
		return api.ErrorResponse(c, err, ctrl.logger)
	}

	if err := ctrl.service.RegistrarDocumento(ctx, actor, id, payload); err != nil {
		return api.ErrorResponse(c, err, ctrl.logger)
	}
	return api.SuccessOne(c, http.StatusOK, "documento registrado", struct{}{})
}

// transitionHandler factors the shared shape of the per-edge endpoints:
// resolve actor, parse id, bind and validate payload, call the edge.
func transitionHandler[P any](ctrl *SolicitudController, message string, edge func(ctx context.Context, actor *authz.ActorContext, id uuid.UUID, payload P) (*entities.Solicitud, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		actor, err := actorFromRequest(ctx, ctrl.resolver)
		if err != nil {
			return api.ErrorResponse(c, err, ctrl.logger)
		}
		id, err := parseIDParam(c)
		if err != nil {
			return api.ErrorResponse(c, err, ctrl.logger)
		}

		var payload P
		if err := c.Bind(&payload); err != nil {
			return api.ErrorResponse(c, apperrors.NewHttpError(http.StatusBadRequest, "cuerpo de la petición inválido", err, nil), ctrl.logger)
		}
		if err := c.Validate(&payload); err != nil {
			return api.ErrorResponse(c, err, ctrl.logger)
		}

		updated, err := edge(ctx, actor, id, payload)
		if err != nil {
			return api.ErrorResponse(c, err, ctrl.logger)
		}
		return api.SuccessOne(c, http.StatusOK, message, dto.ToSolicitudResponse(updated))
	}
}

func (ctrl *SolicitudController) Recibir(c echo.Context) error {
	return transitionHandler(ctrl, "solicitud recibida", ctrl.service.Recibir)(c)
}

func (ctrl *SolicitudController) EnviarComite(c echo.Context) error {
	return transitionHandler(ctrl, "solicitud enviada al comité", ctrl.service.EnviarComite)(c)
}

func (ctrl *SolicitudController) Observar(c echo.Context) error {
	return transitionHandler(ctrl, "solicitud observada", ctrl.service.Observar)(c)
}

func (ctrl *SolicitudController) Devolver(c echo.Context) error {
	return transitionHandler(ctrl, "solicitud devuelta", ctrl.service.Devolver)(c)
}

func (ctrl *SolicitudController) Aprobar(c echo.Context) error {
	return transitionHandler(ctrl, "solicitud aprobada", ctrl.service.Aprobar)(c)
}

func (ctrl *SolicitudController) Rechazar(c echo.Context) error {
	return transitionHandler(ctrl, "solicitud rechazada", ctrl.service.Rechazar)(c)
}

func (ctrl *SolicitudController) Cancelar(c echo.Context) error {
	return transitionHandler(ctrl, "solicitud cancelada", ctrl.service.Cancelar)(c)
}

func (ctrl *SolicitudController) Revisar(c echo.Context) error {
	return transitionHandler(ctrl, "solicitud en revisión", ctrl.service.Revisar)(c)
}

func (ctrl *SolicitudController) Resolver(c echo.Context) error {
	return transitionHandler(ctrl, "solicitud resuelta", ctrl.service.Resolver)(c)
}

func (ctrl *SolicitudController) SolicitarModificacion(c echo.Context) error {
	ctx := c.Request().Context()
	actor, err := actorFromRequest(ctx, ctrl.resolver)
	if err != nil {
		return api.ErrorResponse(c, err, ctrl.logger)
	}
	id, err := parseIDParam(c)
	if err != nil {
		return api.ErrorResponse(c, err, ctrl.logger)
	}

	var payload dto.SolicitarModificacionDTO
	if err := c.Bind(&payload); err != nil {
		return api.ErrorResponse(c, apperrors.NewHttpError(http.StatusBadRequest, "cuerpo de la petición inválido", err, nil), ctrl.logger)
	}
	if err := c.Validate(&payload); err != nil {
		return api.ErrorResponse(c, err, ctrl.logger)
	}

	if err := ctrl.service.SolicitarModificacion(ctx, actor, id, payload); err != nil {
		return api.ErrorResponse(c, err, ctrl.logger)
	}
	return api.SuccessOne(c, http.StatusOK, "modificación solicitada", struct{}{})
}

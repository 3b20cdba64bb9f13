package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"solicitud-system/pkg/api"
	"solicitud-system/pkg/contextkeys"
	apperrors "solicitud-system/pkg/errors"
	"solicitud-system/pkg/service"
)

type AuthMiddleware struct {
	jwtService service.JWTService
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtSvc,
		logger:     logger,
	}
}

// Auth validates the bearer token and stores the actor id in the request
// context. Role and membership resolution happens later, per call, in the
// authz resolver — never implicitly inside the engine.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return api.ErrorResponse(c, apperrors.ErrUnauthenticated, m.logger)
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return api.ErrorResponse(c, apperrors.ErrUnauthenticated, m.logger)
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			return api.ErrorResponse(c, err, m.logger)
		}

		ctx := context.WithValue(c.Request().Context(), contextkeys.ActorIDKey, claims.ActorID)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

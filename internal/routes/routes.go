package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"solicitud-system/internal/authz"
	"solicitud-system/internal/controllers"
	"solicitud-system/internal/events"
	"solicitud-system/internal/listeners"
	"solicitud-system/internal/repositories"
	"solicitud-system/internal/services"
	"solicitud-system/pkg/config"
	"solicitud-system/pkg/eventbus"
	"solicitud-system/pkg/middleware"
	"solicitud-system/pkg/service"
)

// InitRoutes wires repositories, services, listeners and controllers, and
// mounts the API under /api.
func InitRoutes(e *echo.Echo, pool *pgxpool.Pool, redisClient *redis.Client, cfg *config.Config, logger *zap.Logger) {
	historialRepo := repositories.NewHistorialRepository(pool)
	solicitudRepo := repositories.NewSolicitudRepository(pool, historialRepo, logger)
	userRepo := repositories.NewUserRepository(pool, logger)
	centerRepo := repositories.NewCenterRepository(pool)
	grupoRepo := repositories.NewGrupoRepository(pool)
	notificacionRepo := repositories.NewNotificacionRepository(pool)
	modificacionRepo := repositories.NewModificacionRepository(pool)
	cache := repositories.NewRedisCache(redisClient)

	resolver := authz.NewResolver(userRepo, cache, cfg.Workflow.ActorCacheTTL, logger)

	bus := eventbus.New(logger)
	notificationListener := listeners.NewNotificationListener(notificacionRepo, modificacionRepo, grupoRepo, logger)
	bus.Subscribe(events.SolicitudTransitionedEventName, notificationListener.Handle)
	bus.Subscribe(events.SolicitudModificacionSolicitadaEventName, notificationListener.HandleModificacionSolicitada)

	solicitudService := services.NewSolicitudService(
		solicitudRepo, historialRepo, grupoRepo, centerRepo, userRepo, modificacionRepo,
		bus, cfg.Workflow.ServicesCenterSlug, logger,
	)
	historialService := services.NewHistorialService(historialRepo, solicitudRepo)
	reportService := services.NewReportService(solicitudRepo)

	solicitudController := controllers.NewSolicitudController(solicitudService, resolver, logger)
	historialController := controllers.NewHistorialController(historialService, resolver, logger)
	reportController := controllers.NewReportController(reportService, resolver, logger)

	jwtService := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, logger)
	authMW := middleware.NewAuthMiddleware(jwtService, logger)

	apiGroup := e.Group("/api", authMW.Auth)

	registerSolicitudRoutes(apiGroup, solicitudController, historialController, reportController)
}

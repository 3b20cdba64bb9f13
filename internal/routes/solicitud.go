package routes

import (
	"github.com/labstack/echo/v4"

	"solicitud-system/internal/controllers"
)

func registerSolicitudRoutes(
	g *echo.Group,
	solicitudes *controllers.SolicitudController,
	historial *controllers.HistorialController,
	reports *controllers.ReportController,
) {
	g.POST("/solicitudes", solicitudes.Create)
	g.GET("/solicitudes", solicitudes.List)
	g.GET("/solicitudes/:id", solicitudes.Get)
	g.DELETE("/solicitudes/:id", solicitudes.Delete)
	g.POST("/solicitudes/:id/documentos", solicitudes.RegistrarDocumento)

	// Full flow edges.
	g.POST("/solicitudes/:id/recibir", solicitudes.Recibir)
	g.POST("/solicitudes/:id/enviar-comite", solicitudes.EnviarComite)
	g.POST("/solicitudes/:id/observar", solicitudes.Observar)
	g.POST("/solicitudes/:id/devolver", solicitudes.Devolver)
	g.POST("/solicitudes/:id/aprobar", solicitudes.Aprobar)
	g.POST("/solicitudes/:id/rechazar", solicitudes.Rechazar)
	g.POST("/solicitudes/:id/cancelar", solicitudes.Cancelar)
	g.POST("/solicitudes/:id/solicitar-modificacion", solicitudes.SolicitarModificacion)

	// Short flow edges.
	g.POST("/solicitudes/:id/revisar", solicitudes.Revisar)
	g.POST("/solicitudes/:id/resolver", solicitudes.Resolver)

	g.GET("/solicitudes/:id/historial", historial.Timeline)
	g.PATCH("/solicitudes/:id/historial/comentario", historial.AmendComentario)

	g.GET("/reports/solicitudes", reports.ListSolicitudes)
	g.GET("/reports/solicitudes/export", reports.ExportSolicitudes)
}

package routes

import (
	"VCS_FMS_Microservice/internal/maintenance-api/api/handler"
	"github.com/gin-gonic/gin"
)

func AddFleetRoutes(r *gin.Engine, handler handler.FleetHandler) {
	fleetRoutes := r.Group("/fleet")
	fleetRoutes.GET("/report", handler.GetFleetReport())
	fleetRoutes.GET("/report/export", handler.ExportFleetReport())

	instanceRoutes := r.Group("/instances")
	instanceRoutes.GET("/:name/reports", handler.GetInstanceReports())
	instanceRoutes.GET("/:name/reports/latest", handler.GetLatestReport())
	instanceRoutes.GET("/:name/availability", handler.GetInstanceAvailability())
}

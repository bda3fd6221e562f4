package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	auth := APIKeyAuthMiddleware(h.cfg, h.logger)

	// Маршруты диспетчеризации инцидентов
	incidents := api.Group("/incidents", auth)
	{
		incidents.GET("/:id", h.getIncident)
		incidents.GET("/:id/candidates", h.rankCandidates)
		incidents.GET("/:id/activity", h.listActivity)
		incidents.POST("/:id/assign", h.assignIncident)
		incidents.POST("/:id/acknowledge", h.acknowledgeIncident)
		incidents.POST("/:id/decline", h.declineIncident)
		incidents.POST("/:id/auto-assign", h.autoAssignIncident)
	}

	// Синхронный запуск проверок SLA для операционного инструментария
	api.POST("/sla/run", auth, h.runSlaChecks)

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}

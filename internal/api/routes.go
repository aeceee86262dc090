package api

import (
	"tablenotify/internal/common/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures the routes for the application.
func SetupRoutes(
	router *gin.Engine,
	notificationHandler *NotificationHandler,
	templateHandler *TemplateHandler,
	waitlistHandler *WaitlistHandler,
	resolver TokenResolver,
	log logger.Logger,
) {
	v1 := router.Group("/v1")
	v1.Use(AuthMiddleware(resolver, log))
	{
		notifications := v1.Group("/notifications")
		{
			notifications.POST("/booking-confirmation", notificationHandler.SendBookingConfirmation)
			notifications.POST("/no-availability", notificationHandler.SendNoAvailability)
			notifications.POST("/waiting-list", notificationHandler.SendWaitingList)
			notifications.POST("/upgrade-plan", notificationHandler.SendUpgradePlan)
		}

		tmpl := v1.Group("/templates")
		{
			tmpl.GET("/:templateId", templateHandler.GetTemplate)
			tmpl.PUT("/:templateId", templateHandler.SaveTemplate)
		}

		if waitlistHandler != nil {
			v1.POST("/waitlist/optimize", waitlistHandler.Optimize)
		}
	}

	router.GET("/health", HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

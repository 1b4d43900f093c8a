package routes

import (
	"readiness/internal/controllers"

	"github.com/gin-gonic/gin"
)

// RegisterCompatibilityRoutes registers the evaluation endpoints behind auth
func RegisterCompatibilityRoutes(r *gin.Engine, auth gin.HandlerFunc, cc *controllers.CompatibilityController, hc *controllers.HistoryController) {
	r.GET("/healthz", controllers.Healthz)

	compatibility := r.Group("/compatibility", auth)
	{
		compatibility.GET("", cc.GetCompatibility)
		compatibility.GET("/details", cc.GetDetails)
		compatibility.GET("/history", hc.GetHistory)
	}
}

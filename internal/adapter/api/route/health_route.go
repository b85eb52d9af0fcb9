package route

import (
	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/talonai-chat/internal/adapter/api/controller"
)

// SetupHealthRoutes configura a verificação de saúde (sem autenticação)
func SetupHealthRoutes(router gin.IRoutes, healthController *controller.HealthController) {
	router.GET("/health", healthController.Health)
}

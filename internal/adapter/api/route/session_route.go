package route

import (
	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/talonai-chat/internal/adapter/api/controller"
)

// SetupSessionRoutes configura as rotas de sessões de chat
func SetupSessionRoutes(router *gin.RouterGroup, sessionController *controller.SessionController, middlewares ...gin.HandlerFunc) {
	sessionRouter := router.Group("/sessions")
	sessionRouter.Use(middlewares...)
	{
		sessionRouter.GET("/:userId", sessionController.List)
		sessionRouter.POST("/:userId", sessionController.Create)
		sessionRouter.GET("/:userId/:sessionId", sessionController.Get)
		sessionRouter.PUT("/:userId/:sessionId", sessionController.Update)
		sessionRouter.DELETE("/:userId/:sessionId", sessionController.Delete)
	}
}

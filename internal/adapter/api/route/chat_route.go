package route

import (
	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/talonai-chat/internal/adapter/api/controller"
)

// SetupChatRoutes configura a rota do relay de chat
func SetupChatRoutes(router *gin.RouterGroup, chatController *controller.ChatController, middlewares ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, middlewares...), chatController.Chat)
	router.POST("/chat", handlers...)
}

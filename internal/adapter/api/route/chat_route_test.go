package route

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/talonai-chat/internal/adapter/api/controller"
	"github.com/hugohenrick/talonai-chat/pkg/logger"
	"github.com/hugohenrick/talonai-chat/pkg/relay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupChatRoutesKeepsCallerMiddlewares(t *testing.T) {
	gin.SetMode(gin.TestMode)

	relayClient, err := relay.NewClient(relay.Config{BaseURL: "http://127.0.0.1:0"}, logger.Discard())
	require.NoError(t, err)
	chatController := controller.NewChatController(relayClient, logger.Discard())

	sentinelCalled := false
	backing := []gin.HandlerFunc{
		func(c *gin.Context) { c.AbortWithStatus(http.StatusTeapot) },
		func(c *gin.Context) { sentinelCalled = true },
	}
	// capacidade sobrando depois do primeiro middleware
	middlewares := backing[:1]

	engine := gin.New()
	SetupChatRoutes(engine.Group("/api"), chatController, middlewares...)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{}`))
	backing[1](c)
	assert.True(t, sentinelCalled)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusTeapot, w.Code)
}

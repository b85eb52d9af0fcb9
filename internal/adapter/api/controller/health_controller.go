package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/talonai-chat/internal/adapter/api/dto"
	"github.com/hugohenrick/talonai-chat/pkg/logger"
)

// ServiceName identifica o serviço na resposta de health
const ServiceName = "TalonAI Backend"

// Pinger verifica se uma dependência está acessível
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController responde à verificação de saúde
type HealthController struct {
	store  Pinger
	logger logger.Logger
}

// NewHealthController cria uma nova instância de HealthController
func NewHealthController(store Pinger, logger logger.Logger) *HealthController {
	return &HealthController{
		store:  store,
		logger: logger,
	}
}

// Health informa se o serviço está no ar
// @Summary Verificar saúde
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	status, code := "OK", http.StatusOK

	if c.store != nil {
		pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		if err := c.store.Ping(pingCtx); err != nil {
			c.logger.Warn("armazenamento indisponível", "error", err)
			status, code = "DEGRADED", http.StatusServiceUnavailable
		}
	}

	ctx.JSON(code, dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   ServiceName,
	})
}

package controller

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/talonai-chat/internal/adapter/api/dto"
	"github.com/hugohenrick/talonai-chat/pkg/auth"
	"github.com/hugohenrick/talonai-chat/pkg/logger"
	"github.com/hugohenrick/talonai-chat/pkg/relay"
)

// ChatRelay encaminha uma pergunta ao serviço de IA
type ChatRelay interface {
	Chat(ctx context.Context, req relay.Request) (relay.Reply, error)
}

// ChatController gerencia as requisições de chat
type ChatController struct {
	relay  ChatRelay
	logger logger.Logger
}

// NewChatController cria uma nova instância de ChatController
func NewChatController(relay ChatRelay, logger logger.Logger) *ChatController {
	return &ChatController{
		relay:  relay,
		logger: logger,
	}
}

// Chat encaminha a pergunta ao serviço de IA e devolve a resposta
// @Summary Enviar pergunta
// @Description Encaminha a pergunta ao serviço de IA; nada é persistido
// @Tags chat
// @Accept json
// @Produce json
// @Param request body dto.ChatRequest true "Pergunta"
// @Success 200 {object} dto.ChatResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /chat [post]
func (c *ChatController) Chat(ctx *gin.Context) {
	var req dto.ChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "invalid request", err.Error()))
		return
	}

	if missing := req.MissingFields(); len(missing) > 0 {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest,
			"missing required fields: "+strings.Join(missing, ", "), ""))
		return
	}

	// Com autenticação ativa, só o próprio usuário pode perguntar em seu nome
	if current := auth.GetCurrentUser(ctx); current != "" && current != req.UserID {
		ctx.JSON(http.StatusForbidden, dto.NewErrorResponse(http.StatusForbidden, "user_id does not match token", ""))
		return
	}

	reply, err := c.relay.Chat(ctx.Request.Context(), relay.Request{
		Query:     req.Query,
		UserID:    req.UserID,
		SessionID: req.SessionID,
	})
	if err != nil {
		var upstreamErr *relay.UpstreamError
		switch {
		case errors.As(err, &upstreamErr):
			ctx.JSON(upstreamErr.StatusCode, dto.NewErrorResponse(upstreamErr.StatusCode, upstreamErr.Message, ""))
		case errors.Is(err, relay.ErrUnavailable):
			ctx.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(http.StatusServiceUnavailable, relay.ErrUnavailable.Error(), ""))
		default:
			c.logger.Error("erro ao encaminhar pergunta", "user_id", req.UserID, "error", err)
			ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, internalErrorMessage, ""))
		}
		return
	}

	ctx.JSON(http.StatusOK, dto.ChatResponse{
		Message: reply.Text,
		Source:  string(reply.Shape),
	})
}

package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/talonai-chat/internal/adapter/api/dto"
	"github.com/hugohenrick/talonai-chat/internal/adapter/repository"
	"github.com/hugohenrick/talonai-chat/internal/domain/chat"
	"github.com/hugohenrick/talonai-chat/pkg/logger"
)

const internalErrorMessage = "internal server error"

// SessionController gerencia as requisições relacionadas a sessões de chat
type SessionController struct {
	chatRepo chat.Repository
	logger   logger.Logger
}

// NewSessionController cria uma nova instância de SessionController
func NewSessionController(chatRepo chat.Repository, logger logger.Logger) *SessionController {
	return &SessionController{
		chatRepo: chatRepo,
		logger:   logger,
	}
}

// List retorna as sessões de um usuário
// @Summary Listar sessões
// @Description Retorna até 50 sessões do usuário, mais recentes primeiro, sem mensagens
// @Tags sessions
// @Produce json
// @Param userId path string true "ID do usuário"
// @Success 200 {array} chat.Summary
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /sessions/{userId} [get]
func (c *SessionController) List(ctx *gin.Context) {
	userID := ctx.Param("userId")
	if userID == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "userId is required", ""))
		return
	}

	sessions, err := c.chatRepo.ListSessions(ctx, userID)
	if err != nil {
		c.logger.Error("erro ao listar sessões", "user_id", userID, "error", err)
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, internalErrorMessage, ""))
		return
	}

	ctx.JSON(http.StatusOK, sessions)
}

// Get retorna uma sessão com suas mensagens
// @Summary Buscar sessão
// @Description Retorna a sessão completa com as mensagens em ordem
// @Tags sessions
// @Produce json
// @Param userId path string true "ID do usuário"
// @Param sessionId path string true "ID da sessão"
// @Success 200 {object} chat.Session
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /sessions/{userId}/{sessionId} [get]
func (c *SessionController) Get(ctx *gin.Context) {
	userID, sessionID, ok := sessionParams(ctx)
	if !ok {
		return
	}

	session, err := c.chatRepo.GetSession(ctx, userID, sessionID)
	if err != nil {
		c.handleError(ctx, "erro ao buscar sessão", err)
		return
	}

	ctx.JSON(http.StatusOK, session)
}

// Create cria uma nova sessão vazia
// @Summary Criar sessão
// @Description Cria uma sessão sem mensagens; o título padrão é "New Chat"
// @Tags sessions
// @Accept json
// @Produce json
// @Param userId path string true "ID do usuário"
// @Param session body dto.CreateSessionRequest true "Dados da sessão"
// @Success 201 {object} chat.Session
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /sessions/{userId} [post]
func (c *SessionController) Create(ctx *gin.Context) {
	userID := ctx.Param("userId")
	if userID == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "userId is required", ""))
		return
	}

	var req dto.CreateSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "invalid request", dto.ValidationDetails(err)))
		return
	}

	session, err := c.chatRepo.CreateSession(ctx, userID, req.SessionID, req.Title)
	if err != nil {
		c.handleError(ctx, "erro ao criar sessão", err)
		return
	}

	c.logger.Info("sessão criada", "user_id", userID, "session_id", session.SessionID)
	ctx.JSON(http.StatusCreated, session)
}

// Update substitui as mensagens da sessão
// @Summary Substituir mensagens
// @Description Substitui a lista completa de mensagens (cria a sessão se não existir)
// @Tags sessions
// @Accept json
// @Produce json
// @Param userId path string true "ID do usuário"
// @Param sessionId path string true "ID da sessão"
// @Param session body dto.ReplaceMessagesRequest true "Mensagens e título opcional"
// @Success 200 {object} chat.Session
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /sessions/{userId}/{sessionId} [put]
func (c *SessionController) Update(ctx *gin.Context) {
	userID, sessionID, ok := sessionParams(ctx)
	if !ok {
		return
	}

	var req dto.ReplaceMessagesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "messages array is required", dto.ValidationDetails(err)))
		return
	}

	session, err := c.chatRepo.ReplaceMessages(ctx, userID, sessionID, req.ToMessages(), req.Title)
	if err != nil {
		c.handleError(ctx, "erro ao atualizar sessão", err)
		return
	}

	ctx.JSON(http.StatusOK, session)
}

// Delete remove uma sessão e suas mensagens
// @Summary Remover sessão
// @Tags sessions
// @Produce json
// @Param userId path string true "ID do usuário"
// @Param sessionId path string true "ID da sessão"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /sessions/{userId}/{sessionId} [delete]
func (c *SessionController) Delete(ctx *gin.Context) {
	userID, sessionID, ok := sessionParams(ctx)
	if !ok {
		return
	}

	if err := c.chatRepo.DeleteSession(ctx, userID, sessionID); err != nil {
		c.handleError(ctx, "erro ao remover sessão", err)
		return
	}

	c.logger.Info("sessão removida", "user_id", userID, "session_id", sessionID)
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "Session deleted successfully"})
}

// handleError converte erros do repositório em respostas HTTP sem expor detalhes de armazenamento
func (c *SessionController) handleError(ctx *gin.Context, logMsg string, err error) {
	switch {
	case errors.Is(err, repository.ErrSessionNotFound):
		ctx.JSON(http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound, "session not found", ""))
	case errors.Is(err, repository.ErrSessionExists):
		ctx.JSON(http.StatusConflict, dto.NewErrorResponse(http.StatusConflict, "session already exists", ""))
	case errors.Is(err, chat.ErrEmptyUserID), errors.Is(err, chat.ErrEmptySessionID):
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "invalid request", err.Error()))
	default:
		c.logger.Error(logMsg,
			"user_id", ctx.Param("userId"),
			"session_id", ctx.Param("sessionId"),
			"error", err)
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, internalErrorMessage, ""))
	}
}

func sessionParams(ctx *gin.Context) (string, string, bool) {
	userID := ctx.Param("userId")
	sessionID := ctx.Param("sessionId")
	if userID == "" || sessionID == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "userId and sessionId are required", ""))
		return "", "", false
	}
	return userID, sessionID, true
}

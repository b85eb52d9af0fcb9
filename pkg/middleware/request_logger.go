package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hugohenrick/talonai-chat/pkg/logger"
)

// RequestIDHeader é o cabeçalho usado para correlacionar logs de uma requisição
const RequestIDHeader = "X-Request-ID"

// RequestIDKey é a chave do ID da requisição no contexto do Gin
const RequestIDKey = "request_id"

// RequestID garante que toda requisição tenha um ID, reaproveitando o enviado pelo cliente
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogger registra método, rota, status e duração de cada requisição
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			"request_id", c.GetString(RequestIDKey),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			log.Error("requisição finalizada com erro", fields...)
		case status >= 400:
			log.Warn("requisição rejeitada", fields...)
		default:
			log.Info("requisição finalizada", fields...)
		}
	}
}

package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/talonai-chat/internal/adapter/api/dto"
)

// UserIDKey é a chave do usuário autenticado no contexto do Gin
const UserIDKey = "user_id"

// JWTAuthMiddleware cria um middleware para autenticação JWT.
// Quando a rota tem o parâmetro :userId, o token precisa pertencer a esse usuário.
func JWTAuthMiddleware(jwtService *JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Obter o token do cabeçalho Authorization
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
				http.StatusUnauthorized,
				"authentication required",
				"missing Authorization header",
			))
			return
		}

		// Verificar o formato "Bearer <token>"
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
				http.StatusUnauthorized,
				"invalid token format",
				"use 'Bearer <token>'",
			))
			return
		}

		claims, err := jwtService.ValidateToken(tokenParts[1])
		if err != nil {
			message := "invalid token"
			if err == ErrExpiredToken {
				message = "token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
				http.StatusUnauthorized,
				message,
				"",
			))
			return
		}

		if owner := c.Param("userId"); owner != "" && owner != claims.UserID {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(
				http.StatusForbidden,
				"access denied",
				"token does not belong to this user",
			))
			return
		}

		// Armazenar o usuário no contexto
		c.Set(UserIDKey, claims.UserID)

		c.Next()
	}
}

// GetCurrentUser obtém o usuário autenticado do contexto, se houver
func GetCurrentUser(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

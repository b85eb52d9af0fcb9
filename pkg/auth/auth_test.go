package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	svc, err := NewJWTService("secret", time.Hour)
	require.NoError(t, err)

	token, err := svc.GenerateToken("u1")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)

	other, err := NewJWTService("other-secret", time.Hour)
	require.NoError(t, err)
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredToken(t *testing.T) {
	svc, err := NewJWTService("secret", -time.Minute)
	require.NoError(t, err)
	// expiração não positiva cai no padrão de 24h
	token, err := svc.GenerateToken("u1")
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.NoError(t, err)

	svc.expiration = -time.Minute
	token, err = svc.GenerateToken("u1")
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestNewJWTServiceRequiresSecret(t *testing.T) {
	_, err := NewJWTService("", time.Hour)
	assert.ErrorIs(t, err, ErrMissingJWTKey)
}

func TestJWTAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, err := NewJWTService("secret", time.Hour)
	require.NoError(t, err)
	token, err := svc.GenerateToken("u1")
	require.NoError(t, err)

	router := gin.New()
	router.GET("/sessions/:userId", JWTAuthMiddleware(svc), func(c *gin.Context) {
		c.String(http.StatusOK, GetCurrentUser(c))
	})

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"missing header", "/sessions/u1", "", http.StatusUnauthorized},
		{"bad format", "/sessions/u1", "Token " + token, http.StatusUnauthorized},
		{"bad token", "/sessions/u1", "Bearer nope", http.StatusUnauthorized},
		{"other user", "/sessions/u2", "Bearer " + token, http.StatusForbidden},
		{"owner", "/sessions/u1", "Bearer " + token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, "u1", w.Body.String())
			}
		})
	}
}

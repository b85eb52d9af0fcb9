package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/hugohenrick/talonai-chat/internal/config"
	"github.com/hugohenrick/talonai-chat/internal/infrastructure/database"
	"github.com/hugohenrick/talonai-chat/pkg/auth"
	"github.com/hugohenrick/talonai-chat/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, jwtSecret string) *App {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"Check the wastegate."}`))
	}))
	t.Cleanup(upstream.Close)

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:        "0",
			GinMode:     "test",
			BasePath:    "/api",
			CORSOrigins: config.DefaultCORSOrigins,
		},
		Database: config.DatabaseConfig{
			Driver:      database.DriverSQLite,
			SQLitePath:  filepath.Join(t.TempDir(), "chat.db"),
			AutoMigrate: true,
		},
		AI: config.AIConfig{
			BackendURL: upstream.URL,
			Timeout:    time.Second,
		},
		Auth: config.AuthConfig{JWTSecret: jwtSecret},
	}

	app, err := NewApp(cfg, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return app
}

func serve(app *App, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	app.GetRouter().ServeHTTP(w, req)
	return w
}

func TestApp_EndToEnd(t *testing.T) {
	app := newTestApp(t, "")

	w := serve(app, http.MethodGet, "/api/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"OK"`)

	w = serve(app, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(app, http.MethodPost, "/api/sessions/u1", map[string]string{"sessionId": "session_1"}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = serve(app, http.MethodPost, "/api/chat", map[string]string{"query": "Boost creep?", "user_id": "u1", "session_id": "session_1"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Check the wastegate.","source":"message"}`, w.Body.String())

	w = serve(app, http.MethodGet, "/api/sessions/u1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "session_1")
}

func TestApp_UnknownRoute(t *testing.T) {
	app := newTestApp(t, "")

	w := serve(app, http.MethodGet, "/api/nope", nil, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"code":404,"message":"API route not found"}`, w.Body.String())
}

func TestApp_CORS(t *testing.T) {
	app := newTestApp(t, "")

	header := http.Header{}
	header.Set("Origin", "http://localhost:19006")
	header.Set("Access-Control-Request-Method", http.MethodPut)
	w := serve(app, http.MethodOptions, "/api/sessions/u1/s1", nil, header)
	assert.Equal(t, "http://localhost:19006", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	header.Set("Origin", "https://evil.example")
	w = serve(app, http.MethodOptions, "/api/sessions/u1/s1", nil, header)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestApp_JWTProtectsSessions(t *testing.T) {
	app := newTestApp(t, "secret")

	w := serve(app, http.MethodGet, "/api/sessions/u1", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	svc, err := auth.NewJWTService("secret", time.Hour)
	require.NoError(t, err)
	token, err := svc.GenerateToken("u1")
	require.NoError(t, err)
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	w = serve(app, http.MethodGet, "/api/sessions/u1", nil, header)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(app, http.MethodGet, "/api/sessions/u2", nil, header)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// health continua público
	w = serve(app, http.MethodGet, "/api/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

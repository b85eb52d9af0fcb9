package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/talonai-chat/internal/adapter/api/dto"
	"github.com/hugohenrick/talonai-chat/internal/adapter/repository"
	"github.com/hugohenrick/talonai-chat/internal/domain/chat"
	"github.com/hugohenrick/talonai-chat/internal/infrastructure/database"
	"github.com/hugohenrick/talonai-chat/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newSessionRouter(t *testing.T) *gin.Engine {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chat.db")
	require.NoError(t, database.RunMigrations(database.DriverSQLite, path, logger.Discard()))
	db, err := database.OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	c := NewSessionController(repository.NewSQLiteChatRepository(db), logger.Discard())
	r := gin.New()
	r.GET("/sessions/:userId", c.List)
	r.POST("/sessions/:userId", c.Create)
	r.GET("/sessions/:userId/:sessionId", c.Get)
	r.PUT("/sessions/:userId/:sessionId", c.Update)
	r.DELETE("/sessions/:userId/:sessionId", c.Delete)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return doJSONWithToken(t, r, method, path, body, "")
}

func doJSONWithToken(t *testing.T, r http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestSessionController_CreateAndGet(t *testing.T) {
	r := newSessionRouter(t)

	w := doJSON(t, r, http.MethodPost, "/sessions/u1", map[string]string{"sessionId": "session_1"})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[chat.Session](t, w)
	assert.Equal(t, "New Chat", created.Title)
	assert.Equal(t, "u1", created.UserID)

	w = doJSON(t, r, http.MethodGet, "/sessions/u1/session_1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[map[string]any](t, w)
	assert.Equal(t, "session_1", got["sessionId"])
	assert.Equal(t, []any{}, got["messages"])

	w = doJSON(t, r, http.MethodPost, "/sessions/u1", map[string]string{"sessionId": "session_1"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSessionController_CreateRequiresSessionID(t *testing.T) {
	r := newSessionRouter(t)

	w := doJSON(t, r, http.MethodPost, "/sessions/u1", map[string]string{"title": "x"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[dto.ErrorResponse](t, w)
	assert.Contains(t, resp.Details, "sessionId is required")

	w = doJSON(t, r, http.MethodPost, "/sessions/u1", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionController_UpdateDerivesTitle(t *testing.T) {
	r := newSessionRouter(t)

	w := doJSON(t, r, http.MethodPost, "/sessions/u1", map[string]string{"sessionId": "s1"})
	require.Equal(t, http.StatusCreated, w.Code)

	body := map[string]any{
		"messages": []map[string]string{
			{"sender": "user", "text": "Need turbo advice for a WRX"},
			{"sender": "agent", "text": "Sure, what year?"},
		},
	}
	w = doJSON(t, r, http.MethodPut, "/sessions/u1/s1", body)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[chat.Session](t, w)
	assert.Equal(t, "Need turbo advice for a WRX", updated.Title)
	require.Len(t, updated.Messages, 2)
	assert.Equal(t, chat.SenderAgent, updated.Messages[1].Sender)
	assert.False(t, updated.Messages[0].Timestamp.IsZero())

	w = doJSON(t, r, http.MethodGet, "/sessions/u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]map[string]any](t, w)
	require.Len(t, list, 1)
	assert.NotContains(t, list[0], "messages")
	assert.Equal(t, "Need turbo advice for a WRX", list[0]["title"])
}

func TestSessionController_UpdateValidation(t *testing.T) {
	r := newSessionRouter(t)

	tests := []struct {
		name    string
		body    any
		details string
	}{
		{"messages missing", map[string]any{"title": "x"}, "messages is required"},
		{"messages not an array", `{"messages":"hello"}`, ""},
		{"bad sender", map[string]any{"messages": []map[string]string{{"sender": "bot", "text": "x"}}}, "messages[0].sender must be one of [user agent]"},
		{"empty text", map[string]any{"messages": []map[string]string{{"sender": "user"}}}, "messages[0].text is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPut, "/sessions/u1/s1", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			resp := decode[dto.ErrorResponse](t, w)
			assert.Equal(t, "messages array is required", resp.Message)
			if tt.details != "" {
				assert.Contains(t, resp.Details, tt.details)
			}
		})
	}

	// nada foi gravado
	w := doJSON(t, r, http.MethodGet, "/sessions/u1/s1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionController_UpdateOtherUsersSession(t *testing.T) {
	r := newSessionRouter(t)

	w := doJSON(t, r, http.MethodPost, "/sessions/u1", map[string]string{"sessionId": "s1"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPut, "/sessions/u2/s1", map[string]any{"messages": []any{}})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSessionController_Delete(t *testing.T) {
	r := newSessionRouter(t)

	w := doJSON(t, r, http.MethodPut, "/sessions/u1/s1", map[string]any{
		"messages": []map[string]string{{"sender": "user", "text": "bye"}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/sessions/u1/s1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Session deleted successfully", decode[dto.MessageResponse](t, w).Message)

	w = doJSON(t, r, http.MethodGet, "/sessions/u1/s1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/sessions/u1/s1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionController_StorageErrorIsGeneric(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.db")
	require.NoError(t, database.RunMigrations(database.DriverSQLite, path, logger.Discard()))
	db, err := database.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	c := NewSessionController(repository.NewSQLiteChatRepository(db), logger.Discard())
	r := gin.New()
	r.GET("/sessions/:userId", c.List)

	w := doJSON(t, r, http.MethodGet, "/sessions/u1", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decode[dto.ErrorResponse](t, w)
	assert.Equal(t, "internal server error", resp.Message)
	assert.Empty(t, resp.Details)
}

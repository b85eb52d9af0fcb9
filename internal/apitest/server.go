// Package apitest sobe a API completa sobre SQLite para testes de clientes HTTP.
package apitest

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/talonai-chat/internal/adapter/api/controller"
	"github.com/hugohenrick/talonai-chat/internal/adapter/api/route"
	"github.com/hugohenrick/talonai-chat/internal/adapter/repository"
	"github.com/hugohenrick/talonai-chat/internal/domain/chat"
	"github.com/hugohenrick/talonai-chat/internal/infrastructure/database"
	"github.com/hugohenrick/talonai-chat/pkg/logger"
	"github.com/hugohenrick/talonai-chat/pkg/relay"
	"github.com/stretchr/testify/require"
)

// UpstreamFunc responde no lugar do serviço de IA
type UpstreamFunc func(w http.ResponseWriter, r *http.Request)

// Server é a API de teste; URL já inclui o prefixo /api
type Server struct {
	URL  string
	Repo chat.Repository

	mu       sync.Mutex
	upstream UpstreamFunc
	puts     int
}

// SetUpstream troca o comportamento do serviço de IA simulado
func (s *Server) SetUpstream(fn UpstreamFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upstream = fn
}

// Puts retorna quantas substituições de mensagens a API recebeu
func (s *Server) Puts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

// NewServer sobe a API com um serviço de IA que ecoa a pergunta
func NewServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	path := filepath.Join(t.TempDir(), "chat.db")
	require.NoError(t, database.RunMigrations(database.DriverSQLite, path, logger.Discard()))
	db, err := database.OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := &Server{Repo: repository.NewSQLiteChatRepository(db)}
	s.upstream = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"echo"}`))
	}

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		fn := s.upstream
		s.mu.Unlock()
		fn(w, r)
	}))
	t.Cleanup(upstream.Close)

	relayClient, err := relay.NewClient(relay.Config{BaseURL: upstream.URL}, logger.Discard())
	require.NoError(t, err)

	router := gin.New()
	api := router.Group("/api")
	api.Use(func(c *gin.Context) {
		if c.Request.Method == http.MethodPut {
			s.mu.Lock()
			s.puts++
			s.mu.Unlock()
		}
	})
	route.SetupSessionRoutes(api, controller.NewSessionController(s.Repo, logger.Discard()))
	route.SetupChatRoutes(api, controller.NewChatController(relayClient, logger.Discard()))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	s.URL = srv.URL + "/api"
	return s
}

package main

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/hugohenrick/talonai-chat/docs"
	"github.com/hugohenrick/talonai-chat/internal/adapter/api/controller"
	"github.com/hugohenrick/talonai-chat/internal/adapter/api/dto"
	"github.com/hugohenrick/talonai-chat/internal/adapter/api/route"
	"github.com/hugohenrick/talonai-chat/internal/adapter/repository"
	"github.com/hugohenrick/talonai-chat/internal/config"
	"github.com/hugohenrick/talonai-chat/internal/domain/chat"
	"github.com/hugohenrick/talonai-chat/internal/infrastructure/database"
	"github.com/hugohenrick/talonai-chat/pkg/auth"
	"github.com/hugohenrick/talonai-chat/pkg/logger"
	"github.com/hugohenrick/talonai-chat/pkg/middleware"
	"github.com/hugohenrick/talonai-chat/pkg/relay"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// App representa a aplicação e suas dependências
type App struct {
	router   *gin.Engine
	pgDB     *database.PostgresDB
	sqliteDB *sql.DB
	logger   logger.Logger
}

// NewApp cria uma nova instância do aplicativo
func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	app := &App{logger: log}

	chatRepo, err := app.setupRepository(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	relayClient, err := relay.NewClient(relay.Config{
		BaseURL:   cfg.AI.BackendURL,
		Origin:    cfg.AI.Origin,
		UserAgent: cfg.AI.UserAgent,
		Timeout:   cfg.AI.Timeout,
	}, log)
	if err != nil {
		app.Close()
		return nil, err
	}

	// Criar controllers
	sessionController := controller.NewSessionController(chatRepo, log)
	chatController := controller.NewChatController(relayClient, log)
	healthController := controller.NewHealthController(chatRepo, log)

	var protected []gin.HandlerFunc
	if cfg.Auth.JWTSecret != "" {
		jwtService, err := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiration)
		if err != nil {
			app.Close()
			return nil, err
		}
		protected = append(protected, auth.JWTAuthMiddleware(jwtService))
	} else {
		log.Warn("JWT_SECRET não configurada; rotas de sessão sem autenticação")
	}

	gin.SetMode(cfg.Server.GinMode)
	app.router = newRouter(cfg.Server, log)

	// Health check fica fora do prefixo, como no servidor original, e também sob ele
	route.SetupHealthRoutes(app.router, healthController)

	api := app.router.Group(cfg.Server.BasePath)
	route.SetupHealthRoutes(api, healthController)
	route.SetupSessionRoutes(api, sessionController, protected...)
	route.SetupChatRoutes(api, chatController, protected...)
	api.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return app, nil
}

func newRouter(server config.ServerConfig, log logger.Logger) *gin.Engine {
	router := gin.New()

	// Configurar CORS e outros middlewares globais
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = server.CORSOrigins
	corsConfig.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true

	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(log),
		gin.Recovery(),
		cors.New(corsConfig),
	)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound, "API route not found", ""))
	})

	return router
}

// setupRepository escolhe o armazenamento conforme DB_DRIVER e aplica as migrações se configurado
func (a *App) setupRepository(cfg *config.Config) (chat.Repository, error) {
	driver := cfg.Database.Driver
	target := cfg.DatabaseTarget()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(driver, target, a.logger); err != nil {
			return nil, fmt.Errorf("erro ao executar migrações: %w", err)
		}
	}

	switch driver {
	case database.DriverSQLite:
		db, err := database.OpenSQLite(target)
		if err != nil {
			return nil, err
		}
		a.sqliteDB = db
		a.logger.Info("armazenamento SQLite configurado", "path", target)
		return repository.NewSQLiteChatRepository(db), nil
	default:
		db, err := database.NewPostgresDB(&database.PostgresConfig{
			URL:            target,
			MaxConnections: cfg.Database.MaxConnections,
			MinConnections: cfg.Database.MinConnections,
		}, a.logger)
		if err != nil {
			return nil, err
		}
		a.pgDB = db
		a.logger.Info("armazenamento PostgreSQL configurado")
		return repository.NewChatRepository(db), nil
	}
}

// GetRouter retorna o router da aplicação
func (a *App) GetRouter() *gin.Engine {
	return a.router
}

// Close libera os recursos da aplicação
func (a *App) Close() {
	if a.pgDB != nil {
		a.pgDB.Close()
	}
	if a.sqliteDB != nil {
		a.sqliteDB.Close()
	}
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hugohenrick/talonai-chat/internal/config"
	"github.com/hugohenrick/talonai-chat/pkg/logger"
	"github.com/joho/godotenv"
)

func main() {
	// Carregar variáveis de ambiente
	if err := godotenv.Load(); err != nil {
		log.Printf("Aviso: Arquivo .env não encontrado: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Erro ao carregar configuração: %v", err)
	}

	appLogger := logger.NewLogger()
	appLogger.SetLevel(cfg.LogLevel)

	// Criar aplicação
	app, err := NewApp(cfg, appLogger)
	if err != nil {
		appLogger.Error("erro ao criar aplicação", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           app.GetRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Iniciar o servidor
	go func() {
		appLogger.Info("servidor iniciado", "port", cfg.Server.Port, "base_path", cfg.Server.BasePath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("erro no servidor HTTP", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("encerrando servidor")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("erro ao encerrar servidor", "error", err)
	}
}

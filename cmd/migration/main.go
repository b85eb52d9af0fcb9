package main

import (
	"flag"
	"log"

	"github.com/hugohenrick/talonai-chat/internal/config"
	"github.com/hugohenrick/talonai-chat/internal/infrastructure/database"
	"github.com/hugohenrick/talonai-chat/pkg/logger"
	"github.com/joho/godotenv"
)

func main() {
	down := flag.Bool("down", false, "reverte todas as migrações")
	flag.Parse()

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

	if *down {
		if err := database.RollbackMigrations(cfg.Database.Driver, cfg.DatabaseTarget(), appLogger); err != nil {
			log.Fatalf("Erro ao reverter migrações: %v", err)
		}
		log.Println("Migrações revertidas com sucesso!")
		return
	}

	// Executar as migrações
	if err := database.RunMigrations(cfg.Database.Driver, cfg.DatabaseTarget(), appLogger); err != nil {
		log.Fatalf("Erro ao executar migrações: %v", err)
	}

	log.Println("Migrações executadas com sucesso!")
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/hugohenrick/talonai-chat/internal/infrastructure/database"
	"github.com/spf13/viper"
)

// Config contém toda a configuração da aplicação
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	AI       AIConfig
	Auth     AuthConfig
	LogLevel string
}

// ServerConfig contém a configuração do servidor HTTP
type ServerConfig struct {
	Port        string
	GinMode     string
	BasePath    string
	CORSOrigins []string
}

// DatabaseConfig contém a configuração do armazenamento de sessões
type DatabaseConfig struct {
	Driver         string
	URL            string
	SQLitePath     string
	MaxConnections int32
	MinConnections int32
	AutoMigrate    bool
}

// AIConfig contém a configuração do serviço de IA
type AIConfig struct {
	BackendURL string
	Origin     string
	UserAgent  string
	Timeout    time.Duration
}

// AuthConfig contém a configuração de autenticação; sem segredo, a API fica aberta
type AuthConfig struct {
	JWTSecret     string
	JWTExpiration time.Duration
}

// DefaultCORSOrigins são as origens aceitas quando CORS_ORIGINS não é informada
var DefaultCORSOrigins = []string{
	"https://talonai.us",
	"https://www.talonai.us",
	"http://localhost:3000",
	"http://localhost:3001",
	"http://localhost:19006",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "3001")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("API_BASE_PATH", "/api")
	v.SetDefault("CORS_ORIGINS", strings.Join(DefaultCORSOrigins, ","))

	v.SetDefault("DB_DRIVER", database.DriverPostgres)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SQLITE_PATH", "talonai.db")
	v.SetDefault("DB_MAX_CONNECTIONS", 10)
	v.SetDefault("DB_MIN_CONNECTIONS", 2)
	v.SetDefault("AUTO_MIGRATE", true)

	v.SetDefault("AI_BACKEND_URL", "https://talonaibackend.onrender.com")
	v.SetDefault("AI_ORIGIN", "https://talonai.us")
	v.SetDefault("AI_USER_AGENT", "TalonAIFrontend/1.0")
	v.SetDefault("AI_TIMEOUT", "30s")

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("LOG_LEVEL", "info")
}

// Load lê a configuração das variáveis de ambiente (o .env já deve ter sido carregado)
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:        v.GetString("PORT"),
			GinMode:     v.GetString("GIN_MODE"),
			BasePath:    normalizeBasePath(v.GetString("API_BASE_PATH")),
			CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),
		},
		Database: DatabaseConfig{
			Driver:         strings.ToLower(v.GetString("DB_DRIVER")),
			URL:            v.GetString("DATABASE_URL"),
			SQLitePath:     v.GetString("SQLITE_PATH"),
			MaxConnections: v.GetInt32("DB_MAX_CONNECTIONS"),
			MinConnections: v.GetInt32("DB_MIN_CONNECTIONS"),
			AutoMigrate:    v.GetBool("AUTO_MIGRATE"),
		},
		AI: AIConfig{
			BackendURL: v.GetString("AI_BACKEND_URL"),
			Origin:     v.GetString("AI_ORIGIN"),
			UserAgent:  v.GetString("AI_USER_AGENT"),
			Timeout:    v.GetDuration("AI_TIMEOUT"),
		},
		Auth: AuthConfig{
			JWTSecret:     v.GetString("JWT_SECRET"),
			JWTExpiration: v.GetDuration("JWT_EXPIRATION"),
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate verifica combinações inválidas de configuração
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case database.DriverPostgres:
		if c.Database.URL == "" {
			return database.ErrMissingDatabaseURL
		}
	case database.DriverSQLite:
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH não configurada")
		}
	default:
		return fmt.Errorf("DB_DRIVER inválido: %q", c.Database.Driver)
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("DB_MIN_CONNECTIONS (%d) maior que DB_MAX_CONNECTIONS (%d)",
			c.Database.MinConnections, c.Database.MaxConnections)
	}

	if c.AI.BackendURL == "" {
		return fmt.Errorf("AI_BACKEND_URL não configurada")
	}

	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI_TIMEOUT inválido: %s", c.AI.Timeout)
	}
	return nil
}

// DatabaseTarget retorna a URL ou o caminho do banco conforme o driver
func (c *Config) DatabaseTarget() string {
	if c.Database.Driver == database.DriverSQLite {
		return c.Database.SQLitePath
	}
	return c.Database.URL
}

func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == "/" {
		return ""
	}
	return "/" + strings.Trim(p, "/")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

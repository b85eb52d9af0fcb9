package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hugohenrick/talonai-chat/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/singleflight"
)

// ErrMissingDatabaseURL ocorre quando a string de conexão não é informada
var ErrMissingDatabaseURL = errors.New("DATABASE_URL não configurada")

// PostgresConfig contém as configurações para conexão com o PostgreSQL
type PostgresConfig struct {
	URL             string
	MaxConnections  int32
	MinConnections  int32
	MaxConnLifetime time.Duration
	ConnectTimeout  time.Duration
}

// PostgresDB gerencia a conexão com o PostgreSQL.
// O pool é aberto na primeira utilização; chamadas concorrentes durante a
// abertura compartilham a mesma tentativa.
type PostgresDB struct {
	config *PostgresConfig
	logger logger.Logger

	mu    sync.RWMutex
	pool  *pgxpool.Pool
	group singleflight.Group
}

// NewPostgresDB valida a configuração e prepara a conexão com o banco de dados PostgreSQL
func NewPostgresDB(config *PostgresConfig, log logger.Logger) (*PostgresDB, error) {
	if config == nil || config.URL == "" {
		return nil, ErrMissingDatabaseURL
	}

	if _, err := pgxpool.ParseConfig(config.URL); err != nil {
		return nil, fmt.Errorf("erro ao analisar configuração do pool: %w", err)
	}

	return &PostgresDB{
		config: config,
		logger: log,
	}, nil
}

// Pool retorna o pool de conexões, abrindo-o se necessário
func (db *PostgresDB) Pool(ctx context.Context) (*pgxpool.Pool, error) {
	db.mu.RLock()
	pool := db.pool
	db.mu.RUnlock()
	if pool != nil {
		return pool, nil
	}

	ch := db.group.DoChan("pool", func() (interface{}, error) {
		db.mu.RLock()
		existing := db.pool
		db.mu.RUnlock()
		if existing != nil {
			return existing, nil
		}

		pool, err := db.connect()
		if err != nil {
			return nil, err
		}

		db.mu.Lock()
		db.pool = pool
		db.mu.Unlock()
		return pool, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*pgxpool.Pool), nil
	}
}

func (db *PostgresDB) connect() (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(db.config.URL)
	if err != nil {
		return nil, fmt.Errorf("erro ao analisar configuração do pool: %w", err)
	}

	if db.config.MaxConnections > 0 {
		config.MaxConns = db.config.MaxConnections
	}
	if db.config.MinConnections > 0 {
		config.MinConns = db.config.MinConnections
	}
	config.MaxConnLifetime = 1 * time.Hour
	if db.config.MaxConnLifetime > 0 {
		config.MaxConnLifetime = db.config.MaxConnLifetime
	}
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = 1 * time.Minute

	timeout := db.config.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("erro ao criar pool de conexões: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("erro ao verificar conexão com o banco de dados: %w", err)
	}

	db.logger.Info("pool de conexões PostgreSQL aberto", "max_conns", config.MaxConns)
	return pool, nil
}

// Ping verifica a conexão com o banco
func (db *PostgresDB) Ping(ctx context.Context) error {
	pool, err := db.Pool(ctx)
	if err != nil {
		return err
	}
	return pool.Ping(ctx)
}

// Close fecha o pool de conexões
func (db *PostgresDB) Close() {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.pool != nil {
		db.pool.Close()
		db.pool = nil
	}
}

// Transaction executa uma função dentro de uma transação
func (db *PostgresDB) Transaction(ctx context.Context, opts pgx.TxOptions, txFunc func(tx pgx.Tx) error) error {
	pool, err := db.Pool(ctx)
	if err != nil {
		return err
	}

	// Iniciar transação
	tx, err := pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("erro ao iniciar transação: %w", err)
	}

	// Executar função dentro da transação
	if err := txFunc(tx); err != nil {
		// Rollback em caso de erro
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			db.logger.Error("erro ao fazer rollback", "error", rbErr)
		}
		return err
	}

	// Commit se tudo ocorreu bem
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("erro ao fazer commit: %w", err)
	}

	return nil
}

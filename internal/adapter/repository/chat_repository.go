package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hugohenrick/talonai-chat/internal/domain/chat"
	"github.com/hugohenrick/talonai-chat/internal/infrastructure/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Erros específicos do repositório
var (
	ErrSessionNotFound = errors.New("sessão não encontrada")
	ErrSessionExists   = errors.New("sessão com mesmo sessionId já existe")
)

const pgUniqueViolation = "23505"

// ChatRepository implementa chat.Repository sobre o PostgreSQL
type ChatRepository struct {
	db *database.PostgresDB
}

// NewChatRepository cria uma nova instância de ChatRepository
func NewChatRepository(db *database.PostgresDB) chat.Repository {
	return &ChatRepository{
		db: db,
	}
}

// ListSessions implementa chat.Repository.ListSessions
func (r *ChatRepository) ListSessions(ctx context.Context, userID string) ([]chat.Summary, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, `
		SELECT session_id, title, created_at, last_updated
		FROM chat_sessions
		WHERE user_id = $1
		ORDER BY last_updated DESC
		LIMIT $2
	`, userID, chat.MaxSessionList)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar sessões: %w", err)
	}
	defer rows.Close()

	summaries := []chat.Summary{}
	for rows.Next() {
		var s chat.Summary
		if err := rows.Scan(&s.SessionID, &s.Title, &s.CreatedAt, &s.LastUpdated); err != nil {
			return nil, fmt.Errorf("erro ao ler sessão: %w", err)
		}
		s.CreatedAt, s.LastUpdated = s.CreatedAt.UTC(), s.LastUpdated.UTC()
		summaries = append(summaries, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao ler linhas: %w", err)
	}

	return summaries, nil
}

// GetSession implementa chat.Repository.GetSession
func (r *ChatRepository) GetSession(ctx context.Context, userID, sessionID string) (*chat.Session, error) {
	var session *chat.Session

	// Leitura em snapshot único para não observar uma troca de mensagens pela metade
	err := r.db.Transaction(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, func(tx pgx.Tx) error {
		s := chat.Session{SessionID: sessionID, UserID: userID}
		err := tx.QueryRow(ctx, `
			SELECT title, created_at, last_updated
			FROM chat_sessions
			WHERE user_id = $1 AND session_id = $2
		`, userID, sessionID).Scan(&s.Title, &s.CreatedAt, &s.LastUpdated)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("erro ao buscar sessão: %w", err)
		}
		s.CreatedAt, s.LastUpdated = s.CreatedAt.UTC(), s.LastUpdated.UTC()

		messages, err := r.loadMessages(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		s.Messages = messages
		session = &s
		return nil
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

// CreateSession implementa chat.Repository.CreateSession
func (r *ChatRepository) CreateSession(ctx context.Context, userID, sessionID, title string) (*chat.Session, error) {
	session, err := chat.NewSession(userID, sessionID, title)
	if err != nil {
		return nil, err
	}

	pool, err := r.db.Pool(ctx)
	if err != nil {
		return nil, err
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO chat_sessions (session_id, user_id, title, created_at, last_updated)
		VALUES ($1, $2, $3, $4, $5)
	`, session.SessionID, session.UserID, session.Title, session.CreatedAt, session.LastUpdated)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSessionExists
		}
		return nil, fmt.Errorf("erro ao criar sessão: %w", err)
	}

	return session, nil
}

// ReplaceMessages implementa chat.Repository.ReplaceMessages
func (r *ChatRepository) ReplaceMessages(ctx context.Context, userID, sessionID string, messages []chat.Message, title *string) (*chat.Session, error) {
	if userID == "" {
		return nil, chat.ErrEmptyUserID
	}
	if sessionID == "" {
		return nil, chat.ErrEmptySessionID
	}
	messages = chat.NormalizeMessages(messages)

	var session *chat.Session
	err := r.db.Transaction(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		now := chat.Now()
		if _, err := tx.Exec(ctx, `
			INSERT INTO chat_sessions (session_id, user_id, title, created_at, last_updated)
			VALUES ($1, $2, $3, $4, $4)
			ON CONFLICT (session_id) DO NOTHING
		`, sessionID, userID, chat.DefaultTitle, now); err != nil {
			return fmt.Errorf("erro ao criar sessão: %w", err)
		}

		// Trava a linha da sessão até o commit
		var owner, currentTitle string
		var createdAt, lastUpdated time.Time
		err := tx.QueryRow(ctx, `
			SELECT user_id, title, created_at, last_updated
			FROM chat_sessions
			WHERE session_id = $1
			FOR UPDATE
		`, sessionID).Scan(&owner, &currentTitle, &createdAt, &lastUpdated)
		if err != nil {
			return fmt.Errorf("erro ao travar sessão: %w", err)
		}
		if owner != userID {
			return ErrSessionExists
		}

		if _, err := tx.Exec(ctx, `DELETE FROM chat_messages WHERE session_id = $1`, sessionID); err != nil {
			return fmt.Errorf("erro ao remover mensagens: %w", err)
		}

		if len(messages) > 0 {
			_, err := tx.CopyFrom(ctx,
				pgx.Identifier{"chat_messages"},
				[]string{"session_id", "position", "sender", "text", "timestamp"},
				pgx.CopyFromSlice(len(messages), func(i int) ([]any, error) {
					m := messages[i]
					return []any{sessionID, i, string(m.Sender), m.Text, m.Timestamp}, nil
				}),
			)
			if err != nil {
				return fmt.Errorf("erro ao inserir mensagens: %w", err)
			}
		}

		newTitle := chat.ResolveTitle(currentTitle, title, messages)
		newLastUpdated := chat.NextUpdate(lastUpdated.UTC())
		if _, err := tx.Exec(ctx, `
			UPDATE chat_sessions SET title = $2, last_updated = $3
			WHERE session_id = $1
		`, sessionID, newTitle, newLastUpdated); err != nil {
			return fmt.Errorf("erro ao atualizar sessão: %w", err)
		}

		session = &chat.Session{
			SessionID:   sessionID,
			UserID:      userID,
			Title:       newTitle,
			Messages:    messages,
			CreatedAt:   createdAt.UTC(),
			LastUpdated: newLastUpdated,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

// DeleteSession implementa chat.Repository.DeleteSession
func (r *ChatRepository) DeleteSession(ctx context.Context, userID, sessionID string) error {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return err
	}

	// As mensagens são removidas em cascata pela chave estrangeira
	result, err := pool.Exec(ctx, `DELETE FROM chat_sessions WHERE user_id = $1 AND session_id = $2`, userID, sessionID)
	if err != nil {
		return fmt.Errorf("erro ao deletar sessão: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// Ping implementa chat.Repository.Ping
func (r *ChatRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *ChatRepository) loadMessages(ctx context.Context, tx pgx.Tx, sessionID string) ([]chat.Message, error) {
	rows, err := tx.Query(ctx, `
		SELECT sender, text, timestamp
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY position ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar mensagens: %w", err)
	}
	defer rows.Close()

	messages := []chat.Message{}
	for rows.Next() {
		var msg chat.Message
		var sender string
		if err := rows.Scan(&sender, &msg.Text, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("erro ao ler mensagem: %w", err)
		}
		msg.Sender = chat.Sender(sender)
		msg.Timestamp = msg.Timestamp.UTC()
		messages = append(messages, msg)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao ler linhas: %w", err)
	}

	return messages, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

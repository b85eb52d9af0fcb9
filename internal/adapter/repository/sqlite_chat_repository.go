package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hugohenrick/talonai-chat/internal/domain/chat"
)

// SQLiteChatRepository implementa chat.Repository sobre o SQLite (desenvolvimento local e testes)
type SQLiteChatRepository struct {
	db *sql.DB
}

// NewSQLiteChatRepository cria uma nova instância de SQLiteChatRepository
func NewSQLiteChatRepository(db *sql.DB) chat.Repository {
	return &SQLiteChatRepository{
		db: db,
	}
}

// ListSessions implementa chat.Repository.ListSessions
func (r *SQLiteChatRepository) ListSessions(ctx context.Context, userID string) ([]chat.Summary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT session_id, title, created_at, last_updated
		FROM chat_sessions
		WHERE user_id = ?
		ORDER BY last_updated DESC
		LIMIT ?
	`, userID, chat.MaxSessionList)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar sessões: %w", err)
	}
	defer rows.Close()

	summaries := []chat.Summary{}
	for rows.Next() {
		var s chat.Summary
		var createdAt, lastUpdated int64
		if err := rows.Scan(&s.SessionID, &s.Title, &createdAt, &lastUpdated); err != nil {
			return nil, fmt.Errorf("erro ao ler sessão: %w", err)
		}
		s.CreatedAt, s.LastUpdated = fromMicros(createdAt), fromMicros(lastUpdated)
		summaries = append(summaries, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao ler linhas: %w", err)
	}

	return summaries, nil
}

// GetSession implementa chat.Repository.GetSession
func (r *SQLiteChatRepository) GetSession(ctx context.Context, userID, sessionID string) (*chat.Session, error) {
	var session *chat.Session

	err := r.transaction(ctx, func(tx *sql.Tx) error {
		s := chat.Session{SessionID: sessionID, UserID: userID}
		var createdAt, lastUpdated int64
		err := tx.QueryRowContext(ctx, `
			SELECT title, created_at, last_updated
			FROM chat_sessions
			WHERE user_id = ? AND session_id = ?
		`, userID, sessionID).Scan(&s.Title, &createdAt, &lastUpdated)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("erro ao buscar sessão: %w", err)
		}
		s.CreatedAt, s.LastUpdated = fromMicros(createdAt), fromMicros(lastUpdated)

		rows, err := tx.QueryContext(ctx, `
			SELECT sender, text, timestamp
			FROM chat_messages
			WHERE session_id = ?
			ORDER BY position ASC
		`, sessionID)
		if err != nil {
			return fmt.Errorf("erro ao buscar mensagens: %w", err)
		}
		defer rows.Close()

		s.Messages = []chat.Message{}
		for rows.Next() {
			var msg chat.Message
			var sender string
			var ts int64
			if err := rows.Scan(&sender, &msg.Text, &ts); err != nil {
				return fmt.Errorf("erro ao ler mensagem: %w", err)
			}
			msg.Sender = chat.Sender(sender)
			msg.Timestamp = fromMicros(ts)
			s.Messages = append(s.Messages, msg)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("erro ao ler linhas: %w", err)
		}

		session = &s
		return nil
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

// CreateSession implementa chat.Repository.CreateSession
func (r *SQLiteChatRepository) CreateSession(ctx context.Context, userID, sessionID, title string) (*chat.Session, error) {
	session, err := chat.NewSession(userID, sessionID, title)
	if err != nil {
		return nil, err
	}

	err = r.transaction(ctx, func(tx *sql.Tx) error {
		exists, err := sessionExists(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if exists {
			return ErrSessionExists
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO chat_sessions (session_id, user_id, title, created_at, last_updated)
			VALUES (?, ?, ?, ?, ?)
		`, session.SessionID, session.UserID, session.Title, session.CreatedAt.UnixMicro(), session.LastUpdated.UnixMicro())
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				return ErrSessionExists
			}
			return fmt.Errorf("erro ao criar sessão: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

// ReplaceMessages implementa chat.Repository.ReplaceMessages
func (r *SQLiteChatRepository) ReplaceMessages(ctx context.Context, userID, sessionID string, messages []chat.Message, title *string) (*chat.Session, error) {
	if userID == "" {
		return nil, chat.ErrEmptyUserID
	}
	if sessionID == "" {
		return nil, chat.ErrEmptySessionID
	}
	messages = chat.NormalizeMessages(messages)

	var session *chat.Session
	err := r.transaction(ctx, func(tx *sql.Tx) error {
		now := chat.Now().UnixMicro()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO chat_sessions (session_id, user_id, title, created_at, last_updated)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (session_id) DO NOTHING
		`, sessionID, userID, chat.DefaultTitle, now, now); err != nil {
			return fmt.Errorf("erro ao criar sessão: %w", err)
		}

		var owner, currentTitle string
		var createdAt, lastUpdated int64
		err := tx.QueryRowContext(ctx, `
			SELECT user_id, title, created_at, last_updated
			FROM chat_sessions
			WHERE session_id = ?
		`, sessionID).Scan(&owner, &currentTitle, &createdAt, &lastUpdated)
		if err != nil {
			return fmt.Errorf("erro ao buscar sessão: %w", err)
		}
		if owner != userID {
			return ErrSessionExists
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM chat_messages WHERE session_id = ?`, sessionID); err != nil {
			return fmt.Errorf("erro ao remover mensagens: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO chat_messages (session_id, position, sender, text, timestamp)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("erro ao preparar inserção de mensagens: %w", err)
		}
		defer stmt.Close()

		for i, m := range messages {
			if _, err := stmt.ExecContext(ctx, sessionID, i, string(m.Sender), m.Text, m.Timestamp.UnixMicro()); err != nil {
				return fmt.Errorf("erro ao inserir mensagem: %w", err)
			}
		}

		newTitle := chat.ResolveTitle(currentTitle, title, messages)
		newLastUpdated := chat.NextUpdate(fromMicros(lastUpdated))
		if _, err := tx.ExecContext(ctx, `
			UPDATE chat_sessions SET title = ?, last_updated = ?
			WHERE session_id = ?
		`, newTitle, newLastUpdated.UnixMicro(), sessionID); err != nil {
			return fmt.Errorf("erro ao atualizar sessão: %w", err)
		}

		session = &chat.Session{
			SessionID:   sessionID,
			UserID:      userID,
			Title:       newTitle,
			Messages:    messages,
			CreatedAt:   fromMicros(createdAt),
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
func (r *SQLiteChatRepository) DeleteSession(ctx context.Context, userID, sessionID string) error {
	return r.transaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM chat_sessions WHERE user_id = ? AND session_id = ?`, userID, sessionID)
		if err != nil {
			return fmt.Errorf("erro ao deletar sessão: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("erro ao verificar remoção: %w", err)
		}
		if affected == 0 {
			return ErrSessionNotFound
		}

		// Redundante com o ON DELETE CASCADE, mas não depende do pragma de chaves estrangeiras
		if _, err := tx.ExecContext(ctx, `DELETE FROM chat_messages WHERE session_id = ?`, sessionID); err != nil {
			return fmt.Errorf("erro ao remover mensagens: %w", err)
		}
		return nil
	})
}

// Ping implementa chat.Repository.Ping
func (r *SQLiteChatRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// transaction executa uma função dentro de uma transação
func (r *SQLiteChatRepository) transaction(ctx context.Context, txFunc func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("erro ao iniciar transação: %w", err)
	}

	if err := txFunc(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("erro ao fazer commit: %w", err)
	}
	return nil
}

func sessionExists(ctx context.Context, tx *sql.Tx, sessionID string) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM chat_sessions WHERE session_id = ?`, sessionID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("erro ao verificar existência da sessão: %w", err)
	}
	return n > 0, nil
}

func fromMicros(us int64) time.Time {
	return time.UnixMicro(us).UTC()
}

package chat

import (
	"context"
)

// Repository define a interface para operações de persistência de sessões de chat
type Repository interface {
	// ListSessions lista os resumos das sessões de um usuário, mais recentes primeiro
	ListSessions(ctx context.Context, userID string) ([]Summary, error)

	// GetSession busca uma sessão completa com suas mensagens
	GetSession(ctx context.Context, userID, sessionID string) (*Session, error)

	// CreateSession cria uma sessão vazia
	CreateSession(ctx context.Context, userID, sessionID, title string) (*Session, error)

	// ReplaceMessages substitui todas as mensagens da sessão (upsert)
	ReplaceMessages(ctx context.Context, userID, sessionID string, messages []Message, title *string) (*Session, error)

	// DeleteSession remove a sessão e suas mensagens
	DeleteSession(ctx context.Context, userID, sessionID string) error

	// Ping verifica se o armazenamento está acessível
	Ping(ctx context.Context) error
}

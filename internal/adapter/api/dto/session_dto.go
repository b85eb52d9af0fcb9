package dto

import (
	"time"

	"github.com/hugohenrick/talonai-chat/internal/domain/chat"
)

// CreateSessionRequest é o corpo de POST /sessions/{userId}
type CreateSessionRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Title     string `json:"title"`
}

// MessageRequest representa uma mensagem enviada pelo cliente
type MessageRequest struct {
	Sender    chat.Sender `json:"sender" binding:"required,oneof=user agent"`
	Text      string      `json:"text" binding:"required"`
	Timestamp time.Time   `json:"timestamp"`
}

// ReplaceMessagesRequest é o corpo de PUT /sessions/{userId}/{sessionId}
type ReplaceMessagesRequest struct {
	Messages []MessageRequest `json:"messages" binding:"required,dive"`
	Title    *string          `json:"title"`
}

// ToMessages converte a requisição para o domínio
func (r ReplaceMessagesRequest) ToMessages() []chat.Message {
	messages := make([]chat.Message, len(r.Messages))
	for i, m := range r.Messages {
		messages[i] = chat.Message{
			Sender:    m.Sender,
			Text:      m.Text,
			Timestamp: m.Timestamp,
		}
	}
	return messages
}

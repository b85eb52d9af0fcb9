package chat

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// DefaultTitle é o título de uma sessão recém-criada
	DefaultTitle = "New Chat"

	// MaxTitleLength é o número máximo de caracteres do título derivado
	MaxTitleLength = 30

	// MaxSessionList limita a listagem de sessões de um usuário
	MaxSessionList = 50
)

var (
	ErrEmptyUserID    = errors.New("userId não pode ser vazio")
	ErrEmptySessionID = errors.New("sessionId não pode ser vazio")
	ErrInvalidSender  = errors.New("sender deve ser 'user' ou 'agent'")
	ErrEmptyText      = errors.New("text não pode ser vazio")
)

// Sender identifica o autor de uma mensagem
type Sender string

const (
	SenderUser  Sender = "user"
	SenderAgent Sender = "agent"
)

// Valid verifica se o autor é conhecido
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderAgent
}

// Message representa um turno da conversa
type Message struct {
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage cria uma mensagem com o horário atual
func NewMessage(sender Sender, text string) Message {
	return Message{
		Sender:    sender,
		Text:      text,
		Timestamp: Now(),
	}
}

// Validate valida os campos obrigatórios da mensagem
func (m Message) Validate() error {
	if !m.Sender.Valid() {
		return ErrInvalidSender
	}
	if m.Text == "" {
		return ErrEmptyText
	}
	return nil
}

// Session representa uma conversa de um usuário
type Session struct {
	SessionID   string    `json:"sessionId"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Messages    []Message `json:"messages"`
	CreatedAt   time.Time `json:"createdAt"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Summary é a visão resumida usada na listagem (sem mensagens)
type Summary struct {
	SessionID   string    `json:"sessionId"`
	Title       string    `json:"title"`
	CreatedAt   time.Time `json:"createdAt"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// NewSession cria uma sessão vazia
func NewSession(userID, sessionID, title string) (*Session, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	if sessionID == "" {
		return nil, ErrEmptySessionID
	}
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}

	now := Now()
	return &Session{
		SessionID:   sessionID,
		UserID:      userID,
		Title:       title,
		Messages:    []Message{},
		CreatedAt:   now,
		LastUpdated: now,
	}, nil
}

// Summary retorna a visão resumida da sessão
func (s *Session) Summary() Summary {
	return Summary{
		SessionID:   s.SessionID,
		Title:       s.Title,
		CreatedAt:   s.CreatedAt,
		LastUpdated: s.LastUpdated,
	}
}

// ResolveTitle decide o título após uma substituição de mensagens.
// Um título explícito sempre vence; sem ele, o título só é derivado enquanto
// ainda for o padrão.
func ResolveTitle(current string, explicit *string, messages []Message) string {
	if explicit != nil && strings.TrimSpace(*explicit) != "" {
		return *explicit
	}
	if current != "" && current != DefaultTitle {
		return current
	}
	if derived := DeriveTitle(messages); derived != "" {
		return derived
	}
	return DefaultTitle
}

// DeriveTitle gera o título a partir da primeira mensagem do usuário
func DeriveTitle(messages []Message) string {
	for _, m := range messages {
		if m.Sender != SenderUser {
			continue
		}
		text := strings.TrimSpace(m.Text)
		if text == "" {
			continue
		}
		if utf8.RuneCountInString(text) <= MaxTitleLength {
			return text
		}
		runes := []rune(text)
		return string(runes[:MaxTitleLength]) + "..."
	}
	return ""
}

// Now retorna o horário atual em UTC com precisão de microssegundos,
// a mesma precisão do timestamptz do PostgreSQL.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// NextUpdate retorna um horário estritamente posterior a previous
func NextUpdate(previous time.Time) time.Time {
	now := Now()
	if !now.After(previous) {
		now = previous.Add(time.Microsecond)
	}
	return now
}

// NormalizeMessages preenche o timestamp ausente e ajusta a precisão
func NormalizeMessages(messages []Message) []Message {
	out := make([]Message, len(messages))
	now := Now()
	for i, m := range messages {
		if m.Timestamp.IsZero() {
			m.Timestamp = now
		}
		m.Timestamp = m.Timestamp.UTC().Truncate(time.Microsecond)
		out[i] = m
	}
	return out
}

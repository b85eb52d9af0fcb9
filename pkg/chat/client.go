package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	domain "github.com/hugohenrick/talonai-chat/internal/domain/chat"
	"github.com/hugohenrick/talonai-chat/pkg/logger"
)

const defaultTimeout = 40 * time.Second

// Erros retornados pela API, comparáveis com errors.Is
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// APIError representa uma resposta de erro da API de sessões ou do relay
type APIError struct {
	StatusCode int    `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%d: %s (%s)", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// Is permite errors.Is(err, ErrNotFound) e errors.Is(err, ErrConflict)
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrConflict:
		return e.StatusCode == http.StatusConflict
	}
	return false
}

// Reply é a resposta do relay de chat
type Reply struct {
	Message string `json:"message"`
	Source  string `json:"source"`
}

// Options configura o Client
type Options struct {
	// Token JWT enviado no cabeçalho Authorization, se a API exigir
	Token      string
	HTTPClient *http.Client
	Logger     logger.Logger
}

// Client acessa a API de sessões e o relay de chat do backend TalonAI
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	logger  logger.Logger
}

// NewClient cria um cliente para a API em baseURL (ex.: http://localhost:3001/api)
func NewClient(baseURL string, opts Options) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("URL da API inválida: %w", err)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   opts.Token,
		client:  opts.HTTPClient,
		logger:  opts.Logger,
	}, nil
}

// ListSessions retorna as sessões do usuário, mais recentes primeiro
func (c *Client) ListSessions(ctx context.Context, userID string) ([]domain.Summary, error) {
	var sessions []domain.Summary
	err := c.do(ctx, http.MethodGet, sessionsPath(userID), nil, &sessions)
	return sessions, err
}

// GetSession retorna a sessão com suas mensagens
func (c *Client) GetSession(ctx context.Context, userID, sessionID string) (*domain.Session, error) {
	var session domain.Session
	if err := c.do(ctx, http.MethodGet, sessionsPath(userID, sessionID), nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// CreateSession cria uma sessão vazia
func (c *Client) CreateSession(ctx context.Context, userID, sessionID, title string) (*domain.Session, error) {
	body := map[string]string{"sessionId": sessionID}
	if title != "" {
		body["title"] = title
	}

	var session domain.Session
	if err := c.do(ctx, http.MethodPost, sessionsPath(userID), body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SaveMessages substitui a lista completa de mensagens da sessão
func (c *Client) SaveMessages(ctx context.Context, userID, sessionID string, messages []domain.Message) (*domain.Session, error) {
	if messages == nil {
		messages = []domain.Message{}
	}
	body := map[string]any{"messages": messages}

	var session domain.Session
	if err := c.do(ctx, http.MethodPut, sessionsPath(userID, sessionID), body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteSession remove a sessão
func (c *Client) DeleteSession(ctx context.Context, userID, sessionID string) error {
	return c.do(ctx, http.MethodDelete, sessionsPath(userID, sessionID), nil, nil)
}

// Ask envia a pergunta ao relay de chat
func (c *Client) Ask(ctx context.Context, userID, sessionID, query string) (Reply, error) {
	body := map[string]string{
		"query":      query,
		"user_id":    userID,
		"session_id": sessionID,
	}

	var reply Reply
	err := c.do(ctx, http.MethodPost, "/chat", body, &reply)
	return reply, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		reqJSON, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("erro ao serializar requisição: %w", err)
		}
		reader = bytes.NewReader(reqJSON)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("erro ao criar requisição HTTP: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("erro na chamada %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("erro ao ler resposta: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{}
		if err := json.Unmarshal(respBody, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		apiErr.StatusCode = resp.StatusCode
		c.logger.Debug("API retornou erro", "method", method, "path", path, "status", resp.StatusCode)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("erro ao decodificar resposta: %w", err)
	}
	return nil
}

func sessionsPath(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return "/sessions/" + strings.Join(escaped, "/")
}

package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hugohenrick/talonai-chat/pkg/logger"
)

const (
	// DefaultTimeout limita a chamada ao serviço de IA
	DefaultTimeout = 30 * time.Second

	defaultOrigin    = "https://talonai.us"
	defaultUserAgent = "TalonAIFrontend/1.0"

	// limite de leitura do corpo da resposta
	maxBodySize = 4 << 20
)

// ErrUnavailable ocorre quando o serviço de IA não pode ser alcançado
var ErrUnavailable = errors.New("service unavailable")

// EmptyReplyMessage é a mensagem de erro para uma resposta 2xx sem texto
const EmptyReplyMessage = "empty reply from upstream"

// UpstreamError representa uma resposta não-2xx do serviço de IA
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return e.Message
}

// Config contém as configurações do cliente do serviço de IA
type Config struct {
	BaseURL   string
	Origin    string
	UserAgent string
	Timeout   time.Duration
}

// Request é o corpo enviado ao serviço de IA
type Request struct {
	Query     string `json:"query"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

// Client encaminha perguntas ao serviço de IA. Não guarda estado e faz uma
// única tentativa por chamada.
type Client struct {
	endpoint  string
	origin    string
	userAgent string
	client    *http.Client
	logger    logger.Logger
}

// NewClient cria um novo cliente do serviço de IA
func NewClient(cfg Config, log logger.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("AI_BACKEND_URL não configurada")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Origin == "" {
		cfg.Origin = defaultOrigin
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	return &Client{
		endpoint:  strings.TrimRight(cfg.BaseURL, "/") + "/chat/",
		origin:    cfg.Origin,
		userAgent: cfg.UserAgent,
		client:    &http.Client{Timeout: cfg.Timeout},
		logger:    log,
	}, nil
}

// Chat envia a pergunta e devolve a resposta extraída.
// Falhas de rede retornam ErrUnavailable; respostas não-2xx ou sem texto retornam *UpstreamError.
func (c *Client) Chat(ctx context.Context, req Request) (Reply, error) {
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return Reply{}, fmt.Errorf("erro ao serializar requisição: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqJSON))
	if err != nil {
		return Reply{}, fmt.Errorf("erro ao criar requisição HTTP: %w", err)
	}

	// Configurar headers
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Origin", c.origin)
	httpReq.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug("enviando pergunta ao serviço de IA", "user_id", req.UserID, "session_id", req.SessionID)

	started := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.Error("erro na chamada ao serviço de IA", "error", err)
		return Reply{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		c.logger.Error("erro ao ler resposta do serviço de IA", "error", err)
		return Reply{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	c.logger.Info("resposta do serviço de IA",
		"status", resp.StatusCode,
		"duration_ms", time.Since(started).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("serviço de IA retornou erro", "status", resp.StatusCode, "body", string(body))
		msg, ok := parseUpstreamError(body)
		if !ok {
			msg = fmt.Sprintf("upstream error: %d", resp.StatusCode)
		}
		return Reply{}, &UpstreamError{StatusCode: resp.StatusCode, Message: msg}
	}

	reply := ParseReply(body)
	if strings.TrimSpace(reply.Text) == "" {
		c.logger.Error("serviço de IA retornou resposta vazia", "status", resp.StatusCode)
		return Reply{}, &UpstreamError{StatusCode: http.StatusBadGateway, Message: EmptyReplyMessage}
	}

	return reply, nil
}

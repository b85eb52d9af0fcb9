// Package chatsession mantém o estado local de uma conversa do lado do cliente:
// sessão ativa, transcrição otimista e persistência assíncrona na API de sessões.
package chatsession

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	domain "github.com/hugohenrick/talonai-chat/internal/domain/chat"
	"github.com/hugohenrick/talonai-chat/pkg/chat"
	"github.com/hugohenrick/talonai-chat/pkg/logger"
	"github.com/qmuntal/stateless"
)

// State é o estado do controlador
type State string

const (
	StateNoSession State = "NoSession"
	StateCreating  State = "Creating"
	StateActive    State = "Active"
	StateLoading   State = "Loading"
)

type trigger string

const (
	triggerCreate       trigger = "Create"
	triggerCreated      trigger = "Created"
	triggerCreateFailed trigger = "CreateFailed"
	triggerSwitch       trigger = "Switch"
	triggerLoaded       trigger = "Loaded"
	triggerLoadFailed   trigger = "LoadFailed"
	triggerReset        trigger = "Reset"
)

// ErrorNotice é a resposta local exibida quando o relay falha
const ErrorNotice = "Sorry, there was an error."

const persistTimeout = 30 * time.Second

var (
	ErrEmptyMessage = errors.New("mensagem vazia")
	ErrBusy         = errors.New("operação em andamento")
	ErrEmptyReply   = errors.New("resposta vazia do assistente")
)

// API é o subconjunto do backend usado pelo controlador
type API interface {
	ListSessions(ctx context.Context, userID string) ([]domain.Summary, error)
	GetSession(ctx context.Context, userID, sessionID string) (*domain.Session, error)
	CreateSession(ctx context.Context, userID, sessionID, title string) (*domain.Session, error)
	SaveMessages(ctx context.Context, userID, sessionID string, messages []domain.Message) (*domain.Session, error)
	DeleteSession(ctx context.Context, userID, sessionID string) error
	Ask(ctx context.Context, userID, sessionID, query string) (chat.Reply, error)
}

// SendResult descreve o efeito de Send
type SendResult struct {
	// SessionCreated indica que nenhuma mensagem foi enviada: a sessão foi criada e o texto deve ser reenviado
	SessionCreated bool
	SessionID      string
	// Reply é a resposta do agente ou o aviso de erro
	Reply *domain.Message
	// RelayErr é o erro do relay, quando Reply é o aviso de erro
	RelayErr error
}

// Controller coordena a sessão ativa de um usuário
type Controller struct {
	api    API
	userID string
	logger logger.Logger

	mu        sync.Mutex
	fsm       *stateless.StateMachine
	sessionID string
	// incrementado a cada troca da transcrição exibida (switch, reset, criação)
	generation uint64
	messages   []domain.Message
	sessions  []domain.Summary
	// versão da última transcrição local de cada sessão
	versions map[string]uint64

	persistMu sync.Mutex
	pending   sync.WaitGroup
	warnings  chan error

	newSessionID func() string
}

// Option configura o Controller
type Option func(*Controller)

// WithLogger define o logger
func WithLogger(log logger.Logger) Option {
	return func(c *Controller) { c.logger = log }
}

// WithSessionIDGenerator substitui o gerador de IDs de sessão
func WithSessionIDGenerator(fn func() string) Option {
	return func(c *Controller) { c.newSessionID = fn }
}

// NewController cria um controlador sem sessão ativa
func NewController(api API, userID string, opts ...Option) *Controller {
	c := &Controller{
		api:          api,
		userID:       userID,
		logger:       logger.Discard(),
		versions:     make(map[string]uint64),
		warnings:     make(chan error, 16),
		newSessionID: NewSessionID,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.fsm = newStateMachine()
	return c
}

func newStateMachine() *stateless.StateMachine {
	fsm := stateless.NewStateMachine(StateNoSession)

	fsm.Configure(StateNoSession).
		Permit(triggerCreate, StateCreating).
		Permit(triggerSwitch, StateLoading).
		Ignore(triggerReset)

	fsm.Configure(StateCreating).
		Permit(triggerCreated, StateActive).
		Permit(triggerCreateFailed, StateNoSession)

	fsm.Configure(StateActive).
		Permit(triggerSwitch, StateLoading).
		Permit(triggerReset, StateNoSession)

	fsm.Configure(StateLoading).
		PermitReentry(triggerSwitch).
		Permit(triggerLoaded, StateActive).
		Permit(triggerLoadFailed, StateActive).
		Permit(triggerReset, StateNoSession)

	return fsm
}

// NewSessionID gera um ID no formato session_<unix-ms>_<aleatório>
func NewSessionID() string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), random)
}

// fire deve ser chamado com mu travado
func (c *Controller) fire(t trigger) {
	if err := c.fsm.Fire(t); err != nil {
		c.logger.Error("transição inválida", "trigger", string(t), "state", c.state(), "error", err)
	}
}

func (c *Controller) state() State {
	return c.fsm.MustState().(State)
}

// State retorna o estado atual
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state()
}

// SessionID retorna a sessão ativa ("" sem sessão)
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Messages retorna uma cópia da transcrição local
func (c *Controller) Messages() []domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Message(nil), c.messages...)
}

// Sessions retorna uma cópia da lista local de sessões
func (c *Controller) Sessions() []domain.Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Summary(nil), c.sessions...)
}

// Warnings entrega falhas de persistência; o estado local nunca é revertido por elas
func (c *Controller) Warnings() <-chan error {
	return c.warnings
}

// Wait aguarda as persistências pendentes
func (c *Controller) Wait() {
	c.pending.Wait()
}

// Refresh recarrega a lista de sessões do usuário
func (c *Controller) Refresh(ctx context.Context) ([]domain.Summary, error) {
	sessions, err := c.api.ListSessions(ctx, c.userID)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar sessões: %w", err)
	}

	c.mu.Lock()
	c.sessions = sessions
	c.mu.Unlock()
	return append([]domain.Summary(nil), sessions...), nil
}

// Send envia uma mensagem. Sem sessão ativa, apenas cria a sessão e retorna
// SessionCreated; o texto precisa ser reenviado.
func (c *Controller) Send(ctx context.Context, text string) (SendResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return SendResult{}, ErrEmptyMessage
	}

	c.mu.Lock()
	switch c.state() {
	case StateNoSession:
		c.fire(triggerCreate)
		c.mu.Unlock()
		return c.createSession(ctx)
	case StateActive:
		// segue abaixo
	default:
		c.mu.Unlock()
		return SendResult{}, ErrBusy
	}

	sessionID := c.sessionID
	generation := c.generation
	c.messages = append(c.messages, domain.NewMessage(domain.SenderUser, text))
	c.mu.Unlock()

	reply, relayErr := c.api.Ask(ctx, c.userID, sessionID, text)
	agentText := reply.Message
	if relayErr == nil && strings.TrimSpace(agentText) == "" {
		relayErr = ErrEmptyReply
	}
	if relayErr != nil {
		c.logger.Warn("erro no relay de chat", "session_id", sessionID, "error", relayErr)
		agentText = ErrorNotice
	}
	agentMsg := domain.NewMessage(domain.SenderAgent, agentText)

	c.mu.Lock()
	if c.generation != generation {
		// A transcrição foi trocada durante a chamada, mesmo que de volta para a mesma sessão
		c.mu.Unlock()
		c.logger.Debug("resposta descartada da tela após troca de sessão", "session_id", sessionID)
		return SendResult{SessionID: sessionID, Reply: &agentMsg, RelayErr: relayErr}, nil
	}
	c.messages = append(c.messages, agentMsg)
	snapshot := append([]domain.Message(nil), c.messages...)
	c.versions[sessionID]++
	version := c.versions[sessionID]
	c.mu.Unlock()

	c.persist(sessionID, snapshot, version)

	return SendResult{SessionID: sessionID, Reply: &agentMsg, RelayErr: relayErr}, nil
}

func (c *Controller) createSession(ctx context.Context) (SendResult, error) {
	sessionID := c.newSessionID()
	session, err := c.api.CreateSession(ctx, c.userID, sessionID, "")

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.fire(triggerCreateFailed)
		return SendResult{}, fmt.Errorf("erro ao criar sessão: %w", err)
	}

	c.sessionID = session.SessionID
	c.generation++
	c.messages = nil
	c.sessions = append([]domain.Summary{session.Summary()}, c.sessions...)
	c.fire(triggerCreated)
	c.logger.Info("sessão criada", "session_id", session.SessionID)

	return SendResult{SessionCreated: true, SessionID: session.SessionID}, nil
}

// persist grava a transcrição em segundo plano. Gravações são serializadas e uma
// transcrição mais antiga nunca sobrescreve uma mais nova.
func (c *Controller) persist(sessionID string, messages []domain.Message, version uint64) {
	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		c.persistMu.Lock()
		defer c.persistMu.Unlock()

		c.mu.Lock()
		latest := c.versions[sessionID]
		c.mu.Unlock()
		if latest != version {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()

		session, err := c.api.SaveMessages(ctx, c.userID, sessionID, messages)
		if err != nil {
			c.warn(fmt.Errorf("erro ao salvar sessão %s: %w", sessionID, err))
			return
		}

		c.mu.Lock()
		c.upsertSummary(session.Summary())
		c.mu.Unlock()
	}()
}

// upsertSummary deve ser chamado com mu travado
func (c *Controller) upsertSummary(s domain.Summary) {
	for i := range c.sessions {
		if c.sessions[i].SessionID == s.SessionID {
			c.sessions = append(c.sessions[:i], c.sessions[i+1:]...)
			break
		}
	}
	c.sessions = append([]domain.Summary{s}, c.sessions...)
}

func (c *Controller) warn(err error) {
	c.logger.Warn("falha ao persistir sessão", "error", err)
	select {
	case c.warnings <- err:
	default:
	}
}

// Switch troca a sessão ativa, descartando a transcrição local e carregando a do servidor.
// Em caso de falha, a nova sessão fica ativa e vazia.
func (c *Controller) Switch(ctx context.Context, sessionID string) error {
	c.mu.Lock()
	if c.state() == StateCreating {
		c.mu.Unlock()
		return ErrBusy
	}
	c.fire(triggerSwitch)
	c.sessionID = sessionID
	c.generation++
	generation := c.generation
	c.messages = nil
	c.mu.Unlock()

	session, err := c.api.GetSession(ctx, c.userID, sessionID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != generation || c.state() != StateLoading {
		// outra troca ou um reset aconteceu durante o carregamento
		return nil
	}
	if err != nil {
		c.fire(triggerLoadFailed)
		return fmt.Errorf("erro ao carregar sessão: %w", err)
	}

	c.messages = session.Messages
	c.fire(triggerLoaded)
	return nil
}

// Delete remove a sessão no servidor e da lista local; se for a ativa, volta a NoSession
func (c *Controller) Delete(ctx context.Context, sessionID string) error {
	// Espera gravações em andamento para que nenhuma recrie a sessão removida
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	if err := c.api.DeleteSession(ctx, c.userID, sessionID); err != nil {
		return fmt.Errorf("erro ao remover sessão: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.versions, sessionID)
	for i := range c.sessions {
		if c.sessions[i].SessionID == sessionID {
			c.sessions = append(c.sessions[:i], c.sessions[i+1:]...)
			break
		}
	}
	if c.sessionID == sessionID {
		c.reset()
	}
	return nil
}

// NewChat descarta a sessão ativa; a próxima mensagem cria uma nova
func (c *Controller) NewChat() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state() == StateCreating {
		return
	}
	c.reset()
}

// reset deve ser chamado com mu travado
func (c *Controller) reset() {
	c.fire(triggerReset)
	c.sessionID = ""
	c.generation++
	c.messages = nil
}

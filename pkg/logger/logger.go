package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger é a interface para logging
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// SlogLogger implementa Logger sobre log/slog com saída em JSON
type SlogLogger struct {
	level *slog.LevelVar
	log   *slog.Logger
}

// NewLogger cria uma nova instância de Logger escrevendo em stdout
func NewLogger() *SlogLogger {
	return NewWithWriter(os.Stdout)
}

// NewWithWriter cria um Logger escrevendo no writer informado
func NewWithWriter(w io.Writer) *SlogLogger {
	level := new(slog.LevelVar)
	return &SlogLogger{
		level: level,
		log:   slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})),
	}
}

// Discard retorna um Logger que descarta tudo, útil em testes
func Discard() *SlogLogger {
	return NewWithWriter(io.Discard)
}

// SetLevel configura o nível mínimo (debug, info, warn, error)
func (l *SlogLogger) SetLevel(lvl string) {
	switch strings.ToLower(lvl) {
	case "debug":
		l.level.Set(slog.LevelDebug)
	case "warn":
		l.level.Set(slog.LevelWarn)
	case "error":
		l.level.Set(slog.LevelError)
	default:
		l.level.Set(slog.LevelInfo)
	}
}

// With retorna um Logger com campos adicionais
func (l *SlogLogger) With(keysAndValues ...interface{}) *SlogLogger {
	return &SlogLogger{level: l.level, log: l.log.With(keysAndValues...)}
}

// Info registra uma mensagem de informação
func (l *SlogLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Info(msg, keysAndValues...)
}

// Error registra uma mensagem de erro
func (l *SlogLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, keysAndValues...)
}

// Debug registra uma mensagem de debug
func (l *SlogLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

// Warn registra uma mensagem de aviso
func (l *SlogLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Warn(msg, keysAndValues...)
}

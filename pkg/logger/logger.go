package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger embeds zerolog so call sites use the event API directly
type Logger struct {
	zerolog.Logger
}

// New builds the process logger. Development gets a colored console at debug
// level; every other environment writes JSON lines at info.
func New(serviceName string, environment string) *Logger {
	if environment == "development" {
		console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return NewWithWriter(serviceName, console).Level(zerolog.DebugLevel)
	}
	return NewWithWriter(serviceName, os.Stdout).Level(zerolog.InfoLevel)
}

// NewWithWriter writes JSON lines to w. Tests pass a buffer.
func NewWithWriter(serviceName string, w io.Writer) *Logger {
	return &Logger{
		Logger: zerolog.New(w).With().Timestamp().Str("service", serviceName).Logger(),
	}
}

// Nop discards everything
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// Level returns a copy that drops events below lvl
func (l *Logger) Level(lvl zerolog.Level) *Logger {
	return &Logger{Logger: l.Logger.Level(lvl)}
}

func (l *Logger) with(key, value string) *Logger {
	return &Logger{Logger: l.Logger.With().Str(key, value).Logger()}
}

func (l *Logger) WithRequestID(requestID string) *Logger {
	return l.with("request_id", requestID)
}

// WithDocumentID scopes to a single uploaded document
func (l *Logger) WithDocumentID(documentID string) *Logger {
	return l.with("document_id", documentID)
}

// WithBatchID scopes to one orchestrator run
func (l *Logger) WithBatchID(batchID string) *Logger {
	return l.with("batch_id", batchID)
}

func (l *Logger) WithComponent(component string) *Logger {
	return l.with("component", component)
}

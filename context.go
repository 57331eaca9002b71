package todoapi

import (
	"context"
	"fmt"
	"log/slog"
)

type ctxKey int

const (
	loggerCtxKey ctxKey = iota
	todoCtxKey
)

// GetLoggerFromContext returns the structured logger from the context. It expects to use an HTTP
// request context to get a logger with details from middleware
func GetLoggerFromContext(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(loggerCtxKey).(*slog.Logger)
	if !ok {
		return slog.Default()
	}

	return logger
}

// NewContextWithLogger stores a structured logger in the context
func NewContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey, logger)
}

// GetTodoFromContext gets the Todo that was read by the ID middleware
func GetTodoFromContext(ctx context.Context) (*Todo, error) {
	v := ctx.Value(todoCtxKey)
	if v == nil {
		return nil, ErrNotFound
	}

	todo, ok := v.(*Todo)
	if !ok {
		return nil, fmt.Errorf("unexpected type %T in context", v)
	}

	return todo, nil
}

func newContextWithTodo(ctx context.Context, todo *Todo) context.Context {
	return context.WithValue(ctx, todoCtxKey, todo)
}

// Package mediator routes typed requests to their handlers through a static dispatch table.
package mediator

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"skillup-go/internal/apperr"
	"skillup-go/internal/auth"

	"go.uber.org/zap"
)

var ErrNoHandler = errors.New("no handler registered")

type Handler[Req any, Res any] interface {
	Handle(ctx context.Context, caller auth.Caller, req Req) (Res, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc[Req any, Res any] func(ctx context.Context, caller auth.Caller, req Req) (Res, error)

func (f HandlerFunc[Req, Res]) Handle(ctx context.Context, caller auth.Caller, req Req) (Res, error) {
	return f(ctx, caller, req)
}

// Mediator holds one handler per request type. All Register calls must
// happen before the first Send; the table is read-only afterwards.
type Mediator struct {
	log       *zap.Logger
	validator *Validator
	handlers  map[reflect.Type]any
}

func New(log *zap.Logger) *Mediator {
	return &Mediator{
		log:       log.Named("mediator"),
		validator: NewValidator(),
		handlers:  make(map[reflect.Type]any),
	}
}

func requestType[Req any]() reflect.Type {
	return reflect.TypeOf((*Req)(nil)).Elem()
}

// Register binds h to requests of type Req. Registering a type twice panics.
func Register[Req any, Res any](m *Mediator, h Handler[Req, Res]) {
	key := requestType[Req]()
	if _, dup := m.handlers[key]; dup {
		panic(fmt.Sprintf("mediator: duplicate handler for %s", key))
	}
	m.handlers[key] = h
}

// RegisterFunc is Register for plain functions.
func RegisterFunc[Req any, Res any](m *Mediator, f func(ctx context.Context, caller auth.Caller, req Req) (Res, error)) {
	Register[Req, Res](m, HandlerFunc[Req, Res](f))
}

// Has reports whether a handler is registered for Req.
func Has[Req any](m *Mediator) bool {
	_, ok := m.handlers[requestType[Req]()]
	return ok
}

// Send validates req and dispatches it to its handler on behalf of caller.
func Send[Req any, Res any](ctx context.Context, m *Mediator, caller auth.Caller, req Req) (Res, error) {
	var zero Res
	key := requestType[Req]()
	entry, ok := m.handlers[key]
	if !ok {
		return zero, fmt.Errorf("%w for %s", ErrNoHandler, key)
	}
	h, ok := entry.(Handler[Req, Res])
	if !ok {
		return zero, fmt.Errorf("handler for %s does not return %s", key, requestType[Res]())
	}

	if err := m.validator.Validate(req); err != nil {
		m.log.Debug("Request rejected by validation",
			zap.String("request", key.Name()),
			zap.Uint("user_id", caller.UserID),
			zap.Error(err))
		return zero, err
	}

	start := time.Now()
	res, err := h.Handle(ctx, caller, req)
	fields := []zap.Field{
		zap.String("request", key.Name()),
		zap.Uint("user_id", caller.UserID),
		zap.Duration("elapsed", time.Since(start)),
	}
	switch {
	case err == nil:
		m.log.Debug("Request handled", fields...)
	case apperr.KindOf(err) == apperr.KindUnexpected:
		m.log.Error("Request failed", append(fields, zap.Error(err))...)
	default:
		m.log.Info("Request refused", append(fields, zap.String("kind", apperr.KindOf(err).String()), zap.Error(err))...)
	}
	return res, err
}

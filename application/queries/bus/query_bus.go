package bus

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Query represents a read-only query
type Query interface {
	Validate() error
}

// QueryHandler handles a specific query type
type QueryHandler interface {
	Handle(ctx context.Context, query Query) (interface{}, error)
}

// QueryHandlerFunc is an adapter to allow functions to be used as handlers
type QueryHandlerFunc func(ctx context.Context, query Query) (interface{}, error)

// Handle implements QueryHandler
func (f QueryHandlerFunc) Handle(ctx context.Context, query Query) (interface{}, error) {
	return f(ctx, query)
}

// Middleware wraps a query handler.
type Middleware func(next QueryHandler) QueryHandler

// QueryBus dispatches queries to their handlers. Queries are sent by value
// and each registered type answers with one result type.
type QueryBus struct {
	handlers    map[reflect.Type]QueryHandler
	middlewares []Middleware
	mu          sync.RWMutex
}

// NewQueryBus creates a new query bus. Middlewares wrap every handler
// registered afterwards, outermost first.
func NewQueryBus(middlewares ...Middleware) *QueryBus {
	return &QueryBus{
		handlers:    make(map[reflect.Type]QueryHandler),
		middlewares: middlewares,
	}
}

// Register binds handler to the dynamic type of queryType.
func (b *QueryBus) Register(queryType Query, handler QueryHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := reflect.TypeOf(queryType)
	if _, exists := b.handlers[t]; exists {
		return fmt.Errorf("handler already registered for query type %s", queryName(queryType))
	}

	wrapped := handler
	for i := len(b.middlewares) - 1; i >= 0; i-- {
		wrapped = b.middlewares[i](wrapped)
	}
	b.handlers[t] = wrapped
	return nil
}

// Ask validates query and returns its handler's answer. Validation failures
// never reach the middlewares.
func (b *QueryBus) Ask(ctx context.Context, query Query) (interface{}, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	b.mu.RLock()
	handler, exists := b.handlers[reflect.TypeOf(query)]
	b.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrHandlerNotFound, queryName(query))
	}
	return handler.Handle(ctx, query)
}

// LoggingMiddleware logs slow and failed queries. Reads are frequent, so
// successful ones only appear at debug level.
func LoggingMiddleware(logger *zap.Logger, slow time.Duration) Middleware {
	return func(next QueryHandler) QueryHandler {
		return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
			start := time.Now()
			result, err := next.Handle(ctx, query)
			elapsed := time.Since(start)

			fields := []zap.Field{zap.String("type", queryName(query)), zap.Duration("elapsed", elapsed)}
			switch {
			case err != nil:
				logger.Warn("Query failed", append(fields, zap.Error(err))...)
			case slow > 0 && elapsed >= slow:
				logger.Warn("Slow query", fields...)
			default:
				logger.Debug("Query answered", fields...)
			}
			return result, err
		})
	}
}

// QueryObserver records query outcomes and latency.
type QueryObserver interface {
	ObserveQuery(query string, elapsed time.Duration, err error)
}

// MetricsMiddleware reports every answered query to observer.
func MetricsMiddleware(observer QueryObserver) Middleware {
	return func(next QueryHandler) QueryHandler {
		return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
			start := time.Now()
			result, err := next.Handle(ctx, query)
			observer.ObserveQuery(queryName(query), time.Since(start), err)
			return result, err
		})
	}
}

func queryName(q Query) string {
	t := reflect.TypeOf(q)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// ErrHandlerNotFound is returned by Ask for an unregistered query type.
var ErrHandlerNotFound = errors.New("query handler not found")

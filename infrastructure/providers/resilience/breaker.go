// Package resilience guards model invokers with circuit breakers.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/haydenbleasel/tersa-sub001/application/generation"
)

// BreakerConfig holds configuration for circuit breaker
type BreakerConfig struct {
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// FailureThreshold is the failure ratio that opens the breaker
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns a default configuration for circuit breaker
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      2,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// ErrCircuitOpen is returned while a model's breaker rejects calls.
var ErrCircuitOpen = errors.New("model temporarily unavailable")

// Guard wraps inv so repeated upstream failures stop reaching the provider
// until the breaker's timeout elapses. Cancelled calls do not count as
// failures.
func Guard(name string, inv generation.Invoker, cfg BreakerConfig, logger *zap.Logger) generation.Invoker {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("model", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return generation.InvokerFunc(func(ctx context.Context, req generation.Request) (generation.Output, error) {
		res, err := cb.Execute(func() (interface{}, error) {
			return inv.Invoke(ctx, req)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return generation.Output{}, fmt.Errorf("%s: %w", name, ErrCircuitOpen)
		}
		if err != nil {
			return generation.Output{}, err
		}
		return res.(generation.Output), nil
	})
}

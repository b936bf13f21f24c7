// Package chain composes the configured classifier variants into a single
// Classifier that tries providers in preference order, tolerating partial
// unavailability.
package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikey/email-triage/internal/core"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrNoResult is returned when every configured provider failed or none are
// configured. Callers treat it as "no external result", not as a fault.
var ErrNoResult = errors.New("no classifier produced a result")

// Provider is one classifier variant with its preference-order name.
type Provider struct {
	Name       string
	Classifier core.Classifier
}

// Chain tries each provider in order. Every attempt runs under a per-call
// timeout and a per-provider circuit breaker, so a dead provider stops
// costing a timeout on every message once its breaker opens.
type Chain struct {
	providers []Provider
	breakers  []*gobreaker.CircuitBreaker
	timeout   time.Duration
	logger    *zap.Logger
}

// New creates a classifier chain over the given providers.
func New(providers []Provider, timeout time.Duration, maxFailures int, cooldown time.Duration, logger *zap.Logger) *Chain {
	if maxFailures < 1 {
		maxFailures = 1
	}

	breakers := make([]*gobreaker.CircuitBreaker, len(providers))
	for i, p := range providers {
		breakers[i] = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    p.Name,
			Timeout: cooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= uint32(maxFailures)
			},
		})
	}

	return &Chain{
		providers: providers,
		breakers:  breakers,
		timeout:   timeout,
		logger:    logger,
	}
}

// Classify tries each provider in order and returns the first valid result.
func (c *Chain) Classify(ctx context.Context, msg *core.Message) (*core.ExternalResult, error) {
	if len(c.providers) == 0 {
		return nil, ErrNoResult
	}

	for i, p := range c.providers {
		result, err := c.tryProvider(ctx, i, p, msg)
		if err == nil {
			return result, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.logger.Debug("Skipping provider with open circuit",
				zap.String("provider", p.Name),
				zap.String("message_id", msg.ID))
		} else {
			c.logger.Warn("Classifier variant failed, falling through",
				zap.String("provider", p.Name),
				zap.String("message_id", msg.ID),
				zap.Error(err))
		}

		if ctx.Err() != nil {
			return nil, fmt.Errorf("classification cancelled: %w", ctx.Err())
		}
	}

	return nil, ErrNoResult
}

func (c *Chain) tryProvider(ctx context.Context, i int, p Provider, msg *core.Message) (*core.ExternalResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.breakers[i].Execute(func() (interface{}, error) {
		return p.Classifier.Classify(callCtx, msg)
	})
	if err != nil {
		return nil, err
	}
	return result.(*core.ExternalResult), nil
}

// Close releases any providers that hold network resources.
func (c *Chain) Close() error {
	var firstErr error
	for _, p := range c.providers {
		if closer, ok := p.Classifier.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

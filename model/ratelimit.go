package model

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// rateLimited delays every Generate call until the limiter grants a token.
type rateLimited struct {
	next    Model
	limiter *rate.Limiter
}

// RateLimited wraps m so that requests are paced by limiter. A nil limiter
// returns m unchanged.
func RateLimited(m Model, limiter *rate.Limiter) Model {
	if limiter == nil {
		return m
	}
	return &rateLimited{next: m, limiter: limiter}
}

// Generate implements Model.
func (r *rateLimited) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	if err := r.limiter.Wait(ctx); err != nil {
		respCh := make(chan Response)
		errCh := make(chan error, 1)
		errCh <- fmt.Errorf("rate limit: %w", err)
		close(respCh)
		close(errCh)
		return respCh, errCh
	}
	return r.next.Generate(ctx, req)
}

// Info implements Model.
func (r *rateLimited) Info() Info { return r.next.Info() }

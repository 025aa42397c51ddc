package chatmodel

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimited wraps a Model with a token-bucket limiter, so a single
// capability instance can be shared across concurrent requests without
// overrunning a provider's rate limit (§5 shared-resource policy: LLM
// client factory must remain thread-safe or create per-call — this makes
// a shared client safe under load).
type RateLimited struct {
	Model   Model
	limiter *rate.Limiter
}

// NewRateLimited wraps model with a limiter allowing ratePerSecond calls
// per second and burst concurrent calls above that steady rate.
func NewRateLimited(model Model, ratePerSecond float64, burst int) *RateLimited {
	return &RateLimited{Model: model, limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst)}
}

// Invoke implements Model, blocking until the limiter admits the call or
// ctx is cancelled.
func (r *RateLimited) Invoke(ctx context.Context, req Request) (Response, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return Response{}, err
	}
	return r.Model.Invoke(ctx, req)
}

// Stream implements Model, blocking until the limiter admits the call or
// ctx is cancelled.
func (r *RateLimited) Stream(ctx context.Context, req Request) (Stream, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.Model.Stream(ctx, req)
}

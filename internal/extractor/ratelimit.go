package extractor

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"fleetdesk/internal/port"
)

// rateLimitedExtractor throttles calls to an upstream provider.
type rateLimitedExtractor struct {
	inner   port.FieldExtractor
	limiter *rate.Limiter
}

// RateLimited wraps an extractor with a token-bucket limiter. Non-positive
// settings disable throttling.
func RateLimited(inner port.FieldExtractor, perSec float64, burst int) port.FieldExtractor {
	if perSec <= 0 || burst <= 0 {
		return inner
	}
	return &rateLimitedExtractor{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(perSec), burst),
	}
}

func (r *rateLimitedExtractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}
	return r.inner.Extract(ctx, input)
}

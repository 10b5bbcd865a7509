package extractor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"fleetdesk/internal/port"
)

// circuitState tracks rate-limit backoff for a single provider.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackExtractor tries providers in order, skipping those with open
// circuits. It implements port.FieldExtractor.
type FallbackExtractor struct {
	extractors []port.FieldExtractor
	circuits   []*circuitState
	names      []string
}

// NewFallbackExtractor creates a FallbackExtractor from an ordered list of
// providers and their names.
func NewFallbackExtractor(extractors []port.FieldExtractor, names []string) *FallbackExtractor {
	circuits := make([]*circuitState, len(extractors))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackExtractor{
		extractors: extractors,
		circuits:   circuits,
		names:      names,
	}
}

func (f *FallbackExtractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	now := time.Now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, ex := range f.extractors {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			log.Printf("extractor.FallbackExtractor: skipping %s (circuit open until %s)", f.names[i], resetAt.Format(time.RFC3339))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := ex.Extract(ctx, input)
		if err == nil {
			return out, nil
		}

		log.Printf("extractor.FallbackExtractor: %s failed: %v", f.names[i], err)
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		// Every provider was skipped or throttled.
		retryAfter := time.Until(earliestReset)
		if retryAfter < 0 {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", fmt.Errorf("all extraction providers rate limited"), int(retryAfter.Seconds()))
	}

	return nil, fmt.Errorf("all extraction providers failed: %w", lastErr)
}

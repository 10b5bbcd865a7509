package extractor

import (
	"fmt"

	"fleetdesk/internal/config"
	"fleetdesk/internal/port"
)

// ProviderFactory is a function that creates a FieldExtractor from a provider
// config.
type ProviderFactory func(cfg *config.ExtractorProviderConfig) (port.FieldExtractor, error)

// registry of extraction provider factories, populated by init() in each
// provider package or explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers an extraction provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewExtractor creates a FieldExtractor from a provider config using the
// registered factory, wrapped with the provider's rate limit.
func NewExtractor(cfg *config.ExtractorProviderConfig) (port.FieldExtractor, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown extractor provider: %s", cfg.Provider)
	}
	ex, err := factory(cfg)
	if err != nil {
		return nil, err
	}
	return RateLimited(ex, cfg.RatePerSec, cfg.RateBurst), nil
}

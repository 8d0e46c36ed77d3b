package services

import (
	"log/slog"
	"sync"
)

// Tier selects which strategy bundle backs the engine.
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

// ParseTier maps a raw string to a known tier, defaulting to free.
func ParseTier(s string) Tier {
	if s == string(TierPremium) {
		return TierPremium
	}
	return TierFree
}

// Bundle holds the three strategies resolved for a tier.
type Bundle struct {
	Evaluator ResponseEvaluator
	Provider  ContentProvider
	Feedback  FeedbackGenerator
}

// Factory resolves and caches one strategy bundle per tier. Repeated calls
// for the same tier return the same singletons, so callers can rely on
// reference identity. No premium implementations exist yet; requesting
// premium logs the substitution and returns the free bundle.
type Factory struct {
	mu      sync.Mutex
	bundles map[Tier]*Bundle
	source  TreeSource
	logger  *slog.Logger
}

// NewFactory creates a service factory over the given content source.
func NewFactory(source TreeSource, logger *slog.Logger) *Factory {
	return &Factory{
		bundles: make(map[Tier]*Bundle),
		source:  source,
		logger:  logger,
	}
}

// ForTier returns the cached bundle for the tier, building it on first use.
func (f *Factory) ForTier(tier Tier) *Bundle {
	f.mu.Lock()
	defer f.mu.Unlock()

	if tier != TierFree && tier != TierPremium {
		f.logger.Warn("Unknown tier requested, using free", "tier", tier)
		tier = TierFree
	}

	if tier == TierPremium {
		// Premium strategies are an extension point, not yet implemented.
		f.logger.Warn("Premium services not available, falling back to free tier")
		tier = TierFree
	}

	if b, ok := f.bundles[tier]; ok {
		return b
	}

	b := &Bundle{
		Evaluator: NewPatternEvaluator(),
		Provider:  NewStaticProvider(f.source, f.logger),
		Feedback:  NewPatternFeedback(),
	}
	f.bundles[tier] = b
	return b
}

// Reset drops all cached bundles. Intended for test isolation.
func (f *Factory) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bundles = make(map[Tier]*Bundle)
}

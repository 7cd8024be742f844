package scanner

import (
	"time"

	"github.com/phuslu/log"

	"github.com/turismolocal/poiscan/internal/config"
)

// BuildSources wires both providers from configuration. Each source gets
// its own client (independent rate limits) and its own memo cache.
func BuildSources(cfg *config.Config, timeout, cacheTTL time.Duration, logger *log.Logger) (*GoogleSource, *DenueSource) {
	googleClient := NewClient(timeout, cfg.Google.RequestsPerSecond, logger)
	denueClient := NewClient(timeout, cfg.Denue.RequestsPerSecond, logger)

	google := NewGoogleSource(googleClient, cfg.Google.APIKey, cfg.Google.MaxResults,
		newZoneCache(cacheTTL, cfg.Scan.CacheMaxEntries), logger)
	denue := NewDenueSource(denueClient, cfg.Denue.Token, cfg.Scan.BatchSize,
		newZoneCache(cacheTTL, cfg.Scan.CacheMaxEntries), logger)
	return google, denue
}

package platforms

import (
	"lead-tracking-service/internal/config"
	"lead-tracking-service/internal/httpclient"
	"lead-tracking-service/internal/logger"
	"lead-tracking-service/internal/tracking"
)

// FromConfig builds every supported adapter. Disabled ones are returned too;
// the coordinator filters them.
func FromConfig(cfg *config.Config, client httpclient.Client, emitter ClientEmitter, log *logger.Logger) []tracking.Platform {
	return []tracking.Platform{
		NewAnalytics(cfg.Analytics, client, emitter, log),
		NewConversions(cfg.Conversions, client, emitter, log),
	}
}
